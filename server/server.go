package server

import (
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/studyhelper/studyhelper/handlers"
)

func SetupRoutes(analyze *handlers.AnalyzeHandler, chat *handlers.ChatHandler, board *handlers.CommunityHandler) *mux.Router {
	r := mux.NewRouter()

	// Document analysis
	r.HandleFunc("/analyze", analyze.StartAnalysis).Methods("POST")
	r.HandleFunc("/analyze/{id}/status", analyze.GetStatus).Methods("GET")
	r.HandleFunc("/analyze/{id}/report", analyze.GetReport).Methods("GET")

	// Sessions and document chat
	r.HandleFunc("/sessions", chat.CreateSession).Methods("POST")
	r.HandleFunc("/sessions/{id}/chat", chat.Chat).Methods("POST")
	r.HandleFunc("/sessions/{id}/history", chat.GetHistory).Methods("GET")

	// Community board
	r.HandleFunc("/posts", board.CreatePost).Methods("POST")
	r.HandleFunc("/posts", board.ListPosts).Methods("GET")
	r.HandleFunc("/posts/{id}", board.GetPost).Methods("GET")
	r.HandleFunc("/posts/{id}/comments", board.AddComment).Methods("POST")

	return r
}

// ServeProduction builds the server when we operate in a production environment.
func ServeProduction(n *negroni.Negroni, domains []string, certCacheDir string) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(certCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":443",
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
