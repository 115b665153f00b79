package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/studyhelper/studyhelper/llm_service"
	"github.com/studyhelper/studyhelper/session"
)

const chatSystemPromptPrefix = "You are an assistant answering questions based on the document the user uploaded. " +
	"Document content: "

type ChatHandler struct {
	LLM         llm_service.LLMService
	Sessions    *session.Store
	Temperature float64
	Logger      *slog.Logger
}

func NewChatHandler(llm llm_service.LLMService, sessions *session.Store, temperature float64, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		LLM:         llm,
		Sessions:    sessions,
		Temperature: temperature,
		Logger:      logger,
	}
}

func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	h.Logger.Info("Created session", slog.String("session_id", s.ID))

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": s.ID})
}

// Chat answers one question against the session's analyzed document. Each
// question is sent with the document as system context; earlier turns are
// kept in the transcript but not replayed to the model.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s, ok := h.Sessions.Get(vars["id"])
	if !ok {
		writeJSONError(w, "Session not found", http.StatusNotFound)
		return
	}

	var requestBody struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(requestBody.Message)
	if question == "" {
		writeJSONError(w, "Please enter a question", http.StatusBadRequest)
		return
	}

	documentText := s.GetDocumentText()
	if documentText == "" {
		writeJSONError(w, "Please upload a document first", http.StatusBadRequest)
		return
	}

	messages := []llm_service.Message{
		{Role: llm_service.RoleSystem, Content: chatSystemPromptPrefix + documentText},
		{Role: llm_service.RoleUser, Content: question},
	}

	answer, err := h.LLM.Generate(r.Context(), messages, h.Temperature)
	if err != nil {
		h.Logger.Error("Chat call failed",
			slog.String("session_id", s.ID),
			slog.String("error", err.Error()))
		writeJSONError(w, "The generative service is currently unavailable", http.StatusBadGateway)
		return
	}

	// The transcript records question/answer pairs; a failed call leaves it
	// untouched so the client can simply retry.
	answer = strings.TrimSpace(answer)
	s.AppendMessage(llm_service.RoleUser, question)
	s.AppendMessage(llm_service.RoleAssistant, answer)

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s, ok := h.Sessions.Get(vars["id"])
	if !ok {
		writeJSONError(w, "Session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": s.ID,
		"messages":   s.History(),
	})
}
