package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/studyhelper/studyhelper/community"
)

type CommunityHandler struct {
	Board  *community.Board
	Logger *slog.Logger
}

func NewCommunityHandler(board *community.Board, logger *slog.Logger) *CommunityHandler {
	return &CommunityHandler{
		Board:  board,
		Logger: logger,
	}
}

func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.Board.CreatePost(requestBody.Title, requestBody.Content)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.Logger.Info("Created community post",
		slog.String("post_id", post.ID),
		slog.String("author", post.Author))

	writeJSON(w, http.StatusCreated, post)
}

func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	posts := h.Board.SearchPosts(query)
	if posts == nil {
		posts = []*community.Post{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (h *CommunityHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	post, ok := h.Board.GetPost(vars["id"])
	if !ok {
		writeJSONError(w, "Post not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *CommunityHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if _, ok := h.Board.GetPost(vars["id"]); !ok {
		writeJSONError(w, "Post not found", http.StatusNotFound)
		return
	}

	var requestBody struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.Board.AddComment(vars["id"], requestBody.Content)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
