package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyhelper/studyhelper/llm_service"
)

// Session holds the per-user state of one UI session: the text of the last
// analyzed document and the running chat transcript. Sessions live only in
// memory and are owned by the Store handle, never by package globals.
type Session struct {
	ID           string
	DocumentText string
	ChatHistory  []llm_service.Message
	CreatedAt    time.Time

	mu sync.Mutex
}

func (s *Session) SetDocumentText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DocumentText = text
}

func (s *Session) GetDocumentText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.DocumentText
}

func (s *Session) AppendMessage(role llm_service.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ChatHistory = append(s.ChatHistory, llm_service.Message{Role: role, Content: content})
}

// History returns a copy of the chat transcript.
func (s *Session) History() []llm_service.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]llm_service.Message, len(s.ChatHistory))
	copy(history, s.ChatHistory)
	return history
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

func (st *Store) Create() *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	return s
}

func (st *Store) Get(sessionID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[sessionID]
	return s, ok
}
