package llm_service

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat-style prompt.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type LLMService interface {
	Generate(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// LastUserContent returns the content of the last user-role message, or ""
// when the prompt carries none.
func LastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// SystemContent returns the concatenated system-role content of the prompt.
func SystemContent(messages []Message) string {
	var out string
	for _, m := range messages {
		if m.Role == RoleSystem {
			if out != "" {
				out += "\n"
			}
			out += m.Content
		}
	}
	return out
}
