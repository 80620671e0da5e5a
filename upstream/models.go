package upstream

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai"
)

// chatRequest is the payload sent upstream. go-openai's request type drops
// "stream": false and empty content via omitempty, so the wire shape is
// declared here.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse keeps the message as raw keys so a missing "message" or
// "content" is told apart from an empty one.
type chatResponse struct {
	Choices []struct {
		Message map[string]json.RawMessage `json:"message"`
	} `json:"choices"`
}

func newChatRequest(model, message string) chatRequest {
	return chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Stream: false,
	}
}

// MessageFrom returns the text to relay from a decoded inbound body.
// A missing or null "message" gives "", a string is used as-is, and any
// other JSON value is forwarded as its compact JSON text.
func MessageFrom(input map[string]any) string {
	v, ok := input["message"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
