package models

import "fmt"

// Mode selects the generation contract for a request.
type Mode string

const (
	ModeFrontend    Mode = "frontend"
	ModeFullstack   Mode = "fullstack"
	ModeDesignClone Mode = "designClone"
)

// ParseMode validates a client-supplied mode string. An empty string
// selects the default frontend mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeFrontend, nil
	case ModeFrontend, ModeFullstack, ModeDesignClone:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be one of %q, %q, %q", s, ModeFrontend, ModeFullstack, ModeDesignClone)
	}
}

// Message roles in a chat-completion request.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single conversational message.
type Message struct {
	Role    string
	Content string
}

// GenerationRequest is the inbound body of a generation action. The
// full conversation state round-trips through the client; nothing is
// stored server-side between requests.
type GenerationRequest struct {
	Prompt         string `json:"prompt"`
	HTML           string `json:"html,omitempty"`
	PreviousPrompt string `json:"previousPrompt,omitempty"`
	Mode           string `json:"mode,omitempty"`
	ModelKey       string `json:"modelKey,omitempty"`
	DesignURL      string `json:"designUrl,omitempty"`
}

// DefaultModelKey is used when a request does not name a model.
const DefaultModelKey = "groq/gpt-oss-120b"
