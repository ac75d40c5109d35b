package session

import "strings"

// commandPrefixes are the case-insensitive prefixes that mark an inbound
// text payload as an editor command rather than an opaque upload or chat
// message.
var commandPrefixes = []string{
	"type ",
	"keytap ",
	"go to line",
	"open file",
	"search",
	"replace",
	"@cline",
}

// SupportsCommand reports whether text, trimmed and compared
// case-insensitively, starts with one of commandPrefixes. There is no
// separate list of whole commands; only the prefixes are checked. It is
// the predicate the command-or-upload branch
// uses to decide which port a payload belongs to.
func SupportsCommand(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, prefix := range commandPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// CommandPort is the editor-integration command layer. Out of scope for
// this core: named here only as the narrow port a Session dispatches
// recognized command text through.
type CommandPort interface {
	HandleCommand(text string, sess *Session) error
}

// FileUploadPort receives a binary payload that is neither a recognized
// envelope type nor a recognized command. Out of scope for this core.
type FileUploadPort interface {
	Handle(data []byte, sess *Session) error
}

// AiChatPort is the AI-chat fallback for inbound text that is not a
// quality-update envelope. Out of scope for this core.
type AiChatPort interface {
	Chat(text string, apiKey string) (string, error)
}

// EditorUiPort posts messages to the host webview UI. Out of scope for
// this core.
type EditorUiPort interface {
	PostMessage(msg map[string]any) error
}

// SecretStore supplies credentials (such as an AI-chat API key) to ports
// that need them. Out of scope for this core; storage is an external
// collaborator's concern.
type SecretStore interface {
	APIKey() (string, error)
}
