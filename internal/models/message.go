package models

// MessageRole identifies who produced a transcript message.
type MessageRole string

const (
	RoleHuman     MessageRole = "human"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the two persisted values.
func (r MessageRole) Valid() bool {
	return r == RoleHuman || r == RoleAssistant
}

// ChatTurn is one role+content pair of caller-supplied prior history
// sent with a chat request. Roles here use the upstream vocabulary
// ("user"/"assistant") since the frontend echoes back what the
// completion API returned.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
