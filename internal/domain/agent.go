package domain

// Role identifies one of the three fixed agents.
type Role string

// Agent roles in pipeline order.
const (
	RoleSupervisor Role = "supervisor"
	RoleDeveloper  Role = "developer"
	RoleTester     Role = "tester"
)

// Roles returns every role in pipeline order.
func Roles() []Role {
	return []Role{RoleSupervisor, RoleDeveloper, RoleTester}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// BackendKind distinguishes the cloud backend from the local one.
type BackendKind string

// Backend kinds.
const (
	BackendCloud BackendKind = "cloud"
	BackendLocal BackendKind = "local"
)

// String implements fmt.Stringer.
func (k BackendKind) String() string {
	return string(k)
}

// MessageRole is the speaker of a chat message.
type MessageRole string

// Chat message roles understood by every backend.
const (
	MessageSystem    MessageRole = "system"
	MessageUser      MessageRole = "user"
	MessageAssistant MessageRole = "assistant"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// SystemMessage builds a system message.
func SystemMessage(content string) Message {
	return Message{Role: MessageSystem, Content: content}
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: MessageUser, Content: content}
}

// AssistantMessage builds an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: MessageAssistant, Content: content}
}
