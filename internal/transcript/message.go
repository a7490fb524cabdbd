// Package transcript models the ordered conversation history for one
// (user, session) pair.
//
// Messages are a closed set of per-role variants rather than one struct with
// nullable fields, so that illegal states (a user message carrying a
// tool_call_id, a tool result without one) cannot be constructed.
package transcript

import "fmt"

// Role identifies the author of a transcript entry.
type Role string

// Valid message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one transcript entry. Implementations are exactly
// SystemMessage, UserMessage, AssistantMessage, and ToolMessage.
type Message interface {
	Role() Role
	Content() string

	// sealed prevents implementations outside this package.
	sealed()
}

// ToolCall identifies one requested tool invocation, recorded inline on an
// assistant message. Immutable once created.
type ToolCall struct {
	ID        string         // unique within the emitting assistant message
	Name      string         // tool identifier, e.g. "search"
	Arguments map[string]any // serializable key/value payload
}

// SystemMessage carries the persona/instruction text at position 0 of the
// in-memory transcript. It is never persisted.
type SystemMessage struct {
	Text string
}

// UserMessage is one user utterance.
type UserMessage struct {
	Text string
}

// AssistantMessage is one model reply. ToolCalls is non-empty only when the
// turn requests tool execution; such messages usually have empty Text.
type AssistantMessage struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolMessage carries the result of one tool invocation. ToolCallID
// correlates it to a ToolCall emitted by an earlier assistant message.
type ToolMessage struct {
	Text       string
	ToolCallID string
}

func (m SystemMessage) Role() Role    { return RoleSystem }
func (m UserMessage) Role() Role      { return RoleUser }
func (m AssistantMessage) Role() Role { return RoleAssistant }
func (m ToolMessage) Role() Role      { return RoleTool }

func (m SystemMessage) Content() string    { return m.Text }
func (m UserMessage) Content() string      { return m.Text }
func (m AssistantMessage) Content() string { return m.Text }
func (m ToolMessage) Content() string      { return m.Text }

func (SystemMessage) sealed()    {}
func (UserMessage) sealed()      {}
func (AssistantMessage) sealed() {}
func (ToolMessage) sealed()      {}

// String renders a short "role: content" form, used when transcripts are
// embedded into prompts.
func Render(m Message) string {
	return fmt.Sprintf("%s: %s", m.Role(), m.Content())
}
