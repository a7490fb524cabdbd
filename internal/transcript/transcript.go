package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for transcript mutation and decoding.
var (
	// ErrUnpairedToolResult indicates a tool message whose tool_call_id does
	// not match an unresolved tool call from an earlier assistant message.
	ErrUnpairedToolResult = errors.New("unpaired tool result")

	// ErrSystemAppend indicates an attempt to append a second system message.
	ErrSystemAppend = errors.New("system message is fixed at position 0")

	// ErrMalformedRecord indicates a persisted record that does not decode
	// into a valid transcript.
	ErrMalformedRecord = errors.New("malformed transcript record")
)

// Transcript is the ordered conversation history for one (user, session)
// pair: a fixed leading system message plus an append-only message sequence.
//
// The system message lives only in memory; it is supplied at construction
// and excluded from persistence. A Transcript is owned by a single
// orchestration turn at a time and is not safe for concurrent mutation.
type Transcript struct {
	system   SystemMessage
	messages []Message
}

// New returns a transcript holding only the system message.
func New(systemPrompt string) *Transcript {
	return &Transcript{system: SystemMessage{Text: systemPrompt}}
}

// FromMessages returns a transcript seeded with previously persisted
// messages, with a freshly supplied system message prepended.
func FromMessages(systemPrompt string, msgs []Message) *Transcript {
	t := New(systemPrompt)
	t.messages = append(t.messages, msgs...)
	return t
}

// System returns the leading system message.
func (t *Transcript) System() SystemMessage { return t.system }

// Messages returns a copy of the message sequence, system message excluded.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// All returns the full in-memory view: the system message at position 0
// followed by the message sequence.
func (t *Transcript) All() []Message {
	out := make([]Message, 0, len(t.messages)+1)
	out = append(out, t.system)
	return append(out, t.messages...)
}

// Len reports the number of messages, system message excluded.
func (t *Transcript) Len() int { return len(t.messages) }

// Last returns the most recent message, or nil for an empty transcript.
func (t *Transcript) Last() Message {
	if len(t.messages) == 0 {
		return nil
	}
	return t.messages[len(t.messages)-1]
}

// AppendUser appends one user utterance.
func (t *Transcript) AppendUser(text string) {
	t.messages = append(t.messages, UserMessage{Text: text})
}

// AppendAssistant appends one assistant message.
func (t *Transcript) AppendAssistant(msg AssistantMessage) {
	t.messages = append(t.messages, msg)
}

// AppendTool appends one tool result. It fails with ErrUnpairedToolResult
// unless callID matches an unresolved tool call, meaning one emitted by an earlier
// assistant message and not yet answered by a tool message.
func (t *Transcript) AppendTool(text, callID string) error {
	if !t.unresolved(callID) {
		return fmt.Errorf("%w: tool_call_id %q", ErrUnpairedToolResult, callID)
	}
	t.messages = append(t.messages, ToolMessage{Text: text, ToolCallID: callID})
	return nil
}

// Append appends an arbitrary non-system message, dispatching to the typed
// append methods. System messages are rejected with ErrSystemAppend.
func (t *Transcript) Append(msg Message) error {
	switch m := msg.(type) {
	case UserMessage:
		t.AppendUser(m.Text)
		return nil
	case AssistantMessage:
		t.AppendAssistant(m)
		return nil
	case ToolMessage:
		return t.AppendTool(m.Text, m.ToolCallID)
	case SystemMessage:
		return ErrSystemAppend
	default:
		return fmt.Errorf("unknown message type %T", msg)
	}
}

// unresolved reports whether callID names a tool call that has been emitted
// but not yet answered.
func (t *Transcript) unresolved(callID string) bool {
	emitted := false
	for _, m := range t.messages {
		switch msg := m.(type) {
		case AssistantMessage:
			for _, tc := range msg.ToolCalls {
				if tc.ID == callID {
					emitted = true
				}
			}
		case ToolMessage:
			if msg.ToolCallID == callID {
				emitted = false
			}
		}
	}
	return emitted
}

// Validate checks the tool-call pairing invariant over the whole sequence:
// every tool message references a tool call emitted by a strictly earlier
// assistant message, and every emitted tool call is answered by exactly one
// tool message before the next assistant message appears.
func (t *Transcript) Validate() error {
	open := map[string]bool{}
	for i, m := range t.messages {
		switch msg := m.(type) {
		case AssistantMessage:
			if len(open) > 0 {
				return fmt.Errorf("%w: assistant message at index %d with %d unanswered tool call(s)",
					ErrUnpairedToolResult, i, len(open))
			}
			for _, tc := range msg.ToolCalls {
				open[tc.ID] = true
			}
		case ToolMessage:
			if !open[msg.ToolCallID] {
				return fmt.Errorf("%w: tool message at index %d references %q",
					ErrUnpairedToolResult, i, msg.ToolCallID)
			}
			delete(open, msg.ToolCallID)
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("%w: %d tool call(s) never answered", ErrUnpairedToolResult, len(open))
	}
	return nil
}

// ValidateStored checks the pairing rules a persisted record must satisfy:
// every tool message answers a tool call emitted by an earlier assistant
// message and not already answered.
//
// Unlike Validate, unanswered tool calls are tolerated. A turn that fails
// after emitting a tool call persists exactly that state, and the next turn
// must be able to reload it rather than discard the conversation.
func (t *Transcript) ValidateStored() error {
	open := map[string]bool{}
	for i, m := range t.messages {
		switch msg := m.(type) {
		case AssistantMessage:
			for _, tc := range msg.ToolCalls {
				open[tc.ID] = true
			}
		case ToolMessage:
			if !open[msg.ToolCallID] {
				return fmt.Errorf("%w: tool message at index %d references %q",
					ErrUnpairedToolResult, i, msg.ToolCallID)
			}
			delete(open, msg.ToolCallID)
		}
	}
	return nil
}

// RenderText renders the full transcript (system message included) as plain
// "role: content" lines for embedding into single-shot prompts.
func (t *Transcript) RenderText() string {
	var b strings.Builder
	for _, m := range t.All() {
		b.WriteString(Render(m))
		b.WriteByte('\n')
	}
	return b.String()
}
