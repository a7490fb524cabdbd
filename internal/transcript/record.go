package transcript

import (
	"encoding/json"
	"fmt"
)

// Record is the persisted form of one session's transcript: the keyed
// document written to and read from the conversation store.
//
// The system message is deliberately absent: it is re-derived at transcript
// construction time, never stored. Every save replaces the whole document.
type Record struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Messages  []RecordMessage `json:"messages"`
	Summary   string          `json:"summary,omitempty"`
}

// RecordMessage is the stored shape of one message. Engine-internal fields
// (token accounting and the like) are never part of this shape.
type RecordMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []RecordToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

// RecordToolCall is the stored shape of one tool invocation request.
type RecordToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

// NewRecord serializes a transcript into its persisted form. The summary is
// attached only when non-empty.
func NewRecord(userID, sessionID string, t *Transcript, summary string) *Record {
	msgs := t.Messages()
	rec := &Record{
		ID:        sessionID,
		SessionID: sessionID,
		UserID:    userID,
		Messages:  make([]RecordMessage, 0, len(msgs)),
		Summary:   summary,
	}
	for _, m := range msgs {
		rm := RecordMessage{Role: string(m.Role()), Content: m.Content()}
		switch msg := m.(type) {
		case AssistantMessage:
			for _, tc := range msg.ToolCalls {
				rm.ToolCalls = append(rm.ToolCalls, RecordToolCall{
					ID:        tc.ID,
					Name:      tc.Name,
					Arguments: tc.Arguments,
				})
			}
		case ToolMessage:
			rm.ToolCallID = msg.ToolCallID
		}
		rec.Messages = append(rec.Messages, rm)
	}
	return rec
}

// DecodeRecord parses and validates a stored document, reconstructing a
// transcript with the supplied system message prepended.
//
// Validation is strict: an unknown role, tool-call fields on the wrong role,
// or a tool message without a tool_call_id all yield ErrMalformedRecord
// rather than a partially populated transcript.
func DecodeRecord(data []byte, systemPrompt string) (*Transcript, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return rec.Transcript(systemPrompt)
}

// Transcript validates the record and reconstructs the in-memory transcript
// with a freshly supplied system message at position 0. Records with orphan
// tool results are rejected whole; unanswered tool calls are accepted, since
// a failed turn legitimately persists that state.
func (r Record) Transcript(systemPrompt string) (*Transcript, error) {
	msgs := make([]Message, 0, len(r.Messages))
	for i, rm := range r.Messages {
		m, err := rm.message()
		if err != nil {
			return nil, fmt.Errorf("%w: message %d: %w", ErrMalformedRecord, i, err)
		}
		msgs = append(msgs, m)
	}
	t := FromMessages(systemPrompt, msgs)
	if err := t.ValidateStored(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return t, nil
}

// message converts one stored message into its typed variant.
func (rm RecordMessage) message() (Message, error) {
	switch Role(rm.Role) {
	case RoleUser:
		if len(rm.ToolCalls) > 0 || rm.ToolCallID != "" {
			return nil, fmt.Errorf("user message carries tool fields")
		}
		return UserMessage{Text: rm.Content}, nil
	case RoleAssistant:
		if rm.ToolCallID != "" {
			return nil, fmt.Errorf("assistant message carries tool_call_id")
		}
		msg := AssistantMessage{Text: rm.Content}
		for _, tc := range rm.ToolCalls {
			if tc.ID == "" || tc.Name == "" {
				return nil, fmt.Errorf("tool call missing id or tool_name")
			}
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
			})
		}
		return msg, nil
	case RoleTool:
		if rm.ToolCallID == "" {
			return nil, fmt.Errorf("tool message missing tool_call_id")
		}
		if len(rm.ToolCalls) > 0 {
			return nil, fmt.Errorf("tool message carries tool_calls")
		}
		return ToolMessage{Text: rm.Content, ToolCallID: rm.ToolCallID}, nil
	case RoleSystem:
		return nil, fmt.Errorf("system message in persisted record")
	default:
		return nil, fmt.Errorf("unknown role %q", rm.Role)
	}
}
