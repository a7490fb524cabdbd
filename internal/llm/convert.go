package llm

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"

	"github.com/mosscap/mosscap/internal/transcript"
)

// toModelMessages converts the transcript's ordered messages into the
// genkit wire form. The system prompt is carried separately via
// ai.WithSystem, so only user/assistant/tool messages are converted here.
func toModelMessages(t *transcript.Transcript) ([]*ai.Message, error) {
	msgs := t.Messages()
	out := make([]*ai.Message, 0, len(msgs))
	for _, m := range msgs {
		converted, err := toModelMessage(m)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func toModelMessage(m transcript.Message) (*ai.Message, error) {
	switch msg := m.(type) {
	case transcript.UserMessage:
		return ai.NewUserMessage(ai.NewTextPart(msg.Text)), nil

	case transcript.AssistantMessage:
		parts := make([]*ai.Part, 0, len(msg.ToolCalls)+1)
		if msg.Text != "" {
			parts = append(parts, ai.NewTextPart(msg.Text))
		}
		for _, tc := range msg.ToolCalls {
			parts = append(parts, ai.NewToolRequestPart(&ai.ToolRequest{
				Ref:   tc.ID,
				Name:  tc.Name,
				Input: tc.Arguments,
			}))
		}
		return ai.NewModelMessage(parts...), nil

	case transcript.ToolMessage:
		// Tool results correlate with their request through Ref alone;
		// persisted records do not retain the tool name.
		return ai.NewMessage(ai.RoleTool, nil, ai.NewToolResponsePart(&ai.ToolResponse{
			Ref:    msg.ToolCallID,
			Output: msg.Text,
		})), nil

	case transcript.SystemMessage:
		return nil, fmt.Errorf("llm: system message cannot appear in the message list")

	default:
		return nil, fmt.Errorf("llm: unsupported message type %T", m)
	}
}

// fromModelMessage converts a model reply back into the transcript form,
// extracting any tool requests the model emitted.
func fromModelMessage(m *ai.Message) (transcript.AssistantMessage, error) {
	if m == nil {
		return transcript.AssistantMessage{}, fmt.Errorf("llm: model returned no message")
	}
	var out transcript.AssistantMessage
	for _, p := range m.Content {
		switch {
		case p.IsText():
			out.Text += p.Text
		case p.IsToolRequest():
			req := p.ToolRequest
			args, ok := req.Input.(map[string]any)
			if !ok && req.Input != nil {
				return transcript.AssistantMessage{}, fmt.Errorf("llm: tool request %q has non-object arguments", req.Name)
			}
			out.ToolCalls = append(out.ToolCalls, transcript.ToolCall{
				ID:        req.Ref,
				Name:      req.Name,
				Arguments: args,
			})
		}
	}
	return out, nil
}
