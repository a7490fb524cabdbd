package llm

import (
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosscap/mosscap/internal/transcript"
)

func TestToModelMessages(t *testing.T) {
	tr := transcript.New("You are helpful.")
	tr.AppendUser("What is the weather in Paris?")
	tr.AppendAssistant(transcript.AssistantMessage{
		ToolCalls: []transcript.ToolCall{{
			ID:        "0",
			Name:      "search",
			Arguments: map[string]any{"query": "Paris weather today", "num_results": 3},
		}},
	})
	require.NoError(t, tr.AppendTool("Sunny, 20C", "0"))
	tr.AppendAssistant(transcript.AssistantMessage{Text: "It is sunny in Paris."})

	msgs, err := toModelMessages(tr)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	assert.Equal(t, ai.RoleUser, msgs[0].Role)
	assert.Equal(t, "What is the weather in Paris?", msgs[0].Text())

	assert.Equal(t, ai.RoleModel, msgs[1].Role)
	require.Len(t, msgs[1].Content, 1)
	req := msgs[1].Content[0].ToolRequest
	require.NotNil(t, req)
	assert.Equal(t, "0", req.Ref)
	assert.Equal(t, "search", req.Name)

	assert.Equal(t, ai.RoleTool, msgs[2].Role)
	require.Len(t, msgs[2].Content, 1)
	resp := msgs[2].Content[0].ToolResponse
	require.NotNil(t, resp)
	assert.Equal(t, "0", resp.Ref)
	assert.Equal(t, "Sunny, 20C", resp.Output)

	assert.Equal(t, ai.RoleModel, msgs[3].Role)
	assert.Equal(t, "It is sunny in Paris.", msgs[3].Text())
}

func TestToModelMessagesAssistantWithTextAndTools(t *testing.T) {
	tr := transcript.New("sys")
	tr.AppendUser("hi")
	tr.AppendAssistant(transcript.AssistantMessage{
		Text: "Let me look that up.",
		ToolCalls: []transcript.ToolCall{{
			ID:        "0",
			Name:      "search",
			Arguments: map[string]any{"query": "hi", "num_results": 3},
		}},
	})

	msgs, err := toModelMessages(tr)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Len(t, msgs[1].Content, 2)
	assert.True(t, msgs[1].Content[0].IsText())
	assert.True(t, msgs[1].Content[1].IsToolRequest())
}

func TestFromModelMessage(t *testing.T) {
	t.Run("text only", func(t *testing.T) {
		reply, err := fromModelMessage(ai.NewModelMessage(ai.NewTextPart("hello")))
		require.NoError(t, err)
		assert.Equal(t, "hello", reply.Text)
		assert.Empty(t, reply.ToolCalls)
	})

	t.Run("tool request", func(t *testing.T) {
		msg := ai.NewModelMessage(ai.NewToolRequestPart(&ai.ToolRequest{
			Ref:   "0",
			Name:  "search",
			Input: map[string]any{"query": "golang", "num_results": 3},
		}))
		reply, err := fromModelMessage(msg)
		require.NoError(t, err)
		require.Len(t, reply.ToolCalls, 1)
		assert.Equal(t, "0", reply.ToolCalls[0].ID)
		assert.Equal(t, "search", reply.ToolCalls[0].Name)
		assert.Equal(t, "golang", reply.ToolCalls[0].Arguments["query"])
	})

	t.Run("concatenates text parts", func(t *testing.T) {
		msg := ai.NewModelMessage(ai.NewTextPart("foo"), ai.NewTextPart("bar"))
		reply, err := fromModelMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, "foobar", reply.Text)
	})

	t.Run("nil message", func(t *testing.T) {
		_, err := fromModelMessage(nil)
		assert.Error(t, err)
	})

	t.Run("non-object tool arguments", func(t *testing.T) {
		msg := ai.NewModelMessage(ai.NewToolRequestPart(&ai.ToolRequest{
			Ref:   "0",
			Name:  "search",
			Input: "not an object",
		}))
		_, err := fromModelMessage(msg)
		assert.Error(t, err)
	})
}
