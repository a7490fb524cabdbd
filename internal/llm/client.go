// Package llm adapts the transcript model to the Genkit generation API.
// It exposes two narrow clients: Chat, which replies to a full transcript,
// and Completion, which answers a single freestanding prompt.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/mosscap/mosscap/internal/transcript"
)

// Options control generation behavior shared by both clients.
type Options struct {
	// Model is the fully qualified model name, e.g. "googleai/gemini-2.0-flash".
	Model string
	// Temperature is passed through to the provider when positive.
	Temperature float64
	// MaxTokens caps the response length when positive.
	MaxTokens int
}

func (o Options) generateOpts() []ai.GenerateOption {
	opts := []ai.GenerateOption{ai.WithModelName(o.Model)}
	cfg := map[string]any{}
	if o.Temperature > 0 {
		cfg["temperature"] = o.Temperature
	}
	if o.MaxTokens > 0 {
		cfg["maxOutputTokens"] = o.MaxTokens
	}
	if len(cfg) > 0 {
		opts = append(opts, ai.WithConfig(cfg))
	}
	return opts
}

// Chat generates assistant replies for an in-progress conversation.
type Chat struct {
	g      *genkit.Genkit
	opts   Options
	logger *slog.Logger
}

// NewChat creates a chat client bound to an initialized Genkit instance.
func NewChat(g *genkit.Genkit, opts Options, logger *slog.Logger) (*Chat, error) {
	if g == nil {
		return nil, fmt.Errorf("llm: genkit instance is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("llm: model name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{g: g, opts: opts, logger: logger.With("component", "llm.chat")}, nil
}

// Complete sends the transcript to the model and returns its reply. The
// reply may carry tool calls the caller must resolve before the next turn.
// Exactly one request is made; failures are returned without retry.
func (c *Chat) Complete(ctx context.Context, t *transcript.Transcript) (transcript.AssistantMessage, error) {
	msgs, err := toModelMessages(t)
	if err != nil {
		return transcript.AssistantMessage{}, err
	}

	opts := c.opts.generateOpts()
	if sys := t.System().Text; sys != "" {
		opts = append(opts, ai.WithSystem(sys))
	}
	opts = append(opts, ai.WithMessages(msgs...))

	resp, err := genkit.Generate(ctx, c.g, opts...)
	if err != nil {
		return transcript.AssistantMessage{}, fmt.Errorf("llm: chat completion: %w", err)
	}

	reply, err := fromModelMessage(resp.Message)
	if err != nil {
		return transcript.AssistantMessage{}, err
	}
	c.logger.Debug("chat completion finished",
		"messages", len(msgs),
		"tool_calls", len(reply.ToolCalls),
	)
	return reply, nil
}

// Completion answers single-shot prompts with no conversation state. The
// orchestrator uses it for intent classification, query extraction, and
// summaries.
type Completion struct {
	g      *genkit.Genkit
	opts   Options
	logger *slog.Logger
}

// NewCompletion creates a completion client bound to an initialized Genkit
// instance.
func NewCompletion(g *genkit.Genkit, opts Options, logger *slog.Logger) (*Completion, error) {
	if g == nil {
		return nil, fmt.Errorf("llm: genkit instance is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("llm: model name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Completion{g: g, opts: opts, logger: logger.With("component", "llm.completion")}, nil
}

// Generate returns the model's text answer for prompt, trimmed of
// surrounding whitespace.
func (c *Completion) Generate(ctx context.Context, prompt string) (string, error) {
	opts := append(c.opts.generateOpts(), ai.WithPrompt(prompt))
	text, err := genkit.GenerateText(ctx, c.g, opts...)
	if err != nil {
		return "", fmt.Errorf("llm: completion: %w", err)
	}
	return strings.TrimSpace(text), nil
}
