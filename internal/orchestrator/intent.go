package orchestrator

import (
	"context"
	"log/slog"
	"strings"
)

// Classifier decides whether a user utterance needs a web search before the
// model can answer it.
type Classifier struct {
	completion CompletionModel
	logger     *slog.Logger
}

// NewClassifier creates a classifier backed by the given completion model.
func NewClassifier(completion CompletionModel, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{completion: completion, logger: logger.With("component", "intent")}
}

// NeedsSearch returns true only when the model answers the literal token
// "True". Any other answer, including hedged or malformed output, means no
// search. Transport errors are returned to the caller.
func (c *Classifier) NeedsSearch(ctx context.Context, input string) (bool, error) {
	out, err := c.completion.Generate(ctx, intentPrompt(input))
	if err != nil {
		return false, err
	}
	verdict := strings.TrimSpace(out)
	c.logger.Debug("intent classified", "verdict", verdict)
	return verdict == "True", nil
}
