// Package orchestrator runs conversation turns: it routes a user utterance
// through optional web search, asks the chat model for a reply, and
// persists the updated transcript on a best-effort basis.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mosscap/mosscap/internal/transcript"
)

// Default identifiers applied when a caller omits them.
const (
	DefaultUserID    = "default_user"
	DefaultSessionID = "default_session"
)

// Search tool-call protocol. Each turn performs at most one search, so the
// call id is a fixed literal.
const (
	toolCallID    = "0"
	toolName      = "search"
	searchResults = 3

	// The save and the optional summary run on separate deadlines. A slow
	// summary must never consume the upsert's budget.
	saveGracePeriod    = 5 * time.Second
	summaryGracePeriod = 5 * time.Second
)

// ErrEmptyInput reports a blank user utterance.
var ErrEmptyInput = errors.New("orchestrator: user input is empty")

// ErrTurn wraps any backend failure that aborts a turn. The partial
// transcript reached before the failure is still persisted.
var ErrTurn = errors.New("orchestrator: turn execution failed")

// ChatModel produces assistant replies for a transcript.
type ChatModel interface {
	Complete(ctx context.Context, t *transcript.Transcript) (transcript.AssistantMessage, error)
}

// CompletionModel answers single freestanding prompts.
type CompletionModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Searcher returns result snippets for a query.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]string, error)
}

// HistoryStore loads and saves conversation records. Both operations are
// best-effort: Load returns nil on any failure and Save never reports one.
type HistoryStore interface {
	Load(ctx context.Context, userID, sessionID string) *transcript.Record
	Save(ctx context.Context, rec *transcript.Record)
}

// Options configure a Service.
type Options struct {
	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string
	// Summarize generates a conversation summary before each save.
	Summarize bool
}

// Service runs conversation turns. Safe for concurrent use; concurrent
// turns on the same session resolve last-write-wins at the store.
type Service struct {
	chat       ChatModel
	completion CompletionModel
	classifier *Classifier
	search     Searcher
	store      HistoryStore
	opts       Options
	logger     *slog.Logger

	// now is replaceable in tests for deterministic query prompts.
	now func() time.Time
}

// New creates a Service. All dependencies are required.
func New(chat ChatModel, completion CompletionModel, search Searcher, store HistoryStore, opts Options, logger *slog.Logger) (*Service, error) {
	if chat == nil || completion == nil || search == nil || store == nil {
		return nil, fmt.Errorf("orchestrator: chat, completion, search and store are all required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return &Service{
		chat:       chat,
		completion: completion,
		classifier: NewClassifier(completion, logger),
		search:     search,
		store:      store,
		opts:       opts,
		logger:     logger.With("component", "orchestrator"),
		now:        time.Now,
	}, nil
}

// Run executes one conversation turn and returns the assistant's reply.
//
// The stored transcript is loaded first; if that fails for any reason the
// turn proceeds on a fresh transcript. Whatever state the turn reaches,
// including partial state after a mid-turn failure, is saved before Run
// returns. A failed save is logged by the store and never fails the turn.
func (s *Service) Run(ctx context.Context, userID, sessionID, userInput string) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", ErrEmptyInput
	}
	if userID == "" {
		userID = DefaultUserID
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	t := s.load(ctx, userID, sessionID)
	defer s.save(ctx, userID, sessionID, t)

	reply, err := s.invoke(ctx, t, userInput)
	if err != nil {
		s.logger.Error("turn failed",
			"user_id", userID, "session_id", sessionID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrTurn, err)
	}
	return reply, nil
}

// invoke advances the transcript by one turn. Every external call is made
// at most once; there are no retries.
func (s *Service) invoke(ctx context.Context, t *transcript.Transcript, userInput string) (string, error) {
	needsSearch, err := s.classifier.NeedsSearch(ctx, userInput)
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}

	if needsSearch {
		if err := s.searchTurn(ctx, t, userInput); err != nil {
			return "", err
		}
	} else {
		t.AppendUser(userInput)
	}

	reply, err := s.chat.Complete(ctx, t)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	t.AppendAssistant(reply)
	return reply.Text, nil
}

// searchTurn records the user message, a synthetic search tool call, and
// its result on the transcript.
func (s *Service) searchTurn(ctx context.Context, t *transcript.Transcript, userInput string) error {
	query, err := s.completion.Generate(ctx, queryPrompt(s.now(), t.RenderText(), userInput))
	if err != nil {
		return fmt.Errorf("create search query: %w", err)
	}
	query = strings.TrimSpace(strings.ReplaceAll(query, `"`, ""))

	t.AppendUser(userInput)
	t.AppendAssistant(transcript.AssistantMessage{
		ToolCalls: []transcript.ToolCall{{
			ID:   toolCallID,
			Name: toolName,
			Arguments: map[string]any{
				"query":       query,
				"num_results": searchResults,
			},
		}},
	})

	snippets, err := s.search.Search(ctx, query, searchResults)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}
	result := strings.TrimSpace(stripBrackets(strings.Join(snippets, ", ")))
	if err := t.AppendTool(result, toolCallID); err != nil {
		return fmt.Errorf("record search result: %w", err)
	}

	s.logger.Debug("search completed", "query", query, "snippets", len(snippets))
	return nil
}

// load returns the stored transcript for the session, or a fresh one when
// nothing usable is stored.
func (s *Service) load(ctx context.Context, userID, sessionID string) *transcript.Transcript {
	rec := s.store.Load(ctx, userID, sessionID)
	if rec == nil {
		return transcript.New(s.opts.SystemPrompt)
	}
	t, err := rec.Transcript(s.opts.SystemPrompt)
	if err != nil {
		s.logger.Warn("stored conversation unusable, starting fresh",
			"user_id", userID, "session_id", sessionID, "error", err)
		return transcript.New(s.opts.SystemPrompt)
	}
	return t
}

// save persists the transcript unconditionally, detached from the request
// context so a canceled turn can still be recorded.
func (s *Service) save(ctx context.Context, userID, sessionID string, t *transcript.Transcript) {
	base := context.WithoutCancel(ctx)

	summaryCtx, cancelSummary := context.WithTimeout(base, summaryGracePeriod)
	summary := s.summarize(summaryCtx, t)
	cancelSummary()

	saveCtx, cancel := context.WithTimeout(base, saveGracePeriod)
	defer cancel()
	s.store.Save(saveCtx, transcript.NewRecord(userID, sessionID, t, summary))
}

// summarize produces the record summary. Failures degrade to an empty
// summary so they can never block the save.
func (s *Service) summarize(ctx context.Context, t *transcript.Transcript) string {
	if !s.opts.Summarize || t.Len() == 0 {
		return ""
	}
	summary, err := s.completion.Generate(ctx, summaryPrompt(t.RenderText()))
	if err != nil {
		s.logger.Warn("summary generation failed, saving without summary", "error", err)
		return ""
	}
	return summary
}

func stripBrackets(s string) string {
	s = strings.ReplaceAll(s, "[", "")
	return strings.ReplaceAll(s, "]", "")
}
