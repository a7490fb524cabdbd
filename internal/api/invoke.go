package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mosscap/mosscap/internal/orchestrator"
)

// turnFailedMessage is the client-facing text for any turn failure; the
// underlying error stays in the logs.
const turnFailedMessage = "An error occurred while processing the request. Please try again later."

const maxInvokeBodyBytes = 1 << 20

// TurnRunner executes one conversation turn. Implemented by
// orchestrator.Service.
type TurnRunner interface {
	Run(ctx context.Context, userID, sessionID, userInput string) (string, error)
}

type invokeHandler struct {
	runner TurnRunner
	logger *slog.Logger
}

type invokeRequest struct {
	UserInput string `json:"user_input"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type invokeResponse struct {
	Response  string `json:"response"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// invoke handles POST /api/v1/invoke. Missing user_id and session_id fall
// back to the shared defaults; a blank user_input is rejected before any
// model or storage work happens.
func (h *invokeHandler) invoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxInvokeBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON", h.logger)
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = orchestrator.DefaultUserID
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = orchestrator.DefaultSessionID
	}

	reply, err := h.runner.Run(r.Context(), userID, sessionID, req.UserInput)
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyInput) {
			WriteError(w, http.StatusBadRequest, "empty_input", "user_input cannot be empty", h.logger)
			return
		}
		h.logger.Error("invoke failed",
			"user_id", userID,
			"session_id", sessionID,
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		WriteError(w, http.StatusBadGateway, "turn_failed", turnFailedMessage, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, invokeResponse{
		Response:  reply,
		UserID:    userID,
		SessionID: sessionID,
	}, h.logger)
}
