package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"askdata/internal/gateway/middleware"
	"askdata/internal/llm"
	"askdata/internal/session"
)

type errorBody struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Kind    llm.Kind `json:"kind,omitempty"`
}

// HandleChat serves POST /api/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}
	var in ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body", Details: err.Error()})
		return
	}

	runID, res, err := h.analyze(r.Context(), middleware.SessionID(r), in, nil)
	if err != nil {
		status, body := chatError(err)
		writeJSON(w, status, body)
		return
	}
	w.Header().Set(middleware.RunIDHeader, runID)
	writeJSON(w, http.StatusOK, res.Response)
}

func chatError(err error) (int, errorBody) {
	if errors.Is(err, errMissingMessage) {
		return http.StatusBadRequest, errorBody{Error: "Message is required"}
	}
	if errors.Is(err, session.ErrLimitReached) {
		return http.StatusTooManyRequests, errorBody{Error: "Request limit reached for this session."}
	}
	ge := llm.AsGenerationError(err)
	return http.StatusInternalServerError, errorBody{
		Error:   ge.UserMessage(),
		Details: ge.Error(),
		Kind:    ge.Kind,
	}
}
