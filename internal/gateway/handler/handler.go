package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"askdata/internal/dataset"
	"askdata/internal/gateway/repository/archive"
	"askdata/internal/pipeline"
	"askdata/internal/session"
	"askdata/internal/util/jsonutil"
)

var errMissingMessage = errors.New("message is required")

// ChatRequest is the body accepted by every analyze surface.
type ChatRequest struct {
	Message      string          `json:"message"`
	AnalysisData json.RawMessage `json:"analysisData,omitempty"`
}

// Handler serves the chat, run archive, websocket and RPC endpoints on top of
// one pipeline.
type Handler struct {
	pipeline *pipeline.Pipeline
	sessions *session.Registry
	store    archive.Store
	log      zerolog.Logger
	newRunID func() string
}

func New(p *pipeline.Pipeline, sessions *session.Registry, store archive.Store, log zerolog.Logger) *Handler {
	if store == nil {
		store = archive.NewMemoryStore()
	}
	return &Handler{
		pipeline: p,
		sessions: sessions,
		store:    store,
		log:      log.With().Str("component", "handler").Logger(),
		newRunID: uuid.NewString,
	}
}

// analyze runs one request for sessionID and archives its files. The run id
// is returned even when archiving fails.
func (h *Handler) analyze(ctx context.Context, sessionID string, req ChatRequest, obs pipeline.Observer) (string, *pipeline.Result, error) {
	query := strings.TrimSpace(req.Message)
	if query == "" {
		return "", nil, errMissingMessage
	}
	profile, notes := dataset.Decode(req.AnalysisData)

	res, err := h.pipeline.Run(ctx, pipeline.Request{
		Query:    query,
		Profile:  profile,
		Notes:    notes,
		Counter:  h.sessions.Counter(sessionID),
		Observer: obs,
	})
	if err != nil {
		return "", nil, err
	}

	runID := h.newRunID()
	h.archiveRun(context.WithoutCancel(ctx), runID, req, res)
	return runID, res, nil
}

func (h *Handler) archiveRun(ctx context.Context, runID string, req ChatRequest, res *pipeline.Result) {
	reqBody, err := jsonutil.MarshalIndentNoEscape(req)
	if err != nil {
		h.log.Warn().Err(err).Str("run_id", runID).Msg("encode request for archive")
		return
	}
	respBody, err := jsonutil.MarshalIndentNoEscape(res.Response)
	if err != nil {
		h.log.Warn().Err(err).Str("run_id", runID).Msg("encode response for archive")
		return
	}
	files := []struct {
		name string
		body []byte
	}{
		{archive.RequestFile, reqBody},
		{archive.PromptFile, []byte(res.Prompt)},
		{archive.ResponseFile, respBody},
	}
	for _, f := range files {
		if err := h.store.Put(ctx, runID, f.name, f.body); err != nil {
			h.log.Warn().Err(err).Str("run_id", runID).Str("file", f.name).Msg("archive run file")
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
