package handler

import (
	"errors"
	"net/http"
	"strings"

	"askdata/internal/gateway/repository/archive"
)

type runFiles struct {
	RunID string            `json:"runId"`
	Files []string          `json:"files"`
	URLs  map[string]string `json:"urls,omitempty"`
}

// HandleListRun serves GET /api/runs/{runID}.
func (h *Handler) HandleListRun(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(r.PathValue("runID"))
	names, err := h.store.List(r.Context(), runID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "list run files", Details: err.Error()})
		return
	}
	if len(names) == 0 {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "run not found"})
		return
	}
	out := runFiles{RunID: runID, Files: names}
	for _, name := range names {
		u, err := h.store.GetURL(r.Context(), runID, name)
		if err != nil || u == "" {
			continue
		}
		if out.URLs == nil {
			out.URLs = map[string]string{}
		}
		out.URLs[name] = u
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetRunFile serves GET /api/runs/{runID}/{name}.
func (h *Handler) HandleGetRunFile(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")
	name := r.PathValue("name")
	body, err := h.store.Get(r.Context(), runID, name)
	if errors.Is(err, archive.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "file not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "read run file", Details: err.Error()})
		return
	}
	w.Header().Set("Content-Type", archive.ContentType(name))
	_, _ = w.Write(body)
}
