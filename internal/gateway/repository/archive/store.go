// Package archive persists the files of each pipeline run (request, prompt,
// response) under a run id.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store defines operations for persisting run files.
type Store interface {
	Put(ctx context.Context, runID, name string, content []byte) error
	Get(ctx context.Context, runID, name string) ([]byte, error)
	GetURL(ctx context.Context, runID, name string) (string, error)
	List(ctx context.Context, runID string) ([]string, error)
}

var ErrNotFound = errors.New("archive file not found")

// Standard file names written for every run.
const (
	RequestFile  = "request.json"
	PromptFile   = "prompt.txt"
	ResponseFile = "response.json"
)

func validate(runID, name string) (string, string, error) {
	runID = strings.TrimSpace(runID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if runID == "" {
		return "", "", fmt.Errorf("run_id is required")
	}
	if name == "" {
		return "", "", fmt.Errorf("name is required")
	}
	return runID, name, nil
}

func objectKey(runID, name string) string {
	return runID + "/" + name
}
