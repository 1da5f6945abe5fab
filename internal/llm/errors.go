package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	genai "google.golang.org/genai"
)

// Kind classifies why generation failed. Callers branch on it to pick a
// user-facing message and a transport status.
type Kind string

const (
	InvalidCredential Kind = "invalid_credential"
	QuotaExceeded     Kind = "quota_exceeded"
	SafetyFiltered    Kind = "safety_filtered"
	Generic           Kind = "generic"
)

// GenerationError is the only error the analytics pipeline surfaces.
type GenerationError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, msg)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Permanent reports whether retrying the same request can succeed.
func (e *GenerationError) Permanent() bool {
	switch e.Kind {
	case InvalidCredential, QuotaExceeded, SafetyFiltered:
		return true
	}
	return errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded)
}

// UserMessage is the text shown to end users for this failure kind.
func (e *GenerationError) UserMessage() string {
	return UserMessage(e.Kind)
}

func UserMessage(k Kind) string {
	switch k {
	case InvalidCredential:
		return "The AI service is not configured correctly. Please contact support."
	case QuotaExceeded:
		return "The AI service has reached its usage limit. Please try again later."
	case SafetyFiltered:
		return "The request was blocked by content safety filters. Please rephrase your question."
	default:
		return "Failed to generate a response. Please try again."
	}
}

func NewGenerationError(kind Kind, msg string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Message: msg, Err: err}
}

// AsGenerationError normalizes any error from a Client into a
// GenerationError. Provider errors are classified by status and message.
func AsGenerationError(err error) *GenerationError {
	if err == nil {
		return nil
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}
	return &GenerationError{Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	if code, status, ok := apiStatus(err); ok {
		switch {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return InvalidCredential
		case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
			return QuotaExceeded
		case status == "PERMISSION_DENIED" || status == "UNAUTHENTICATED":
			return InvalidCredential
		}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key not valid"), strings.Contains(msg, "api_key_invalid"),
		strings.Contains(msg, "invalid api key"):
		return InvalidCredential
	case strings.Contains(msg, "quota"), strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "resource_exhausted"):
		return QuotaExceeded
	case strings.Contains(msg, "safety"), strings.Contains(msg, "blocked"):
		return SafetyFiltered
	}
	return Generic
}

func apiStatus(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}
