package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"askdata/internal/gateway/middleware"
	"askdata/internal/llm"
	"askdata/internal/session"
)

// AnalyzeProcedure is the Connect route of the analytics RPC.
const AnalyzeProcedure = "/askdata.v1.AnalyticsService/Analyze"

// ErrorKindKey carries the GenerationError kind in Connect error metadata.
const ErrorKindKey = "X-Error-Kind"

// NewAnalyzeHandler returns the Connect route and handler for Analyze.
func (h *Handler) NewAnalyzeHandler(opts ...connect.HandlerOption) (string, http.Handler) {
	return AnalyzeProcedure, connect.NewUnaryHandler(AnalyzeProcedure, h.Analyze, opts...)
}

// Analyze accepts a Struct with the same fields as the JSON chat body and
// returns the response payload as a Struct.
func (h *Handler) Analyze(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	in, err := chatRequestFromStruct(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	runID, res, err := h.analyze(ctx, rpcSessionID(req), in, nil)
	if err != nil {
		return nil, connectError(err)
	}

	body, err := json.Marshal(res.Response)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	resp := connect.NewResponse(out)
	resp.Header().Set(middleware.RunIDHeader, runID)
	return resp, nil
}

func chatRequestFromStruct(s *structpb.Struct) (ChatRequest, error) {
	var in ChatRequest
	if s == nil {
		return in, errMissingMessage
	}
	fields := s.GetFields()
	if v, ok := fields["message"]; ok {
		in.Message = v.GetStringValue()
	}
	if v, ok := fields["analysisData"]; ok {
		raw, err := json.Marshal(v.AsInterface())
		if err != nil {
			return in, fmt.Errorf("analysisData: %w", err)
		}
		in.AnalysisData = raw
	}
	if strings.TrimSpace(in.Message) == "" {
		return in, errMissingMessage
	}
	return in, nil
}

func rpcSessionID(req connect.AnyRequest) string {
	if id := strings.TrimSpace(req.Header().Get(middleware.SessionHeader)); id != "" {
		return id
	}
	addr := req.Peer().Addr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func connectError(err error) *connect.Error {
	if errors.Is(err, errMissingMessage) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	if errors.Is(err, session.ErrLimitReached) {
		return connect.NewError(connect.CodeResourceExhausted, err)
	}
	ge := llm.AsGenerationError(err)
	code := connect.CodeInternal
	switch ge.Kind {
	case llm.InvalidCredential:
		code = connect.CodeUnauthenticated
	case llm.QuotaExceeded:
		code = connect.CodeResourceExhausted
	case llm.SafetyFiltered:
		code = connect.CodeFailedPrecondition
	}
	ce := connect.NewError(code, errors.New(ge.UserMessage()))
	ce.Meta().Set(ErrorKindKey, string(ge.Kind))
	return ce
}
