package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"askdata/internal/gateway/middleware"
	"askdata/internal/gateway/repository/archive"
	"askdata/internal/llm"
	"askdata/internal/pipeline"
	"askdata/internal/session"
)

const salesData = `{
	"overview": {"totalRows": 100, "totalColumns": 2, "columns": ["category", "sales"]},
	"statistics": {"sales": {"type": "numeric", "mean": 120, "min": 5, "max": 900}}
}`

type fixture struct {
	h     *Handler
	store *archive.MemoryStore
	fake  *llm.FakeClient
	srv   *httptest.Server
}

func newFixture(t *testing.T, policy session.Policy, opts ...llm.FakeOption) *fixture {
	t.Helper()
	fake := llm.NewFakeClient(opts...)
	reg, err := session.NewRegistry(policy, 16)
	require.NoError(t, err)
	store := archive.NewMemoryStore()

	h := New(pipeline.New(fake), reg, store, zerolog.Nop())
	n := 0
	h.newRunID = func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}

	mux := http.NewServeMux()
	mux.Handle(h.NewAnalyzeHandler())
	mux.HandleFunc("/api/chat", h.HandleChat)
	mux.HandleFunc("GET /api/runs/{runID}", h.HandleListRun)
	mux.HandleFunc("GET /api/runs/{runID}/{name}", h.HandleGetRunFile)
	mux.HandleFunc("GET /ws/analyze", h.HandleAnalyzeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &fixture{h: h, store: store, fake: fake, srv: srv}
}

func (f *fixture) postChat(t *testing.T, body, sessionID string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/chat", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleChatVisualization(t *testing.T) {
	f := newFixture(t, session.DefaultPolicy())
	resp := f.postChat(t, `{"message":"Show me a bar chart of sales by category","analysisData":`+salesData+`}`, "s1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "run-1", resp.Header.Get(middleware.RunIDHeader))

	body := decodeBody(t, resp)
	assert.Equal(t, "visualization", body["responseType"])
	assert.Equal(t, "Visualization Recommendations", body["title"])
	action := body["actionData"].(map[string]any)
	assert.Equal(t, []any{"bar", "line"}, action["suggestedCharts"])
	assert.Equal(t, []any{"category", "sales"}, action["dataColumns"])

	names, err := f.store.List(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{archive.PromptFile, archive.RequestFile, archive.ResponseFile}, names)
}

func TestHandleChatRejectsBadRequests(t *testing.T) {
	f := newFixture(t, session.DefaultPolicy())

	resp := f.postChat(t, `{"message":"   "}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Message is required", decodeBody(t, resp)["error"])

	resp = f.postChat(t, `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	get, err := f.srv.Client().Get(f.srv.URL + "/api/chat")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)

	assert.Empty(t, f.fake.Prompts())
}

func TestHandleChatSessionLimit(t *testing.T) {
	f := newFixture(t, session.Policy{MaxRequests: 1})

	assert.Equal(t, http.StatusOK, f.postChat(t, `{"message":"hello"}`, "a").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, f.postChat(t, `{"message":"hello"}`, "a").StatusCode)
	assert.Equal(t, http.StatusOK, f.postChat(t, `{"message":"hello"}`, "b").StatusCode)
}

func TestHandleChatGenerationError(t *testing.T) {
	f := newFixture(t, session.DefaultPolicy(),
		llm.FakeError(llm.NewGenerationError(llm.SafetyFiltered, "blocked", nil)))

	resp := f.postChat(t, `{"message":"hello"}`, "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, llm.UserMessage(llm.SafetyFiltered), body["error"])
	assert.Equal(t, "safety_filtered", body["kind"])
	assert.Contains(t, body["details"], "blocked")
}

func TestRunArchiveEndpoints(t *testing.T) {
	f := newFixture(t, session.DefaultPolicy())
	require.Equal(t, http.StatusOK, f.postChat(t, `{"message":"How many rows are there?"}`, "").StatusCode)

	resp, err := f.srv.Client().Get(f.srv.URL + "/api/runs/run-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody(t, resp)
	assert.Equal(t, "run-1", list["runId"])
	assert.Len(t, list["files"], 3)

	resp, err = f.srv.Client().Get(f.srv.URL + "/api/runs/run-1/" + archive.PromptFile)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	prompt, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, f.fake.Prompts()[0], string(prompt))

	resp, err = f.srv.Client().Get(f.srv.URL + "/api/runs/run-1/missing.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = f.srv.Client().Get(f.srv.URL + "/api/runs/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func dialWS(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/analyze"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrames(t *testing.T, conn *websocket.Conn) []analyzeWSOutbound {
	t.Helper()
	var frames []analyzeWSOutbound
	for {
		var out analyzeWSOutbound
		if err := conn.ReadJSON(&out); err != nil {
			return frames
		}
		frames = append(frames, out)
		if out.Type == "result" || out.Type == "error" {
			return frames
		}
	}
}

func TestAnalyzeWSStreamsStagesThenResult(t *testing.T) {
	f := newFixture(t, session.DefaultPolicy())
	conn := dialWS(t, f)
	require.NoError(t, conn.WriteJSON(ChatRequest{
		Message:      "Create a presentation about sales",
		AnalysisData: json.RawMessage(salesData),
	}))

	frames := readFrames(t, conn)
	require.NotEmpty(t, frames)
	var stages []pipeline.Stage
	for _, fr := range frames[:len(frames)-1] {
		assert.Equal(t, "stage", fr.Type)
		stages = append(stages, fr.Stage)
	}
	assert.Equal(t, []pipeline.Stage{
		pipeline.StageClassify, pipeline.StageCompose, pipeline.StageGenerate,
		pipeline.StageExtract, pipeline.StageAssemble, pipeline.StageDone,
	}, stages)

	last := frames[len(frames)-1]
	require.Equal(t, "result", last.Type)
	assert.Equal(t, "run-1", last.RunID)
	require.NotNil(t, last.Response)
	require.NotNil(t, last.Response.Presentation)
	assert.NotEmpty(t, last.Response.Presentation.Slides)
}

func TestAnalyzeWSReportsErrors(t *testing.T) {
	f := newFixture(t, session.DefaultPolicy())
	conn := dialWS(t, f)
	require.NoError(t, conn.WriteJSON(ChatRequest{Message: " "}))

	frames := readFrames(t, conn)
	require.Len(t, frames, 1)
	assert.Equal(t, "error", frames[0].Type)
	assert.Equal(t, "invalid_argument", frames[0].Code)
}

func newRPCClient(f *fixture) *connect.Client[structpb.Struct, structpb.Struct] {
	return connect.NewClient[structpb.Struct, structpb.Struct](f.srv.Client(), f.srv.URL+AnalyzeProcedure)
}

func TestAnalyzeRPC(t *testing.T) {
	f := newFixture(t, session.DefaultPolicy())
	msg, err := structpb.NewStruct(map[string]any{
		"message": "Show me a bar chart of sales by category",
		"analysisData": map[string]any{
			"overview": map[string]any{"totalRows": 100, "totalColumns": 2, "columns": []any{"category", "sales"}},
		},
	})
	require.NoError(t, err)

	resp, err := newRPCClient(f).CallUnary(context.Background(), connect.NewRequest(msg))
	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.Header().Get(middleware.RunIDHeader))
	fields := resp.Msg.GetFields()
	assert.Equal(t, "visualization", fields["responseType"].GetStringValue())
	cols := fields["actionData"].GetStructValue().GetFields()["dataColumns"].GetListValue().AsSlice()
	assert.Equal(t, []any{"category", "sales"}, cols)
}

func TestAnalyzeRPCErrorCodes(t *testing.T) {
	f := newFixture(t, session.DefaultPolicy())
	empty, err := structpb.NewStruct(map[string]any{"message": ""})
	require.NoError(t, err)
	_, err = newRPCClient(f).CallUnary(context.Background(), connect.NewRequest(empty))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	cases := []struct {
		kind llm.Kind
		code connect.Code
	}{
		{llm.InvalidCredential, connect.CodeUnauthenticated},
		{llm.QuotaExceeded, connect.CodeResourceExhausted},
		{llm.SafetyFiltered, connect.CodeFailedPrecondition},
		{llm.Generic, connect.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			f := newFixture(t, session.DefaultPolicy(), llm.FakeError(llm.NewGenerationError(tc.kind, "boom", nil)))
			msg, err := structpb.NewStruct(map[string]any{"message": "hello"})
			require.NoError(t, err)

			_, err = newRPCClient(f).CallUnary(context.Background(), connect.NewRequest(msg))
			require.Error(t, err)
			assert.Equal(t, tc.code, connect.CodeOf(err))

			var ce *connect.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, string(tc.kind), ce.Meta().Get(ErrorKindKey))
			assert.Equal(t, llm.UserMessage(tc.kind), ce.Message())
		})
	}
}

func TestAnalyzeRPCSessionLimit(t *testing.T) {
	f := newFixture(t, session.Policy{MaxRequests: 1})
	msg, err := structpb.NewStruct(map[string]any{"message": "hello"})
	require.NoError(t, err)

	client := newRPCClient(f)
	_, err = client.CallUnary(context.Background(), connect.NewRequest(msg))
	require.NoError(t, err)
	_, err = client.CallUnary(context.Background(), connect.NewRequest(msg))
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))
}
