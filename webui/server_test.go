package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finreport_backend/core"
	"finreport_backend/metrics"
	"finreport_backend/report"
	"finreport_backend/shutdown"
)

// fakeRunner is a Runner returning a canned result or error.
type fakeRunner struct {
	result *report.RunResult
	err    error
	calls  int
	kind   report.Kind
}

func (f *fakeRunner) Run(ctx context.Context, path string, kind report.Kind) (*report.RunResult, error) {
	f.calls++
	f.kind = kind
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func summaryResult() *report.RunResult {
	return &report.RunResult{
		Kind:           report.KindSummary,
		Text:           "A solid quarter with **growing** revenue.",
		DocHash:        "abc123",
		TotalChunks:    2,
		ProcessingTime: 3 * time.Second,
		Extraction:     &report.ExtractionResult{Reader: "ledongthuc", PagesRead: 10},
		Analysis:       &report.AnalysisResult{LLMCalls: 3, FailedChunks: 0},
	}
}

func newTestServer(t *testing.T, runner Runner, auth *TokenAuth) *Server {
	t.Helper()

	store := metrics.NewStore(metrics.DefaultStoreConfig(), time.Now())
	server, err := NewServer(DefaultServerConfig(), runner, store, nil, auth, nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return server
}

// multipartUpload builds a multipart request body with a PDF file and kind.
func multipartUpload(t *testing.T, filename, kind string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte("%PDF-1.4 fake document bytes"))
	if kind != "" {
		writer.WriteField("kind", kind)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func postAnalyze(t *testing.T, server *Server, filename, kind string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartUpload(t, filename, kind)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Analyze(t *testing.T) {
	runner := &fakeRunner{result: summaryResult()}
	server := newTestServer(t, runner, nil)

	rec := postAnalyze(t, server, "report.pdf", "summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Kind != "summary" {
		t.Errorf("Kind = %q", resp.Kind)
	}
	if resp.Result != "A solid quarter with **growing** revenue." {
		t.Errorf("Result = %q", resp.Result)
	}
	if resp.HTML == "" {
		t.Error("HTML missing for summary output")
	}
	if resp.Chunks != 2 || resp.LLMCalls != 3 {
		t.Errorf("Chunks/LLMCalls = %d/%d", resp.Chunks, resp.LLMCalls)
	}
	if resp.Reader != "ledongthuc" {
		t.Errorf("Reader = %q", resp.Reader)
	}
	if runner.kind != report.KindSummary {
		t.Errorf("runner received kind %q", runner.kind)
	}
}

func TestServer_AnalyzeDefaultsToSummary(t *testing.T) {
	runner := &fakeRunner{result: summaryResult()}
	server := newTestServer(t, runner, nil)

	rec := postAnalyze(t, server, "report.pdf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if runner.kind != report.KindSummary {
		t.Errorf("runner received kind %q, want summary default", runner.kind)
	}
}

func TestServer_AnalyzeRejectsBadKind(t *testing.T) {
	runner := &fakeRunner{result: summaryResult()}
	server := newTestServer(t, runner, nil)

	rec := postAnalyze(t, server, "report.pdf", "poetry")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times for invalid kind", runner.calls)
	}
}

func TestServer_AnalyzeRejectsNonPDF(t *testing.T) {
	runner := &fakeRunner{result: summaryResult()}
	server := newTestServer(t, runner, nil)

	rec := postAnalyze(t, server, "report.docx", "summary")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServer_AnalyzeRejectsGet(t *testing.T) {
	server := newTestServer(t, &fakeRunner{result: summaryResult()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestServer_AnalyzeExtractionFailure(t *testing.T) {
	runner := &fakeRunner{err: core.ErrExtractionFailed}
	server := newTestServer(t, runner, nil)

	rec := postAnalyze(t, server, "report.pdf", "summary")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for unreadable documents", rec.Code)
	}
}

func TestServer_AnalyzeRejectedDuringShutdown(t *testing.T) {
	runner := &fakeRunner{err: shutdown.ErrTrackerClosed}
	server := newTestServer(t, runner, nil)

	rec := postAnalyze(t, server, "report.pdf", "summary")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 during shutdown", rec.Code)
	}
}

func TestServer_AnalyzeInternalFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	server := newTestServer(t, runner, nil)

	rec := postAnalyze(t, server, "report.pdf", "summary")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestServer_AnalyzeMetricsRows(t *testing.T) {
	result := summaryResult()
	result.Kind = report.KindMetrics
	result.Text = "Metric,Current Period,Previous Period,Change\nRevenue,$5M,$4M,+25%"
	result.MetricsRows = []report.MetricsRow{
		{Metric: "Revenue", CurrentPeriod: "$5M", PreviousPeriod: "$4M", Change: "+25%"},
	}
	server := newTestServer(t, &fakeRunner{result: result}, nil)

	rec := postAnalyze(t, server, "report.pdf", "metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp AnalyzeResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.MetricsRows) != 1 {
		t.Fatalf("MetricsRows = %d, want 1", len(resp.MetricsRows))
	}
	if resp.HTML != "" {
		t.Error("HTML should be empty when metrics parsed into rows")
	}
}

func TestServer_Health(t *testing.T) {
	server := newTestServer(t, &fakeRunner{result: summaryResult()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Status != metrics.SystemHealthRunning {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestServer_StatsAfterRuns(t *testing.T) {
	runner := &fakeRunner{result: summaryResult()}
	server := newTestServer(t, runner, nil)

	if rec := postAnalyze(t, server, "report.pdf", "summary"); rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Runs.TotalRuns != 1 || resp.Runs.TotalSuccess != 1 {
		t.Errorf("runs = %+v", resp.Runs)
	}
	if len(resp.RecentRuns) != 1 {
		t.Errorf("RecentRuns = %d, want 1", len(resp.RecentRuns))
	}
	if resp.RecentRuns[0].Kind != "summary" {
		t.Errorf("recent run kind = %q", resp.RecentRuns[0].Kind)
	}
}

func TestServer_RootServesUI(t *testing.T) {
	server := newTestServer(t, &fakeRunner{result: summaryResult()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("FinReport")) {
		t.Error("root page missing UI content")
	}

	// Unknown paths 404.
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestServer_CorrelationIDHeader(t *testing.T) {
	server := newTestServer(t, &fakeRunner{result: summaryResult()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if id := rec.Header().Get(RequestIDHeader); len(id) != 8 {
		t.Errorf("%s = %q, want 8-char correlation ID", RequestIDHeader, id)
	}
}

func TestServer_AuthProtectsAnalyze(t *testing.T) {
	auth, err := NewTokenAuth("secret-token")
	if err != nil {
		t.Fatalf("NewTokenAuth() error = %v", err)
	}
	server := newTestServer(t, &fakeRunner{result: summaryResult()}, auth)

	// Without a token: 401.
	body, contentType := multipartUpload(t, "report.pdf", "summary")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", rec.Code)
	}

	// With the token: 200.
	body, contentType = multipartUpload(t, "report.pdf", "summary")
	req = httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with token = %d, want 200", rec.Code)
	}

	// Health stays open.
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200 without auth", rec.Code)
	}
}
