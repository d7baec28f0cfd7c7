// analyze_handler.go implements the analyze endpoint: it accepts a PDF
// upload, runs the analysis pipeline, and returns the result as JSON
// with rendered HTML for the UI.
package webui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"finreport_backend/core"
	"finreport_backend/metrics"
	"finreport_backend/report"
	"finreport_backend/shutdown"
)

// Runner is the pipeline capability the handler depends on. The report
// package's Processor implements it.
type Runner interface {
	Run(ctx context.Context, path string, kind report.Kind) (*report.RunResult, error)
}

// AnalyzeResponse is the JSON body returned by the analyze endpoint.
type AnalyzeResponse struct {
	// Kind is the analysis kind that ran
	Kind string `json:"kind"`

	// Result is the final analysis text
	Result string `json:"result"`

	// HTML is the Markdown-rendered result for display; empty for
	// metrics output that parsed into rows
	HTML string `json:"html,omitempty"`

	// MetricsRows holds parsed metric rows for metrics runs
	MetricsRows []report.MetricsRow `json:"metrics_rows,omitempty"`

	// Chunks is the number of chunks analyzed
	Chunks int `json:"chunks"`

	// LLMCalls is the number of completion calls issued
	LLMCalls int `json:"llm_calls"`

	// FailedChunks is the number of degraded chunk calls
	FailedChunks int `json:"failed_chunks"`

	// Truncated is true when the document was cut to fit budgets
	Truncated bool `json:"truncated"`

	// Cached is true when the result was served from the cache
	Cached bool `json:"cached"`

	// Reader names the PDF reader that extracted the text
	Reader string `json:"reader,omitempty"`

	// DocHash is the sha256 of the uploaded document
	DocHash string `json:"doc_hash"`

	// DurationMS is the total processing time in milliseconds
	DurationMS int64 `json:"duration_ms"`
}

// AnalyzeHandlerConfig configures the analyze handler.
type AnalyzeHandlerConfig struct {
	// MaxUploadBytes caps the upload size. Default 50 MiB.
	MaxUploadBytes int64

	// UploadDir is where uploads are spooled. Empty uses os.TempDir.
	UploadDir string
}

// DefaultAnalyzeHandlerConfig returns sensible defaults.
func DefaultAnalyzeHandlerConfig() AnalyzeHandlerConfig {
	return AnalyzeHandlerConfig{
		MaxUploadBytes: core.DefaultMaxFileSize,
	}
}

// AnalyzeHandler handles POST /api/analyze.
type AnalyzeHandler struct {
	config    AnalyzeHandlerConfig
	runner    Runner
	collector metrics.Collector
	logger    *zap.Logger
}

// NewAnalyzeHandler creates the analyze handler. collector may be nil
// to skip run recording.
func NewAnalyzeHandler(config AnalyzeHandlerConfig, runner Runner, collector metrics.Collector, logger *zap.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = core.DefaultMaxFileSize
	}
	return &AnalyzeHandler{
		config:    config,
		runner:    runner,
		collector: collector,
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	correlationID := w.Header().Get(RequestIDHeader)
	if correlationID == "" {
		correlationID = GenerateCorrelationID()
	}
	logger := h.logger.With(zap.String("correlation_id", correlationID))

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}
	defer r.MultipartForm.RemoveAll()

	kind, err := report.ParseKind(kindField(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "kind must be one of summary, metrics, risks")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF uploads are supported")
		return
	}

	path, cleanup, err := spoolUpload(file, h.config.UploadDir)
	if err != nil {
		logger.Error("Failed to spool upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer cleanup()

	logger.Info("Analysis started",
		zap.String("kind", string(kind)),
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	start := time.Now()
	result, err := h.runner.Run(r.Context(), path, kind)
	if err != nil {
		h.recordFailure(correlationID, kind, start, err)
		logger.Error("Analysis failed", zap.Error(err))

		switch {
		case errors.Is(err, core.ErrExtractionFailed):
			writeError(w, http.StatusUnprocessableEntity, "could not extract text from the document")
		case errors.Is(err, shutdown.ErrTrackerClosed):
			writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		case errors.Is(err, context.Canceled):
			// Client went away; nothing useful to write.
		default:
			writeError(w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	h.recordSuccess(correlationID, result, start)
	logger.Info("Analysis complete",
		zap.String("kind", string(kind)),
		zap.Int("chunks", result.TotalChunks),
		zap.Bool("cached", result.CachedAnalysis),
		zap.Duration("duration", result.ProcessingTime),
	)

	writeJSON(w, http.StatusOK, h.buildResponse(result))
}

// buildResponse converts a pipeline result into the response body.
func (h *AnalyzeHandler) buildResponse(result *report.RunResult) AnalyzeResponse {
	resp := AnalyzeResponse{
		Kind:        string(result.Kind),
		Result:      result.Text,
		MetricsRows: result.MetricsRows,
		Chunks:      result.TotalChunks,
		Truncated:   result.Truncated,
		Cached:      result.CachedAnalysis,
		DocHash:     result.DocHash,
		DurationMS:  result.ProcessingTime.Milliseconds(),
	}
	if result.Extraction != nil {
		resp.Reader = result.Extraction.Reader
	}
	if result.Analysis != nil {
		resp.LLMCalls = result.Analysis.LLMCalls
		resp.FailedChunks = result.Analysis.FailedChunks
	}
	// Metrics output that parsed into rows is shown as a table; other
	// kinds get Markdown rendering.
	if result.Kind != report.KindMetrics || resp.MetricsRows == nil {
		resp.HTML = RenderMarkdown(result.Text)
	}
	return resp
}

// recordSuccess records a finished run with the metrics collector.
func (h *AnalyzeHandler) recordSuccess(id string, result *report.RunResult, start time.Time) {
	if h.collector == nil {
		return
	}
	record := metrics.RunRecord{
		ID:               id,
		Kind:             string(result.Kind),
		DocHash:          result.DocHash,
		Status:           metrics.RunStatusSuccess,
		StartTime:        start,
		Duration:         result.ProcessingTime,
		Chunks:           result.TotalChunks,
		CachedExtraction: result.CachedExtraction,
		CachedAnalysis:   result.CachedAnalysis,
	}
	if result.Extraction != nil {
		record.Reader = result.Extraction.Reader
	}
	if result.Analysis != nil {
		record.LLMCalls = result.Analysis.LLMCalls
		record.FailedChunks = result.Analysis.FailedChunks
		if result.Analysis.FailedChunks > 0 {
			record.Status = metrics.RunStatusDegraded
		}
	}
	h.collector.RecordRun(record)
}

// recordFailure records a failed run with the metrics collector.
func (h *AnalyzeHandler) recordFailure(id string, kind report.Kind, start time.Time, err error) {
	if h.collector == nil {
		return
	}
	h.collector.RecordRun(metrics.RunRecord{
		ID:        id,
		Kind:      string(kind),
		Status:    metrics.RunStatusError,
		StartTime: start,
		Duration:  time.Since(start),
		ErrorMsg:  err.Error(),
	})
}

// kindField reads the kind form field, defaulting to summary.
func kindField(r *http.Request) string {
	kind := r.FormValue("kind")
	if kind == "" {
		return string(report.KindSummary)
	}
	return kind
}

// spoolUpload writes the upload to a temp file and returns its path
// with a cleanup func. The pipeline needs a path for its readers and
// for content hashing.
func spoolUpload(file io.Reader, dir string) (string, func(), error) {
	tmp, err := os.CreateTemp(dir, "finreport-upload-*.pdf")
	if err != nil {
		return "", nil, err
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}

	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}
