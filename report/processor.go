// processor.go implements the Processor organism that orchestrates the
// full analysis pipeline. It composes the following molecules:
//   - extractor.go: Extractor for PDF text extraction with reader fallback
//   - truncator.go: Truncator for bounding extracted text
//   - chunker.go: word chunking for sequential LLM calls
//   - analyzer.go: Analyzer for per-chunk LLM analysis and reduction
//   - metricstable.go: best-effort parsing of metrics output
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"finreport_backend/core"
	"finreport_backend/llm"
)

// ErrProcessorNotConfigured is returned when the processor is missing
// required components.
var ErrProcessorNotConfigured = errors.New("processor not properly configured")

// Cache is the persistence capability the processor consults before
// doing expensive work. Both lookups are keyed by the document's
// content hash plus a fingerprint of the parameters that shaped the
// value, so changing configuration never serves stale results.
//
// The cache package provides the SQLite implementation; a nil Cache
// disables caching entirely.
type Cache interface {
	// GetExtraction returns a previously stored extraction, or ok=false.
	GetExtraction(ctx context.Context, docHash, fingerprint string) (*ExtractionResult, bool, error)

	// PutExtraction stores an extraction result.
	PutExtraction(ctx context.Context, docHash, fingerprint string, result *ExtractionResult) error

	// GetAnalysis returns a previously stored analysis text, or ok=false.
	GetAnalysis(ctx context.Context, docHash string, kind Kind, fingerprint string) (string, bool, error)

	// PutAnalysis stores a final analysis text.
	PutAnalysis(ctx context.Context, docHash string, kind Kind, fingerprint string, text string) error
}

// ProcessorConfig holds configuration for the full pipeline.
type ProcessorConfig struct {
	// Extractor configuration
	ExtractorConfig ExtractorConfig

	// TruncateChars is the post-extraction character budget
	TruncateChars int

	// TruncationStrategy selects core.StrategyHardCutoff or
	// core.StrategyHeadTail
	TruncationStrategy string

	// ChunkWords is the chunk size in words
	ChunkWords int

	// Params are the model parameters for analysis calls
	Params llm.Params
}

// DefaultProcessorConfig returns sensible default configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		ExtractorConfig:    DefaultExtractorConfig(),
		TruncateChars:      core.DefaultTruncateChars,
		TruncationStrategy: core.StrategyHardCutoff,
		ChunkWords:         core.DefaultChunkWords,
		Params:             llm.DefaultParams(),
	}
}

// ProcessorConfigFromCore builds a ProcessorConfig from the application
// configuration.
func ProcessorConfigFromCore(cfg *core.Config) ProcessorConfig {
	return ProcessorConfig{
		ExtractorConfig: ExtractorConfig{
			MaxPages:         cfg.MaxPages,
			MaxChars:         cfg.MaxChars,
			FallbackMaxPages: cfg.FallbackMaxPages,
			FallbackMaxChars: cfg.FallbackMaxChars,
		},
		TruncateChars:      cfg.TruncateChars,
		TruncationStrategy: cfg.TruncationStrategy,
		ChunkWords:         cfg.ChunkWords,
		Params: llm.Params{
			Model:       cfg.Model,
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		},
	}
}

// ProgressCallback is called to report processing progress.
// stage is the current stage name, progress is 0.0-1.0, message is a
// human-readable status.
type ProgressCallback func(stage string, progress float64, message string)

// RunStages contains timing information for each pipeline stage.
type RunStages struct {
	HashingTime    time.Duration
	ExtractionTime time.Duration
	ChunkingTime   time.Duration
	AnalysisTime   time.Duration
}

// RunResult contains the complete result of one pipeline run.
type RunResult struct {
	// Kind is the analysis kind that was run
	Kind Kind

	// Text is the final analysis text
	Text string

	// MetricsRows holds the parsed metric rows for metrics runs.
	// Nil when the output did not parse; Text still carries the raw output.
	MetricsRows []MetricsRow

	// DocHash is the sha256 hex digest of the document bytes
	DocHash string

	// Extraction contains extraction detail and provenance
	Extraction *ExtractionResult

	// Analysis contains per-chunk analysis detail.
	// Nil when the analysis came from the cache.
	Analysis *AnalysisResult

	// TotalChunks is the number of chunks analyzed
	TotalChunks int

	// Truncated is true if extraction or truncation dropped content
	Truncated bool

	// CachedExtraction is true when the extraction came from the cache
	CachedExtraction bool

	// CachedAnalysis is true when the final text came from the cache
	CachedAnalysis bool

	// ProcessingTime is the total time for the run
	ProcessingTime time.Duration

	// Stages contains per-stage timing
	Stages RunStages
}

// Processor orchestrates hashing, extraction, truncation, chunking, and
// LLM analysis for one document per Run call.
//
// A single Processor serves concurrent Run calls. SetProgressCallback
// and SetExtractor must be called before concurrent use begins.
type Processor struct {
	config    ProcessorConfig
	extractor *Extractor
	truncator *Truncator
	analyzer  *Analyzer
	cache     Cache
	progress  ProgressCallback
}

// NewProcessor creates a Processor with the given configuration and
// completion client. cache may be nil to disable caching.
//
// Example:
//
//	processor := NewProcessor(DefaultProcessorConfig(), client, store)
//	result, err := processor.Run(ctx, "/path/to/report.pdf", KindSummary)
func NewProcessor(config ProcessorConfig, completer llm.Completer, cache Cache) *Processor {
	return &Processor{
		config:    config,
		extractor: NewExtractor(config.ExtractorConfig),
		truncator: NewTruncator(config.TruncateChars, config.TruncationStrategy),
		analyzer:  NewAnalyzer(completer, config.Params),
		cache:     cache,
	}
}

// SetProgressCallback sets or updates the progress callback.
func (p *Processor) SetProgressCallback(progress ProgressCallback) {
	p.progress = progress
}

// SetExtractor replaces the extractor. Intended for tests.
func (p *Processor) SetExtractor(extractor *Extractor) {
	p.extractor = extractor
}

// Run executes the full pipeline for the PDF at path.
//
// Example:
//
//	result, err := processor.Run(ctx, "/path/to/report.pdf", KindMetrics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Text)
func (p *Processor) Run(ctx context.Context, path string, kind Kind) (*RunResult, error) {
	if p.extractor == nil || p.truncator == nil || p.analyzer == nil {
		return nil, ErrProcessorNotConfigured
	}

	start := time.Now()
	result := &RunResult{Kind: kind}

	// Stage 1: Hash the document for cache keying
	hashStart := time.Now()
	docHash, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}
	result.DocHash = docHash
	result.Stages.HashingTime = time.Since(hashStart)

	// A cached analysis short-circuits the whole pipeline.
	if text, ok := p.lookupAnalysis(ctx, docHash, kind); ok {
		result.Text = text
		result.CachedAnalysis = true
		p.attachMetricsRows(result)
		result.ProcessingTime = time.Since(start)
		p.reportProgress("analyzing", 1.0, "Analysis served from cache")
		return result, nil
	}

	// Stage 2: Extract text (cache-aware)
	p.reportProgress("extraction", 0.0, "Starting PDF text extraction...")
	extractStart := time.Now()

	extraction, cached, err := p.extract(ctx, path, docHash)
	if err != nil {
		return nil, err
	}
	result.Extraction = extraction
	result.CachedExtraction = cached
	result.Stages.ExtractionTime = time.Since(extractStart)

	p.reportProgress("extraction", 1.0, fmt.Sprintf("Extracted %d pages via %s, ~%d tokens",
		extraction.PagesRead, extraction.Reader, extraction.EstimatedTokens))

	// Stage 3: Bound and chunk the text
	p.reportProgress("chunking", 0.0, "Bounding and splitting text...")
	chunkStart := time.Now()

	bounded := p.truncator.Truncate(extraction.Text)
	chunks := SplitWordChunks(bounded.Text, p.config.ChunkWords)
	result.TotalChunks = len(chunks)
	result.Truncated = extraction.Truncated || bounded.Truncated
	result.Stages.ChunkingTime = time.Since(chunkStart)

	p.reportProgress("chunking", 1.0, fmt.Sprintf("Created %d chunks", len(chunks)))

	// Stage 4: Analyze
	p.reportProgress("analyzing", 0.0, fmt.Sprintf("Sending %d chunks to the model...", len(chunks)))
	analysisStart := time.Now()

	analysis, err := p.analyzer.Analyze(ctx, chunks, kind, func(done, total int) {
		p.reportProgress("analyzing", float64(done)/float64(total),
			fmt.Sprintf("Analyzed chunk %d of %d", done, total))
	})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	result.Analysis = analysis
	result.Text = analysis.Text
	result.Stages.AnalysisTime = time.Since(analysisStart)

	p.reportProgress("analyzing", 1.0, "Analysis complete")

	p.attachMetricsRows(result)
	p.storeAnalysis(ctx, docHash, kind, analysis)

	result.ProcessingTime = time.Since(start)
	return result, nil
}

// extract returns the extraction for path, consulting the cache first.
func (p *Processor) extract(ctx context.Context, path, docHash string) (*ExtractionResult, bool, error) {
	fingerprint := p.extractionFingerprint()

	if p.cache != nil {
		cached, ok, err := p.cache.GetExtraction(ctx, docHash, fingerprint)
		if err == nil && ok {
			return cached, true, nil
		}
	}

	extraction, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, false, err
	}

	if p.cache != nil {
		// Best effort; a failed write never fails the run.
		_ = p.cache.PutExtraction(ctx, docHash, fingerprint, extraction)
	}
	return extraction, false, nil
}

// lookupAnalysis checks the cache for a finished analysis.
func (p *Processor) lookupAnalysis(ctx context.Context, docHash string, kind Kind) (string, bool) {
	if p.cache == nil {
		return "", false
	}
	text, ok, err := p.cache.GetAnalysis(ctx, docHash, kind, p.analysisFingerprint())
	if err != nil || !ok {
		return "", false
	}
	return text, true
}

// storeAnalysis writes a finished analysis to the cache. Degraded
// results are not cached: a transient provider failure should not be
// replayed until the TTL expires.
func (p *Processor) storeAnalysis(ctx context.Context, docHash string, kind Kind, analysis *AnalysisResult) {
	if p.cache == nil || analysis.FailedChunks > 0 {
		return
	}
	_ = p.cache.PutAnalysis(ctx, docHash, kind, p.analysisFingerprint(), analysis.Text)
}

// attachMetricsRows parses metric rows for metrics runs. Parse failures
// leave MetricsRows nil; the raw text remains the result.
func (p *Processor) attachMetricsRows(result *RunResult) {
	if result.Kind != KindMetrics || result.Text == "" {
		return
	}
	rows, err := ParseMetricsTable(result.Text)
	if err != nil {
		return
	}
	result.MetricsRows = rows
}

// extractionFingerprint identifies the parameters that shape extraction
// output.
func (p *Processor) extractionFingerprint() string {
	ec := p.config.ExtractorConfig
	return fmt.Sprintf("extract:v1:p%d:c%d:fp%d:fc%d",
		ec.MaxPages, ec.MaxChars, ec.FallbackMaxPages, ec.FallbackMaxChars)
}

// analysisFingerprint identifies the parameters that shape the final
// analysis text, including everything downstream of extraction.
func (p *Processor) analysisFingerprint() string {
	return fmt.Sprintf("analyze:v1:%s:t%d:s%s:w%d:temp%.2f:max%d:%s",
		p.config.Params.Model, p.config.TruncateChars, p.config.TruncationStrategy,
		p.config.ChunkWords, p.config.Params.Temperature, p.config.Params.MaxTokens,
		p.extractionFingerprint())
}

// reportProgress calls the progress callback if set.
func (p *Processor) reportProgress(stage string, progress float64, message string) {
	if p.progress != nil {
		p.progress(stage, progress, message)
	}
}

// hashFile returns the sha256 hex digest of the file at path.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return core.ChecksumReader(f)
}
