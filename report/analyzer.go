// analyzer.go implements the Analyzer molecule that drives the LLM over
// text chunks. It feeds chunks sequentially, degrades in place when a
// single chunk call fails, and reduces multi-chunk output into one
// final result. It composes:
//   - llm: Completer for chat completions
//   - chunker.go: chunk sequences produced upstream
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finreport_backend/llm"
)

// Kind selects which analysis the LLM performs.
type Kind string

// Supported analysis kinds.
const (
	KindSummary Kind = "summary"
	KindMetrics Kind = "metrics"
	KindRisks   Kind = "risks"
)

// ErrUnknownKind is returned by ParseKind for unrecognized kind values.
var ErrUnknownKind = errors.New("unknown analysis kind")

// ErrNoChunks is returned when Analyze is called with no chunks.
var ErrNoChunks = errors.New("no chunks to analyze")

// systemPrompt frames every completion request.
const systemPrompt = "You are a financial analyst assistant."

// MetricsCSVHeader is the header line the metrics prompt instructs the
// model to emit. ParseMetricsTable locates it in the model's output.
const MetricsCSVHeader = "Metric,Current Period,Previous Period,Change"

// ParseKind validates a user-supplied kind string.
//
// Example:
//
//	kind, err := ParseKind("metrics") // Returns KindMetrics, nil
//	kind, err := ParseKind("poetry")  // Returns "", ErrUnknownKind
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSummary:
		return KindSummary, nil
	case KindMetrics:
		return KindMetrics, nil
	case KindRisks:
		return KindRisks, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// chunkPrompt builds the per-chunk user prompt for a kind.
func chunkPrompt(kind Kind, chunk string) string {
	switch kind {
	case KindMetrics:
		return fmt.Sprintf(
			"Extract the key financial metrics from the following financial report text. "+
				"Respond with a CSV table using exactly this header:\n%s\n"+
				"Include one row each for Revenue, Net Income, EBITDA, EPS, Total Assets, and Total Debt. "+
				"Use N/A for any value not present in the text. Do not add commentary.\n\n%s",
			MetricsCSVHeader, chunk)
	case KindRisks:
		return fmt.Sprintf(
			"Identify the top 5 risks discussed or implied in the following financial report text. "+
				"For each risk, give a short bullet with the risk and its potential impact, "+
				"then list any notable opportunities.\n\n%s", chunk)
	default:
		return fmt.Sprintf(
			"Write a concise executive summary (about 200 words) of the following financial report text. "+
				"Focus on financial performance, major developments, and outlook.\n\n%s", chunk)
	}
}

// reducePrompt builds the summary-of-summaries prompt that merges
// per-chunk outputs into one result.
func reducePrompt(kind Kind, merged string) string {
	var instruction string
	switch kind {
	case KindMetrics:
		instruction = "Combine the following partial metric tables into a single CSV table " +
			"with exactly this header:\n" + MetricsCSVHeader + "\n" +
			"One row each for Revenue, Net Income, EBITDA, EPS, Total Assets, and Total Debt; " +
			"prefer concrete values over N/A when the partial tables disagree. Do not add commentary."
	case KindRisks:
		instruction = "Combine and refine the following partial risk assessments into a single " +
			"top-5 risk list with opportunities, removing duplicates."
	default:
		instruction = "Combine and refine the following partial summaries into one coherent, " +
			"concise executive summary (about 200 words)."
	}
	return instruction + "\n\n" + merged
}

// ProgressFunc is called after each chunk completes (successfully or
// not) with the number of finished chunks and the total.
type ProgressFunc func(done, total int)

// AnalysisResult contains the merged analysis and per-chunk detail.
type AnalysisResult struct {
	// Kind is the analysis kind that produced this result
	Kind Kind

	// Text is the final analysis text. With multiple chunks this is the
	// reduce step's output; with one chunk it is that chunk's output.
	Text string

	// ChunkOutputs holds per-chunk outputs in original chunk order.
	// Failed chunks hold their recorded error text.
	ChunkOutputs []string

	// FailedChunks is the number of chunk calls that failed
	FailedChunks int

	// LLMCalls is the total number of completion calls issued,
	// including the reduce call when one was made
	LLMCalls int

	// Reduced is true when a reduce call produced Text
	Reduced bool
}

// Analyzer runs one analysis kind over a sequence of chunks.
//
// Chunk calls are sequential: chunk N+1 is not sent until chunk N has
// returned. A failed chunk does not abort the batch; its error text is
// recorded in place and analysis continues. Context cancellation is
// checked between chunks and aborts the whole run.
//
// An Analyzer holds no per-run state and is safe for concurrent use.
type Analyzer struct {
	completer llm.Completer
	params    llm.Params
}

// NewAnalyzer creates an Analyzer using the given completion client and
// model parameters.
//
// Example:
//
//	analyzer := NewAnalyzer(client, llm.DefaultParams())
//	result, err := analyzer.Analyze(ctx, chunks, KindSummary, nil)
func NewAnalyzer(completer llm.Completer, params llm.Params) *Analyzer {
	return &Analyzer{completer: completer, params: params}
}

// Analyze runs the analysis over chunks in order and returns the merged
// result. With a single chunk the chunk output is returned directly;
// with more, a reduce call merges the per-chunk outputs. If the reduce
// call itself fails, the joined per-chunk outputs are returned instead
// so a degraded result still reaches the caller.
//
// progress, if non-nil, is called after each chunk completes. It is
// scoped to this call so overlapping runs never observe each other's
// callback.
func (a *Analyzer) Analyze(ctx context.Context, chunks []string, kind Kind, progress ProgressFunc) (*AnalysisResult, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	result := &AnalysisResult{
		Kind:         kind,
		ChunkOutputs: make([]string, 0, len(chunks)),
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		output, err := a.completer.Complete(ctx, systemPrompt, chunkPrompt(kind, chunk), a.params)
		result.LLMCalls++
		if err != nil {
			// Degrade in place: the error text becomes this chunk's
			// output and the batch continues.
			output = fmt.Sprintf("[analysis error: %v]", err)
			result.FailedChunks++
		}
		result.ChunkOutputs = append(result.ChunkOutputs, output)
		if progress != nil {
			progress(i+1, len(chunks))
		}
	}

	merged := strings.Join(result.ChunkOutputs, "\n\n")
	if len(chunks) == 1 {
		result.Text = merged
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reduced, err := a.completer.Complete(ctx, systemPrompt, reducePrompt(kind, merged), a.params)
	result.LLMCalls++
	if err != nil {
		result.Text = merged
		return result, nil
	}
	result.Text = reduced
	result.Reduced = true
	return result, nil
}
