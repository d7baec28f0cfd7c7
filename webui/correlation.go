// Package webui provides the HTTP surface for FinReport: the analyze
// API, health and stats endpoints, and the embedded single-page UI.
package webui

import "github.com/google/uuid"

// GenerateCorrelationID creates a unique 8-character ID for request tracing.
// It lets log lines from one upload be grepped together across the
// middleware, handler, and pipeline stages.
//
// Example:
//
//	correlationID := GenerateCorrelationID()
//	logger.Infow("Analysis started", "correlation_id", correlationID)
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}
