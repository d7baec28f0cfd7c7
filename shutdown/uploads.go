package shutdown

import (
	"context"
	"os"
	"path/filepath"

	"finreport_backend/core"

	"go.uber.org/zap"
)

// uploadPattern matches the spool files the analyze handler creates.
const uploadPattern = "finreport-upload-*.pdf"

// CleanupUploads returns a shutdown function that removes stale upload
// spool files from the given directory. The analyze handler deletes its
// spool file after each request, but a crash mid-request leaves the
// file behind; this sweep catches those.
//
// Priority recommendation: 40+ (final cleanup, after services stopped)
//
// The cleanup function logs each removal and continues even if
// individual removals fail; it returns nil so a failed sweep never
// blocks shutdown.
//
// Usage:
//
//	manager.Register("cleanup-uploads", 45, shutdown.CleanupUploads(logger, uploadDir))
func CleanupUploads(logger *zap.Logger, uploadDir string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		if uploadDir == "" {
			uploadDir = os.TempDir()
		}

		matches, err := filepath.Glob(filepath.Join(uploadDir, uploadPattern))
		if err != nil {
			logger.Warn("Upload cleanup glob failed",
				zap.String("directory", uploadDir),
				zap.Error(err),
			)
			return nil
		}

		removed := 0
		for _, path := range matches {
			select {
			case <-ctx.Done():
				logger.Warn("Upload cleanup cancelled",
					zap.Int("removed", removed),
					zap.Int("remaining", len(matches)-removed),
				)
				return nil
			default:
			}

			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove stale upload",
					zap.String("path", path),
					zap.Error(err),
				)
				continue
			}
			removed++
		}

		if removed > 0 {
			logger.Info("Removed stale upload files",
				zap.String("directory", uploadDir),
				zap.Int("count", removed),
			)
		}
		return nil
	}
}
