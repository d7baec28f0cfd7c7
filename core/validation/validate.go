// Package validation implements startup validation for the analysis
// backend. Atoms validate individual values, molecules (ConfigValidator,
// ConnectivityChecker) compose them, and ValidationSuite orchestrates
// the full startup sequence with progress output.
package validation

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ValidateBaseURL validates that a URL is usable as an LLM API base URL.
// The URL must use http or https and include a host.
func ValidateBaseURL(baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// CheckFileExists returns an error if the path does not exist or is a
// directory.
func CheckFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

// CheckDirWritable verifies that a directory exists (creating it if
// necessary) and can be written to by creating and removing a probe file.
func CheckDirWritable(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("directory path is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".write-probe-*")
	if err != nil {
		return fmt.Errorf("cannot write to directory: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
