package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// ChecksumBytes computes the SHA256 hash of a byte slice and returns it
// as a lowercase hexadecimal string. Used as the content-identity key
// for cached extraction and analysis results: two uploads with
// identical bytes share one cache entry.
//
// This is a pure function with deterministic output for any given input.
//
// Example:
//
//	key := core.ChecksumBytes(pdfBytes) // "a1b2c3d4..." (64 chars)
func ChecksumBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ChecksumReader computes the SHA256 hash from an io.Reader.
// Useful for hashing uploads without buffering them twice.
//
// Returns an error if reading fails.
func ChecksumReader(r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("reader cannot be nil")
	}

	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ChecksumString computes the SHA256 hash of a string.
// Convenience wrapper over ChecksumBytes for parameter fingerprints.
func ChecksumString(s string) string {
	return ChecksumBytes([]byte(s))
}
