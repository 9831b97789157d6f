package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Calculator computes a content fingerprint.
type Calculator interface {
	// Sum returns the hex-encoded digest of content.
	Sum(content []byte) string
}

// SHA256 implements Calculator using SHA-256.
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// Sum computes SHA-256 of content.
func (c SHA256) Sum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Short returns the first 12 hex characters of a digest, enough to tell
// source files apart in log lines.
func Short(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}

// Describe renders a one-line summary of content for verbose logs.
func Describe(c Calculator, content []byte) string {
	return fmt.Sprintf("%d bytes, sha256 %s", len(content), Short(c.Sum(content)))
}
