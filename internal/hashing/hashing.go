package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DigestLength is the length in characters of every digest produced by
// this package (SHA-256, hex encoded).
const DigestLength = sha256.Size * 2

// SumBytes returns the hex-encoded SHA-256 digest of b.
func SumBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// SumString returns the hex-encoded SHA-256 digest of s.
func SumString(s string) string {
	return SumBytes([]byte(s))
}

// SumFile returns the hex-encoded SHA-256 digest of the file at path,
// streaming the contents rather than loading them into memory. Artifacts
// can be hundreds of megabytes before optimization.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
