package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/gowebpki/jcs"
)

var digestRegexp = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Canonicalize returns the RFC 8785 (JCS) canonical form of JSON input.
func Canonicalize(input []byte) ([]byte, error) {
	return jcs.Transform(input)
}

// Of canonicalizes JSON input and returns its sha256 hex digest.
func Of(input []byte) (string, error) {
	canonical, err := Canonicalize(input)
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// OfValue encodes v as JSON and digests it.
func OfValue(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return Of(b)
}

// Valid reports whether s looks like a digest produced by Of.
func Valid(s string) bool {
	return digestRegexp.MatchString(s)
}
