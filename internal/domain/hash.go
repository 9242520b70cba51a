package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// QuestionHash returns the canonical dedup key for a question prompt:
// the hex SHA-256 digest of the trimmed prompt text.
func QuestionHash(prompt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(prompt)))
	return hex.EncodeToString(sum[:])
}
