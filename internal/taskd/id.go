package taskd

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateID returns a short random ID like "task-1a2b3c4d5e6f7a8b".
func GenerateID(prefix string) string {
	b := make([]byte, 8)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
