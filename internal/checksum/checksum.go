package checksum

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/starford/obweb/internal/wood"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Wood hashes the compact rendering of w, so two trees that are Equal share a
// digest regardless of how their source was laid out.
func Wood(w *wood.Wood) string {
	return Sum([]byte(w.String()))
}
