package compiler

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashSource implements spec §4.2 stage 8: a stable content hash used as
// half of the (file-hash, pattern-hash) no-match cache key (spec §7
// "Caching"). SHA-256 matches the teacher's own content-addressing choice
// for its sqlite cache (grounded on the teacher's now-superseded db layer,
// see DESIGN.md).
func hashSource(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
