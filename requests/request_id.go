// Package requests generates the opaque identifiers used for sessions,
// jobs, and cache keys, the way the upstream project's request_id.go
// stamps every inbound call with a correlation ID.
package requests

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 128-bit identifier encoded as 32 lowercase hex
// characters, used for session IDs, job IDs, and anywhere else the design
// calls for a collision-resistant opaque token. crypto/rand is used
// instead of the upstream project's math/rand trailer because session
// and job IDs are handed back to callers and must not be guessable.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("requests: failed to read random bytes: " + err.Error())
	}
	return hex.EncodeToString(b)
}
