package store

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewMessageID returns a ULID. Monotonic entropy keeps ids strictly
// increasing within a millisecond, which History relies on as the
// insertion-order tiebreak.
func NewMessageID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewID returns a random UUID, used for conversation, attachment and
// project ids.
func NewID() string {
	return uuid.NewString()
}
