// Package objectid generates 24-character hex identifiers laid out like the
// document store's native ids: a 4-byte big-endian unix timestamp, 5 random
// bytes fixed per process, and a 3-byte monotonic counter. Rows stamped with
// these ids can be upserted into the target store directly, with no id
// mapping table between the two systems.
package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	counter uint32
	machine [5]byte
)

func init() {
	if _, err := rand.Read(machine[:]); err != nil {
		panic(fmt.Sprintf("objectid: cannot seed random component: %v", err))
	}
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("objectid: cannot seed counter: %v", err))
	}
	counter = binary.BigEndian.Uint32(seed[:]) & 0xFFFFFF
}

// New returns a fresh identifier. The counter is process-scoped: randomly
// seeded at start, monotonic within the process, wrapping at 2^24.
func New() string {
	return at(time.Now())
}

func at(t time.Time) string {
	mu.Lock()
	counter = (counter + 1) & 0xFFFFFF
	c := counter
	mu.Unlock()

	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(t.Unix()))
	copy(b[4:9], machine[:])
	b[9] = byte(c >> 16)
	b[10] = byte(c >> 8)
	b[11] = byte(c)
	return hex.EncodeToString(b[:])
}

// IsValid reports whether s is a well-formed 24-character hex identifier.
func IsValid(s string) bool {
	if len(s) != 24 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
