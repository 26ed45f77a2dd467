package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	googleuuid "github.com/google/uuid"
)

// generator keeps the last timestamp and a 12-bit counter so that ids created
// by this process sort in creation order even within the same millisecond.
type generator struct {
	mu     sync.Mutex
	lastMs uint64
	seq    uint16
	now    func() time.Time
}

var defaultGenerator = &generator{now: time.Now}

// New generates a new UUIDv7 (RFC 9562) string.
//
// Format:
// - 48 bits: Unix timestamp in milliseconds
// - 4 bits: version (0111 = 7)
// - 12 bits: monotonic counter (rand_a, method 1)
// - 2 bits: variant (10)
// - 62 bits: random data
func New() string {
	return defaultGenerator.next()
}

func (g *generator) next() string {
	var id [16]byte
	if _, err := rand.Read(id[8:]); err != nil {
		// Fallback to standard UUIDv4 if random generation fails
		return googleuuid.New().String()
	}

	g.mu.Lock()
	ms := uint64(g.now().UnixMilli())
	switch {
	case ms > g.lastMs:
		g.lastMs = ms
		g.seq = 0
	case g.seq < 0x0fff:
		g.seq++
	default:
		// counter exhausted for this millisecond, borrow the next one
		g.lastMs++
		g.seq = 0
	}
	ms, seq := g.lastMs, g.seq
	g.mu.Unlock()

	binary.BigEndian.PutUint64(id[0:8], ms<<16|uint64(seq))

	// Set version (4 bits) to 0111 (7)
	id[6] = (id[6] & 0x0f) | 0x70

	// Set variant (2 bits) to 10
	id[8] = (id[8] & 0x3f) | 0x80

	return formatUUID(id)
}

// formatUUID formats a 16-byte array as a UUID string
func formatUUID(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
