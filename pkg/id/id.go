// Package id generates time-sortable run and order identifiers.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out monotonic ULIDs. IDs generated within the same
// millisecond stay lexicographically increasing.
type Generator struct {
	mu   sync.Mutex
	mono io.Reader
	now  func() time.Time
}

// NewGenerator returns a generator seeded from crypto/rand. now defaults to
// time.Now.
func NewGenerator(now func() time.Time) *Generator {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{
		mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
		now:  now,
	}
}

// New returns the next ULID string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.mono)
	if err != nil {
		// only when the clock runs past the ULID epoch range or entropy overflows
		panic(err)
	}
	return id.String()
}

// Time extracts the millisecond timestamp embedded in an ID.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()).UTC(), nil
}

var std = NewGenerator(nil)

// New returns a ULID from the package generator.
func New() string {
	return std.New()
}
