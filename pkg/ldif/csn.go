package ldif

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/Eldar88/openldap/pkg/encoding"
)

// SequenceAllocator is the default ChangeSequenceAllocator implementation.
// It stamps each mutation with a timestamp plus a monotonically increasing,
// Base62-encoded counter. The timestamp part sorts chronologically; the
// Base62 text of the counter does not sort in counter order as a byte
// string, since its alphabet (0-9a-zA-Z) is not in byte order.
type SequenceAllocator struct {
	mu      sync.Mutex
	counter uint64
}

// NewSequenceAllocator creates a change-sequence-number allocator.
func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{}
}

// Next implements ChangeSequenceAllocator.
func (s *SequenceAllocator) Next() string {
	s.mu.Lock()
	s.counter++
	n := s.counter
	s.mu.Unlock()

	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], n)

	return fmt.Sprintf("%s#%s",
		time.Now().UTC().Format("20060102150405.000000Z"),
		encoding.EncodeBase62(counterBytes[:]),
	)
}
