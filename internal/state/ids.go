package state

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource produces unique layer ids. Injecting it keeps id generation
// deterministic under test.
type IDSource interface {
	NewID() string
}

// UUIDSource is the production id source.
type UUIDSource struct{}

func (UUIDSource) NewID() string {
	return uuid.NewString()
}

// SequenceSource hands out prefixed sequential ids. Used by tests and
// anywhere reproducible documents are needed.
type SequenceSource struct {
	prefix  string
	counter uint64
}

func NewSequenceSource(prefix string) *SequenceSource {
	return &SequenceSource{prefix: prefix}
}

func (s *SequenceSource) NewID() string {
	n := atomic.AddUint64(&s.counter, 1)
	return fmt.Sprintf("%s-%d", s.prefix, n)
}
