package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the random stream behind every probabilistic decision. Injected
// so tests can substitute a scripted sequence and assert exact firing without
// statistical trials. Cryptographic strength is deliberately not required.
type Source interface {
	Float64() float64
	IntN(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedSource returns a Source safe for use from concurrent requests.
// Draws from different requests are independent and unordered.
func NewLockedSource(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededSource is the production source.
func NewTimeSeededSource() Source {
	return NewLockedSource(time.Now().UnixNano())
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
