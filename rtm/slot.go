package rtm

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInUse is returned by Slot.Acquire while a previous lease is live.
var ErrInUse = errors.New("native storage already in use")

// Slot guards process-wide native storage that only one controller may
// reference at a time.
type Slot struct {
	name string

	mu   sync.Mutex
	live bool
}

func NewSlot(name string) *Slot {
	return &Slot{name: name}
}

// Acquire hands out the slot. It fails with ErrInUse until the current
// lease is released.
func (s *Slot) Acquire() (*Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live {
		return nil, fmt.Errorf("%s: %w", s.name, ErrInUse)
	}
	s.live = true

	return &Lease{slot: s}, nil
}

func (s *Slot) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.live
}

func (s *Slot) free() {
	s.mu.Lock()
	s.live = false
	s.mu.Unlock()
}

// Lease is the right to use a Slot. Releasing it is idempotent.
type Lease struct {
	slot *Slot
	once sync.Once
}

// Release runs fn and frees the slot. Only the first call has any effect;
// the slot is freed even if fn panics.
func (l *Lease) Release(fn func()) {
	l.once.Do(func() {
		defer l.slot.free()
		if fn != nil {
			fn()
		}
	})
}
