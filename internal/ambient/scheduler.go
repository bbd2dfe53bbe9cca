// Package ambient decides when Ruby jumps into a conversation uninvited.
package ambient

import (
	"math/rand"
	"sync"
	"time"
)

// Scheduler gates unprompted interjections with a dice roll, a per-channel
// cooldown, and a prior-contact check done by the caller. Cooldown state
// lives in memory only; a restart forgets it, which at worst allows one
// early fire.
//
// The gate runs in two phases because the prior-contact check costs a
// store round trip: ShouldConsider rolls the dice and peeks at the
// cooldown without committing anything, and Fire atomically claims the
// channel's window once the caller has confirmed the speaker is known.
type Scheduler struct {
	mu       sync.Mutex
	enabled  bool
	chance   float64
	cooldown time.Duration
	lastFire map[string]time.Time
	roll     func() float64
}

// NewScheduler creates a scheduler that fires with the given probability
// per eligible message, at most once per cooldown window per channel.
func NewScheduler(chance float64, cooldown time.Duration) *Scheduler {
	return &Scheduler{
		enabled:  true,
		chance:   chance,
		cooldown: cooldown,
		lastFire: make(map[string]time.Time),
		roll:     rand.Float64,
	}
}

// SetRoll overrides the dice-roll source. Used by tests.
func (s *Scheduler) SetRoll(roll func() float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll = roll
}

// SetEnabled flips the global ambient toggle.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// Enabled reports the global ambient toggle.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// ShouldConsider draws the dice roll for one inbound message and reports
// whether an interjection in channelID is worth pursuing at now. It does
// not claim the cooldown window; callers that get true must still verify
// the speaker has prior history and then call Fire.
func (s *Scheduler) ShouldConsider(channelID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return false
	}
	if s.roll() >= s.chance {
		return false
	}
	return s.windowOpen(channelID, now)
}

// Fire claims the channel's cooldown window and reports whether the caller
// may interject. It re-checks the window under the lock, so two concurrent
// candidates in the same channel can never both fire inside one window.
func (s *Scheduler) Fire(channelID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || !s.windowOpen(channelID, now) {
		return false
	}
	s.lastFire[channelID] = now
	return true
}

func (s *Scheduler) windowOpen(channelID string, now time.Time) bool {
	last, ok := s.lastFire[channelID]
	return !ok || now.Sub(last) >= s.cooldown
}
