package ambient

import (
	"testing"
	"time"
)

func alwaysHit() float64  { return 0.0 }
func alwaysMiss() float64 { return 0.99 }

func TestShouldConsider_DiceRoll(t *testing.T) {
	s := NewScheduler(0.03, 10*time.Minute)
	now := time.Now()

	s.SetRoll(alwaysMiss)
	if s.ShouldConsider("chan-1", now) {
		t.Error("Expected losing roll to suppress interjection")
	}

	s.SetRoll(alwaysHit)
	if !s.ShouldConsider("chan-1", now) {
		t.Error("Expected winning roll to pass")
	}
}

func TestShouldConsider_DoesNotClaimWindow(t *testing.T) {
	s := NewScheduler(0.03, 10*time.Minute)
	s.SetRoll(alwaysHit)
	now := time.Now()

	// Repeated considerations must all pass; only Fire claims the window.
	for i := 0; i < 3; i++ {
		if !s.ShouldConsider("chan-1", now) {
			t.Fatalf("Consideration %d unexpectedly suppressed", i)
		}
	}
}

func TestFire_Cooldown(t *testing.T) {
	s := NewScheduler(0.03, 10*time.Minute)
	s.SetRoll(alwaysHit)
	start := time.Now()

	if !s.Fire("chan-1", start) {
		t.Fatal("Expected first fire to succeed")
	}

	// Inside the window: both phases refuse.
	later := start.Add(5 * time.Minute)
	if s.ShouldConsider("chan-1", later) {
		t.Error("Expected consideration suppressed inside cooldown")
	}
	if s.Fire("chan-1", later) {
		t.Error("Expected fire suppressed inside cooldown")
	}

	// Window elapsed: eligible again.
	if !s.Fire("chan-1", start.Add(10*time.Minute)) {
		t.Error("Expected fire allowed once cooldown elapsed")
	}
}

func TestFire_CooldownIsPerChannel(t *testing.T) {
	s := NewScheduler(0.03, 10*time.Minute)
	now := time.Now()

	if !s.Fire("chan-1", now) {
		t.Fatal("Expected first fire to succeed")
	}
	if !s.Fire("chan-2", now) {
		t.Error("Expected a different channel to be unaffected")
	}
}

func TestSetEnabled(t *testing.T) {
	s := NewScheduler(0.03, 10*time.Minute)
	s.SetRoll(alwaysHit)
	now := time.Now()

	s.SetEnabled(false)
	if s.Enabled() {
		t.Error("Expected scheduler disabled")
	}
	if s.ShouldConsider("chan-1", now) {
		t.Error("Expected consideration suppressed while disabled")
	}
	if s.Fire("chan-1", now) {
		t.Error("Expected fire suppressed while disabled")
	}

	s.SetEnabled(true)
	if !s.ShouldConsider("chan-1", now) {
		t.Error("Expected consideration allowed after re-enable")
	}
}
