package maiapress

import (
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLoginLimiter(2, 200*time.Millisecond)
	id := "login:203.0.113.10"

	if !limiter.Allow(id) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !limiter.Allow(id) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if limiter.Allow(id) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewLoginLimiter(1, 150*time.Millisecond)
	id := "login:203.0.113.20"

	if !limiter.Allow(id) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if limiter.Allow(id) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !limiter.Allow(id) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLoginLimiterIsPerIdentifier(t *testing.T) {
	limiter := NewLoginLimiter(1, 200*time.Millisecond)

	if !limiter.Allow("login:203.0.113.30") {
		t.Fatalf("expected first identifier to be allowed")
	}
	if !limiter.Allow("login:203.0.113.31") {
		t.Fatalf("expected second identifier to be allowed independently")
	}
	if limiter.Allow("login:203.0.113.30") {
		t.Fatalf("expected first identifier to be blocked after max")
	}
}

func TestLoginLimiterRemaining(t *testing.T) {
	limiter := NewLoginLimiter(5, time.Minute)
	id := "login:203.0.113.40"

	if got := limiter.Remaining(id); got != 5 {
		t.Fatalf("Remaining before any attempt = %d, want 5", got)
	}
	for i := 0; i < 5; i++ {
		if !limiter.Allow(id) {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if got := limiter.Remaining(id); got != 0 {
		t.Fatalf("Remaining after exhausting = %d, want 0", got)
	}
	if limiter.Allow(id) {
		t.Fatalf("expected attempt after exhausting to be blocked")
	}
	// Never negative, even past the limit.
	if got := limiter.Remaining(id); got != 0 {
		t.Fatalf("Remaining past limit = %d, want 0", got)
	}
	// Remaining is read-only.
	limiter.Reset(id)
	limiter.Remaining(id)
	if got := limiter.Remaining(id); got != 5 {
		t.Fatalf("Remaining after reset = %d, want 5", got)
	}
}

func TestLoginLimiterEmptyIdentifier(t *testing.T) {
	limiter := NewLoginLimiter(5, time.Minute)
	if limiter.Allow("") {
		t.Fatalf("expected empty identifier to be rejected")
	}
	if got := limiter.Remaining(""); got != 0 {
		t.Fatalf("Remaining for empty identifier = %d, want 0", got)
	}
}
