package portfolio

import (
	"testing"
	"time"
)

// recordFailure records a failed sign-in the way the login handler does and
// reports whether the attempt was let through.
func recordFailure(l *LoginLimiter, ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLoginLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	if !recordFailure(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !recordFailure(limiter, ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if limiter.Check(ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
	if d := limiter.RetryAfter(ip); d <= 0 || d > 200*time.Millisecond {
		t.Fatalf("RetryAfter = %v, want within window", d)
	}
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	defer limiter.Stop()
	ip := "203.0.113.15"

	for i := 0; i < 3; i++ {
		if !limiter.Check(ip) {
			t.Fatalf("check %d: expected allowed without recorded failures", i)
		}
	}
	if d := limiter.RetryAfter(ip); d != 0 {
		t.Fatalf("RetryAfter = %v, want 0", d)
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewLoginLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	if !recordFailure(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if limiter.Check(ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !limiter.Check(ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter := NewLoginLimiter(1, 200*time.Millisecond)
	defer limiter.Stop()

	if !recordFailure(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !recordFailure(limiter, "203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if limiter.Check("203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestLoginLimiterReset(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	defer limiter.Stop()
	ip := "203.0.113.40"

	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected ip to be blocked after a failure")
	}
	limiter.Reset(ip)
	if !limiter.Check(ip) {
		t.Fatalf("expected ip to be allowed after reset")
	}
}

func TestLoginLimiterStopTwice(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	limiter.Stop()
	limiter.Stop()
}
