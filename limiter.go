package portfolio

import (
	"sync"
	"time"
)

// LoginLimiter rate-limits failed sign-in attempts per IP address.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoginLimiter allows max failed attempts per window. Call Stop to end
// the background sweep.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		done:     make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *LoginLimiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.mu.Lock()
			for ip := range l.attempts {
				l.prune(ip)
			}
			l.mu.Unlock()
		}
	}
}

// prune drops attempts older than the window. Callers hold mu.
func (l *LoginLimiter) prune(ip string) []time.Time {
	cutoff := time.Now().Add(-l.window)
	hits := l.attempts[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, ip)
		return nil
	}
	l.attempts[ip] = kept
	return kept
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Check returns true if the IP has not exceeded the rate limit.
// It does not record an attempt; call Record on failure.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(ip)) < l.max
}

// Record registers a failed sign-in for ip.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	l.attempts[ip] = append(l.attempts[ip], time.Now())
	l.mu.Unlock()
}

// Reset forgets ip, used after a successful sign-in.
func (l *LoginLimiter) Reset(ip string) {
	l.mu.Lock()
	delete(l.attempts, ip)
	l.mu.Unlock()
}

// RetryAfter is how long ip must wait until its oldest attempt leaves the window.
func (l *LoginLimiter) RetryAfter(ip string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	hits := l.prune(ip)
	if len(hits) < l.max {
		return 0
	}
	return time.Until(hits[0].Add(l.window))
}
