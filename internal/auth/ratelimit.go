package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/mymotiv/internal/config"
)

// RateLimitConfig bounds failed logins for one email from one client IP.
type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	// SweepInterval is how often stale entries are dropped.
	SweepInterval time.Duration
}

// DefaultRateLimitConfig allows 5 failures per 15 minutes, then locks the
// pair out for 30 minutes.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		SweepInterval:   5 * time.Minute,
	}
}

// RateLimitConfigFrom reads the login limits from the auth config. Unset
// values fall back to DefaultRateLimitConfig.
func RateLimitConfigFrom(cfg config.Auth) RateLimitConfig {
	rl := DefaultRateLimitConfig()
	if cfg.MaxLoginAttempts > 0 {
		rl.MaxAttempts = cfg.MaxLoginAttempts
	}
	if cfg.RateLimitWindow > 0 {
		rl.WindowDuration = cfg.RateLimitWindow
	}
	if cfg.LockoutDuration > 0 {
		rl.LockoutDuration = cfg.LockoutDuration
	}
	return rl
}

// loginKey identifies a login target as seen from one client. Emails are
// compared case-insensitively, matching how accounts are looked up.
type loginKey struct {
	ip    string
	email string
}

func newLoginKey(ip, email string) loginKey {
	return loginKey{ip: ip, email: strings.ToLower(strings.TrimSpace(email))}
}

type loginFailures struct {
	count       int
	since       time.Time
	lockedUntil time.Time
}

func (f *loginFailures) lockedAt(now time.Time) bool {
	return now.Before(f.lockedUntil)
}

func (f *loginFailures) staleAt(now time.Time, window time.Duration) bool {
	return now.Sub(f.since) > window && !f.lockedAt(now)
}

// RateLimiter counts failed logins per (IP, email) pair in memory. A pair
// that reaches MaxAttempts within WindowDuration is refused until its
// lockout expires. Other IPs trying the same email are unaffected.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu       sync.Mutex
	failures map[loginKey]*loginFailures

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter and its sweeper. Call Stop to release it.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = defaults.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaults.LockoutDuration
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}

	rl := &RateLimiter{
		cfg:      cfg,
		now:      time.Now,
		failures: make(map[loginKey]*loginFailures),
		stop:     make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether ip may try to log in as email. When refused, the
// duration is the time left on the lockout.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.failures[newLoginKey(ip, email)]
	if !ok || !f.lockedAt(now) {
		return true, 0
	}
	return false, f.lockedUntil.Sub(now)
}

// RecordFailure counts a rejected login. It reports whether this failure
// locked the pair out and for how long.
func (rl *RateLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	key := newLoginKey(ip, email)
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.failures[key]
	if !ok || f.staleAt(now, rl.cfg.WindowDuration) {
		f = &loginFailures{since: now}
		rl.failures[key] = f
	}
	f.count++
	if f.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	f.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess forgets the pair's failures.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	delete(rl.failures, newLoginKey(ip, email))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, f := range rl.failures {
		if f.staleAt(now, rl.cfg.WindowDuration) {
			delete(rl.failures, key)
		}
	}
}
