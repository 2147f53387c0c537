package crawler

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests to a host. Each Wait sleeps for a random delay drawn
// from [min, max] and, when a rate is configured, also waits on a per-host
// token bucket. The delay blocks only the calling worker.
type Limiter struct {
	min, max time.Duration

	requests int
	window   time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithRate additionally limits each host to requests per window.
func WithRate(requests int, window time.Duration) LimiterOption {
	return func(l *Limiter) {
		if requests > 0 && window > 0 {
			l.requests = requests
			l.window = window
		}
	}
}

// NewLimiter creates a limiter drawing delays from [minDelay, maxDelay].
// A maxDelay below minDelay is raised to minDelay.
func NewLimiter(minDelay, maxDelay time.Duration, opts ...LimiterOption) *Limiter {
	minDelay = max(minDelay, 0)
	maxDelay = max(maxDelay, minDelay)
	l := &Limiter{
		min:      minDelay,
		max:      maxDelay,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Delay draws the next politeness delay.
func (l *Limiter) Delay() time.Duration {
	if l.max <= l.min {
		return l.min
	}
	return l.min + rand.N(l.max-l.min+1) //nolint:gosec // jitter, not security
}

// Wait blocks until the next request to host may be issued.
// A nil Limiter never blocks.
func (l *Limiter) Wait(ctx context.Context, host string) error {
	if l == nil {
		return nil
	}

	if d := l.Delay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if limiter := l.hostLimiter(host); limiter != nil {
		return limiter.Wait(ctx)
	}
	return ctx.Err()
}

func (l *Limiter) hostLimiter(host string) *rate.Limiter {
	if l.requests <= 0 || host == "" {
		return nil
	}
	host = strings.ToLower(host)

	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[host]
	if !ok {
		interval := l.window / time.Duration(l.requests)
		if interval <= 0 {
			interval = time.Millisecond
		}
		limiter = rate.NewLimiter(rate.Every(interval), l.requests)
		l.limiters[host] = limiter
	}
	return limiter
}
