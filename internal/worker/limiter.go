package worker

import (
	"context"
	"math"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces navigations per host with a token bucket of burst 1. A new
// host bucket starts empty, so even the first navigation to a host waits one
// full interval.
type Limiter struct {
	limiters        map[string]*rate.Limiter
	mu              sync.RWMutex
	defaultInterval time.Duration
}

// NewLimiter creates a limiter that spaces navigations to the same host at
// least interval apart. A non-positive interval disables pacing.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{
		limiters:        make(map[string]*rate.Limiter),
		defaultInterval: interval,
	}
}

// Wait blocks until a navigation to rawURL is allowed or ctx is done
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return err
	}

	limiter := l.getLimiter(domain)
	return limiter.Wait(ctx)
}

// Restart empties the bucket of rawURL's host, so the next navigation waits
// a full interval measured from now. Call it when a paced operation ends to
// keep long operations from banking their own pause.
func (l *Limiter) Restart(rawURL string) {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	interval := l.defaultInterval
	if existing, ok := l.limiters[domain]; ok {
		interval = intervalOf(existing.Limit())
	}
	l.limiters[domain] = newDrainedLimiter(interval)
}

// getLimiter returns the rate limiter for a domain
func (l *Limiter) getLimiter(domain string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[domain]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[domain]; exists {
		return limiter
	}

	limiter = newDrainedLimiter(l.defaultInterval)
	l.limiters[domain] = limiter

	return limiter
}

// SetDomainInterval changes the spacing for one host. The bucket is reset,
// so the next navigation to the host waits the new interval.
func (l *Limiter) SetDomainInterval(domain string, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[domain] = newDrainedLimiter(interval)
}

// Interval returns the spacing currently applied to rawURL's host
func (l *Limiter) Interval(rawURL string) time.Duration {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return l.defaultInterval
	}

	return intervalOf(l.getLimiter(domain).Limit())
}

func intervalOf(limit rate.Limit) time.Duration {
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(time.Second) / float64(limit)))
}

// newDrainedLimiter builds a burst-1 bucket with its initial token spent
func newDrainedLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	limiter.Allow()
	return limiter
}

// extractDomain extracts the domain from a URL
func extractDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
