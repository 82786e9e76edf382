package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/ppiankov/docketscan/internal/browser"
	"github.com/ppiankov/docketscan/internal/cache"
	"github.com/ppiankov/docketscan/internal/extract"
	"github.com/ppiankov/docketscan/internal/model"
	"github.com/ppiankov/docketscan/internal/util"
	"github.com/ppiankov/docketscan/internal/worker"
)

// Query holds the people-search parameters derived from a name and address
type Query struct {
	First string
	Last  string
	City  string
	State string
}

// BuildQuery splits name into first and last tokens and address into city
// and state. The state is the first token of the last comma-separated part,
// or fallbackState when there is none.
func BuildQuery(name, address, fallbackState string) Query {
	var q Query

	names := strings.Fields(name)
	switch {
	case len(names) >= 2:
		q.First, q.Last = names[0], names[len(names)-1]
	case len(names) == 1:
		q.First = names[0]
	}

	parts := strings.Split(address, ",")
	if len(parts) >= 2 {
		q.City = strings.TrimSpace(parts[len(parts)-2])
	}
	if tokens := strings.Fields(parts[len(parts)-1]); len(tokens) > 0 {
		q.State = tokens[0]
	} else {
		q.State = fallbackState
	}

	return q
}

// URL renders the query against the people-search results page
func (q Query) URL(base string) string {
	params := url.Values{}
	params.Set("name", strings.TrimSpace(q.First+" "+q.Last))
	params.Set("citystatezip", strings.Trim(q.City+", "+q.State, ", "))
	return base + "?" + params.Encode()
}

// pacer spaces navigations to a host
type pacer interface {
	Wait(ctx context.Context, rawURL string) error
	Interval(rawURL string) time.Duration
	SetDomainInterval(domain string, interval time.Duration)
	Restart(rawURL string)
}

// Resolver looks up phone candidates for a person on the people-search site.
// Results are candidates only; merging one into a record is the caller's call.
type Resolver struct {
	session   browser.Session
	cfg       model.PeopleConfig
	selectors extract.PhoneSelectors
	limiter   pacer
	sleep     worker.Sleeper
	cache     *cache.CandidateCache
	robots    *util.RobotsChecker
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithCache serves repeated lookups from c
func WithCache(c *cache.CandidateCache) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

// WithRobots checks every lookup URL against robots.txt
func WithRobots(checker *util.RobotsChecker) ResolverOption {
	return func(r *Resolver) { r.robots = checker }
}

// WithSleeper replaces the settle pause implementation
func WithSleeper(sleep worker.Sleeper) ResolverOption {
	return func(r *Resolver) { r.sleep = sleep }
}

// NewResolver creates a resolver that drives session
func NewResolver(session browser.Session, cfg model.PeopleConfig, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		session: session,
		cfg:     cfg,
		selectors: extract.PhoneSelectors{
			Card:        cfg.CardSelector,
			Name:        cfg.NameSelector,
			Address:     cfg.AddressSelector,
			Phone:       cfg.PhoneSelector,
			PhonePrefix: cfg.PhonePrefix,
		},
		limiter: worker.NewLimiter(cfg.RateLimit),
		sleep:   worker.SleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetRateLimit changes the pause before each lookup navigation. The settle
// pause after navigation is unaffected.
func (r *Resolver) SetRateLimit(d time.Duration) {
	r.cfg.RateLimit = d
	r.limiter.SetDomainInterval(r.host(), d)
}

// Search returns up to MaxCards candidates for name at address. Cached
// results skip the site entirely; otherwise the call waits for its pacing
// slot, navigates, settles and extracts.
func (r *Resolver) Search(ctx context.Context, name, address string) ([]model.PhoneCandidate, error) {
	query := BuildQuery(name, address, r.cfg.FallbackState)
	target := query.URL(r.cfg.SearchURL)

	if r.cache != nil {
		if candidates, found := r.cache.Get(target); found {
			slog.DebugContext(ctx, "lookup cache hit", "url", target)
			return candidates, nil
		}
	}

	if r.robots != nil {
		delay, err := r.robots.Check(ctx, target)
		if err != nil {
			return nil, err
		}
		if delay > r.limiter.Interval(target) {
			slog.DebugContext(ctx, "raising lookup interval to crawl-delay", "delay", delay)
			r.limiter.SetDomainInterval(r.host(), delay)
		}
	}

	if err := r.limiter.Wait(ctx, target); err != nil {
		return nil, fmt.Errorf("pace lookup: %w", err)
	}
	// The next lookup's pause counts from the end of this one.
	defer r.limiter.Restart(target)

	if err := r.session.Navigate(ctx, target); err != nil {
		return nil, &model.NavigationError{Op: "navigate", URL: target, Err: err}
	}
	if err := r.sleep(ctx, r.cfg.Settle); err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}

	source, err := r.session.Source(ctx)
	if err != nil {
		return nil, &model.NavigationError{Op: "source", URL: target, Err: err}
	}

	candidates, err := extract.ExtractPhoneCandidates(source, r.selectors, r.cfg.MaxCards)
	if err != nil {
		return nil, fmt.Errorf("extract candidates: %w", err)
	}

	queryName := strings.TrimSpace(query.First + " " + query.Last)
	for i := range candidates {
		candidates[i].Similarity = similarity(queryName, candidates[i].Name)
	}

	if r.cache != nil {
		if err := r.cache.Set(target, candidates); err != nil {
			slog.WarnContext(ctx, "cache lookup result", "url", target, "error", err)
		}
	}

	return candidates, nil
}

func (r *Resolver) host() string {
	parsed, err := url.Parse(r.cfg.SearchURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// similarity scores two names case-insensitively for display
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return matchr.JaroWinkler(strings.ToLower(a), strings.ToLower(b), false)
}
