// Package pipeline drives the court search, detail enrichment and phone
// lookup stages over a single browser session.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ppiankov/docketscan/internal/browser"
	"github.com/ppiankov/docketscan/internal/extract"
	"github.com/ppiankov/docketscan/internal/model"
)

// Pipeline orchestrates a run. It owns the session and serializes every use
// of it, so concurrent callers never interleave navigations.
type Pipeline struct {
	mu       sync.Mutex
	session  browser.Session
	enricher *Enricher
	resolver *Resolver
	policy   Policy
	config   *model.Config
}

// NewPipeline creates a pipeline over session. Resolver options configure
// the phone lookup stage.
func NewPipeline(session browser.Session, cfg *model.Config, opts ...ResolverOption) *Pipeline {
	policy := FailFast
	if cfg.Enrich.ContinueOnError {
		policy = ContinueOnError
	}

	return &Pipeline{
		session:  session,
		enricher: NewEnricher(session, cfg.Court, cfg.Enrich.RetryBackoff),
		resolver: NewResolver(session, cfg.People, opts...),
		policy:   policy,
		config:   cfg,
	}
}

// Search submits town to the property search and returns the results page
// source once the results table or the no-results label is present.
func (p *Pipeline) Search(ctx context.Context, town string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.search(ctx, town)
}

func (p *Pipeline) search(ctx context.Context, town string) (string, error) {
	court := p.config.Court
	url := court.SearchURL

	if err := p.session.Navigate(ctx, url); err != nil {
		return "", &model.NavigationError{Op: "navigate", URL: url, Err: err}
	}
	if err := p.session.SendKeys(ctx, court.TownInput, town); err != nil {
		return "", &model.NavigationError{Op: "input", URL: url, Err: err}
	}
	if err := p.session.Click(ctx, court.SubmitButton); err != nil {
		return "", &model.NavigationError{Op: "click", URL: url, Err: err}
	}
	if err := p.session.WaitReady(ctx, p.resultsReadySelector()); err != nil {
		return "", &model.NavigationError{Op: "wait", URL: url, Err: err}
	}

	source, err := p.session.Source(ctx)
	if err != nil {
		return "", &model.NavigationError{Op: "source", URL: url, Err: err}
	}
	return source, nil
}

// resultsReadySelector matches the results table or the no-results label
func (p *Pipeline) resultsReadySelector() string {
	court := p.config.Court
	selector := "#" + court.ResultsTableID
	if court.NoResultsSelector != "" {
		selector += ", " + court.NoResultsSelector
	}
	return selector
}

// Run searches one town, parses the results and enriches every record.
// Phone lookup is a separate step, see LookupCandidates.
func (p *Pipeline) Run(ctx context.Context, town string) (*model.RunResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := model.NewRunResult(town)

	source, err := p.search(ctx, town)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", town, err)
	}

	records, err := extract.ParseResultsTable(source, p.config.Court.ResultsTableID)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	if len(records) == 0 {
		msg := extract.NoResultsMessage(source, p.config.Court.NoResultsSelector)
		slog.InfoContext(ctx, "no cases found", "town", town, "message", msg)
	}
	for _, record := range records {
		record.Town = town
	}
	result.Records = records
	slog.DebugContext(ctx, "parsed results", "town", town, "records", len(records))

	outcomes, err := p.enricher.EnrichAll(ctx, records, p.policy)
	if err != nil {
		return nil, err
	}
	outcomes = p.enricher.RetryFailed(ctx, outcomes, p.config.Enrich.Retries)

	result.Outcomes = outcomes
	result.FinishedAt = time.Now().UTC()
	return result, nil
}

// RunTowns runs each town in order. A fatal error stops the remaining towns
// and is returned together with the runs that completed.
func (p *Pipeline) RunTowns(ctx context.Context, towns []string) ([]*model.RunResult, error) {
	results := make([]*model.RunResult, 0, len(towns))

	for _, town := range towns {
		result, err := p.Run(ctx, town)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

// Lookup returns phone candidates for one name and address
func (p *Pipeline) Lookup(ctx context.Context, name, address string) ([]model.PhoneCandidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.resolver.Search(ctx, name, address)
}

// LookupCandidates searches the defendant at the property address of every
// record that has both, keyed by docket. Records are not modified; apply a
// chosen candidate with CaseRecord.ApplyCandidate.
func (p *Pipeline) LookupCandidates(ctx context.Context, records []*model.CaseRecord) (map[string][]model.PhoneCandidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := make(map[string][]model.PhoneCandidate)
	for _, record := range records {
		if record.Defendant == "" || record.PropertyAddress == "" {
			slog.DebugContext(ctx, "skipping lookup", "docket", record.Docket)
			continue
		}

		found, err := p.resolver.Search(ctx, record.Defendant, record.PropertyAddress)
		if err != nil {
			return candidates, fmt.Errorf("lookup %s: %w", record.Docket, err)
		}
		candidates[record.Docket] = found
	}

	return candidates, nil
}

// SetRateLimit changes the pause before each phone lookup navigation
func (p *Pipeline) SetRateLimit(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resolver.SetRateLimit(d)
}

// Close releases the browser session
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.session.Close()
}
