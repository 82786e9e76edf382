package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ppiankov/docketscan/internal/browser"
	"github.com/ppiankov/docketscan/internal/extract"
	"github.com/ppiankov/docketscan/internal/model"
)

// Policy decides what a navigation failure does to the rest of a batch
type Policy int

const (
	// FailFast stops at the first failed record and returns its error
	FailFast Policy = iota
	// ContinueOnError records every failure as an outcome and keeps going
	ContinueOnError
)

// Enricher fills defendant and property address from case detail pages
type Enricher struct {
	session      browser.Session
	court        model.CourtConfig
	selectors    extract.DetailSelectors
	retryBackoff time.Duration
}

// NewEnricher creates an enricher that navigates session to detail pages
func NewEnricher(session browser.Session, court model.CourtConfig, retryBackoff time.Duration) *Enricher {
	return &Enricher{
		session: session,
		court:   court,
		selectors: extract.DetailSelectors{
			Defendant:       court.DefendantSelector,
			PropertyAddress: court.AddressSelector,
		},
		retryBackoff: retryBackoff,
	}
}

// DetailURL returns the detail page address for a docket
func (e *Enricher) DetailURL(docket string) string {
	return e.court.DetailURL + "?" + e.court.DocketParam + "=" + model.NormalizeDocket(docket)
}

// Enrich loads the record's detail page and copies every field found.
// Missing fields leave the record untouched; failing to load the page
// returns a *model.NavigationError.
func (e *Enricher) Enrich(ctx context.Context, record *model.CaseRecord) error {
	url := e.DetailURL(record.Docket)

	if err := e.session.Navigate(ctx, url); err != nil {
		return &model.NavigationError{Op: "navigate", URL: url, Err: err}
	}
	if err := e.session.WaitReady(ctx, e.court.ReadySelector); err != nil {
		return &model.NavigationError{Op: "wait", URL: url, Err: err}
	}

	source, err := e.session.Source(ctx)
	if err != nil {
		return &model.NavigationError{Op: "source", URL: url, Err: err}
	}

	detail, err := extract.ExtractDetail(source, e.selectors)
	if err != nil {
		return fmt.Errorf("extract detail: %w", err)
	}

	if detail.Defendant == nil {
		slog.DebugContext(ctx, "defendant not found", "docket", record.Docket)
	}
	if detail.PropertyAddress == nil {
		slog.DebugContext(ctx, "property address not found", "docket", record.Docket)
	}
	detail.Apply(record)

	return nil
}

// EnrichAll enriches records in order. Under FailFast the first error is
// returned and later records are never visited. Under ContinueOnError every
// record gets an outcome and only context cancellation stops the batch.
func (e *Enricher) EnrichAll(ctx context.Context, records []*model.CaseRecord, policy Policy) ([]model.EnrichOutcome, error) {
	outcomes := make([]model.EnrichOutcome, 0, len(records))

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		err := e.Enrich(ctx, record)
		if err != nil {
			if policy == FailFast {
				return nil, fmt.Errorf("enrich %s: %w", record.Docket, err)
			}
			slog.WarnContext(ctx, "enrich failed", "docket", record.Docket, "error", err)
		}

		outcomes = append(outcomes, model.EnrichOutcome{Record: record, Err: err, Attempts: 1})
	}

	return outcomes, nil
}

// RetryFailed re-enriches failed outcomes with exponential backoff, at most
// retries extra attempts each. Only navigation failures are retried. A
// retries value of zero returns outcomes unchanged.
func (e *Enricher) RetryFailed(ctx context.Context, outcomes []model.EnrichOutcome, retries int) []model.EnrichOutcome {
	if retries <= 0 {
		return outcomes
	}

	retried := make([]model.EnrichOutcome, len(outcomes))
	copy(retried, outcomes)

	for i := range retried {
		if retried[i].OK() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		retried[i] = e.retry(ctx, retried[i], retries)
	}

	return retried
}

func (e *Enricher) retry(ctx context.Context, outcome model.EnrichOutcome, retries int) model.EnrichOutcome {
	attempts := 0
	operation := func() error {
		attempts++
		err := e.Enrich(ctx, outcome.Record)
		if err != nil && !model.IsNavigation(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	// The first call of operation is the first retry.
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(e.newBackOff(), uint64(retries-1)), ctx))

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	if err != nil {
		slog.WarnContext(ctx, "retry exhausted", "docket", outcome.Record.Docket, "attempts", outcome.Attempts+attempts, "error", err)
	} else {
		slog.DebugContext(ctx, "retry recovered", "docket", outcome.Record.Docket, "attempts", outcome.Attempts+attempts)
	}

	outcome.Err = err
	outcome.Attempts += attempts
	return outcome
}

func (e *Enricher) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if e.retryBackoff > 0 {
		b.InitialInterval = e.retryBackoff
	}
	b.MaxElapsedTime = 0
	return b
}
