package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/docketscan/internal/model"
)

func threeRecords() []*model.CaseRecord {
	return []*model.CaseRecord{
		model.NewCaseRecord("BANK ONE v. DOE, JANE", "MMX-CV-24-6010001-S"),
		model.NewCaseRecord("BANK TWO v. ROE, RICHARD", "MMX-CV-24-6010002-S"),
		model.NewCaseRecord("CREDIT UNION v. POE, ANN", "MMX-CV-24-6010004-S"),
	}
}

func TestEnricher_DetailURL(t *testing.T) {
	e := NewEnricher(newFakeSession(), testConfig().Court, 0)

	assert.Equal(t,
		"https://civilinquiry.jud.ct.gov/CaseDetail/PublicCaseDetail.aspx?DocketNo=MMXCV246012345S",
		e.DetailURL("MMX-CV-24-6012345-S"))
}

func TestEnricher_EnrichFillsFields(t *testing.T) {
	session := newFakeSession()
	e := NewEnricher(session, testConfig().Court, 0)
	record := model.NewCaseRecord("BANK ONE v. DOE, JANE", "MMX-CV-24-6010001-S")
	session.pages[e.DetailURL(record.Docket)] = detailPage("JANE DOE", "12 Main St, Middletown, CT 06457")

	require.NoError(t, e.Enrich(context.Background(), record))

	assert.Equal(t, "JANE DOE", record.Defendant)
	assert.Equal(t, "12 Main St, Middletown, CT 06457", record.PropertyAddress)
	assert.Equal(t, []string{
		"navigate " + e.DetailURL(record.Docket),
		"wait #ctl00_tblContent",
		"source",
	}, session.calls)
}

func TestEnricher_MissingFieldsAreSoft(t *testing.T) {
	session := newFakeSession()
	e := NewEnricher(session, testConfig().Court, 0)
	record := model.NewCaseRecord("BANK ONE v. DOE, JANE", "MMX-CV-24-6010001-S")
	session.pages[e.DetailURL(record.Docket)] = `<html><body><table id="ctl00_tblContent"></table></body></html>`

	require.NoError(t, e.Enrich(context.Background(), record))
	assert.Empty(t, record.Defendant)
	assert.Empty(t, record.PropertyAddress)
}

func TestEnricher_WaitFailureIsNavigationError(t *testing.T) {
	session := newFakeSession()
	session.waitErr = context.DeadlineExceeded
	e := NewEnricher(session, testConfig().Court, 0)

	err := e.Enrich(context.Background(), model.NewCaseRecord("A v. B", "MMX-CV-24-6010001-S"))

	var navErr *model.NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "wait", navErr.Op)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEnricher_FailFastStopsAtFailedRecord(t *testing.T) {
	session := newFakeSession()
	e := NewEnricher(session, testConfig().Court, 0)
	records := threeRecords()
	session.pages[e.DetailURL(records[0].Docket)] = detailPage("JANE DOE", "12 Main St, Middletown, CT 06457")
	session.failures[e.DetailURL(records[1].Docket)] = 1
	session.pages[e.DetailURL(records[2].Docket)] = detailPage("ANN POE", "7 Pine Rd, Middletown, CT 06457")

	outcomes, err := e.EnrichAll(context.Background(), records, FailFast)

	require.Error(t, err)
	assert.True(t, model.IsNavigation(err))
	assert.ErrorIs(t, err, errUnreachable)
	assert.Contains(t, err.Error(), records[1].Docket)
	assert.Nil(t, outcomes)
	assert.NotContains(t, session.navigations(), e.DetailURL(records[2].Docket))
	assert.Empty(t, records[2].Defendant)
}

func TestEnricher_ContinueOnErrorIsolatesFailures(t *testing.T) {
	session := newFakeSession()
	e := NewEnricher(session, testConfig().Court, 0)
	records := threeRecords()
	session.pages[e.DetailURL(records[0].Docket)] = detailPage("JANE DOE", "12 Main St, Middletown, CT 06457")
	session.failures[e.DetailURL(records[1].Docket)] = 1
	session.pages[e.DetailURL(records[2].Docket)] = detailPage("ANN POE", "7 Pine Rd, Middletown, CT 06457")

	outcomes, err := e.EnrichAll(context.Background(), records, ContinueOnError)

	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].OK())
	assert.False(t, outcomes[1].OK())
	assert.True(t, model.IsNavigation(outcomes[1].Err))
	assert.True(t, outcomes[2].OK())
	assert.Equal(t, "ANN POE", records[2].Defendant)
}

func TestEnricher_ContinueOnErrorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEnricher(newFakeSession(), testConfig().Court, 0)
	_, err := e.EnrichAll(ctx, threeRecords(), ContinueOnError)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEnricher_RetryRecoversTransientFailure(t *testing.T) {
	session := newFakeSession()
	e := NewEnricher(session, testConfig().Court, testConfig().Enrich.RetryBackoff)
	records := threeRecords()[:1]
	url := e.DetailURL(records[0].Docket)
	session.pages[url] = detailPage("JANE DOE", "12 Main St, Middletown, CT 06457")
	session.failures[url] = 2

	outcomes, err := e.EnrichAll(context.Background(), records, ContinueOnError)
	require.NoError(t, err)
	require.False(t, outcomes[0].OK())

	retried := e.RetryFailed(context.Background(), outcomes, 3)

	require.True(t, retried[0].OK())
	assert.Equal(t, 3, retried[0].Attempts)
	assert.Equal(t, "JANE DOE", records[0].Defendant)
	assert.False(t, outcomes[0].OK(), "input outcomes are not modified")
}

func TestEnricher_RetryBoundedByRetries(t *testing.T) {
	session := newFakeSession()
	e := NewEnricher(session, testConfig().Court, testConfig().Enrich.RetryBackoff)
	records := threeRecords()[:1]
	session.failures[e.DetailURL(records[0].Docket)] = 100

	outcomes, err := e.EnrichAll(context.Background(), records, ContinueOnError)
	require.NoError(t, err)

	retried := e.RetryFailed(context.Background(), outcomes, 2)

	assert.False(t, retried[0].OK())
	assert.Equal(t, 3, retried[0].Attempts)
	assert.Len(t, session.navigations(), 3)
}

func TestEnricher_ZeroRetriesIsNoop(t *testing.T) {
	session := newFakeSession()
	e := NewEnricher(session, testConfig().Court, 0)
	outcomes := []model.EnrichOutcome{{Record: threeRecords()[0], Err: errUnreachable, Attempts: 1}}

	retried := e.RetryFailed(context.Background(), outcomes, 0)

	assert.Equal(t, outcomes, retried)
	assert.Empty(t, session.calls)
}
