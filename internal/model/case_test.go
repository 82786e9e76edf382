package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDocket(t *testing.T) {
	got := NormalizeDocket("MMX-CV-24-6012345-S")

	assert.Equal(t, "MMXCV246012345S", got)
	assert.NotContains(t, got, "-")
	assert.Equal(t, got, NormalizeDocket(got))
	assert.Equal(t, "", NormalizeDocket("---"))
}

func TestNewCaseRecord_EmptyEnrichment(t *testing.T) {
	record := NewCaseRecord("BANK ONE v. DOE, JANE", "MMX-CV-24-6010001-S")

	assert.Empty(t, record.Defendant)
	assert.Empty(t, record.PropertyAddress)
	assert.NotNil(t, record.PhoneNumbers)
	assert.Empty(t, record.PhoneNumbers)
	assert.False(t, record.IsEnriched())
}

func TestAddPhoneNumbers_AppendOnlyAndDeduped(t *testing.T) {
	record := NewCaseRecord("A v. B", "MMX-CV-24-6010001-S")

	record.AddPhoneNumbers("(860) 555-0101", "", "  ")
	record.AddPhoneNumbers(" (860) 555-0101 ", "(860) 555-0102")

	assert.Equal(t, []string{"(860) 555-0101", "(860) 555-0102"}, record.PhoneNumbers)
}

func TestApplyCandidate(t *testing.T) {
	record := NewCaseRecord("A v. B", "MMX-CV-24-6010001-S")
	record.AddPhoneNumbers("(860) 555-0100")

	record.ApplyCandidate(PhoneCandidate{Name: "Jane Doe", PhoneNumbers: []string{"(860) 555-0101"}})

	assert.Equal(t, []string{"(860) 555-0100", "(860) 555-0101"}, record.PhoneNumbers)
}

func TestRow_MatchesHeader(t *testing.T) {
	record := NewCaseRecord("A v. B", "MMX-CV-24-6010001-S")
	record.Defendant = "B"
	record.AddPhoneNumbers("1", "2")

	row := record.Row()

	assert.Len(t, row, len(ExportHeader))
	assert.Equal(t, "1; 2", row[4])
}

func TestDetail_ApplyOnlyFoundFields(t *testing.T) {
	record := NewCaseRecord("A v. B", "MMX-CV-24-6010001-S")
	record.PropertyAddress = "kept"
	defendant := "JANE DOE"

	Detail{Defendant: &defendant}.Apply(record)

	assert.Equal(t, "JANE DOE", record.Defendant)
	assert.Equal(t, "kept", record.PropertyAddress)
	assert.True(t, record.IsEnriched())
}

func TestNavigationError(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := fmt.Errorf("enrich X: %w", &NavigationError{Op: "navigate", URL: "https://example.com", Err: cause})

	assert.True(t, IsNavigation(err))
	assert.ErrorIs(t, err, cause)
	assert.True(t, strings.HasSuffix(err.Error(), "navigate https://example.com: net::ERR_NAME_NOT_RESOLVED"))
	assert.False(t, IsNavigation(cause))
}

func TestRunResult(t *testing.T) {
	run := NewRunResult("Middletown")
	ok := NewCaseRecord("A v. B", "1")
	bad := NewCaseRecord("C v. D", "2")
	run.Outcomes = []EnrichOutcome{{Record: ok, Attempts: 1}, {Record: bad, Err: errors.New("boom"), Attempts: 2}}

	assert.Equal(t, time.Duration(0), run.Duration())
	run.FinishedAt = run.StartedAt.Add(time.Second)
	assert.Equal(t, time.Second, run.Duration())

	failed := run.Failed()
	assert.Len(t, failed, 1)
	assert.Same(t, bad, failed[0].Record)
	assert.NotEqual(t, NewRunResult("x").RunID, run.RunID)
}
