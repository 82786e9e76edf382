package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/docketscan/internal/model"
)

func TestExportRecords_AbortedRunKeepsPreviousExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.csv")
	previous := "Name,Docket,Defendant,Property Address,Phone Numbers\n" +
		"A v. B,MMX-CV-24-6010001-S,B,1 Elm St,\n"
	require.NoError(t, os.WriteFile(path, []byte(previous), 0o644))

	written, err := exportRecords(path, nil, errors.New("navigate: net::ERR_CONNECTION_RESET"))
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, previous, string(data))
}

func TestExportRecords_CompletedRunWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cases.csv")
	record := model.NewCaseRecord("BANK v. DOE", "MMX-CV-24-6010002-S")

	written, err := exportRecords(path, []*model.CaseRecord{record}, nil)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MMX-CV-24-6010002-S")
}

func TestCountEnriched(t *testing.T) {
	bare := model.NewCaseRecord("A v. B", "MMX-CV-24-6010001-S")
	enriched := model.NewCaseRecord("C v. D", "MMX-CV-24-6010002-S")
	enriched.PropertyAddress = "12 Main St"

	assert.Equal(t, 1, countEnriched([]*model.CaseRecord{bare, enriched}))
	assert.Zero(t, countEnriched(nil))
}
