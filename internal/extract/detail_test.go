package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDetailSelectors = DetailSelectors{
	Defendant:       "span#ctl00_ContentPlaceHolder1_CaseDetailParties1_gvParties_ctl05_lblPtyPartyName",
	PropertyAddress: "span#ctl00_ContentPlaceHolder1_CaseDetailBasicInfo1_lblPropertyAddress",
}

func TestExtractDetail_BothFields(t *testing.T) {
	page := `<table id="ctl00_tblContent"><tr><td>
		<span id="ctl00_ContentPlaceHolder1_CaseDetailBasicInfo1_lblPropertyAddress">12 MAIN ST, MIDDLETOWN, CT 06457</span>
		<span id="ctl00_ContentPlaceHolder1_CaseDetailParties1_gvParties_ctl05_lblPtyPartyName"> JOHN SMITH </span>
	</td></tr></table>`

	detail, err := ExtractDetail(page, testDetailSelectors)
	require.NoError(t, err)
	require.NotNil(t, detail.Defendant)
	require.NotNil(t, detail.PropertyAddress)
	assert.Equal(t, "JOHN SMITH", *detail.Defendant)
	assert.Equal(t, "12 MAIN ST, MIDDLETOWN, CT 06457", *detail.PropertyAddress)
}

func TestExtractDetail_MissingDefendantKeepsAddress(t *testing.T) {
	page := `<span id="ctl00_ContentPlaceHolder1_CaseDetailBasicInfo1_lblPropertyAddress">4 HIGH ST</span>`

	detail, err := ExtractDetail(page, testDetailSelectors)
	require.NoError(t, err)
	assert.Nil(t, detail.Defendant)
	require.NotNil(t, detail.PropertyAddress)
	assert.Equal(t, "4 HIGH ST", *detail.PropertyAddress)
}

func TestExtractDetail_MissingAddressKeepsDefendant(t *testing.T) {
	page := `<span id="ctl00_ContentPlaceHolder1_CaseDetailParties1_gvParties_ctl05_lblPtyPartyName">JANE DOE</span>`

	detail, err := ExtractDetail(page, testDetailSelectors)
	require.NoError(t, err)
	require.NotNil(t, detail.Defendant)
	assert.Equal(t, "JANE DOE", *detail.Defendant)
	assert.Nil(t, detail.PropertyAddress)
}

func TestExtractDetail_NothingFound(t *testing.T) {
	detail, err := ExtractDetail(`<html><body></body></html>`, testDetailSelectors)
	require.NoError(t, err)
	assert.Nil(t, detail.Defendant)
	assert.Nil(t, detail.PropertyAddress)
}

func TestExtractDetail_EmptySelectorNeverMatches(t *testing.T) {
	detail, err := ExtractDetail(`<span>x</span>`, DetailSelectors{})
	require.NoError(t, err)
	assert.Nil(t, detail.Defendant)
	assert.Nil(t, detail.PropertyAddress)
}
