package model

import (
	"slices"
	"strings"
)

// ExportHeader is the column layout of the tabular export
var ExportHeader = []string{"Name", "Docket", "Defendant", "Property Address", "Phone Numbers"}

// PhoneSeparator joins a record's phone numbers into one export field
const PhoneSeparator = "; "

// CaseRecord represents one court case found through the property search
type CaseRecord struct {
	Docket          string   `json:"docket"`           // Site-assigned case number (e.g., "MMX-CV-24-6012345-S")
	Name            string   `json:"name"`             // Petitioner/claimant display string
	Defendant       string   `json:"defendant"`        // Opposing party, empty until enriched
	PropertyAddress string   `json:"property_address"` // Empty until enriched
	PhoneNumbers    []string `json:"phone_numbers"`    // Append-only, empty until a lookup is applied
	Town            string   `json:"town,omitempty"`   // Search input that produced the record
}

// NewCaseRecord creates a record holding only the fields the results table provides
func NewCaseRecord(name, docket string) *CaseRecord {
	return &CaseRecord{
		Name:         name,
		Docket:       docket,
		PhoneNumbers: []string{},
	}
}

// NormalizeDocket strips every "-" separator so the docket can be used as a
// detail-page lookup key
func NormalizeDocket(docket string) string {
	return strings.ReplaceAll(docket, "-", "")
}

// AddPhoneNumbers appends numbers that are not already on the record.
// Empty strings are ignored.
func (c *CaseRecord) AddPhoneNumbers(numbers ...string) {
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" || slices.Contains(c.PhoneNumbers, n) {
			continue
		}
		c.PhoneNumbers = append(c.PhoneNumbers, n)
	}
}

// ApplyCandidate copies the numbers of a caller-chosen candidate into the
// record. Choosing the candidate is up to the caller.
func (c *CaseRecord) ApplyCandidate(candidate PhoneCandidate) {
	c.AddPhoneNumbers(candidate.PhoneNumbers...)
}

// IsEnriched reports whether the detail page yielded anything
func (c *CaseRecord) IsEnriched() bool {
	return c.Defendant != "" || c.PropertyAddress != ""
}

// Row renders the record in ExportHeader column order
func (c CaseRecord) Row() []string {
	return []string{
		c.Name,
		c.Docket,
		c.Defendant,
		c.PropertyAddress,
		strings.Join(c.PhoneNumbers, PhoneSeparator),
	}
}

// PhoneCandidate is one unverified people-search result. It is never merged
// into a CaseRecord automatically.
type PhoneCandidate struct {
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	PhoneNumbers []string `json:"phone_numbers"`        // Never empty
	Similarity   float64  `json:"similarity,omitempty"` // Display only: query name vs candidate name (0..1)
}

// Detail holds the optional fields read from a case detail page. A nil field
// means the selector matched nothing.
type Detail struct {
	Defendant       *string
	PropertyAddress *string
}

// Apply copies every found field into the record, leaving the rest untouched
func (d Detail) Apply(c *CaseRecord) {
	if d.Defendant != nil {
		c.Defendant = *d.Defendant
	}
	if d.PropertyAddress != nil {
		c.PropertyAddress = *d.PropertyAddress
	}
}
