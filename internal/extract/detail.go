package extract

import "github.com/ppiankov/docketscan/internal/model"

// DetailSelectors locate the optional fields on a case detail page
type DetailSelectors struct {
	Defendant       string
	PropertyAddress string
}

// ExtractDetail reads the defendant and property address from a case detail
// page. Each lookup is independent: a missing defendant never hides a found
// address, and vice versa.
func ExtractDetail(source string, selectors DetailSelectors) (model.Detail, error) {
	doc, err := parseDocument(source)
	if err != nil {
		return model.Detail{}, err
	}

	var detail model.Detail

	if text, ok := firstText(doc.Selection, selectors.Defendant); ok {
		detail.Defendant = &text
	}

	if text, ok := firstText(doc.Selection, selectors.PropertyAddress); ok {
		detail.PropertyAddress = &text
	}

	return detail, nil
}
