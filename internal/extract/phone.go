package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/docketscan/internal/model"
)

// PhoneSelectors locate result cards and their fields on the people-search
// results page
type PhoneSelectors struct {
	Card        string
	Name        string
	Address     string
	Phone       string // Anchors inside the phone section
	PhonePrefix string // Only anchors whose href starts with this count
}

// ExtractPhoneCandidates reads at most maxCards result cards in page order.
// Cards without a single phone number are dropped; name and address may be
// empty on an emitted candidate. Cards past maxCards are never inspected.
func ExtractPhoneCandidates(source string, selectors PhoneSelectors, maxCards int) ([]model.PhoneCandidate, error) {
	doc, err := parseDocument(source)
	if err != nil {
		return nil, err
	}

	candidates := []model.PhoneCandidate{}

	cards := doc.Find(selectors.Card)
	if maxCards >= 0 && cards.Length() > maxCards {
		cards = cards.Slice(0, maxCards)
	}

	cards.Each(func(_ int, card *goquery.Selection) {
		numbers := phoneNumbers(card, selectors)
		if len(numbers) == 0 {
			return
		}

		name, _ := firstText(card, selectors.Name)
		address, _ := firstText(card, selectors.Address)

		candidates = append(candidates, model.PhoneCandidate{
			Name:         name,
			Address:      address,
			PhoneNumbers: numbers,
		})
	})

	return candidates, nil
}

// phoneNumbers returns the text of every telephone anchor in the card, in
// document order
func phoneNumbers(card *goquery.Selection, selectors PhoneSelectors) []string {
	numbers := []string{}

	card.Find(selectors.Phone).Each(func(_ int, anchor *goquery.Selection) {
		href, ok := anchor.Attr("href")
		if !ok || !strings.HasPrefix(strings.TrimSpace(href), selectors.PhonePrefix) {
			return
		}
		if text := cleanText(anchor); text != "" {
			numbers = append(numbers, text)
		}
	})

	return numbers
}
