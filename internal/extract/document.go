package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// parseDocument parses raw page source into a queryable document
func parseDocument(source string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// cleanText trims a selection's text and collapses inner whitespace runs
func cleanText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// firstText returns the cleaned text of the first match of selector, and
// whether anything matched at all
func firstText(doc *goquery.Selection, selector string) (string, bool) {
	if selector == "" {
		return "", false
	}
	match := doc.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	return cleanText(match), true
}
