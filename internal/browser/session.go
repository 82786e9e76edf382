// Package browser provides the navigable client shared by every pipeline
// stage. Exactly one Session is used per run and it must never be driven by
// two callers at once: every navigation replaces the current page.
package browser

import "context"

// Session is the subset of browser automation the pipeline relies on
type Session interface {
	// Navigate loads url in the current tab
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until an element matching selector is present
	WaitReady(ctx context.Context, selector string) error

	// Source returns the serialized DOM of the current page
	Source(ctx context.Context) (string, error)

	// SendKeys types text into the element matching selector
	SendKeys(ctx context.Context, selector, text string) error

	// Click clicks the element matching selector
	Click(ctx context.Context, selector string) error

	// Close releases the browser
	Close() error
}
