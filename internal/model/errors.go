package model

import (
	"errors"
	"fmt"
)

// ErrDisallowed is returned when robots.txt forbids a lookup URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// NavigationError is a browser-level failure to reach or render a page.
// It is fatal to the batch unless the caller opts into isolated outcomes.
type NavigationError struct {
	Op  string // navigate, wait, source, input, click
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// IsNavigation reports whether err carries a NavigationError
func IsNavigation(err error) bool {
	var navErr *NavigationError
	return errors.As(err, &navErr)
}
