package engine

import (
	"context"
	"errors"
	"fmt"
)

// FetchError reports a failed engine request: a transport error or a
// non-2xx response. A canceled request is not a FetchError; cancellation
// surfaces as context.Canceled.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("engine request %s failed with status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("engine request %s failed: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsCanceled reports whether an error from a client call is a cancellation
// signal rather than a real failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
