package domain

import "fmt"

// RenderError is returned when the browser fails to produce a PDF. Stdout and
// Stderr hold whatever diagnostic output was captured before the failure.
type RenderError struct {
	Theme  string
	Stdout string
	Stderr string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Theme == "" {
		return fmt.Sprintf("render failed: %v", e.Err)
	}
	return fmt.Sprintf("render failed (theme %s): %v", e.Theme, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
