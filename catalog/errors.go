package catalog

import "fmt"

// InvalidInputError reports an upload the builder cannot use. The operator
// recovers by uploading again.
type InvalidInputError struct {
	Row    int // zero-based row index, or -1 when the input as a whole is unusable
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	msg := "invalid input"
	if e.Row >= 0 {
		msg = fmt.Sprintf("invalid input at row %d", e.Row)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}
