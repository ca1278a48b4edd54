package credential

import "fmt"

// Reason classifies why a credential could not be obtained.
type Reason string

const (
	// ReasonRejected: the broker answered with a non-2xx status.
	ReasonRejected Reason = "rejected"
	// ReasonTransport: no response was received.
	ReasonTransport Reason = "transport"
	// ReasonMalformed: a 2xx answer carried no secret in either known shape.
	ReasonMalformed Reason = "malformed"
)

// Error is returned by Client.Acquire. For rejections Status and Body hold
// the broker's answer verbatim.
type Error struct {
	Reason Reason
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonRejected:
		return fmt.Sprintf("credential request rejected: status %d: %s", e.Status, e.Body)
	case ReasonTransport:
		return fmt.Sprintf("credential broker unreachable: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("credential response malformed: %v", e.Err)
		}
		return "credential response malformed: no secret value"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
