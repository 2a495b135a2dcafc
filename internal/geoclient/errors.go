package geoclient

import (
	"errors"
	"fmt"
)

// ErrNoResults marks a successful upstream response carrying zero results.
// Callers treat it as success-with-empty-data, not a failure: geocoding a
// ZIP with no match reads differently to the user than an API outage.
var ErrNoResults = errors.New("no results")

// TransportError is a network/connectivity failure reaching the upstream API.
// Transport failures are the only class the client retries.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-success answer from the upstream API: either a non-2xx
// HTTP response or an error status in the response body. It carries the
// upstream status so callers can surface it verbatim.
type StatusError struct {
	Op       string
	Status   string
	Message  string
	HTTPCode int
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: upstream status %s: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: upstream status %s", e.Op, e.Status)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
