package transport

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when the server does not answer within the call deadline
var ErrTimeout = errors.New("request timed out")

// NetworkError wraps a connection-level failure
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RemoteError is returned for any non-2xx response
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// InvalidResponseError means the body parsed but lacks a field the caller relies on
type InvalidResponseError struct {
	Endpoint string
	Field    string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from %s: missing %q", e.Endpoint, e.Field)
}

// IsTimeout reports whether err is a transport timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// StatusCode extracts the HTTP status of a RemoteError, or 0
func StatusCode(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Status
	}
	return 0
}
