package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is surfaced when a call still fails authentication
	// after the single reauthentication retry.
	ErrUnauthorized = errors.New("remote: unauthorized")

	// ErrMalformedEndpoint reports an unusable base URL or path.
	ErrMalformedEndpoint = errors.New("remote: malformed endpoint")
)

// ClientError is a non-2xx response in the 4xx range, body kept for
// diagnostics.
type ClientError struct {
	Code int
	Body string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("remote: client error %d: %s", e.Code, e.Body)
}

// ServerError is a non-2xx response in the 5xx range.
type ServerError struct {
	Code int
	Body string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("remote: server error %d: %s", e.Code, e.Body)
}

// DecodingError wraps a response body that could not be decoded.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("remote: decoding response: %v", e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}
