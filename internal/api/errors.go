package api

import (
	"errors"
	"fmt"
)

// RequestError is a non-2xx response. Message is the backend's error text
// verbatim, or a generic message when the body carried none.
type RequestError struct {
	Status   int
	Message  string
	Method   string
	Endpoint string
}

func (e *RequestError) Error() string {
	return e.Message
}

// TransportError means no response arrived: DNS, connection, timeout or cancellation.
type TransportError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means a 2xx response body did not match the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AsRequestError unwraps err into a RequestError.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// IsRejection reports whether the backend answered with an error status.
func IsRejection(err error) bool {
	_, ok := AsRequestError(err)
	return ok
}

// IsTransport reports whether the request never got a response.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if reqErr, ok := AsRequestError(err); ok {
		return reqErr.Status
	}
	return 0
}

// Message returns text suitable for showing to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if reqErr, ok := AsRequestError(err); ok {
		return reqErr.Message
	}
	return err.Error()
}
