package api

import "time"

const (
	defaultBaseURL     = "http://localhost:8000"
	defaultHTTPTimeout = 10 * time.Second
	// Error bodies beyond this are not worth reading for a message.
	maxErrorBody = 64 << 10

	genericErrorMessage = "An error occurred"

	headerRequestID = "X-Request-ID"
)
