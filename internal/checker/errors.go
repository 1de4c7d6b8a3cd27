package checker

import "fmt"

const (
	unknownServerError = "Unknown server error."
	checkServerLogs    = "Check server logs."
)

// ValidationError means the query was rejected before reaching the network.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// TransportError means the request could not be sent or the response could not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("request failed: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx answer from the endpoint.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Server responded with status %d: %s", e.StatusCode, e.Message)
}

// ParseError means a 2xx body was not a usable DiagnosisResult.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("invalid diagnosis response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
