package submit

import "fmt"

// RequestFailedError reports a non-2xx answer from the form action.
// Detail is the response body as text.
type RequestFailedError struct {
	Status int
	Detail string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Detail)
}

// NetworkError reports that the exchange could not be completed
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a 2xx body that is not a prediction
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid prediction response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
