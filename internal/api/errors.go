package api

import "fmt"

// StatusError indicates the storefront answered with a non-2xx status.
// Snippet holds the first bytes of the body for diagnostics.
type StatusError struct {
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storefront returned status %d", e.StatusCode)
}

// DecodeError indicates the response body was not the JSON the endpoint
// promised: wrong content type or a malformed payload.
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode storefront response (%s): %v", e.ContentType, e.Err)
	}
	return fmt.Sprintf("storefront returned non-JSON response (%s)", e.ContentType)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is an application-level rejection: the endpoint responded 2xx with
// a well-formed body carrying success:false and a human-readable message.
// The message is safe to surface to the shopper as-is.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "storefront request rejected"
	}
	return e.Message
}
