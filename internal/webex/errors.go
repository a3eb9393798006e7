package webex

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx reply from the Webex REST API.
type APIError struct {
	StatusCode int
	Message    string
	TrackingID string
}

func (e *APIError) Error() string {
	if e.TrackingID != "" {
		return fmt.Sprintf("webex: status %d: %s (tracking id %s)", e.StatusCode, e.Message, e.TrackingID)
	}
	return fmt.Sprintf("webex: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

type errorBody struct {
	Message    string `json:"message"`
	TrackingID string `json:"trackingId"`
}
