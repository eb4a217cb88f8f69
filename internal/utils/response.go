package utils

import "time"

// APIResponse is the envelope every JSON endpoint returns. Data carries the
// payload on success, Error the reason on failure; both are omitted when
// empty so redemption replies stay small for handheld scanners.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func SuccessResponse(message string, data any) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, reason string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     reason,
		Timestamp: time.Now(),
	}
}
