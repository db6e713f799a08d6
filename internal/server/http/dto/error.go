package dto

import "encoding/json"

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}
