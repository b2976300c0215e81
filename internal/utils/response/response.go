// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Success responses look like:
//
//	{ "success": true, "message": "...", "data": {...} }
//
// Error responses always look like:
//
//	{ "success": false, "error": "Validation error", "message": "...", "details": [...] }
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/validation"
)

// Response is the envelope for successful requests.
type Response struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       any              `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// ErrorResponse is the envelope for every failure.
type ErrorResponse struct {
	Success bool                    `json:"success"`
	Error   string                  `json:"error"`
	Message string                  `json:"message,omitempty"`
	Details []validation.FieldError `json:"details,omitempty"`

	// Suggestion points the client somewhere useful, e.g. the API docs.
	Suggestion string `json:"suggestion,omitempty"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK wraps data in a success envelope.
func OK(data any, message string) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Page wraps one page of a list in a success envelope.
func Page(data any, meta pagination.Meta) Response {
	return Response{Success: true, Data: data, Pagination: &meta}
}

// Error builds a failure envelope from a short error title and a
// human-readable message.
func Error(title, message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: title, Message: message}
}

// ValidationError converts rejected fields into the standard 400 body.
//
// Example output:
//
//	{ "success": false, "error": "Validation error", "message": "Invalid input data",
//	  "details": [ { "field": "name", "message": "Name must be between 2 and 100 characters" } ] }
func ValidationError(err *validation.Error) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   "Validation error",
		Message: "Invalid input data",
		Details: err.Fields,
	}
}
