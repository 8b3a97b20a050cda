package response

import (
	"encoding/json"
	"net/http"

	"github.com/ltcare/familyhub/pkg/apperror"
)

// APIResponse is the envelope of every API response
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

// APIError carries a machine-readable code and a caller-safe message
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains pagination metadata
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

type errorStatus struct {
	status int
	code   string
}

var kindStatus = map[apperror.Kind]errorStatus{
	apperror.InvalidInput: {http.StatusBadRequest, "BAD_REQUEST"},
	apperror.NotFound:     {http.StatusNotFound, "NOT_FOUND"},
	apperror.Forbidden:    {http.StatusForbidden, "FORBIDDEN"},
	apperror.Conflict:     {http.StatusConflict, "CONFLICT"},
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; an encode failure means the client went away.
	_ = json.NewEncoder(w).Encode(body)
}

// JSON sends data in a success envelope
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, APIResponse{Success: status >= 200 && status < 300, Data: data})
}

// JSONWithMeta sends data with pagination metadata
func JSONWithMeta(w http.ResponseWriter, status int, data any, meta *Meta) {
	write(w, status, APIResponse{Success: status >= 200 && status < 300, Data: data, Meta: meta})
}

// Message sends a success response carrying only a message
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Error sends an error envelope
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, APIResponse{Error: &APIError{Code: code, Message: message}})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// FromError writes the error response matching the error's kind.
// Internal errors are reported with fallback so store details never reach the client.
func FromError(w http.ResponseWriter, err error, fallback string) {
	if es, ok := kindStatus[apperror.KindOf(err)]; ok {
		Error(w, es.status, es.code, err.Error())
		return
	}
	InternalError(w, fallback)
}
