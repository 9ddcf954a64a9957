// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every response body is an envelope object:
//
//	{ "status": "success", "count": 2, "data": [...] }
//	{ "status": "success", "message": "student updated", "data": {...} }
//	{ "status": "error", "message": "student not found" }
//
// Error envelopes never carry "data".
package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Status values of the envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Messages shared by more than one handler.
const (
	MsgPageNotFound    = "page not found"
	MsgStudentNotFound = "student not found"
	MsgInternalError   = "internal server error"
	MsgInvalidBody     = "invalid request body"
)

// Response is the envelope written for every request.
//
// Count is a pointer so a zero count is still written for an empty list
// while single-record responses leave it out entirely.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
// Header() → WriteHeader() → body, in that order.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK wraps a single record.
func OK(data any) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// List wraps a collection with its size. items must be a non-nil slice so
// it encodes as [] when empty.
func List[T any](items []T) Response {
	if items == nil {
		items = make([]T, 0)
	}
	count := len(items)
	return Response{Status: StatusSuccess, Count: &count, Data: items}
}

// Message is a success with a human-readable message and an optional record.
func Message(message string, data any) Response {
	return Response{Status: StatusSuccess, Message: message, Data: data}
}

// Error is an error envelope with the given message.
func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// ValidationError reports the FIRST failing field only. The validator
// returns errors in struct declaration order, so the order of the request
// struct's fields decides which one wins.
//
// Field names are whatever the validator reports; the student handlers
// register a tag-name func so they match the JSON keys.
func ValidationError(errs validator.ValidationErrors) Response {
	if len(errs) == 0 {
		return Error(MsgInvalidBody)
	}

	e := errs[0]
	switch e.ActualTag() {
	case "required":
		return Error(fmt.Sprintf("'%s' field is required", e.Field()))
	default:
		return Error(fmt.Sprintf("'%s' field is invalid", e.Field()))
	}
}
