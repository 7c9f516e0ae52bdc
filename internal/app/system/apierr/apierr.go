// Package apierr defines the stable error codes returned by the JSON API and
// the helpers that write API responses.
//
// Every error body has the shape
//
//	{ "code": "not_found", "message": "user not found" }
//
// Clients should branch on code; message is human-readable and may change.
package apierr

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Code is a stable, documented error identifier.
type Code string

const (
	CodeBadRequest      Code = "bad_request"
	CodeValidation      Code = "validation_failed"
	CodeConflict        Code = "conflict"
	CodeAlreadyMember   Code = "already_member"
	CodeUnauthenticated Code = "unauthenticated"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeNotMember       Code = "not_member"
	CodeRateLimited     Code = "rate_limited"
	CodeInternal        Code = "internal"
)

// Status maps a code to its HTTP status.
func Status(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeConflict, CodeAlreadyMember:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeNotMember:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON error envelope.
type Body struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Write sends an error response for code.
func Write(w http.ResponseWriter, code Code, message string) {
	JSON(w, Status(code), Body{Code: code, Message: message})
}

// Internal logs err with the operation name and sends a generic 500. The
// error detail stays in the log.
func Internal(w http.ResponseWriter, log *zap.Logger, operation string, err error) {
	if log != nil {
		log.Error(operation+" failed", zap.Error(err))
	}
	Write(w, CodeInternal, "internal server error")
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MaxBodyBytes bounds request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by Decode when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Decode reads a JSON request body into dst. Unknown fields are ignored.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}
