// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
)

// Handler answers requests the router cannot match, using the same JSON
// error body as every other endpoint.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound is installed as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	apierr.Write(w, apierr.CodeNotFound, "no route for "+r.Method+" "+r.URL.Path)
}

// MethodNotAllowed is installed as the router's MethodNotAllowed handler.
// There is no dedicated code for it, so it is reported as a bad request
// with the usual 405 status.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierr.JSON(w, http.StatusMethodNotAllowed, apierr.Body{
		Code:    apierr.CodeBadRequest,
		Message: r.Method + " is not allowed on " + r.URL.Path,
	})
}
