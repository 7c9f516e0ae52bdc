package errors_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/grouphub/internal/app/features/errors"
	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/testutil"
	"github.com/go-chi/chi/v5"
)

func newRouter() chi.Router {
	h := uierrors.NewHandler()
	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.Get("/things", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

func TestNotFound(t *testing.T) {
	rec := testutil.NewRecorder()
	newRouter().ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/nowhere"))

	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertCode(t, apierr.CodeNotFound)
	rec.AssertContains(t, "/nowhere")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := testutil.NewRecorder()
	newRouter().ServeHTTP(rec, testutil.NewRequest(http.MethodPatch, "/things"))

	rec.AssertStatus(t, http.StatusMethodNotAllowed)
	rec.AssertCode(t, apierr.CodeBadRequest)
}
