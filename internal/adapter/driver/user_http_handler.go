package driver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alorle/profile-cache/internal/application"
	"github.com/alorle/profile-cache/internal/audit"
	"github.com/alorle/profile-cache/internal/profile"
)

// UserHTTPHandler handles HTTP requests for read-through profile lookups.
type UserHTTPHandler struct {
	service *application.LookupService
}

// NewUserHTTPHandler creates a new HTTP handler for profile lookups.
func NewUserHTTPHandler(service *application.LookupService) *UserHTTPHandler {
	return &UserHTTPHandler{service: service}
}

// ServeHTTP handles GET /user/{id}
func (h *UserHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/user/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	p, err := h.service.Lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, audit.ErrInvalidExternalID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var notFound *profile.NotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, notFound.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}
