package driver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alorle/profile-cache/internal/application"
	"github.com/alorle/profile-cache/internal/audit"
)

// AuditHTTPHandler handles the administrative HTTP endpoints over the audit
// store. These bypass the read-through protocol: they only ever read what
// has already been cached.
type AuditHTTPHandler struct {
	service *application.AuditService
}

// NewAuditHTTPHandler creates a new HTTP handler for audit records.
func NewAuditHTTPHandler(service *application.AuditService) *AuditHTTPHandler {
	return &AuditHTTPHandler{service: service}
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *AuditHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/db")

	// GET /db - list all audit records
	if path == "" || path == "/" {
		h.handleList(w, r)
		return
	}

	// GET /db/{id} - get one record by internal id
	h.handleGet(w, r, strings.TrimPrefix(path, "/"))
}

// handleList handles GET /db
func (h *AuditHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]auditRecordResponse, len(records))
	for i, rec := range records {
		response[i] = toAuditRecordResponse(rec)
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGet handles GET /db/{id}
func (h *AuditHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "record id must be a positive integer")
		return
	}

	rec, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, audit.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toAuditRecordResponse(rec))
}
