package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hrmigrate/hrmigrate/pkg/config"
	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/pipeline"
)

// maxDocumentBytes bounds an uploaded configuration document
const maxDocumentBytes = 4 << 20

// defaultRunsLimit is the number of validation runs listed when no limit is given
const defaultRunsLimit = 50

// ConfigHandler handles configuration document requests
type ConfigHandler struct {
	service *pipeline.Service
}

// NewConfigHandler creates a new configuration handler
func NewConfigHandler(service *pipeline.Service) *ConfigHandler {
	return &ConfigHandler{service: service}
}

// HandleDocuments returns every effective document of an app
func (h *ConfigHandler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	app, ok := appVar(w, r)
	if !ok {
		return
	}
	docs, err := h.service.Documents(app)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, docs)
}

// HandleDocument handles GET, PUT and DELETE of a single document
func (h *ConfigHandler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	app, ok := appVar(w, r)
	if !ok {
		return
	}
	kind := models.DocumentKind(mux.Vars(r)["document"])
	if !kind.IsValid() {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown document: %s", kind))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, app, kind)
	case http.MethodPut:
		h.handlePut(w, r, app, kind)
	case http.MethodDelete:
		h.handleReset(w, app, kind)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ConfigHandler) handleGet(w http.ResponseWriter, app models.App, kind models.DocumentKind) {
	doc, err := h.service.Document(app, kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, doc)
}

// handlePut accepts a YAML or JSON document. Syntax errors are 400, rules
// that cannot be applied are 422 with the offending rule named.
func (h *ConfigHandler) handlePut(w http.ResponseWriter, r *http.Request, app models.App, kind models.DocumentKind) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		writeErrorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Failed to read request body: %v", err))
		return
	}
	if _, err := config.ParseDocument(kind, data); err != nil {
		if models.IsConfigError(err) {
			writeServiceError(w, err)
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid document: %v", err))
		return
	}
	doc, err := h.service.SaveDocument(app, kind, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, doc)
}

func (h *ConfigHandler) handleReset(w http.ResponseWriter, app models.App, kind models.DocumentKind) {
	if err := h.service.ResetDocument(app, kind); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRuns lists recorded validation runs of an app, newest first
func (h *ConfigHandler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	app, ok := appVar(w, r)
	if !ok {
		return
	}
	runs, err := h.service.History(app, parseLimit(r, defaultRunsLimit))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, runs)
}
