package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hrmigrate/hrmigrate/pkg/export"
	"github.com/hrmigrate/hrmigrate/pkg/ingest"
	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/pipeline"
	"github.com/hrmigrate/hrmigrate/pkg/session"
)

// maxUploadBytes bounds a single uploaded extract
const maxUploadBytes = 64 << 20

// SessionHandler handles session, upload, generate, validate and download requests
type SessionHandler struct {
	sessions *session.Manager
	service  *pipeline.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Manager, service *pipeline.Service) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		service:  service,
	}
}

// sessionView is the JSON form of a session
type sessionView struct {
	ID         string               `json:"id"`
	CreatedAt  time.Time            `json:"created_at"`
	LastAccess time.Time            `json:"last_access"`
	Sources    []session.SourceInfo `json:"sources"`
	Outputs    []string             `json:"outputs"`
}

func viewOf(s *session.Session) sessionView {
	return sessionView{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastAccess: s.LastAccess(),
		Sources:    s.SourceInfos(),
		Outputs:    s.OutputNames(),
	}
}

// session resolves the {id} route variable, writing 404 when it is unknown
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return sess, true
}

// appVar reads the {app} route variable, writing 400 when it is unknown
func appVar(w http.ResponseWriter, r *http.Request) (models.App, bool) {
	app := models.App(mux.Vars(r)["app"])
	if !app.IsValid() {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown app: %s", app))
		return "", false
	}
	return app, true
}

// HandleCreate starts a new session
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	writeJSONResponse(w, http.StatusCreated, viewOf(sess))
}

// HandleList lists live sessions
func (h *SessionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list := h.sessions.List()
	views := make([]sessionView, 0, len(list))
	for _, s := range list {
		views = append(views, viewOf(s))
	}
	writeJSONResponse(w, http.StatusOK, views)
}

// HandleGet describes one session
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, viewOf(sess))
}

// HandleDelete discards a session and everything it holds
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpload stores an extract. The body is the raw file; with a url query
// parameter the file is fetched from that location instead, provided it lies
// below a configured upload root.
func (h *SessionHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	fileType := models.FileType(mux.Vars(r)["fileType"])
	if !fileType.IsValid() {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown file type: %s", fileType))
		return
	}

	var (
		result *pipeline.UploadResult
		err    error
	)
	if url := r.URL.Query().Get("url"); url != "" {
		result, err = h.service.UploadURL(r.Context(), sess, fileType, url)
		if errors.Is(err, ingest.ErrLocationNotAllowed) {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Upload location not allowed: %s", url))
			return
		}
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Failed to load file: %v", err))
			return
		}
	} else {
		data, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if readErr != nil {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Failed to read request body: %v", readErr))
			return
		}
		result, err = h.service.Upload(sess, fileType, data)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse file: %v", err))
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, result)
}

// HandleGenerate runs the transformation of one app
func (h *SessionHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	app, ok := appVar(w, r)
	if !ok {
		return
	}
	result, err := h.service.Generate(r.Context(), sess, app, pipeline.GenerateOptions{Preview: parseBool(r, "preview")})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

// HandleValidate scores the data of one app
func (h *SessionHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	app, ok := appVar(w, r)
	if !ok {
		return
	}
	result, err := h.service.Validate(sess, app)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

// HandleOutputs lists the generated outputs of a session
func (h *SessionHandler) HandleOutputs(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	names := sess.OutputNames()
	outputs := make([]pipeline.OutputSummary, 0, len(names))
	for _, name := range names {
		t := sess.Output(name)
		if t == nil {
			continue
		}
		outputs = append(outputs, pipeline.OutputSummary{Name: name, Rows: t.Len(), Columns: t.Columns})
	}
	writeJSONResponse(w, http.StatusOK, outputs)
}

// HandleDownload streams one output as delimited text
func (h *SessionHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]
	table := sess.Output(name)
	if table == nil {
		writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("Output not found: %s", name))
		return
	}
	delim, err := export.ParseDelimiter(r.URL.Query().Get("delimiter"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDelimited(&buf, table, delim); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Failed to export output: %v", err))
		return
	}
	contentType := "text/csv; charset=utf-8"
	if delim == '\t' {
		contentType = "text/tab-separated-values; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(name, delim)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
