package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/hrmigrate/pkg/metadatastore"
	"github.com/hrmigrate/hrmigrate/pkg/pipeline"
	"github.com/hrmigrate/hrmigrate/pkg/session"
)

const pa0002CSV = `Pers.No.,First name,Last name
1001,anna,schmidt
1002,max,weber
`

const pa0001CSV = `Pers.No.;Organizational unit;Start date
1001;finance;01.03.2019
`

func setupTestServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs", "picklists"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "picklists", "status_mapping.csv"),
		[]byte("status_code,status_label\nACT,Active\n"), 0644))

	store, err := metadatastore.NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	manager := session.NewManager(0)
	svc := pipeline.NewService(store, pipeline.Options{ConfigDir: filepath.Join(dir, "configs")})
	return NewServer(manager, svc, "0"), manager
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	s, _ := setupTestServer(t)
	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSessionLifecycle(t *testing.T) {
	s, manager := setupTestServer(t)

	w := do(t, s, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)
	assert.Equal(t, 1, manager.Len())

	w = do(t, s, http.MethodGet, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/sessions", "")
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = do(t, s, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, s, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpload(t *testing.T) {
	s, manager := setupTestServer(t)
	sess := manager.Create()
	base := "/api/sessions/" + sess.ID + "/files/"

	w := do(t, s, http.MethodPut, base+"PA0002", pa0002CSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := decode(t, w)["info"].(map[string]any)
	assert.Equal(t, float64(2), info["rows"])
	assert.NotNil(t, sess.Source("PA0002"))

	w = do(t, s, http.MethodPut, base+"PA9999", pa0002CSV)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPut, base+"PA0001", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPut, "/api/sessions/missing/files/PA0002", pa0002CSV)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpload_LocationNotAllowed(t *testing.T) {
	s, manager := setupTestServer(t)
	sess := manager.Create()
	base := "/api/sessions/" + sess.ID + "/files/PA0002?url="

	for _, location := range []string{"/etc/passwd", "file:///etc/passwd"} {
		w := do(t, s, http.MethodPut, base+location, "")
		require.Equal(t, http.StatusBadRequest, w.Code, location)
		assert.Contains(t, decode(t, w)["error"], "not allowed")
	}
	assert.Nil(t, sess.Source("PA0002"))
}

func TestGenerateAndDownload(t *testing.T) {
	s, manager := setupTestServer(t)
	sess := manager.Create()
	prefix := "/api/sessions/" + sess.ID

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, prefix+"/files/PA0002", pa0002CSV).Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, prefix+"/files/PA0001", pa0001CSV).Code)

	w := do(t, s, http.MethodPost, prefix+"/employee/generate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	outputs := body["outputs"].([]any)
	require.Len(t, outputs, 1)
	assert.Equal(t, pipeline.OutputEmployee, outputs[0].(map[string]any)["name"])

	w = do(t, s, http.MethodGet, prefix+"/outputs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, float64(2), listed[0]["rows"])

	w = do(t, s, http.MethodGet, prefix+"/outputs/"+pipeline.OutputEmployee+"?delimiter=semicolon", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "USERID")
	assert.Contains(t, lines[0], ";")
	assert.Contains(t, lines[1], "1001")

	w = do(t, s, http.MethodGet, prefix+"/outputs/"+pipeline.OutputEmployee+"?delimiter=ab", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, s, http.MethodGet, prefix+"/outputs/Nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_Preview(t *testing.T) {
	s, manager := setupTestServer(t)
	sess := manager.Create()
	prefix := "/api/sessions/" + sess.ID
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, prefix+"/files/PA0002", pa0002CSV).Code)

	w := do(t, s, http.MethodPost, prefix+"/employee/generate?preview=true", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["preview"])
	assert.Empty(t, sess.OutputNames())
}

func TestGenerate_Errors(t *testing.T) {
	s, manager := setupTestServer(t)
	sess := manager.Create()
	prefix := "/api/sessions/" + sess.ID

	w := do(t, s, http.MethodPost, prefix+"/employee/generate", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "PA0002", body["file"])
	assert.Equal(t, "missing required file", body["kind"])

	w = do(t, s, http.MethodPost, prefix+"/finance/generate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, prefix+"/employee/generate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decode(t, w)["error"])
}

func TestRouting_Fallbacks(t *testing.T) {
	s, manager := setupTestServer(t)
	sess := manager.Create()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodDelete, "/api/sessions", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/sessions/" + sess.ID + "/files/PA0002", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/sessions/" + sess.ID + "/employee/validate", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/config/employee/template", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, "")
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "error", decode(t, w)["status"])
		})
	}
}

func TestValidateAndRuns(t *testing.T) {
	s, manager := setupTestServer(t)
	sess := manager.Create()
	prefix := "/api/sessions/" + sess.ID
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, prefix+"/files/PA0002", pa0002CSV).Code)

	w := do(t, s, http.MethodGet, prefix+"/employee/validate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	report := body["report"].(map[string]any)
	assert.Greater(t, report["score"].(float64), 0.0)
	assert.NotEmpty(t, body["run"].(map[string]any)["id"])

	w = do(t, s, http.MethodGet, prefix+"/org/validate", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/runs/employee?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	assert.Len(t, runs, 1)
	assert.Equal(t, sess.ID, runs[0]["session_id"])
}

func TestConfigDocuments(t *testing.T) {
	s, _ := setupTestServer(t)

	w := do(t, s, http.MethodGet, "/api/config/employee", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "employee", body["app"])
	assert.NotNil(t, body["column_mappings"])

	mappings := "rules:\n  - target_field: USERID\n    source_file: PA0002\n    source_column: Pers.No.\n    applies_to: Employee\n"
	w = do(t, s, http.MethodPut, "/api/config/employee/column_mappings", mappings)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/config/employee/column_mappings", "")
	require.Equal(t, http.StatusOK, w.Code)
	rules := decode(t, w)["rules"].([]any)
	assert.Len(t, rules, 1)

	w = do(t, s, http.MethodDelete, "/api/config/employee/column_mappings", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodGet, "/api/config/employee/column_mappings", "")
	assert.Greater(t, len(decode(t, w)["rules"].([]any)), 1)
}

func TestConfigDocuments_Invalid(t *testing.T) {
	s, _ := setupTestServer(t)

	w := do(t, s, http.MethodPut, "/api/config/employee/column_mappings", "rules: [")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPut, "/api/config/employee/column_mappings", "rules:\n  - target_field: X\n  - target_field: X\n")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "X", decode(t, w)["rule"])

	w = do(t, s, http.MethodGet, "/api/config/employee/layout", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, s, http.MethodGet, "/api/config/finance/template", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
