// Package session holds per-user working state: uploaded sources, generated
// outputs and memoized intermediate results.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/hrmigrate/hrmigrate/pkg/ingest"
	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// SourceInfo describes how an uploaded source was read
type SourceInfo struct {
	FileType   models.FileType       `json:"file_type"`
	Rows       int                   `json:"rows"`
	Columns    []string              `json:"columns"`
	Encoding   string                `json:"encoding,omitempty"`
	Delimiter  string                `json:"delimiter,omitempty"`
	Warnings   []ingest.ParseWarning `json:"warnings,omitempty"`
	UploadedAt time.Time             `json:"uploaded_at"`
}

type memoEntry struct {
	fingerprint uint64
	value       any
}

// Session is one user's working set. All methods are safe for concurrent use.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu         sync.RWMutex
	lastAccess time.Time
	sources    map[models.FileType]*models.Table
	info       map[models.FileType]SourceInfo
	outputs    map[string]*models.Table
	memo       map[string]memoEntry
}

// New creates an empty session
func New(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		CreatedAt:  now,
		lastAccess: now,
		sources:    make(map[models.FileType]*models.Table),
		info:       make(map[models.FileType]SourceInfo),
		outputs:    make(map[string]*models.Table),
		memo:       make(map[string]memoEntry),
	}
}

// Touch records activity on the session
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastAccess = time.Now().UTC()
	s.mu.Unlock()
}

// LastAccess returns the time of the last recorded activity
func (s *Session) LastAccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}

// SetSource stores an uploaded source table, replacing any previous upload
func (s *Session) SetSource(ft models.FileType, table *models.Table, info SourceInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[ft] = table
	info.FileType = ft
	info.Rows = table.Len()
	if table != nil {
		info.Columns = table.Columns
	}
	if info.UploadedAt.IsZero() {
		info.UploadedAt = time.Now().UTC()
	}
	s.info[ft] = info
	s.lastAccess = time.Now().UTC()
}

// RemoveSource drops an uploaded source
func (s *Session) RemoveSource(ft models.FileType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, ft)
	delete(s.info, ft)
}

// Source returns an uploaded table or nil
func (s *Session) Source(ft models.FileType) *models.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources[ft]
}

// Sources returns a snapshot of the uploaded tables
func (s *Session) Sources() map[models.FileType]*models.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.FileType]*models.Table, len(s.sources))
	for k, v := range s.sources {
		out[k] = v
	}
	return out
}

// SourceInfos lists upload metadata ordered by file type
func (s *Session) SourceInfos() []SourceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SourceInfo, 0, len(s.info))
	for _, info := range s.info {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileType < out[j].FileType })
	return out
}

// SetOutput stores a generated table under its name
func (s *Session) SetOutput(name string, table *models.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[name] = table
}

// Output returns a generated table or nil
func (s *Session) Output(name string) *models.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outputs[name]
}

// OutputNames lists generated outputs in name order
func (s *Session) OutputNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.outputs))
	for n := range s.outputs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ClearOutputs drops generated outputs whose names satisfy match
func (s *Session) ClearOutputs(match func(name string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n := range s.outputs {
		if match(n) {
			delete(s.outputs, n)
		}
	}
}

// Memo returns the value cached under key when it was computed for the same
// fingerprint. Otherwise compute runs and its result replaces the entry.
// Errors are not cached. Compute runs without the session lock held.
func (s *Session) Memo(key string, fingerprint uint64, compute func() (any, error)) (any, bool, error) {
	s.mu.RLock()
	entry, ok := s.memo[key]
	s.mu.RUnlock()
	if ok && entry.fingerprint == fingerprint {
		return entry.value, true, nil
	}

	value, err := compute()
	if err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	s.memo[key] = memoEntry{fingerprint: fingerprint, value: value}
	s.mu.Unlock()
	return value, false, nil
}

// Forget drops a memoized value
func (s *Session) Forget(key string) {
	s.mu.Lock()
	delete(s.memo, key)
	s.mu.Unlock()
}
