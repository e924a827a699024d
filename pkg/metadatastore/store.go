package metadatastore

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// ErrNotFound is wrapped by lookups that match no row
var ErrNotFound = errors.New("not found")

// DocumentRecord is a stored configuration document
type DocumentRecord struct {
	App       models.App          `json:"app"`
	Kind      models.DocumentKind `json:"kind"`
	Data      json.RawMessage     `json:"data"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// MetadataStore persists configuration documents edited through the API and
// summaries of validation runs. Session data is never stored here.
type MetadataStore interface {
	// Configuration document operations
	SaveDocument(app models.App, kind models.DocumentKind, data []byte) error
	GetDocument(app models.App, kind models.DocumentKind) (*DocumentRecord, error)
	ListDocuments(app models.App) ([]*DocumentRecord, error)
	DeleteDocument(app models.App, kind models.DocumentKind) error

	// Validation run operations
	SaveValidationRun(run *models.ValidationRun) error
	GetValidationRun(id string) (*models.ValidationRun, error)
	ListValidationRuns(app models.App, limit int) ([]*models.ValidationRun, error)

	Close() error
}
