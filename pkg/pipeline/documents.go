package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hrmigrate/hrmigrate/pkg/config"
	"github.com/hrmigrate/hrmigrate/pkg/metadatastore"
	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// Documents returns the effective configuration of app: built-in defaults,
// overridden by files in the configuration directory, overridden by
// documents saved through the service
func (s *Service) Documents(app models.App) (*config.Documents, error) {
	docs, err := config.LoadDocuments(s.configDir, app)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return docs, nil
	}

	records, err := s.store.ListDocuments(app)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored documents: %w", err)
	}
	for _, rec := range records {
		if !rec.Kind.IsValid() {
			continue
		}
		// JSON is valid YAML, so stored documents go through the same parsers
		doc, err := config.ParseDocument(rec.Kind, rec.Data)
		if err != nil {
			return nil, fmt.Errorf("stored %s document of %s: %w", rec.Kind, app, err)
		}
		if err := docs.Set(rec.Kind, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// Document returns one effective configuration document
func (s *Service) Document(app models.App, kind models.DocumentKind) (any, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}
	docs, err := s.Documents(app)
	if err != nil {
		return nil, err
	}
	return docs.Get(kind), nil
}

// SaveDocument validates and stores a configuration document given as YAML
// or JSON. Invalid documents are rejected with a *models.ConfigError or a
// parse error and nothing is stored.
func (s *Service) SaveDocument(app models.App, kind models.DocumentKind, data []byte) (any, error) {
	if !app.IsValid() {
		return nil, fmt.Errorf("unknown app %q", app)
	}
	doc, err := config.ParseDocument(kind, data)
	if err != nil {
		return nil, err
	}

	if s.store == nil {
		if err := config.WriteDocument(s.configDir, app, kind, doc); err != nil {
			return nil, err
		}
	} else {
		encoded, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s document: %w", kind, err)
		}
		if err := s.store.SaveDocument(app, kind, encoded); err != nil {
			return nil, err
		}
	}

	s.log.WithFields(logrus.Fields{"app": app, "document": kind}).Info("Configuration document saved")
	return doc, nil
}

// ResetDocument removes a stored document so the file or built-in default
// applies again
func (s *Service) ResetDocument(app models.App, kind models.DocumentKind) error {
	if s.store == nil {
		return nil
	}
	err := s.store.DeleteDocument(app, kind)
	if errors.Is(err, metadatastore.ErrNotFound) {
		return nil
	}
	return err
}
