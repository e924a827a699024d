// Package pipeline runs the employee, payroll and org workflows over a
// session: merging uploaded extracts, leveling the hierarchy, mapping the
// results to output layouts and scoring data health.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hrmigrate/hrmigrate/pkg/config"
	"github.com/hrmigrate/hrmigrate/pkg/health"
	"github.com/hrmigrate/hrmigrate/pkg/hierarchy"
	"github.com/hrmigrate/hrmigrate/pkg/ingest"
	"github.com/hrmigrate/hrmigrate/pkg/mapping"
	"github.com/hrmigrate/hrmigrate/pkg/metadatastore"
	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/picklist"
	"github.com/hrmigrate/hrmigrate/pkg/session"
	"github.com/hrmigrate/hrmigrate/pkg/transform"
)

// DefaultPreviewRows is the number of rows a preview maps
const DefaultPreviewRows = 100

// Options configures a Service
type Options struct {
	ConfigDir          string
	MaxHierarchyLevels int
	PreviewRows        int
	Loader             *ingest.Loader
	Registry           *transform.Registry
	// UploadRoots bounds the locations UploadURL may read. Empty disables it.
	UploadRoots []string
}

// Service provides the workflow operations. It keeps no per-session state;
// everything a run produces is written to the session passed in.
type Service struct {
	store       metadatastore.MetadataStore
	configDir   string
	maxLevels   int
	previewRows int
	loader      *ingest.Loader
	registry    *transform.Registry
	uploadRoots []string
	engine      *mapping.Engine
	scorer      *health.Scorer
	log         *logrus.Entry
}

// NewService creates a new pipeline service. The store may be nil, in which
// case edited documents are written to the configuration directory and
// validation runs are not recorded.
func NewService(store metadatastore.MetadataStore, opts Options) *Service {
	s := &Service{
		store:       store,
		configDir:   opts.ConfigDir,
		maxLevels:   opts.MaxHierarchyLevels,
		previewRows: opts.PreviewRows,
		loader:      opts.Loader,
		registry:    opts.Registry,
		uploadRoots: opts.UploadRoots,
		engine:      mapping.NewEngine(),
		scorer:      health.NewScorer(),
		log:         logrus.WithField("component", "pipeline"),
	}
	if s.maxLevels <= 0 {
		s.maxLevels = hierarchy.DefaultMaxLevels
	}
	if s.previewRows <= 0 {
		s.previewRows = DefaultPreviewRows
	}
	if s.loader == nil {
		s.loader = ingest.NewLoader()
	}
	if s.registry == nil {
		s.registry = transform.Default
	}
	return s
}

// UploadResult reports how an uploaded file was read
type UploadResult struct {
	Info     session.SourceInfo    `json:"info"`
	Warnings []ingest.ParseWarning `json:"warnings,omitempty"`
}

// Upload parses raw file bytes as fileType and stores the table in the
// session. Outputs built from the previous upload are dropped.
func (s *Service) Upload(sess *session.Session, fileType models.FileType, data []byte) (*UploadResult, error) {
	if !fileType.IsValid() {
		return nil, fmt.Errorf("unknown file type %q", fileType)
	}
	res, err := ingest.Parse(data, string(fileType), ingest.Options{KeyColumns: ingest.DefaultKeyColumns[fileType]})
	if err != nil {
		return nil, err
	}
	return s.saveUpload(sess, fileType, res), nil
}

// UploadURL fetches a file through the ingest loader and stores it like
// Upload. Only locations below the configured upload roots are read.
func (s *Service) UploadURL(ctx context.Context, sess *session.Session, fileType models.FileType, URL string) (*UploadResult, error) {
	if !fileType.IsValid() {
		return nil, fmt.Errorf("unknown file type %q", fileType)
	}
	if !ingest.WithinRoots(URL, s.uploadRoots) {
		s.log.WithFields(logrus.Fields{"session_id": sess.ID, "url": URL}).Warn("Rejected upload location")
		return nil, fmt.Errorf("%w: %s", ingest.ErrLocationNotAllowed, URL)
	}
	res, err := s.loader.Load(ctx, URL, fileType)
	if err != nil {
		return nil, err
	}
	return s.saveUpload(sess, fileType, res), nil
}

func (s *Service) saveUpload(sess *session.Session, fileType models.FileType, res *ingest.Result) *UploadResult {
	sess.SetSource(fileType, res.Table, session.SourceInfo{
		Encoding:  res.Encoding,
		Delimiter: res.Delimiter,
		Warnings:  res.Warnings,
	})
	for _, app := range appsUsing(fileType) {
		sess.ClearOutputs(func(name string) bool { return ownsOutput(app, name) })
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"file_type":  fileType,
		"rows":       res.Table.Len(),
		"encoding":   res.Encoding,
		"warnings":   len(res.Warnings),
	}).Info("Source uploaded")

	var info session.SourceInfo
	for _, i := range sess.SourceInfos() {
		if i.FileType == fileType {
			info = i
		}
	}
	return &UploadResult{Info: info, Warnings: res.Warnings}
}

// resolver loads the picklists named by an app's configuration. Picklists
// that cannot be fetched are skipped; lookups through them fall back to the
// rule default.
func (s *Service) resolver(ctx context.Context, docs *config.Documents) *picklist.Resolver {
	r := picklist.NewResolver()
	if docs.Picklists == nil {
		return r
	}
	for _, src := range docs.Picklists.Picklists {
		logger := s.log.WithFields(logrus.Fields{"picklist": src.Name, "path": src.Path})
		data, err := s.loader.Fetch(ctx, s.resolvePath(src.Path))
		if err != nil {
			logger.WithError(err).Warn("Picklist not available")
			continue
		}
		res, err := ingest.Parse(data, src.Name, ingest.Options{})
		if err != nil {
			logger.WithError(err).Warn("Picklist could not be parsed")
			continue
		}
		if _, err := r.Register(src.Name, src.KeyColumn, res.Table); err != nil {
			logger.WithError(err).Warn("Picklist rejected")
			continue
		}
		if len(src.Codes) > 0 {
			r.SetCodeMap(src.Name, src.Codes)
		}
	}
	return r
}

// resolvePath makes a picklist path relative to the configuration directory
// unless it is absolute or an afs URL
func (s *Service) resolvePath(path string) string {
	if strings.Contains(path, "://") || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.configDir, path)
}
