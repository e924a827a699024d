package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hrmigrate/hrmigrate/pkg/health"
	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/session"
)

// ValidateResult is a health report plus the run recorded for it
type ValidateResult struct {
	Report *health.Report        `json:"report"`
	Run    *models.ValidationRun `json:"run"`
}

// Validate scores the session's sources and generated output for app and
// records a run summary. Data problems are reported in the report, never as
// an error.
func (s *Service) Validate(sess *session.Session, app models.App) (*ValidateResult, error) {
	var report *health.Report
	switch app {
	case models.AppEmployee:
		report = s.scoreFlat(sess, employeeApp)
	case models.AppPayroll:
		report = s.scoreFlat(sess, payrollApp)
	case models.AppOrg:
		var res *models.HierarchyResult
		if _, built, err := s.hierarchy(sess); err == nil {
			res = built
		} else if !models.IsConfigError(err) {
			return nil, err
		}
		report = s.scorer.ScoreHierarchy(sess.Sources(), res)
	default:
		return nil, fmt.Errorf("unknown app %q", app)
	}

	run := &models.ValidationRun{
		ID:         uuid.New().String(),
		SessionID:  sess.ID,
		App:        app,
		Score:      report.Score,
		Status:     string(report.Status),
		Ready:      report.Ready,
		IssueCount: len(report.Issues),
		ErrorCount: len(report.Errors),
		CreatedAt:  time.Now().UTC(),
	}
	if report.Transfer != nil {
		rate := report.Transfer.Rate
		run.TransferRate = &rate
	}

	logger := s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"app":        app,
		"score":      report.Score,
		"status":     report.Status,
		"issues":     len(report.Issues),
	})
	if s.store != nil {
		if err := s.store.SaveValidationRun(run); err != nil {
			logger.WithError(err).Warn("Failed to record validation run")
		}
	}
	logger.Info("Validation completed")

	return &ValidateResult{Report: report, Run: run}, nil
}

// History lists recorded validation runs of app, newest first
func (s *Service) History(app models.App, limit int) ([]*models.ValidationRun, error) {
	if s.store == nil {
		return []*models.ValidationRun{}, nil
	}
	return s.store.ListValidationRuns(app, limit)
}

func (s *Service) scoreFlat(sess *session.Session, a flatApp) *health.Report {
	return s.scorer.Score(health.Input{
		Sources:            sess.Sources(),
		Files:              a.files,
		BaseFile:           a.base,
		KeyColumn:          a.key,
		AllowDuplicateKeys: a.multiRows,
		Output:             sess.Output(a.output),
		OutputName:         a.output,
		CriticalFields:     a.critical,
	})
}
