package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/hrmigrate/hrmigrate/pkg/hierarchy"
	"github.com/hrmigrate/hrmigrate/pkg/mapping"
	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/session"
)

// GenerateOptions tunes one generate call
type GenerateOptions struct {
	// Preview maps only the first rows and does not store the outputs
	Preview bool
}

// OutputSummary describes one produced table
type OutputSummary struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// HierarchySummary carries the counters of a hierarchy build
type HierarchySummary struct {
	MaxLevel      int      `json:"max_level"`
	LevelCap      int      `json:"level_cap"`
	Roots         int      `json:"roots"`
	NodesInput    int      `json:"nodes_input"`
	NodesEmitted  int      `json:"nodes_emitted"`
	NodesDropped  int      `json:"nodes_dropped"`
	Truncated     bool     `json:"truncated"`
	EdgesInput    int      `json:"edges_input"`
	InactiveEdges int      `json:"inactive_edges"`
	DroppedEdges  int      `json:"dropped_edges"`
	LevelNames    []string `json:"level_names"`
	// Stats are the level, type and start-year distributions of the org data
	Stats *hierarchy.Stats `json:"stats"`
}

// GenerateResult is what a generate call produced
type GenerateResult struct {
	App       models.App                 `json:"app"`
	SessionID string                     `json:"session_id"`
	Preview   bool                       `json:"preview"`
	Outputs   []OutputSummary            `json:"outputs"`
	Log       []models.TransformLogEntry `json:"log"`
	Issues    []models.ValidationIssue   `json:"issues"`
	Merge     *mapping.MergeStats        `json:"merge,omitempty"`
	Hierarchy *HierarchySummary          `json:"hierarchy,omitempty"`
	// Tables holds the produced tables of a preview
	Tables []*models.Table `json:"tables,omitempty"`
}

type mergeResult struct {
	table *models.Table
	stats *mapping.MergeStats
}

// Generate runs the workflow of app
func (s *Service) Generate(ctx context.Context, sess *session.Session, app models.App, opts GenerateOptions) (*GenerateResult, error) {
	switch app {
	case models.AppEmployee:
		return s.GenerateEmployee(ctx, sess, opts)
	case models.AppPayroll:
		return s.GeneratePayroll(ctx, sess, opts)
	case models.AppOrg:
		return s.BuildOrgHierarchy(ctx, sess, opts)
	}
	return nil, fmt.Errorf("unknown app %q", app)
}

// GenerateEmployee merges PA0001, PA0006 and PA0105 onto PA0002 by personnel
// number and maps the result to the employee layout
func (s *Service) GenerateEmployee(ctx context.Context, sess *session.Session, opts GenerateOptions) (*GenerateResult, error) {
	return s.generateFlat(ctx, sess, employeeApp, opts)
}

// GeneratePayroll merges PA0014 onto PA0008 and maps the result to the
// payroll layout
func (s *Service) GeneratePayroll(ctx context.Context, sess *session.Session, opts GenerateOptions) (*GenerateResult, error) {
	return s.generateFlat(ctx, sess, payrollApp, opts)
}

func (s *Service) generateFlat(ctx context.Context, sess *session.Session, a flatApp, opts GenerateOptions) (*GenerateResult, error) {
	docs, err := s.Documents(a.app)
	if err != nil {
		return nil, err
	}
	merged, err := s.merge(sess, a)
	if err != nil {
		return nil, err
	}

	out, err := s.engine.BuildOutput(docs.Mappings.Rules, mapping.Sources{
		Primary:     merged.table,
		PrimaryFile: a.base,
		Columns:     merged.stats.Columns,
	}, a.scope, mapping.Options{
		Name:          a.output,
		Template:      docs.Template.For(a.scope),
		MaxRows:       s.maxRows(opts),
		StatusVariant: a.variant,
		Lookup:        s.resolver(ctx, docs),
		Registry:      s.registry,
	})
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		App:       a.app,
		SessionID: sess.ID,
		Preview:   opts.Preview,
		Log:       out.Log,
		Issues:    transformIssues(out.Log),
		Merge:     merged.stats,
	}
	s.keep(sess, result, out.Table)

	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"app":        a.app,
		"rows":       out.Table.Len(),
		"failed":     len(out.Failed()),
		"preview":    opts.Preview,
	}).Info("Output generated")
	return result, nil
}

// merge joins the app's side files onto its base file, reusing the previous
// merge while none of the sources changed
func (s *Service) merge(sess *session.Session, a flatApp) (*mergeResult, error) {
	base := sess.Source(a.base)
	if base == nil {
		return nil, models.MissingFileError(string(a.base))
	}
	tables := make([]*models.Table, 0, len(a.sides)+1)
	for _, f := range a.fileTypes() {
		tables = append(tables, sess.Source(f))
	}
	fp, err := session.Fingerprint(tables)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint sources: %w", err)
	}

	v, _, err := sess.Memo("merge/"+string(a.app), fp, func() (any, error) {
		sides := make([]mapping.Side, 0, len(a.sides))
		for _, f := range a.sides {
			sides = append(sides, mapping.Side{File: f, Table: sess.Source(f)})
		}
		table, stats, err := mapping.Merge(a.base, base, sides, a.key, mapping.FirstWins)
		if err != nil {
			return nil, err
		}
		return &mergeResult{table: table, stats: stats}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*mergeResult), nil
}

// BuildOrgHierarchy levels HRP1000 objects through HRP1001 relationships and
// maps every level and its associations to the foundation layouts
func (s *Service) BuildOrgHierarchy(ctx context.Context, sess *session.Session, opts GenerateOptions) (*GenerateResult, error) {
	docs, err := s.Documents(models.AppOrg)
	if err != nil {
		return nil, err
	}
	builder, res, err := s.hierarchy(sess)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		App:       models.AppOrg,
		SessionID: sess.ID,
		Preview:   opts.Preview,
		Log:       []models.TransformLogEntry{},
		Issues:    append([]models.ValidationIssue{}, hierarchy.Diagnose(res)...),
		Hierarchy: summarize(builder, res, sess.Source(models.FileTypeHRP1000), sess.Source(models.FileTypeHRP1001)),
	}
	if !opts.Preview {
		sess.ClearOutputs(func(name string) bool { return ownsOutput(models.AppOrg, name) })
	}

	lookup := s.resolver(ctx, docs)
	build := func(t *models.Table, scope models.Scope, file models.FileType) error {
		out, err := s.engine.BuildOutput(docs.Mappings.Rules, mapping.Sources{
			Primary:     t,
			PrimaryFile: file,
		}, scope, mapping.Options{
			Name:     t.Name,
			Template: docs.Template.For(scope),
			MaxRows:  s.maxRows(opts),
			Lookup:   lookup,
			Registry: s.registry,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
		result.Log = append(result.Log, out.Log...)
		result.Issues = append(result.Issues, transformIssues(out.Log)...)
		s.keep(sess, result, out.Table)
		return nil
	}

	for _, t := range builder.LevelTables(res) {
		if err := build(t, models.ScopeLevel, models.FileTypeHRP1000); err != nil {
			return nil, err
		}
	}
	for _, t := range builder.LevelAssociationTables(res) {
		if err := build(t, models.ScopeAssociation, models.FileTypeHRP1001); err != nil {
			return nil, err
		}
	}

	nodes := builder.NodeTable(res)
	nodes.Name = OutputHierarchy
	edges := builder.AssociationTable(res)
	edges.Name = OutputHierarchyAssociations
	s.keep(sess, result, nodes.Head(s.maxRows(opts)))
	s.keep(sess, result, edges.Head(s.maxRows(opts)))

	s.log.WithFields(logrus.Fields{
		"session_id":    sess.ID,
		"levels":        res.MaxLevel,
		"nodes":         res.NodesEmitted,
		"dropped":       res.NodesDropped,
		"associations":  len(res.Associations),
		"dropped_edges": res.DroppedEdges,
		"truncated":     res.Truncated,
		"preview":       opts.Preview,
	}).Info("Hierarchy built")
	return result, nil
}

// hierarchy builds the leveled forest from the session's org extracts,
// reusing the previous build while neither extract changed
func (s *Service) hierarchy(sess *session.Session) (*hierarchy.Builder, *models.HierarchyResult, error) {
	builder := hierarchy.New(hierarchy.Options{MaxLevels: s.maxLevels})
	nodes := sess.Source(models.FileTypeHRP1000)
	edges := sess.Source(models.FileTypeHRP1001)
	if nodes == nil {
		return nil, nil, models.MissingFileError(string(models.FileTypeHRP1000))
	}
	if edges == nil {
		return nil, nil, models.MissingFileError(string(models.FileTypeHRP1001))
	}

	fp, err := session.Fingerprint([]*models.Table{nodes, edges}, strconv.Itoa(s.maxLevels))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fingerprint sources: %w", err)
	}
	v, _, err := sess.Memo("hierarchy", fp, func() (any, error) {
		return builder.Build(nodes, edges)
	})
	if err != nil {
		return nil, nil, err
	}
	return builder, v.(*models.HierarchyResult), nil
}

func summarize(b *hierarchy.Builder, r *models.HierarchyResult, nodes, edges *models.Table) *HierarchySummary {
	names := make([]string, 0, r.MaxLevel)
	for level := 1; level <= r.MaxLevel; level++ {
		names = append(names, hierarchy.DefaultLevelName(level))
	}
	return &HierarchySummary{
		MaxLevel:      r.MaxLevel,
		LevelCap:      r.LevelCap,
		Roots:         len(r.RootIDs),
		NodesInput:    r.NodesInput,
		NodesEmitted:  r.NodesEmitted,
		NodesDropped:  r.NodesDropped,
		Truncated:     r.Truncated,
		EdgesInput:    r.EdgesInput,
		InactiveEdges: r.InactiveEdges,
		DroppedEdges:  r.DroppedEdges,
		LevelNames:    names,
		Stats:         b.Statistics(nodes, edges, r),
	}
}

// keep records a produced table on the result and, outside previews, in the session
func (s *Service) keep(sess *session.Session, result *GenerateResult, t *models.Table) {
	result.Outputs = append(result.Outputs, OutputSummary{Name: t.Name, Rows: t.Len(), Columns: t.Columns})
	if result.Preview {
		result.Tables = append(result.Tables, t)
		return
	}
	sess.SetOutput(t.Name, t)
}

func (s *Service) maxRows(opts GenerateOptions) int {
	if opts.Preview {
		return s.previewRows
	}
	return 0
}

// transformIssues reports rules that could not be applied
func transformIssues(log []models.TransformLogEntry) []models.ValidationIssue {
	issues := []models.ValidationIssue{}
	for _, e := range log {
		if e.Status != models.TransformStatusError {
			continue
		}
		issues = append(issues, models.NewIssue(models.IssueTransformFailed, models.SeverityMedium,
			fmt.Sprintf("Transformation failed for %s", e.TargetField),
			e.Message,
			"Check the mapping rule; the column was filled with its default value.",
		).WithSource(string(e.SourceFile), e.SourceColumn).WithDetails(map[string]any{
			"target_field":   e.TargetField,
			"transformation": e.Transformation,
			"rows":           e.Rows,
		}))
	}
	return issues
}
