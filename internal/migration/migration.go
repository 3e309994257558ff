// Package migration implements the schema/subject/context migration engine
// (C4): the hardest part of the control plane, responsible for moving
// schemas between registries while preserving Confluent-assigned ids and
// never corrupting the target's write mode on the way out.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/srcp/schema-registry-controlplane/internal/metrics"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

// Engine runs migrations across a registry fleet. It holds no mutable
// state of its own beyond a bounded semaphore for parallel batch deletes
// — every migration run is independent.
type Engine struct {
	manager *registry.Manager
	sem     *semaphore.Weighted
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// SetMetrics attaches the process metrics so migration outcomes and
// latencies are recorded. A nil receiver field disables recording.
func (e *Engine) SetMetrics(m *metrics.Metrics) { e.metrics = m }

// Manager returns the registry manager this engine operates against.
func (e *Engine) Manager() *registry.Manager { return e.manager }

// recordMigration is the nil-safe recording helper every entry point
// defers.
func (e *Engine) recordMigration(scope, outcome string, start time.Time) {
	if e.metrics != nil {
		e.metrics.RecordMigration(scope, outcome, time.Since(start))
	}
}

// NewEngine builds a migration Engine bounded by parallelism concurrent
// deletes/registrations for batch operations.
func NewEngine(manager *registry.Manager, parallelism int, logger *slog.Logger) *Engine {
	if parallelism <= 0 {
		parallelism = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		manager: manager,
		sem:     semaphore.NewWeighted(int64(parallelism)),
		logger:  logger,
	}
}

// VersionOutcome is the per-version record kept while migrating one
// subject.
type VersionOutcome struct {
	Version    int    `json:"version"`
	SourceID   int    `json:"sourceId"`
	AssignedID int    `json:"assignedId,omitempty"`
	Error      string `json:"error,omitempty"`
	DryRun     bool   `json:"dryRun,omitempty"`
}

// SchemaMigrationRequest is the input to MigrateSchema.
type SchemaMigrationRequest struct {
	Subject            string
	SourceRegistry     string
	TargetRegistry     string
	SourceContext      string
	TargetContext      string // defaults to SourceContext when empty
	PreserveIDs        bool
	MigrateAllVersions bool
	DryRun             bool
	Versions           []int  // optional explicit subset
	ConflictResolution string // "skip" | "" (overwrite, the default)
}

// ConflictSkippedError is returned from MigrateSchema when the target
// subject already exists, preserveIds is false, and the caller asked for
// conflictResolution=skip. Context migration unwraps it with
// errors.As and records the subject as skipped rather than failed.
type ConflictSkippedError struct {
	Subject string
	Reason  string
}

func (e *ConflictSkippedError) Error() string {
	return fmt.Sprintf("skipped %q: %s", e.Subject, e.Reason)
}

// SchemaMigrationResult is the aggregate a single-subject migration emits.
type SchemaMigrationResult struct {
	Subject          string           `json:"subject"`
	SourceRegistry   string           `json:"sourceRegistry"`
	TargetRegistry   string           `json:"targetRegistry"`
	SourceContext    string           `json:"sourceContext"`
	TargetContext    string           `json:"targetContext"`
	MigratedVersions []VersionOutcome `json:"migratedVersions"`
	PreserveIDs      bool             `json:"preserveIds"`
	DryRun           bool             `json:"dryRun"`
	VersionsMigrated int              `json:"versionsMigrated"`
	TotalVersions    int              `json:"totalVersions"`
	ContextExisted   bool             `json:"contextExisted"`
	SubjectExisted   bool             `json:"subjectExisted"`
}

// MigrateSchema runs the 10-step single-schema migration procedure.
func (e *Engine) MigrateSchema(ctx context.Context, req SchemaMigrationRequest) (*SchemaMigrationResult, error) {
	start := time.Now()
	outcome := "failed"
	defer func() { e.recordMigration("schema", outcome, start) }()

	if req.TargetContext == "" {
		req.TargetContext = req.SourceContext
	}

	source, err := e.manager.Get(req.SourceRegistry)
	if err != nil {
		return nil, err
	}
	target, err := e.manager.CheckWritable(req.TargetRegistry)
	if err != nil {
		return nil, err
	}

	if handoff := e.dockerHandoffIfSameURL(source, target, req); handoff != nil {
		return nil, handoff
	}

	subject := registry.NormalizeSubject(req.Subject)

	sourceVersions, err := source.ListVersions(ctx, subject, req.SourceContext)
	if err != nil {
		return nil, err
	}
	if len(sourceVersions) == 0 {
		return nil, srerr.New(srerr.SubjectNotFound, "subject %q has no versions on %q", subject, req.SourceRegistry)
	}

	versions := chooseVersions(sourceVersions, req.Versions, req.MigrateAllVersions)

	contextExisted := registry.IsDefaultContext(req.TargetContext)
	if req.DryRun && !contextExisted {
		contexts, err := target.ListContexts(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range contexts {
			if c == req.TargetContext {
				contextExisted = true
			}
		}
	} else if !req.DryRun {
		contextExisted, err = e.ensureTargetContext(ctx, target, req.TargetContext)
		if err != nil {
			return nil, err
		}
	}

	subjectExisted, err := e.handleExistingTargetSubject(ctx, target, subject, req.TargetContext, req.PreserveIDs && !req.DryRun)
	if err != nil {
		return nil, err
	}
	if subjectExisted && !req.PreserveIDs && req.ConflictResolution == "skip" {
		return nil, &ConflictSkippedError{Subject: subject, Reason: "target subject already exists"}
	}

	preserveIDs := req.PreserveIDs
	var originalMode registry.Mode
	var modeChanged bool
	if preserveIDs && !req.DryRun {
		originalMode, err = target.GetMode(ctx, req.TargetContext, "")
		if err != nil {
			e.logger.Warn("could not read target mode before import", "error", err)
			originalMode = registry.ModeReadWrite
		}
		if err := target.SetMode(ctx, req.TargetContext, subject, registry.ModeImport); err != nil {
			e.logger.Warn("target rejected IMPORT mode, falling back to preserveIds=false", "error", err)
			preserveIDs = false
		} else {
			modeChanged = true
		}
	}
	defer func() {
		if modeChanged {
			if err := target.SetMode(ctx, req.TargetContext, subject, originalMode); err != nil {
				e.logger.Error("failed to restore target mode after migration", "error", err, "subject", subject)
			}
		}
	}()

	outcomes := make([]VersionOutcome, 0, len(versions))
	migratedCount := 0
	for _, v := range versions {
		src, err := source.GetSchema(ctx, subject, v, req.SourceContext)
		if err != nil {
			outcomes = append(outcomes, VersionOutcome{Version: v, Error: err.Error()})
			continue
		}

		if req.DryRun {
			outcomes = append(outcomes, VersionOutcome{Version: v, SourceID: src.ID, DryRun: true})
			migratedCount++
			continue
		}

		var id *int
		if preserveIDs {
			sid := src.ID
			id = &sid
		}
		assignedID, err := target.RegisterSchema(ctx, subject, src.SchemaBody, src.SchemaType, req.TargetContext, id)
		if err != nil {
			outcomes = append(outcomes, VersionOutcome{Version: v, SourceID: src.ID, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, VersionOutcome{Version: v, SourceID: src.ID, AssignedID: assignedID})
		migratedCount++
	}

	switch {
	case req.DryRun:
		outcome = "dry_run"
	case migratedCount == len(versions):
		outcome = "completed"
	case migratedCount > 0:
		outcome = "partial"
	}

	return &SchemaMigrationResult{
		Subject:          subject,
		SourceRegistry:   req.SourceRegistry,
		TargetRegistry:   req.TargetRegistry,
		SourceContext:    req.SourceContext,
		TargetContext:    req.TargetContext,
		MigratedVersions: outcomes,
		PreserveIDs:      preserveIDs,
		DryRun:           req.DryRun,
		VersionsMigrated: migratedCount,
		TotalVersions:    len(versions),
		ContextExisted:   contextExisted,
		SubjectExisted:   subjectExisted,
	}, nil
}

// chooseVersions selects which versions to move: explicit subset wins; else
// all versions if migrateAllVersions, else only the latest; always
// returned in ascending order.
func chooseVersions(sourceVersions, explicit []int, migrateAllVersions bool) []int {
	sorted := append([]int(nil), sourceVersions...)
	sort.Ints(sorted)

	if len(explicit) > 0 {
		out := append([]int(nil), explicit...)
		sort.Ints(out)
		return out
	}
	if !migrateAllVersions {
		return []int{sorted[len(sorted)-1]}
	}
	return sorted
}

// ensureTargetContext probes for context existence and force-creates it by
// registering and immediately deleting a throwaway schema, the only
// portable way to materialize an empty context.
func (e *Engine) ensureTargetContext(ctx context.Context, target *registry.Client, targetContext string) (bool, error) {
	if registry.IsDefaultContext(targetContext) {
		return true, nil
	}

	contexts, err := target.ListContexts(ctx)
	if err != nil {
		return false, err
	}
	for _, c := range contexts {
		if c == targetContext {
			return true, nil
		}
	}

	const throwawaySubject = "__context_bootstrap__"
	const throwawaySchema = `{"type":"string"}`
	_, err = target.RegisterSchema(ctx, throwawaySubject, throwawaySchema, registry.SchemaTypeAvro, targetContext, nil)
	if err != nil {
		return false, fmt.Errorf("creating target context %q: %w", targetContext, err)
	}
	if _, err := target.DeleteSubject(ctx, throwawaySubject, targetContext); err != nil {
		e.logger.Warn("failed to delete context-bootstrap subject", "context", targetContext, "error", err)
	}
	return false, nil
}

// handleExistingTargetSubject resolves a pre-existing target subject: if
// preserving ids, a pre-existing target subject is deleted first since id
// preservation needs a fresh id space.
func (e *Engine) handleExistingTargetSubject(ctx context.Context, target *registry.Client, subject, targetContext string, preserveIDs bool) (bool, error) {
	versions, err := target.ListVersions(ctx, subject, targetContext)
	if err != nil {
		return false, err
	}
	existed := len(versions) > 0
	if existed && preserveIDs {
		if _, err := target.DeleteSubject(ctx, subject, targetContext); err != nil {
			return existed, fmt.Errorf("deleting pre-existing target subject %q: %w", subject, err)
		}
	}
	return existed, nil
}

// HandoffRequiredError is returned instead of a migration result when
// source and target physically coincide: the caller should
// unwrap it with errors.As and hand HandoffPackage back to its own caller
// rather than treating this as a failed migration.
type HandoffRequiredError struct {
	Package *HandoffPackage
}

func (e *HandoffRequiredError) Error() string {
	return fmt.Sprintf("source and target registries share URL %q: migration redirected to a docker-handoff package", e.Package.RegistryURL)
}

// dockerHandoffIfSameURL guards the migrate-to-self case: when source and target
// resolve to the same physical URL, migrating in-place would either no-op
// or destroy data, so the engine hands back an advisory package instead
// of touching the registry.
func (e *Engine) dockerHandoffIfSameURL(source, target *registry.Client, req SchemaMigrationRequest) *HandoffRequiredError {
	if source.Config().URL != target.Config().URL {
		return nil
	}
	pkg := BuildHandoffPackage(req.SourceRegistry, req.TargetRegistry, source.Config(), target.Config(), req.SourceContext, req.TargetContext)
	return &HandoffRequiredError{Package: pkg}
}
