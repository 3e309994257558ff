package migration

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/srcp/schema-registry-controlplane/internal/registry"
)

// ContextMigrationRequest is the input to MigrateContext.
type ContextMigrationRequest struct {
	Context            string
	SourceRegistry     string
	TargetRegistry     string
	TargetContext      string // defaults to Context when empty
	PreserveIDs        bool
	DryRun             bool
	MigrateAllVersions bool
	ConflictResolution string // "skip" | "" (overwrite, the default)
}

// SubjectFailure records one subject that could not be migrated within a
// context migration.
type SubjectFailure struct {
	Subject string `json:"subject"`
	Error   string `json:"error"`
}

// SubjectSkip records one subject intentionally left untouched.
type SubjectSkip struct {
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}

// SubjectSuccess pairs a migrated subject with its per-subject result.
type SubjectSuccess struct {
	Subject string                 `json:"subject"`
	Result  *SchemaMigrationResult `json:"result"`
}

// ContextMigrationResult is the aggregate a whole-context migration emits.
type ContextMigrationResult struct {
	TotalSubjects int              `json:"totalSubjects"`
	SubjectsFound int              `json:"subjectsFound"`
	Successful    []SubjectSuccess `json:"successful"`
	Failed        []SubjectFailure `json:"failed"`
	Skipped       []SubjectSkip    `json:"skipped"`
	Status        string           `json:"status"` // completed | partial | failed | empty
	MigratedAt    time.Time        `json:"migratedAt"`
}

// MigrateContext migrates every subject of one context, aggregating
// per-subject outcomes. An empty source context is a successful zero-count
// result, never an error — the explicit guard against the
// "0 subjects migrated" regression being confused with failure.
func (e *Engine) MigrateContext(ctx context.Context, req ContextMigrationRequest) (*ContextMigrationResult, error) {
	start := now()
	outcome := "failed"
	defer func() { e.recordMigration("context", outcome, start) }()

	if req.TargetContext == "" {
		req.TargetContext = req.Context
	}

	source, err := e.manager.Get(req.SourceRegistry)
	if err != nil {
		return nil, err
	}
	if _, err := e.manager.CheckWritable(req.TargetRegistry); err != nil {
		return nil, err
	}

	subjects, err := source.ListSubjects(ctx, req.Context)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		outcome = "empty"
		return &ContextMigrationResult{
			TotalSubjects: 0,
			SubjectsFound: 0,
			Successful:    []SubjectSuccess{},
			Failed:        []SubjectFailure{},
			Skipped:       []SubjectSkip{},
			Status:        "empty",
			MigratedAt:    now(),
		}, nil
	}
	sort.Strings(subjects)

	result := &ContextMigrationResult{
		TotalSubjects: len(subjects),
		SubjectsFound: len(subjects),
		Successful:    make([]SubjectSuccess, 0, len(subjects)),
		Failed:        make([]SubjectFailure, 0),
		Skipped:       make([]SubjectSkip, 0),
		MigratedAt:    now(),
	}

	for _, subject := range subjects {
		subResult, err := e.MigrateSchema(ctx, SchemaMigrationRequest{
			Subject:            subject,
			SourceRegistry:     req.SourceRegistry,
			TargetRegistry:     req.TargetRegistry,
			SourceContext:      req.Context,
			TargetContext:      req.TargetContext,
			PreserveIDs:        req.PreserveIDs,
			MigrateAllVersions: req.MigrateAllVersions,
			DryRun:             req.DryRun,
			ConflictResolution: req.ConflictResolution,
		})
		if err != nil {
			var handoff *HandoffRequiredError
			if as(err, &handoff) {
				return nil, err
			}
			var skipped *ConflictSkippedError
			if as(err, &skipped) {
				result.Skipped = append(result.Skipped, SubjectSkip{Subject: subject, Reason: skipped.Reason})
				continue
			}
			result.Failed = append(result.Failed, SubjectFailure{Subject: subject, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, SubjectSuccess{Subject: subject, Result: subResult})
	}

	switch {
	case len(result.Failed) == 0:
		result.Status = "completed"
	case len(result.Successful) == 0:
		result.Status = "failed"
	default:
		result.Status = "partial"
	}
	outcome = result.Status
	return result, nil
}

// CompareResult is the compare-registries output.
type CompareResult struct {
	SourceOnly  []string `json:"sourceOnly"`
	TargetOnly  []string `json:"targetOnly"`
	Common      []string `json:"common"`
	SourceTotal int      `json:"sourceTotal"`
	TargetTotal int      `json:"targetTotal"`
}

// Compare lists the subject-name set difference between two registries,
// at global or per-context scope.
func (e *Engine) Compare(ctx context.Context, sourceRegistry, targetRegistry, subjCtx string) (*CompareResult, error) {
	source, err := e.manager.Get(sourceRegistry)
	if err != nil {
		return nil, err
	}
	target, err := e.manager.Get(targetRegistry)
	if err != nil {
		return nil, err
	}

	sourceSubjects, err := source.ListSubjects(ctx, subjCtx)
	if err != nil {
		return nil, err
	}
	targetSubjects, err := target.ListSubjects(ctx, subjCtx)
	if err != nil {
		return nil, err
	}

	targetSet := toSet(targetSubjects)
	sourceSet := toSet(sourceSubjects)

	var sourceOnly, targetOnly, common []string
	for _, s := range sourceSubjects {
		if targetSet[s] {
			common = append(common, s)
		} else {
			sourceOnly = append(sourceOnly, s)
		}
	}
	for _, s := range targetSubjects {
		if !sourceSet[s] {
			targetOnly = append(targetOnly, s)
		}
	}
	sort.Strings(sourceOnly)
	sort.Strings(targetOnly)
	sort.Strings(common)

	return &CompareResult{
		SourceOnly:  nonNil(sourceOnly),
		TargetOnly:  nonNil(targetOnly),
		Common:      nonNil(common),
		SourceTotal: len(sourceSubjects),
		TargetTotal: len(targetSubjects),
	}, nil
}

// FindMissing returns subjects present in source but absent from target.
func (e *Engine) FindMissing(ctx context.Context, sourceRegistry, targetRegistry, subjCtx string) ([]string, error) {
	cmp, err := e.Compare(ctx, sourceRegistry, targetRegistry, subjCtx)
	if err != nil {
		return nil, err
	}
	return cmp.SourceOnly, nil
}

// ClearContextBatchRequest is the input to ClearContextBatch.
type ClearContextBatchRequest struct {
	Registry      string
	Context       string
	DeleteContext bool
	DryRun        bool
}

// ClearContextBatchResult is the batch-clear aggregate.
type ClearContextBatchResult struct {
	SubjectsFound   int      `json:"subjectsFound"`
	SubjectsDeleted int      `json:"subjectsDeleted"`
	SubjectsFailed  int      `json:"subjectsFailed"`
	FailedSubjects  []string `json:"failedSubjects,omitempty"`
	ContextDeleted  bool     `json:"contextDeleted"`
	DurationSeconds float64  `json:"durationSeconds"`
	SuccessRate     float64  `json:"successRate"`
	Performance     string   `json:"performance"`
	DryRun          bool     `json:"dryRun"`
}

// ClearContextBatch enumerates a context's subjects and deletes them in
// parallel, bounded by the engine's shared semaphore.
func (e *Engine) ClearContextBatch(ctx context.Context, req ClearContextBatchRequest) (*ClearContextBatchResult, error) {
	client, err := e.manager.CheckWritable(req.Registry)
	if err != nil {
		return nil, err
	}

	start := now()
	subjects, err := client.ListSubjects(ctx, req.Context)
	if err != nil {
		return nil, err
	}

	result := &ClearContextBatchResult{
		SubjectsFound: len(subjects),
		DryRun:        req.DryRun,
	}
	if req.DryRun || len(subjects) == 0 {
		result.DurationSeconds = elapsedSeconds(start)
		result.SuccessRate = successRate(0, result.SubjectsFound)
		result.Performance = performanceLabel(result.DurationSeconds, result.SubjectsFound)
		return result, nil
	}

	var mu countingMutex
	g, gCtx := errgroup.WithContext(ctx)
	for _, subject := range subjects {
		subject := subject
		if err := e.sem.Acquire(gCtx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer e.sem.Release(1)
			if _, err := client.DeleteSubject(gCtx, subject, req.Context); err != nil {
				mu.addFailure(subject)
				return nil
			}
			mu.addSuccess()
			return nil
		})
	}
	_ = g.Wait()

	result.SubjectsDeleted = mu.successes
	result.SubjectsFailed = len(mu.failures)
	result.FailedSubjects = mu.failures

	if req.DeleteContext && !registry.IsDefaultContext(req.Context) && result.SubjectsFailed == 0 {
		// Confluent registries have no explicit "delete context" endpoint
		// distinct from having zero subjects in it; once every subject is
		// gone the context itself has no further representation to remove.
		result.ContextDeleted = true
	}

	result.DurationSeconds = elapsedSeconds(start)
	result.SuccessRate = successRate(result.SubjectsDeleted, result.SubjectsFound)
	result.Performance = performanceLabel(result.DurationSeconds, result.SubjectsFound)
	return result, nil
}
