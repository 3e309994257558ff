// Package migrationtools implements the migration-engine tool group:
// migrateSchema, migrateContext, compareRegistries,
// compareContextsAcrossRegistries, findMissingSchemas, clearContextBatch,
// clearMultipleContextsBatch, clearContextAcrossRegistriesBatch. Every
// mutating tool runs guards.MigrationGuards or guards.ClearContextGuards
// for the advisory signal before handing off to migration.Engine, which
// holds the hard enforcement (registry.Manager.CheckWritable).
package migrationtools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/srcp/schema-registry-controlplane/internal/guards"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/migration"
	"github.com/srcp/schema-registry-controlplane/internal/resourceuri"
	"github.com/srcp/schema-registry-controlplane/internal/task"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

// --- migrateSchema ---

type MigrateSchema struct{ engine *migration.Engine }

func NewMigrateSchema(engine *migration.Engine) *MigrateSchema { return &MigrateSchema{engine: engine} }

func (t *MigrateSchema) Name() string { return "migrateSchema" }
func (t *MigrateSchema) Description() string {
	return "Migrate one subject's schema versions from a source registry/context to a target registry/context."
}
func (t *MigrateSchema) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "subject": {"type": "string"},
    "sourceRegistry": {"type": "string"},
    "targetRegistry": {"type": "string"},
    "sourceContext": {"type": "string"},
    "targetContext": {"type": "string", "description": "defaults to sourceContext"},
    "preserveIds": {"type": "boolean"},
    "migrateAllVersions": {"type": "boolean"},
    "dryRun": {"type": "boolean"},
    "versions": {"type": "array", "items": {"type": "integer"}},
    "conflictResolution": {"type": "string", "enum": ["skip", ""]}
  },
  "required": ["subject", "sourceRegistry", "targetRegistry"]
}`)
}

type migrateSchemaParams struct {
	Subject            string `json:"subject"`
	SourceRegistry     string `json:"sourceRegistry"`
	TargetRegistry     string `json:"targetRegistry"`
	SourceContext      string `json:"sourceContext,omitempty"`
	TargetContext      string `json:"targetContext,omitempty"`
	PreserveIDs        bool   `json:"preserveIds,omitempty"`
	MigrateAllVersions bool   `json:"migrateAllVersions,omitempty"`
	DryRun             bool   `json:"dryRun,omitempty"`
	Versions           []int  `json:"versions,omitempty"`
	ConflictResolution string `json:"conflictResolution,omitempty"`
}

func (t *MigrateSchema) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p migrateSchemaParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Subject == "" || p.SourceRegistry == "" || p.TargetRegistry == "" {
		return tools.ErrorResult(errors.New("subject, sourceRegistry, and targetRegistry are required"))
	}

	gctx := &guards.GuardContext{RegistryName: p.TargetRegistry, Mutating: true, DryRun: p.DryRun, Force: p.PreserveIDs && p.ConflictResolution != "skip"}
	guards.PopulateMigrationState(ctx, t.engine.Manager(), p.SourceRegistry, p.TargetRegistry, p.SourceContext, p.TargetContext, p.PreserveIDs, gctx)
	guards.PopulateSchemaVersionCount(ctx, t.engine.Manager(), p.SourceRegistry, p.SourceContext, p.Subject, gctx)
	outcome := guards.NewRunner().Run(ctx, gctx, guards.MigrationGuards())
	if outcome.Blocked {
		return tools.ErrorResult(errors.New(outcome.FormatBlockMessage()))
	}

	result, err := t.engine.MigrateSchema(ctx, migration.SchemaMigrationRequest{
		Subject:            p.Subject,
		SourceRegistry:     p.SourceRegistry,
		TargetRegistry:     p.TargetRegistry,
		SourceContext:      p.SourceContext,
		TargetContext:      p.TargetContext,
		PreserveIDs:        p.PreserveIDs,
		MigrateAllVersions: p.MigrateAllVersions,
		DryRun:             p.DryRun,
		Versions:           p.Versions,
		ConflictResolution: p.ConflictResolution,
	})
	if err != nil {
		var handoff *migration.HandoffRequiredError
		if errors.As(err, &handoff) {
			return mcp.JSONResult(map[string]any{"handoffRequired": true, "package": handoff.Package})
		}
		var skipped *migration.ConflictSkippedError
		if errors.As(err, &skipped) {
			return mcp.JSONResult(map[string]any{"skipped": true, "subject": skipped.Subject, "reason": skipped.Reason})
		}
		return tools.ErrorResult(err)
	}
	out := toMap(result)
	out["advisory"] = outcome.FormatAdvisoryMessage()
	return mcp.JSONResult(out)
}

// --- migrateContext ---

type MigrateContext struct {
	engine *migration.Engine
	tasks  *task.Manager
}

func NewMigrateContext(engine *migration.Engine, tasks *task.Manager) *MigrateContext {
	return &MigrateContext{engine: engine, tasks: tasks}
}

func (t *MigrateContext) Name() string { return "migrateContext" }
func (t *MigrateContext) Description() string {
	return "Migrate every subject of one context from a source registry to a target registry."
}
func (t *MigrateContext) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "context": {"type": "string"},
    "sourceRegistry": {"type": "string"},
    "targetRegistry": {"type": "string"},
    "targetContext": {"type": "string", "description": "defaults to context"},
    "preserveIds": {"type": "boolean"},
    "dryRun": {"type": "boolean"},
    "migrateAllVersions": {"type": "boolean"},
    "conflictResolution": {"type": "string", "enum": ["skip", ""]},
    "async": {"type": "boolean", "description": "run as a tracked background task and return its id immediately"}
  },
  "required": ["context", "sourceRegistry", "targetRegistry"]
}`)
}

type migrateContextParams struct {
	Context            string `json:"context"`
	SourceRegistry     string `json:"sourceRegistry"`
	TargetRegistry     string `json:"targetRegistry"`
	TargetContext      string `json:"targetContext,omitempty"`
	PreserveIDs        bool   `json:"preserveIds,omitempty"`
	DryRun             bool   `json:"dryRun,omitempty"`
	MigrateAllVersions bool   `json:"migrateAllVersions,omitempty"`
	ConflictResolution string `json:"conflictResolution,omitempty"`
	Async              bool   `json:"async,omitempty"`
}

func (t *MigrateContext) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p migrateContextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.SourceRegistry == "" || p.TargetRegistry == "" {
		return tools.ErrorResult(errors.New("sourceRegistry and targetRegistry are required"))
	}

	gctx := &guards.GuardContext{RegistryName: p.TargetRegistry, Mutating: true, DryRun: p.DryRun, Force: p.PreserveIDs && p.ConflictResolution != "skip"}
	guards.PopulateMigrationState(ctx, t.engine.Manager(), p.SourceRegistry, p.TargetRegistry, p.Context, p.TargetContext, p.PreserveIDs, gctx)
	guards.PopulateContextSubjectCount(ctx, t.engine.Manager(), p.SourceRegistry, p.Context, gctx)
	outcome := guards.NewRunner().Run(ctx, gctx, guards.MigrationGuards())
	if outcome.Blocked {
		return tools.ErrorResult(errors.New(outcome.FormatBlockMessage()))
	}

	engineReq := migration.ContextMigrationRequest{
		Context:            p.Context,
		SourceRegistry:     p.SourceRegistry,
		TargetRegistry:     p.TargetRegistry,
		TargetContext:      p.TargetContext,
		PreserveIDs:        p.PreserveIDs,
		DryRun:             p.DryRun,
		MigrateAllVersions: p.MigrateAllVersions,
		ConflictResolution: p.ConflictResolution,
	}

	if p.Async && t.tasks != nil {
		created, err := t.tasks.Create(task.TypeMigration, map[string]any{
			"sourceRegistry": p.SourceRegistry,
			"targetRegistry": p.TargetRegistry,
			"context":        p.Context,
			"dryRun":         p.DryRun,
		})
		if err != nil {
			return tools.ErrorResult(err)
		}
		// Detached from the tool call's lifetime: the task outlives the
		// request that started it and is cancelled through cancelTask.
		runCtx := context.WithoutCancel(ctx)
		err = t.tasks.Execute(runCtx, created.ID, func(taskCtx context.Context, progress func(int)) (any, error) {
			progress(5)
			res, err := t.engine.MigrateContext(taskCtx, engineReq)
			if err != nil {
				return nil, err
			}
			progress(100)
			return res, nil
		})
		if err != nil {
			return tools.ErrorResult(err)
		}
		return mcp.JSONResult(map[string]any{
			"async":       true,
			"taskId":      created.ID,
			"status":      task.StatusRunning,
			"resourceUri": resourceuri.Migration(p.TargetRegistry, created.ID),
		})
	}

	result, err := t.engine.MigrateContext(ctx, engineReq)
	if err != nil {
		var handoff *migration.HandoffRequiredError
		if errors.As(err, &handoff) {
			return mcp.JSONResult(map[string]any{"handoffRequired": true, "package": handoff.Package})
		}
		return tools.ErrorResult(err)
	}
	out := toMap(result)
	out["advisory"] = outcome.FormatAdvisoryMessage()
	return mcp.JSONResult(out)
}

// --- compareRegistries ---

type CompareRegistries struct{ engine *migration.Engine }

func NewCompareRegistries(engine *migration.Engine) *CompareRegistries {
	return &CompareRegistries{engine: engine}
}

func (t *CompareRegistries) Name() string { return "compareRegistries" }
func (t *CompareRegistries) Description() string {
	return "Diff the subject sets of two registries at global or per-context scope."
}
func (t *CompareRegistries) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "sourceRegistry": {"type": "string"},
    "targetRegistry": {"type": "string"},
    "context": {"type": "string"}
  },
  "required": ["sourceRegistry", "targetRegistry"]
}`)
}

type compareParams struct {
	SourceRegistry string `json:"sourceRegistry"`
	TargetRegistry string `json:"targetRegistry"`
	Context        string `json:"context,omitempty"`
}

func (t *CompareRegistries) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p compareParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.SourceRegistry == "" || p.TargetRegistry == "" {
		return tools.ErrorResult(errors.New("sourceRegistry and targetRegistry are required"))
	}
	result, err := t.engine.Compare(ctx, p.SourceRegistry, p.TargetRegistry, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(result)
}

// --- compareContextsAcrossRegistries ---

// CompareContextsAcrossRegistries is compareRegistries scoped explicitly to
// a pair of differently-named contexts (the source and target contexts need
// not share a name, unlike compareRegistries' single "context" parameter).
type CompareContextsAcrossRegistries struct{ engine *migration.Engine }

func NewCompareContextsAcrossRegistries(engine *migration.Engine) *CompareContextsAcrossRegistries {
	return &CompareContextsAcrossRegistries{engine: engine}
}

func (t *CompareContextsAcrossRegistries) Name() string { return "compareContextsAcrossRegistries" }
func (t *CompareContextsAcrossRegistries) Description() string {
	return "Diff the subject sets of a source context on one registry against a target context on another."
}
func (t *CompareContextsAcrossRegistries) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "sourceRegistry": {"type": "string"},
    "targetRegistry": {"type": "string"},
    "sourceContext": {"type": "string"},
    "targetContext": {"type": "string"}
  },
  "required": ["sourceRegistry", "targetRegistry"]
}`)
}

type compareContextsParams struct {
	SourceRegistry string `json:"sourceRegistry"`
	TargetRegistry string `json:"targetRegistry"`
	SourceContext  string `json:"sourceContext,omitempty"`
	TargetContext  string `json:"targetContext,omitempty"`
}

func (t *CompareContextsAcrossRegistries) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p compareContextsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.SourceRegistry == "" || p.TargetRegistry == "" {
		return tools.ErrorResult(errors.New("sourceRegistry and targetRegistry are required"))
	}
	source, err := t.engine.Manager().Get(p.SourceRegistry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	target, err := t.engine.Manager().Get(p.TargetRegistry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	sourceSubjects, err := source.ListSubjects(ctx, p.SourceContext)
	if err != nil {
		return tools.ErrorResult(err)
	}
	targetSubjects, err := target.ListSubjects(ctx, p.TargetContext)
	if err != nil {
		return tools.ErrorResult(err)
	}
	sourceSet := make(map[string]bool, len(sourceSubjects))
	for _, s := range sourceSubjects {
		sourceSet[s] = true
	}
	targetSet := make(map[string]bool, len(targetSubjects))
	for _, s := range targetSubjects {
		targetSet[s] = true
	}
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
	return mcp.JSONResult(map[string]any{
		"sourceOnly":  nonNilStrings(sourceOnly),
		"targetOnly":  nonNilStrings(targetOnly),
		"common":      nonNilStrings(common),
		"sourceTotal": len(sourceSubjects),
		"targetTotal": len(targetSubjects),
	})
}

// --- findMissingSchemas ---

type FindMissingSchemas struct{ engine *migration.Engine }

func NewFindMissingSchemas(engine *migration.Engine) *FindMissingSchemas {
	return &FindMissingSchemas{engine: engine}
}

func (t *FindMissingSchemas) Name() string { return "findMissingSchemas" }
func (t *FindMissingSchemas) Description() string {
	return "List subjects present on the source registry but absent from the target."
}
func (t *FindMissingSchemas) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "sourceRegistry": {"type": "string"},
    "targetRegistry": {"type": "string"},
    "context": {"type": "string"}
  },
  "required": ["sourceRegistry", "targetRegistry"]
}`)
}

func (t *FindMissingSchemas) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p compareParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.SourceRegistry == "" || p.TargetRegistry == "" {
		return tools.ErrorResult(errors.New("sourceRegistry and targetRegistry are required"))
	}
	missing, err := t.engine.FindMissing(ctx, p.SourceRegistry, p.TargetRegistry, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{"missing": nonNilStrings(missing), "count": len(missing)})
}

// --- clearContextBatch ---

type ClearContextBatch struct{ engine *migration.Engine }

func NewClearContextBatch(engine *migration.Engine) *ClearContextBatch {
	return &ClearContextBatch{engine: engine}
}

func (t *ClearContextBatch) Name() string { return "clearContextBatch" }
func (t *ClearContextBatch) Description() string {
	return "Delete every subject in a context, in parallel, optionally removing the context itself."
}
func (t *ClearContextBatch) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "context": {"type": "string"},
    "deleteContext": {"type": "boolean"},
    "dryRun": {"type": "boolean"}
  },
  "required": ["registry", "context"]
}`)
}

type clearContextParams struct {
	Registry      string `json:"registry"`
	Context       string `json:"context"`
	DeleteContext bool   `json:"deleteContext,omitempty"`
	DryRun        bool   `json:"dryRun,omitempty"`
}

func (t *ClearContextBatch) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p clearContextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Registry == "" || p.Context == "" {
		return tools.ErrorResult(errors.New("registry and context are required"))
	}

	gctx := &guards.GuardContext{RegistryName: p.Registry, Mutating: true, DryRun: p.DryRun}
	guards.PopulateWriteState(ctx, t.engine.Manager(), gctx)
	guards.PopulateContextSubjectCount(ctx, t.engine.Manager(), p.Registry, p.Context, gctx)
	outcome := guards.NewRunner().Run(ctx, gctx, guards.ClearContextGuards())
	if outcome.Blocked {
		return tools.ErrorResult(errors.New(outcome.FormatBlockMessage()))
	}

	result, err := t.engine.ClearContextBatch(ctx, migration.ClearContextBatchRequest{
		Registry:      p.Registry,
		Context:       p.Context,
		DeleteContext: p.DeleteContext,
		DryRun:        p.DryRun,
	})
	if err != nil {
		return tools.ErrorResult(err)
	}
	out := toMap(result)
	out["advisory"] = outcome.FormatAdvisoryMessage()
	return mcp.JSONResult(out)
}

// --- clearMultipleContextsBatch ---

// ClearMultipleContextsBatch runs clearContextBatch over several contexts on
// one registry. migration.Engine exposes no batch-of-batches primitive of
// its own, so this tool
// loops the guarded single-context call and aggregates the per-context
// results rather than adding new engine surface for a thin convenience op.
type ClearMultipleContextsBatch struct{ engine *migration.Engine }

func NewClearMultipleContextsBatch(engine *migration.Engine) *ClearMultipleContextsBatch {
	return &ClearMultipleContextsBatch{engine: engine}
}

func (t *ClearMultipleContextsBatch) Name() string { return "clearMultipleContextsBatch" }
func (t *ClearMultipleContextsBatch) Description() string {
	return "Clear several contexts on one registry, one clearContextBatch run per context."
}
func (t *ClearMultipleContextsBatch) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "contexts": {"type": "array", "items": {"type": "string"}},
    "deleteContext": {"type": "boolean"},
    "dryRun": {"type": "boolean"}
  },
  "required": ["registry", "contexts"]
}`)
}

type clearMultipleParams struct {
	Registry      string   `json:"registry"`
	Contexts      []string `json:"contexts"`
	DeleteContext bool     `json:"deleteContext,omitempty"`
	DryRun        bool     `json:"dryRun,omitempty"`
}

func (t *ClearMultipleContextsBatch) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p clearMultipleParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Registry == "" || len(p.Contexts) == 0 {
		return tools.ErrorResult(errors.New("registry and contexts are required"))
	}

	results := make(map[string]any, len(p.Contexts))
	for _, c := range p.Contexts {
		gctx := &guards.GuardContext{RegistryName: p.Registry, Mutating: true, DryRun: p.DryRun}
		guards.PopulateWriteState(ctx, t.engine.Manager(), gctx)
		guards.PopulateContextSubjectCount(ctx, t.engine.Manager(), p.Registry, c, gctx)
		outcome := guards.NewRunner().Run(ctx, gctx, guards.ClearContextGuards())
		if outcome.Blocked {
			results[c] = map[string]any{"error": outcome.FormatBlockMessage()}
			continue
		}
		result, err := t.engine.ClearContextBatch(ctx, migration.ClearContextBatchRequest{
			Registry:      p.Registry,
			Context:       c,
			DeleteContext: p.DeleteContext,
			DryRun:        p.DryRun,
		})
		if err != nil {
			results[c] = map[string]any{"error": err.Error()}
			continue
		}
		results[c] = result
	}
	return mcp.JSONResult(map[string]any{"registry": p.Registry, "results": results})
}

// --- clearContextAcrossRegistriesBatch ---

// ClearContextAcrossRegistriesBatch runs clearContextBatch for the same
// context name on several registries, e.g. wiping a staging context on
// every staging registry in a fleet in one call.
type ClearContextAcrossRegistriesBatch struct{ engine *migration.Engine }

func NewClearContextAcrossRegistriesBatch(engine *migration.Engine) *ClearContextAcrossRegistriesBatch {
	return &ClearContextAcrossRegistriesBatch{engine: engine}
}

func (t *ClearContextAcrossRegistriesBatch) Name() string {
	return "clearContextAcrossRegistriesBatch"
}
func (t *ClearContextAcrossRegistriesBatch) Description() string {
	return "Clear the same context across several registries, one clearContextBatch run per registry."
}
func (t *ClearContextAcrossRegistriesBatch) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registries": {"type": "array", "items": {"type": "string"}},
    "context": {"type": "string"},
    "deleteContext": {"type": "boolean"},
    "dryRun": {"type": "boolean"}
  },
  "required": ["registries", "context"]
}`)
}

type clearAcrossRegistriesParams struct {
	Registries    []string `json:"registries"`
	Context       string   `json:"context"`
	DeleteContext bool     `json:"deleteContext,omitempty"`
	DryRun        bool     `json:"dryRun,omitempty"`
}

func (t *ClearContextAcrossRegistriesBatch) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p clearAcrossRegistriesParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if len(p.Registries) == 0 || p.Context == "" {
		return tools.ErrorResult(errors.New("registries and context are required"))
	}

	results := make(map[string]any, len(p.Registries))
	for _, r := range p.Registries {
		gctx := &guards.GuardContext{RegistryName: r, Mutating: true, DryRun: p.DryRun}
		guards.PopulateWriteState(ctx, t.engine.Manager(), gctx)
		guards.PopulateContextSubjectCount(ctx, t.engine.Manager(), r, p.Context, gctx)
		outcome := guards.NewRunner().Run(ctx, gctx, guards.ClearContextGuards())
		if outcome.Blocked {
			results[r] = map[string]any{"error": outcome.FormatBlockMessage()}
			continue
		}
		result, err := t.engine.ClearContextBatch(ctx, migration.ClearContextBatchRequest{
			Registry:      r,
			Context:       p.Context,
			DeleteContext: p.DeleteContext,
			DryRun:        p.DryRun,
		})
		if err != nil {
			results[r] = map[string]any{"error": err.Error()}
			continue
		}
		results[r] = result
	}
	return mcp.JSONResult(map[string]any{"context": p.Context, "results": results})
}

// toMap round-trips a result struct through JSON so mcp.JSONResult can
// merge in an "advisory" field without every migration.Engine result type
// needing its own map conversion method.
func toMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
