// Package content provides MCP prompts and resources for the control plane.
package content

import "github.com/srcp/schema-registry-controlplane/internal/mcp"

// --- srcp-guide prompt ---

// GuidePrompt is the comprehensive usage guide, optionally narrowed by a
// focus argument.
type GuidePrompt struct{}

func (p *GuidePrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "srcp-guide",
		Description: "Usage guide for the schema-registry control plane. Optional focus: overview, migration, workflows, tools.",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "focus",
				Description: "Narrow the guide to one area: overview | migration | workflows | tools",
				Required:    false,
			},
		},
	}
}

func (p *GuidePrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	section := guideOverview
	switch arguments["focus"] {
	case "migration":
		section = guideMigration
	case "workflows":
		section = guideWorkflows
	case "tools":
		section = guideTools
	}
	return &mcp.PromptsGetResult{
		Description: "Schema-registry control plane usage guide",
		Messages: []mcp.PromptMessage{
			{
				Role:    "user",
				Content: mcp.TextContent(section),
			},
		},
	}, nil
}

const guideOverview = `# Schema Registry Control Plane

You are working against a fleet of Confluent-compatible Schema Registry
instances through a single control plane. Before mutating anything:

1. Run ` + "`listRegistries`" + ` to see the fleet and which registry is default.
2. Run ` + "`checkReadonlyMode`" + ` for the registry you intend to write to.
   Readonly registries refuse every mutation before any side effect.
3. Contexts namespace subjects inside a registry. The default context is
   named "." — omitting the context and passing "." are the same thing.

Typical flows:

- Schema lifecycle: registerSchema -> getSchemaVersions -> checkCompatibility.
- Cross-registry copy: migrateSchema (one subject) or migrateContext
  (everything in a context). Use dryRun first.
- Long operations: pass async where supported, then poll getTaskStatus.
- Unsure what inputs an operation needs? Use its Interactive variant
  (e.g. registerSchemaInteractive) and answer the elicitation it opens
  with submitElicitationResponse, or start a guided workflow.
`

const guideMigration = `# Migrating Schemas Between Registries

Checklist for a safe migration:

1. ` + "`compareRegistries`" + ` shows what differs between source and target.
2. ` + "`migrateSchema`" + ` / ` + "`migrateContext`" + ` with dryRun=true returns the
   exact plan (versions, ids) without writing anything.
3. preserveIds=true keeps source schema ids on the target. The engine
   opens an IMPORT-mode window on the target subject and always restores
   the previous mode, even on failure. Targets that reject IMPORT mode
   fall back to auto-assigned ids with a warning.
4. Versions migrate in ascending order so target version numbers follow
   the source. A single failed version is recorded and the rest continue.
5. When source and target are the same physical registry, the engine
   refuses to copy onto itself and instead returns a Docker-handoff
   package (env file, compose descriptor, script) to run the migration
   through a disposable local registry.
6. Afterwards, ` + "`findMissingSchemas`" + ` verifies nothing was left behind.
`

const guideWorkflows = `# Guided Workflows

Four predefined workflows walk through multi-step operations. Each step
is an elicitation; answer it with submitElicitationResponse.

- ` + "`guidedSchemaMigration`" + ` — source/target selection, version and id
  options, dry-run preview, confirmation.
- ` + "`guidedContextReorganization`" + ` — move subjects between contexts with
  conflict handling.
- ` + "`guidedDisasterRecovery`" + ` — set up a standby registry and replication
  checks.
- ` + "`guidedSchemaEvolution`" + ` — plan a compatible change to an existing
  subject.

Mechanics:

- startWorkflow returns an instanceId and the first step's request.
- Each submitElicitationResponse returns either the next step's request
  or the finished instance's aggregate responses.
- Include "_workflow_action": "back" in a response to return to the
  previous step (valid after the first step).
- workflowStatus shows the current step and accumulated responses;
  abortWorkflow cancels the instance.
`

const guideTools = `# Tool Groups

- Registry: listRegistries, getRegistryInfo, testRegistryConnection,
  testAllRegistries, setDefaultRegistry, getDefaultRegistry,
  checkReadonlyMode.
- Schemas: registerSchema, getSchema, getSchemaVersions,
  checkCompatibility, listSubjects, deleteSubject.
- Contexts: listContexts, createContext, deleteContext.
- Config: getGlobalConfig, updateGlobalConfig, getSubjectConfig,
  updateSubjectConfig. Modes: getMode, updateMode, getSubjectMode,
  updateSubjectMode.
- Migration: migrateSchema, migrateContext, listMigrations,
  getMigrationStatus, compareRegistries, compareContextsAcrossRegistries,
  findMissingSchemas, clearContextBatch, clearMultipleContextsBatch,
  clearContextAcrossRegistriesBatch.
- Tasks: createAsyncTask, getTaskStatus, listTasks, cancelTask,
  cancelAllTasks, resetTaskQueue.
- Workflows: startWorkflow, listWorkflows, workflowStatus, abortWorkflow,
  describeWorkflow, the guided* entry points, submitElicitationResponse.
- Counting: countContexts, countSchemas, countSchemaVersions,
  getRegistryStatistics.

Every tool returns a structured JSON value. Errors come back in-band as
{"error": ..., "code": ..., "details": ...} — never as protocol failures.
Omitting "registry" uses the default registry.
`

// --- srcp-migration prompt ---

// MigrationPrompt produces a step-by-step plan for one concrete migration.
type MigrationPrompt struct{}

func (p *MigrationPrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "srcp-migration",
		Description: "Step-by-step plan for migrating a subject or context between two registries.",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "source",
				Description: "Source registry name",
				Required:    true,
			},
			{
				Name:        "target",
				Description: "Target registry name",
				Required:    true,
			},
			{
				Name:        "subject",
				Description: "Subject to migrate; omit to plan a whole-context migration",
				Required:    false,
			},
		},
	}
}

func (p *MigrationPrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	source := arguments["source"]
	target := arguments["target"]
	subject := arguments["subject"]

	scopeLine := "Migrate the whole context with migrateContext."
	if subject != "" {
		scopeLine = "Migrate the subject `" + subject + "` with migrateSchema."
	}

	text := `# Migration Plan: ` + source + ` -> ` + target + `

` + scopeLine + `

1. Confirm both registries are reachable: testRegistryConnection for
   "` + source + `" and "` + target + `".
2. Confirm the target is writable: checkReadonlyMode("` + target + `").
3. Diff the current state: compareRegistries(source="` + source + `",
   target="` + target + `").
4. Dry-run the migration (dryRun=true) and review the planned versions
   and ids before writing anything.
5. Run the real migration. Prefer preserveIds=true unless the target
   already holds conflicting subjects.
6. Verify: findMissingSchemas(source="` + source + `", target="` + target + `")
   must return an empty list, and getMode("` + target + `") must equal its
   pre-migration value.
`
	return &mcp.PromptsGetResult{
		Description: "Migration plan",
		Messages: []mcp.PromptMessage{
			{
				Role:    "user",
				Content: mcp.TextContent(text),
			},
		},
	}, nil
}
