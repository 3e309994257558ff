package content

import "github.com/srcp/schema-registry-controlplane/internal/mcp"

// --- registry://data-model resource ---

// DataModelResource exposes the control plane's entity model as a
// reference resource. LLMs can read this to understand what the tools
// operate on.
type DataModelResource struct{}

func (r *DataModelResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "registry://data-model",
		Name:        "Schema Registry Data Model",
		Description: "Reference of the entities the control plane operates on: registries, contexts, subjects, versions, tasks, elicitations, workflows",
		MimeType:    "text/markdown",
	}
}

func (r *DataModelResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "registry://data-model",
				MimeType: "text/markdown",
				Text:     dataModelContent,
			},
		},
	}, nil
}

// --- registry://tool-reference resource ---

// ToolReferenceResource exposes a quick-reference card for every tool.
type ToolReferenceResource struct{}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "registry://tool-reference",
		Name:        "Control Plane Tool Reference",
		Description: "Quick-reference card for every tool with parameters and usage notes",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "registry://tool-reference",
				MimeType: "text/markdown",
				Text:     toolReferenceContent,
			},
		},
	}, nil
}

// --- registry://migration-playbook resource ---

// MigrationPlaybookResource documents the migration procedure, its
// guarantees, and its failure handling.
type MigrationPlaybookResource struct{}

func (r *MigrationPlaybookResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "registry://migration-playbook",
		Name:        "Migration Playbook",
		Description: "How cross-registry migration works: ordering, id preservation, IMPORT-mode handling, and failure semantics",
		MimeType:    "text/markdown",
	}
}

func (r *MigrationPlaybookResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "registry://migration-playbook",
				MimeType: "text/markdown",
				Text:     migrationPlaybookContent,
			},
		},
	}, nil
}

// --- Static content ---

const dataModelContent = `# Schema Registry Data Model

## Registry

A Confluent-compatible Schema Registry instance, configured by name.

| Property | Description |
|----------|-------------|
| name | Unique logical name within the fleet |
| url | Base URL of the REST API |
| user/password | Optional basic-auth credentials |
| readonly | When true, every mutation is refused before any side effect |

One registry in the fleet is the default; tools that omit "registry"
use it.

## Context

A named sub-namespace inside a registry. The default context is named
"." — passing "." and omitting the context are identical everywhere.
Named contexts appear in URLs as /contexts/{name}/... path prefixes.

## Subject

A versioned series of schemas identified by name within a context.
Versions are assigned by the registry in registration order, starting
at 1.

## Schema version

| Property | Description |
|----------|-------------|
| id | Registry-wide schema id; globally stable, preserved by migration when preserveIds is set |
| version | Position within the subject, ascending |
| schemaType | AVRO, JSON, or PROTOBUF |
| schema | The schema body, opaque to the control plane |

## Mode

Per-registry or per-subject write mode: READWRITE (normal), READONLY,
or IMPORT. IMPORT mode lets a client dictate schema ids during
registration; the migration engine opens and always closes IMPORT-mode
windows itself.

## Compatibility level

NONE, BACKWARD, BACKWARD_TRANSITIVE, FORWARD, FORWARD_TRANSITIVE, FULL,
FULL_TRANSITIVE. Set globally per context or per subject. Evaluation of
compatibility rules happens upstream, in the registry.

## Task

A tracked unit of async work: MIGRATION, SYNC, CLEANUP, EXPORT, or
IMPORT. Status moves PENDING -> RUNNING -> COMPLETED | FAILED |
CANCELLED, monotonically; progress is 0-100. Results are kept until
resetTaskQueue.

## Elicitation

A server-initiated request for missing information. Each carries its
own timeout; exactly one response may be submitted while unexpired.

## Workflow instance

A running execution of a predefined workflow definition: current step,
step history, and accumulated responses. Back-navigation pops the
history; finishing moves the instance to the completed set.

## Resource URIs

registry://{registry}/contexts/{ctx}/subjects/{subject}/versions/{v}
plus natural sub-paths for config, mode, and compatibility, and
registry://{registry}/migrations/{id} and .../tasks/{id}. Registry
names are sanitized to [A-Za-z0-9._-].
`

const toolReferenceContent = `# Tool Reference

Conventions: "registry" defaults to the default registry; "context"
defaults to the default context "."; errors are returned in-band as
{"error", "code", "details"}.

## Registry management

| Tool | Parameters | Notes |
|------|------------|-------|
| listRegistries | — | Names plus the current default |
| getRegistryInfo | registry? | Config plus live connection status |
| testRegistryConnection | registry? | Reachability and round-trip latency |
| testAllRegistries | — | Probes every fleet member in turn |
| setDefaultRegistry | registry | |
| getDefaultRegistry | — | |
| checkReadonlyMode | registry? | Whether writes would be blocked |

## Schemas

| Tool | Parameters | Notes |
|------|------------|-------|
| registerSchema | subject, schema, schemaType?, registry?, context? | Returns the assigned id |
| getSchema | subject, version?, registry?, context? | Latest version when omitted |
| getSchemaVersions | subject, registry?, context? | |
| checkCompatibility | subject, schema, schemaType?, registry?, context? | Delegated to the registry |
| listSubjects | registry?, context? | |
| deleteSubject | subject, registry?, context? | Returns deleted versions |

## Contexts

| Tool | Parameters | Notes |
|------|------------|-------|
| listContexts | registry? | |
| createContext | context, registry? | Materializes the context via its global config |
| deleteContext | context, registry? | Best effort; clears subjects first |

## Config and modes

getGlobalConfig / updateGlobalConfig / getSubjectConfig /
updateSubjectConfig manage compatibility levels; getMode / updateMode /
getSubjectMode / updateSubjectMode manage write modes. updateMode
accepts IMPORT, READONLY, READWRITE.

## Migration

| Tool | Parameters | Notes |
|------|------------|-------|
| migrateSchema | subject, sourceRegistry, targetRegistry, sourceContext?, targetContext?, preserveIds?, migrateAllVersions?, dryRun?, versions? | Ascending version order |
| migrateContext | context, sourceRegistry, targetRegistry, targetContext?, preserveIds?, dryRun?, migrateAllVersions?, async? | async returns a taskId |
| listMigrations | status? | Migration-typed tasks |
| getMigrationStatus | migrationId | |
| compareRegistries | sourceRegistry, targetRegistry, context? | sourceOnly / targetOnly / common |
| compareContextsAcrossRegistries | sourceRegistry, targetRegistry, sourceContext, targetContext | |
| findMissingSchemas | sourceRegistry, targetRegistry, context? | Present in source, absent in target |
| clearContextBatch | registry, context, deleteContext?, dryRun? | Parallel deletes |
| clearMultipleContextsBatch | registry, contexts, ... | One run per context |
| clearContextAcrossRegistriesBatch | registries, context, ... | One run per registry |

## Tasks

createAsyncTask, getTaskStatus, listTasks, cancelTask, cancelAllTasks,
resetTaskQueue. Cancellation is cooperative: a cancelled task's partial
writes stay in place, but IMPORT-mode windows are always closed.

## Workflows and elicitation

startWorkflow, listWorkflows, workflowStatus, abortWorkflow,
describeWorkflow, guidedSchemaMigration, guidedContextReorganization,
guidedDisasterRecovery, guidedSchemaEvolution,
submitElicitationResponse. Include "_workflow_action": "back" in a
response to return to the previous step.

## Interactive variants

registerSchemaInteractive, migrateContextInteractive,
createContextInteractive, checkCompatibilityInteractive: identical to
their base tools, but missing inputs open an elicitation instead of
failing; answer it with submitElicitationResponse and the base tool
runs with the assembled inputs, flagged elicitationUsed=true.

## Counting

countContexts, countSchemas, countSchemaVersions, getRegistryStatistics.
`

const migrationPlaybookContent = `# Migration Playbook

## Guarantees

- Versions migrate in ascending order, so target version numbers follow
  the source's.
- With preserveIds, each target schema keeps its source id. This
  requires an IMPORT-mode window on the target, which the engine opens
  at the subject level inside the target context and restores to the
  prior mode on every exit path, including failure and cancellation.
- dryRun=true performs no writes; it returns the per-version plan.
- A failed version is recorded and the remaining versions continue;
  re-running the migration completes the gaps or reports the versions
  as already present.

## Procedure (per subject)

1. Resolve both clients; unknown names fail immediately.
2. Normalize a pre-qualified subject (":.ctx:name") to its bare name.
3. List source versions; an empty subject is an error.
4. Choose versions: explicit list, all, or latest only.
5. Ensure the target context exists — a named context is force-created
   by registering and deleting a probe schema before any mode change.
6. If the subject already exists on the target and preserveIds is set,
   delete it first: id preservation needs a fresh id space.
7. Open the IMPORT window (preserveIds only). A 405 from the target
   downgrades to preserveIds=false with a warning.
8. Register versions in order, recording each outcome.
9. Restore the target's previous mode.

## Whole-context migration

Lists the source context's subjects and runs the per-subject procedure
for each. An empty source context is a zero-count success
(subjectsFound=0, status=empty), not a failure. The aggregate reports
successful, failed, and skipped subjects; status is completed, partial,
or failed.

## Same-registry safety

When source and target resolve to the same physical URL, nothing is
written. The engine returns a Docker-handoff package — an env file, a
compose descriptor, and a shell script — that runs the migration
through a disposable local registry instead. This prevents destructive
migrate-to-self runs.

## Readonly

The readonly gate runs before any side effect. A registry marked
readonly fails every mutating tool with ReadonlyBlocked and performs
nothing. Readonly is set per registry; there is no process-wide flag.
`
