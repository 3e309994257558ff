package guards

import (
	"context"

	"github.com/srcp/schema-registry-controlplane/internal/registry"
)

// PopulateWriteState fills the registry-reachability fields a plain
// mutating tool call (registerSchema, updateSubjectConfig, setMode, ...)
// needs before WriteGuards runs. It never calls CheckWritable itself —
// that remains the hard enforcement point in registry.Manager; this only
// gathers the advisory signal ReadonlyGate reports early.
func PopulateWriteState(ctx context.Context, manager *registry.Manager, gctx *GuardContext) {
	c, err := manager.Get(gctx.RegistryName)
	if err != nil {
		gctx.RegistryReachable = false
		return
	}
	gctx.RegistryName = c.Config().Name
	gctx.RegistryReadonly = c.Config().Readonly
	status := c.TestConnection(ctx)
	gctx.RegistryReachable = status.Status == "ok"
}

// PopulateMigrationState fills the migration-specific GuardContext fields
// for migrateSchema / migrateContext, by probing the source and target
// registries directly. It runs before the migration.Engine call itself, so
// guards can advise the caller before any schema is written. When
// preserveIDs is set, the call is not a dry run and the target is not
// readonly, IMPORT support is probed by setting the target context's mode
// to IMPORT and then back to READWRITE.
func PopulateMigrationState(ctx context.Context, manager *registry.Manager, sourceRegistry, targetRegistry, sourceContext, targetContext string, preserveIDs bool, gctx *GuardContext) {
	gctx.RegistryName = targetRegistry
	gctx.PreserveIDs = preserveIDs

	target, err := manager.Get(targetRegistry)
	if err != nil {
		gctx.RegistryReachable = false
		return
	}
	gctx.RegistryName = target.Config().Name
	gctx.RegistryReadonly = target.Config().Readonly
	status := target.TestConnection(ctx)
	gctx.RegistryReachable = status.Status == "ok"

	if preserveIDs && !gctx.DryRun && !gctx.RegistryReadonly {
		if err := target.SetMode(ctx, targetContext, "", registry.ModeImport); err == nil {
			gctx.ImportModeSupported = true
			_ = target.SetMode(ctx, targetContext, "", registry.ModeReadWrite)
		}
	}

	if contexts, err := target.ListContexts(ctx); err == nil {
		for _, c := range contexts {
			if c == targetContext {
				gctx.TargetContextExists = true
				break
			}
		}
	}

	if source, err := manager.Get(sourceRegistry); err == nil {
		if level, err := source.GetGlobalConfig(ctx, sourceContext); err == nil {
			gctx.SourceCompatibility = string(level)
		}
	}
	if level, err := target.GetGlobalConfig(ctx, targetContext); err == nil {
		gctx.TargetCompatibility = string(level)
	}
}

// PopulateSchemaVersionCount fills VersionCount for a single-subject
// migration by counting the source subject's versions.
func PopulateSchemaVersionCount(ctx context.Context, manager *registry.Manager, sourceRegistry, sourceContext, subject string, gctx *GuardContext) {
	source, err := manager.Get(sourceRegistry)
	if err != nil {
		return
	}
	versions, err := source.ListVersions(ctx, subject, sourceContext)
	if err != nil {
		return
	}
	gctx.VersionCount = len(versions)
}

// PopulateContextSubjectCount fills VersionCount (for migrateContext, one
// "unit" per subject rather than per version) and SubjectCount (for
// clearContextBatch) from the live subject list of a context.
func PopulateContextSubjectCount(ctx context.Context, manager *registry.Manager, registryName, subjCtx string, gctx *GuardContext) {
	c, err := manager.Get(registryName)
	if err != nil {
		return
	}
	subjects, err := c.ListSubjects(ctx, subjCtx)
	if err != nil {
		return
	}
	gctx.VersionCount = len(subjects)
	gctx.SubjectCount = len(subjects)
}
