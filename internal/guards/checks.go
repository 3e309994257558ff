package guards

import (
	"context"
	"fmt"
)

// --- Write gate ---

// ReadonlyGate refuses any mutating operation against a registry configured
// read-only. The setting is per registry; there is no process-wide
// readonly switch. This is a HARD_BLOCK:
// ReadonlyBlocked must be returned before any side effect, and there is
// no force=true override.
var ReadonlyGate = NewGuardFunc("readonly_gate", func(_ context.Context, gctx *GuardContext) Result {
	if !gctx.Mutating || gctx.DryRun {
		return Pass("readonly_gate")
	}
	if !gctx.RegistryReadonly {
		return Pass("readonly_gate")
	}
	return Fail("readonly_gate", HardBlock,
		fmt.Sprintf("registry %q is configured read-only", gctx.RegistryName),
		"target a writable registry, or clear the READONLY setting for this fleet member.",
	)
})

// RegistryReachableCheck warns when the target registry failed its last
// connectivity probe — the operation is allowed to proceed (the
// underlying client will surface a RegistryUnreachable error itself) but
// the caller gets an early heads-up.
var RegistryReachableCheck = NewGuardFunc("registry_reachable", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.RegistryReachable {
		return Pass("registry_reachable")
	}
	return Fail("registry_reachable", Warning,
		fmt.Sprintf("registry %q did not respond to the last connectivity check", gctx.RegistryName),
		"run testRegistryConnection before retrying.",
	)
})

// --- Migration guards ---

// ImportModeSupportCheck blocks an ID-preserving migration when the
// target registry's IMPORT mode could not be confirmed — continuing
// would silently fall back to non-ID-preserving registration, which
// treated as a distinct, caller-visible outcome, not a silent
// substitution.
var ImportModeSupportCheck = NewGuardFunc("import_mode_support", func(_ context.Context, gctx *GuardContext) Result {
	if !gctx.PreserveIDs || gctx.DryRun {
		return Pass("import_mode_support")
	}
	if gctx.ImportModeSupported {
		return Pass("import_mode_support")
	}
	return Fail("import_mode_support", SoftBlock,
		fmt.Sprintf("registry %q did not accept IMPORT mode", gctx.RegistryName),
		"retry without preserveIds=true, or use force=true to proceed without ID preservation.",
	)
})

// TargetContextMissingCheck is advisory: the target context will be
// created automatically, but the caller should know migration is about
// to bootstrap a new context rather than reuse an existing one.
var TargetContextMissingCheck = NewGuardFunc("target_context_missing", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.TargetContextExists {
		return Pass("target_context_missing")
	}
	return Fail("target_context_missing", Suggestion,
		"target context does not exist yet and will be created by this migration",
		"",
	)
})

// CompatibilityMismatchCheck warns when source and target compatibility
// levels differ, since a schema that was valid under the source's rule
// may be rejected by the target's.
var CompatibilityMismatchCheck = NewGuardFunc("compatibility_mismatch", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.SourceCompatibility == "" || gctx.TargetCompatibility == "" {
		return Pass("compatibility_mismatch")
	}
	if gctx.SourceCompatibility == gctx.TargetCompatibility {
		return Pass("compatibility_mismatch")
	}
	return Fail("compatibility_mismatch", Warning,
		fmt.Sprintf("source compatibility %s differs from target compatibility %s", gctx.SourceCompatibility, gctx.TargetCompatibility),
		"review the target subject's compatibility setting before migrating.",
	)
})

// LargeMigrationSuggestsAsyncCheck nudges the caller toward createAsyncTask
// for migrations with enough versions that a synchronous call risks the
// caller giving up waiting.
var LargeMigrationSuggestsAsyncCheck = NewGuardFunc("large_migration_async", func(_ context.Context, gctx *GuardContext) Result {
	const asyncThreshold = 20
	if gctx.VersionCount < asyncThreshold {
		return Pass("large_migration_async")
	}
	return Fail("large_migration_async", Suggestion,
		fmt.Sprintf("migrating %d versions; consider createAsyncTask to track progress instead of waiting synchronously", gctx.VersionCount),
		"",
	)
})

// --- Destructive-operation guards ---

// LargeDeletionCheck is a SOFT_BLOCK on clearContextBatch calls that would
// delete a large number of subjects without dryRun having been run first.
var LargeDeletionCheck = NewGuardFunc("large_deletion", func(_ context.Context, gctx *GuardContext) Result {
	const deletionThreshold = 10
	if gctx.DryRun || gctx.SubjectCount < deletionThreshold {
		return Pass("large_deletion")
	}
	return Fail("large_deletion", SoftBlock,
		fmt.Sprintf("this would delete %d subjects", gctx.SubjectCount),
		"run with dryRun=true first to review the plan, or use force=true to proceed.",
	)
})

// --- Guard sets ---

// WriteGuards returns the guards every mutating tool call runs first.
func WriteGuards() []Guard {
	return []Guard{ReadonlyGate, RegistryReachableCheck}
}

// MigrationGuards returns the guards a schema or context migration runs
// before starting.
func MigrationGuards() []Guard {
	return []Guard{
		ReadonlyGate,
		ImportModeSupportCheck,
		TargetContextMissingCheck,
		CompatibilityMismatchCheck,
		LargeMigrationSuggestsAsyncCheck,
	}
}

// ClearContextGuards returns the guards clearContextBatch runs before
// deleting anything.
func ClearContextGuards() []Guard {
	return []Guard{ReadonlyGate, LargeDeletionCheck}
}
