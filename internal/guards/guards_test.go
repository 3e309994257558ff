package guards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadonlyGateBlocksMutatingWriteToReadonlyRegistry(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "prod", Mutating: true, RegistryReadonly: true}

	outcome := runner.Run(context.Background(), gctx, WriteGuards())

	require.True(t, outcome.Blocked)
	require.Len(t, outcome.HardBlocks(), 1)
	assert.Equal(t, "readonly_gate", outcome.HardBlocks()[0].GuardName)
}

func TestReadonlyGateAllowsDryRun(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "prod", Mutating: true, RegistryReadonly: true, DryRun: true, RegistryReachable: true}

	outcome := runner.Run(context.Background(), gctx, WriteGuards())

	assert.False(t, outcome.Blocked)
}

func TestRegistryReachableCheckWarnsButDoesNotBlock(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "prod", Mutating: true, RegistryReachable: false}

	outcome := runner.Run(context.Background(), gctx, WriteGuards())

	assert.False(t, outcome.Blocked)
	assert.Len(t, outcome.Warnings(), 1)
}

func TestImportModeSupportCheckSoftBlocksWhenUnsupported(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "dr", RegistryReachable: true, PreserveIDs: true, ImportModeSupported: false}

	outcome := runner.Run(context.Background(), gctx, MigrationGuards())

	require.True(t, outcome.Blocked)
	require.Len(t, outcome.SoftBlocks(), 1)
	assert.Equal(t, "import_mode_support", outcome.SoftBlocks()[0].GuardName)
}

func TestImportModeSupportCheckForceOverrides(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "dr", RegistryReachable: true, PreserveIDs: true, ImportModeSupported: false, Force: true}

	outcome := runner.Run(context.Background(), gctx, MigrationGuards())

	assert.False(t, outcome.Blocked)
	assert.Len(t, outcome.SoftBlocks(), 1)
}

func TestTargetContextMissingCheckIsSuggestionOnly(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "dr", RegistryReachable: true, TargetContextExists: false}

	outcome := runner.Run(context.Background(), gctx, MigrationGuards())

	assert.False(t, outcome.Blocked)
	assert.Len(t, outcome.Suggestions(), 1)
}

func TestCompatibilityMismatchCheckWarns(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{
		RegistryName:        "dr",
		RegistryReachable:   true,
		TargetContextExists: true,
		SourceCompatibility: "BACKWARD",
		TargetCompatibility: "FULL",
	}

	outcome := runner.Run(context.Background(), gctx, MigrationGuards())

	assert.False(t, outcome.Blocked)
	assert.Len(t, outcome.Warnings(), 1)
	assert.Equal(t, "compatibility_mismatch", outcome.Warnings()[0].GuardName)
}

func TestLargeMigrationSuggestsAsync(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "dr", RegistryReachable: true, TargetContextExists: true, VersionCount: 50}

	outcome := runner.Run(context.Background(), gctx, MigrationGuards())

	suggestions := outcome.Suggestions()
	found := false
	for _, s := range suggestions {
		if s.GuardName == "large_migration_async" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLargeDeletionSoftBlocksWithoutDryRun(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "prod", Mutating: true, SubjectCount: 25}

	outcome := runner.Run(context.Background(), gctx, ClearContextGuards())

	require.True(t, outcome.Blocked)
	require.Len(t, outcome.SoftBlocks(), 1)
	assert.Equal(t, "large_deletion", outcome.SoftBlocks()[0].GuardName)
}

func TestLargeDeletionAllowedUnderDryRun(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "prod", Mutating: true, SubjectCount: 25, DryRun: true}

	outcome := runner.Run(context.Background(), gctx, ClearContextGuards())

	assert.False(t, outcome.Blocked)
}

func TestFormatBlockMessageIncludesRemedy(t *testing.T) {
	runner := NewRunner()
	gctx := &GuardContext{RegistryName: "prod", Mutating: true, RegistryReadonly: true}

	outcome := runner.Run(context.Background(), gctx, WriteGuards())
	msg := outcome.FormatBlockMessage()

	assert.Contains(t, msg, "HARD_BLOCK")
	assert.Contains(t, msg, "readonly")
}
