package migration

import (
	"fmt"
	"strings"

	"github.com/srcp/schema-registry-controlplane/internal/registry"
)

// HandoffPackage is the advisory bundle produced by the docker-handoff
// variant: a set of files a human runs outside the control
// plane to migrate between two contexts on one physical registry, since
// the control plane itself refuses to touch a registry in place.
type HandoffPackage struct {
	RegistryURL   string `json:"registryUrl"`
	SourceContext string `json:"sourceContext"`
	TargetContext string `json:"targetContext"`
	EnvFile       string `json:"envFile"`
	ComposeFile   string `json:"composeFile"`
	ShellScript   string `json:"shellScript"`
}

// BuildHandoffPackage renders the three files. sourceCfg and targetCfg are
// expected to share a URL; credentials are taken from whichever side
// carries them, preferring the target's (the side being written to in the
// advisory script).
func BuildHandoffPackage(sourceName, targetName string, sourceCfg, targetCfg registry.Config, sourceContext, targetContext string) *HandoffPackage {
	if targetContext == "" {
		targetContext = sourceContext
	}
	user := targetCfg.User
	if user == "" {
		user = sourceCfg.User
	}
	password := targetCfg.Password
	if password == "" {
		password = sourceCfg.Password
	}

	sourceCtxLabel := contextLabel(sourceContext)
	targetCtxLabel := contextLabel(targetContext)

	env := fmt.Sprintf(strings.TrimLeft(`
SCHEMA_REGISTRY_URL=%s
SCHEMA_REGISTRY_USER=%s
SCHEMA_REGISTRY_PASSWORD=%s
SOURCE_CONTEXT=%s
TARGET_CONTEXT=%s
`, "\n"), sourceCfg.URL, user, password, sourceCtxLabel, targetCtxLabel)

	compose := strings.TrimLeft(`
services:
  schema-registry-exporter:
    image: confluentinc/cp-schema-registry:latest
    command: ["export", "--env-file", "handoff.env"]
    env_file: handoff.env
`, "\n")

	script := fmt.Sprintf(strings.TrimLeft(`
#!/bin/sh
set -eu
. ./handoff.env
echo "Migrating context ${SOURCE_CONTEXT} -> ${TARGET_CONTEXT} on ${SCHEMA_REGISTRY_URL}"
echo "This source and target registry are the same physical instance (%s)."
echo "Run this script manually once you have reviewed it; the control plane will not mutate a registry in place."
`, "\n"), sourceCfg.URL)

	return &HandoffPackage{
		RegistryURL:   sourceCfg.URL,
		SourceContext: sourceCtxLabel,
		TargetContext: targetCtxLabel,
		EnvFile:       env,
		ComposeFile:   compose,
		ShellScript:   script,
	}
}

func contextLabel(ctx string) string {
	if registry.IsDefaultContext(ctx) {
		return "."
	}
	return ctx
}
