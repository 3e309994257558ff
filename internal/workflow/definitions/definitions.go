// Package definitions embeds the predefined workflow YAML documents:
// Schema Migration Wizard, Context Reorganization, Disaster
// Recovery Setup, and Schema Evolution Assistant. Definitions are data,
// never code, so the runtime can add new ones without a rebuild of this
// package's logic.
package definitions

import "embed"

//go:embed *.yaml
var files embed.FS

// names lists the embedded files in a stable order.
var names = []string{
	"schema_migration_wizard.yaml",
	"context_reorganization.yaml",
	"disaster_recovery_setup.yaml",
	"schema_evolution_assistant.yaml",
}

// Load returns the raw YAML bytes of every embedded workflow document,
// keyed by filename. Callers decode each into their own Definition type
// with gopkg.in/yaml.v3 — this package stays free of a dependency on the
// workflow package's types to avoid an import cycle.
func Load() (map[string][]byte, error) {
	out := make(map[string][]byte, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out[name] = data
	}
	return out, nil
}
