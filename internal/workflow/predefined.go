package workflow

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/srcp/schema-registry-controlplane/internal/workflow/definitions"
)

// RegisterPredefined decodes and registers the four predefined workflows
// (Schema Migration Wizard, Context Reorganization, Disaster Recovery
// Setup, Schema Evolution Assistant) embedded in internal/workflow/definitions.
func (r *Runtime) RegisterPredefined() error {
	docs, err := definitions.Load()
	if err != nil {
		return fmt.Errorf("loading predefined workflow definitions: %w", err)
	}
	for name, data := range docs {
		var def Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return fmt.Errorf("parsing workflow definition %q: %w", name, err)
		}
		if err := r.Register(&def); err != nil {
			return fmt.Errorf("registering workflow definition %q: %w", name, err)
		}
	}
	return nil
}
