package smartdefaults

import (
	"fmt"

	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
)

// Enhancer enriches elicitation requests with suggested values and records
// acceptance/rejection feedback once a response arrives.
type Enhancer struct {
	engine *Engine
}

// NewEnhancer wraps an Engine for use against elicitation.Request/Response.
func NewEnhancer(engine *Engine) *Enhancer {
	return &Enhancer{engine: engine}
}

// EnhancedField carries a Field plus the suggestion that was computed for
// it, so feedback can be recorded later without recomputing the suggestion.
type EnhancedField struct {
	elicitation.Field
	Suggestion *SmartDefault
}

// EnhanceResult is an elicitation request's fields after enrichment, kept
// alongside the operation/context that produced it so a later Submit can
// record feedback with the same key.
type EnhanceResult struct {
	Fields    []EnhancedField
	Operation string
	Context   string
}

// Enhance computes suggestions for operation/context and overlays them
// onto fields: a field's Default is replaced when its suggestion's
// confidence clears HighConfidenceThreshold, and every suggested field's
// Description is annotated with the suggestion's provenance.
func (en *Enhancer) Enhance(fields []elicitation.Field, operation, context string, existingData map[string]any) EnhanceResult {
	defaults := en.engine.SuggestDefaults(operation, context, existingData)

	out := make([]EnhancedField, 0, len(fields))
	for _, f := range fields {
		sd, ok := defaults[f.Name]
		if !ok {
			out = append(out, EnhancedField{Field: f})
			continue
		}

		enhanced := f
		if sd.Confidence >= HighConfidenceThreshold {
			enhanced.Default = sd.Value
		}
		enhanced.Description = annotate(enhanced.Description, sd)

		suggestion := sd
		out = append(out, EnhancedField{Field: enhanced, Suggestion: &suggestion})
	}

	return EnhanceResult{Fields: out, Operation: operation, Context: context}
}

func annotate(description string, sd SmartDefault) string {
	note := fmt.Sprintf("suggested: %v (%d%% confidence, %s)", sd.Value, int(sd.Confidence*100), sd.Source)
	if description == "" {
		return note
	}
	return description + " (" + note + ")"
}

// ProcessFeedback compares the response's values against the suggestions
// made in result and records each field's acceptance or rejection with the
// underlying Engine. Fields with no suggestion to compare against are
// recorded as accepted, so repeated manual choices still build up a
// history.
func (en *Enhancer) ProcessFeedback(result EnhanceResult, values map[string]any) {
	for _, f := range result.Fields {
		value, present := values[f.Name]
		if !present {
			continue
		}
		if f.Suggestion == nil {
			_ = en.engine.RecordAcceptance(result.Operation, result.Context, f.Name, value, true)
			continue
		}
		accepted := fmt.Sprint(value) == fmt.Sprint(f.Suggestion.Value)
		_ = en.engine.RecordAcceptance(result.Operation, result.Context, f.Name, value, accepted)
	}
}
