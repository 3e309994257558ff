package smartdefaults

import (
	"fmt"
)

// Engine composes the Pattern Analyzer, Learning Engine, and static
// Templates into suggestDefaults. The zero value is usable
// once Learning is set; Learning may be nil, in which case suggestions
// fall back to templates only (e.g. a CLI invocation with no store path
// configured).
type Engine struct {
	Learning *LearningEngine
}

// NewEngine builds an Engine backed by the given (possibly nil) learning
// store.
func NewEngine(learning *LearningEngine) *Engine {
	return &Engine{Learning: learning}
}

// SuggestDefaults applies a fixed precedence: existing data wins,
// then historical preference above the confidence threshold, then
// template, else the field is omitted from the result.
func (e *Engine) SuggestDefaults(operation, context string, existingData map[string]any) map[string]SmartDefault {
	out := map[string]SmartDefault{}

	for field, value := range existingData {
		out[field] = SmartDefault{Value: value, Confidence: 1.0, Source: SourceProvided}
	}

	if e.Learning != nil {
		for field := range collectCandidateFields(operation, context) {
			if _, already := out[field]; already {
				continue
			}
			pref, ok := e.Learning.GetHistoricalPreference(operation, context, field)
			if !ok || pref.Confidence < minHistoricalConfidence {
				continue
			}
			out[field] = SmartDefault{
				Value:      pref.Value,
				Confidence: pref.Confidence,
				Source:     SourceHistory,
				Reasoning:  fmt.Sprintf("accepted in %d prior %s submissions", pref.Samples, operation),
			}
		}
	}

	for field, value := range templateDefaults(operation, context) {
		if _, already := out[field]; already {
			continue
		}
		out[field] = SmartDefault{
			Value:      value,
			Confidence: templateConfidence,
			Source:     SourceTemplate,
			Reasoning:  fmt.Sprintf("%s convention default", context),
		}
	}

	return out
}

// minHistoricalConfidence is the bar a learned preference must clear to be
// surfaced at all; below this a single accept/reject is too little signal.
const minHistoricalConfidence = 0.3

// templateConfidence is the fixed confidence assigned to static template
// defaults: high enough to clear HighConfidenceThreshold (they're a
// deliberate operational convention) but always below a provided value.
const templateConfidence = 0.8

// collectCandidateFields returns the set of field names the templates
// table knows about for this operation, so the learning lookup doesn't
// have to be told the field set by the caller.
func collectCandidateFields(operation, context string) map[string]struct{} {
	out := map[string]struct{}{}
	for field := range templateDefaults(operation, context) {
		out[field] = struct{}{}
	}
	byContext, ok := templates[operation]
	if ok {
		for _, fields := range byContext {
			for field := range fields {
				out[field] = struct{}{}
			}
		}
	}
	return out
}

// RecordAcceptance is a convenience wrapper over Learning.RecordChoice
// that is a no-op when no learning store is configured.
func (e *Engine) RecordAcceptance(operation, context, field string, value any, accepted bool) error {
	if e.Learning == nil {
		return nil
	}
	return e.Learning.RecordChoice(operation, context, field, value, accepted)
}
