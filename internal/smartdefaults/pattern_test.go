package smartdefaults

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSubjectNamesDetectsHyphenated(t *testing.T) {
	report := AnalyzeSubjectNames([]string{
		"orders-created", "orders-updated", "payments-created", "users-deleted",
	})

	assert.NotEmpty(t, report.NamingConventions)
	assert.Equal(t, "hyphenated", report.NamingConventions[0].Style)
	assert.Equal(t, 4, report.NamingConventions[0].Occurrence)
}

func TestAnalyzeSubjectNamesCommonAffixes(t *testing.T) {
	report := AnalyzeSubjectNames([]string{
		"orders-created", "orders-updated", "orders-deleted", "payments-created",
	})

	var prefixes []string
	for _, a := range report.Affixes {
		if a.Kind == "prefix" {
			prefixes = append(prefixes, a.Value)
		}
	}
	assert.Contains(t, prefixes, "orders")
}

func TestAnalyzeSubjectNamesEmpty(t *testing.T) {
	report := AnalyzeSubjectNames(nil)
	assert.Empty(t, report.NamingConventions)
	assert.Empty(t, report.Affixes)
}

func TestAnalyzeSchemaFieldsModalType(t *testing.T) {
	fields := []SchemaField{
		{Name: "id", Type: "string"},
		{Name: "id", Type: "string"},
		{Name: "id", Type: "int"},
		{Name: "amount", Type: "double"},
	}

	suggestions := AnalyzeSchemaFields(fields)
	byName := map[string]FieldSuggestion{}
	for _, s := range suggestions {
		byName[s.Name] = s
	}

	assert.Equal(t, "string", byName["id"].Type)
	assert.Equal(t, 3, byName["id"].Occurrence)
	assert.Equal(t, "double", byName["amount"].Type)
}
