package smartdefaults

import (
	"regexp"
	"sort"
	"strings"
)

// minAffixOccurrence is the minimum-occurrence threshold
// before a prefix/suffix is reported as a convention rather than noise.
const minAffixOccurrence = 2

var (
	eventSuffixes = []string{"Event", "Created", "Updated", "Deleted", "Changed"}
	camelCaseRe   = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*[A-Z][a-zA-Z0-9]*$`)
)

// AnalyzeSubjectNames infers naming conventions and common affixes from a
// list of existing subject names.
func AnalyzeSubjectNames(subjects []string) PatternReport {
	report := PatternReport{}
	if len(subjects) == 0 {
		return report
	}

	var hyphenated, eventSuffixed, camel, dotted int
	for _, s := range subjects {
		switch {
		case strings.Contains(s, "-"):
			hyphenated++
		case strings.Contains(s, "."):
			dotted++
		case hasEventSuffix(s):
			eventSuffixed++
		case camelCaseRe.MatchString(s):
			camel++
		}
	}

	total := float64(len(subjects))
	add := func(style string, count int) {
		if count == 0 {
			return
		}
		report.NamingConventions = append(report.NamingConventions, NamingConvention{
			Style:      style,
			Occurrence: count,
			Confidence: float64(count) / total,
		})
	}
	add("hyphenated", hyphenated)
	add("dotted", dotted)
	add("event-suffixed", eventSuffixed)
	add("camelCase", camel)

	sort.Slice(report.NamingConventions, func(i, j int) bool {
		return report.NamingConventions[i].Occurrence > report.NamingConventions[j].Occurrence
	})

	report.Affixes = commonAffixes(subjects)
	return report
}

func hasEventSuffix(s string) bool {
	for _, suffix := range eventSuffixes {
		if strings.HasSuffix(s, suffix) || strings.HasSuffix(s, "-"+strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// commonAffixes finds prefixes and suffixes (split on "-", ".", "_") that
// occur in at least minAffixOccurrence subject names.
func commonAffixes(subjects []string) []AffixPattern {
	prefixCounts := map[string]int{}
	suffixCounts := map[string]int{}

	for _, s := range subjects {
		parts := splitOnSeparators(s)
		if len(parts) < 2 {
			continue
		}
		prefixCounts[parts[0]]++
		suffixCounts[parts[len(parts)-1]]++
	}

	var out []AffixPattern
	for v, n := range prefixCounts {
		if n >= minAffixOccurrence {
			out = append(out, AffixPattern{Value: v, Kind: "prefix", Occurrence: n})
		}
	}
	for v, n := range suffixCounts {
		if n >= minAffixOccurrence {
			out = append(out, AffixPattern{Value: v, Kind: "suffix", Occurrence: n})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrence != out[j].Occurrence {
			return out[i].Occurrence > out[j].Occurrence
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func splitOnSeparators(s string) []string {
	s = strings.NewReplacer(".", "-", "_", "-").Replace(s)
	var parts []string
	for _, p := range strings.Split(s, "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// SchemaField is the minimal shape needed to analyze schema field usage;
// callers extract this from whatever schema representation they hold
// (schema bodies stay opaque strings elsewhere in this module).
type SchemaField struct {
	Name string
	Type string
}

// AnalyzeSchemaFields infers the modal type of each field name observed
// across a corpus of schemas.
func AnalyzeSchemaFields(fields []SchemaField) []FieldSuggestion {
	type tally struct {
		total     int
		typeCount map[string]int
	}
	byName := map[string]*tally{}
	var order []string

	for _, f := range fields {
		t, ok := byName[f.Name]
		if !ok {
			t = &tally{typeCount: map[string]int{}}
			byName[f.Name] = t
			order = append(order, f.Name)
		}
		t.total++
		t.typeCount[f.Type]++
	}

	out := make([]FieldSuggestion, 0, len(order))
	for _, name := range order {
		t := byName[name]
		modalType, modalCount := "", 0
		for typ, n := range t.typeCount {
			if n > modalCount || (n == modalCount && typ < modalType) {
				modalType, modalCount = typ, n
			}
		}
		out = append(out, FieldSuggestion{
			Name:       name,
			Type:       modalType,
			Occurrence: t.total,
			Confidence: float64(modalCount) / float64(t.total),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Occurrence > out[j].Occurrence
	})
	return out
}
