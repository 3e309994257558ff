package smartdefaults

import "strings"

// templates is the static {operation -> {context -> {field -> value}}}
// table. Context names are matched loosely: an exact match
// wins, otherwise any context containing one of the environment tier
// keywords below is treated as that tier.
var templates = map[string]map[string]map[string]any{
	"registerSchema": {
		"production":  {"compatibility": "FULL"},
		"staging":     {"compatibility": "BACKWARD"},
		"development": {"compatibility": "NONE"},
		"testing":     {"compatibility": "NONE"},
	},
	"updateGlobalConfig": {
		"production":  {"compatibility": "FULL"},
		"staging":     {"compatibility": "BACKWARD"},
		"development": {"compatibility": "NONE"},
		"testing":     {"compatibility": "NONE"},
	},
	"updateSubjectConfig": {
		"production":  {"compatibility": "FULL"},
		"staging":     {"compatibility": "BACKWARD"},
		"development": {"compatibility": "NONE"},
		"testing":     {"compatibility": "NONE"},
	},
	"migrateSchema": {
		"production": {"preserveIds": true, "dryRun": true},
		"global":     {"preserveIds": true, "dryRun": false},
	},
	"migrateContext": {
		"production": {"preserveIds": true, "dryRun": true, "conflictResolution": "skip"},
		"global":     {"preserveIds": true, "dryRun": false, "conflictResolution": "skip"},
	},
	"export": {
		"global": {"format": "json", "compression": "none"},
	},
}

// environmentTiers maps substrings found in a context name to the
// canonical tier key used in the templates table, in priority order.
var environmentTiers = []struct {
	substr string
	tier   string
}{
	{"prod", "production"},
	{"stag", "staging"},
	{"test", "testing"},
	{"dev", "development"},
}

// DetectEnvironment guesses an environment tier from a context name, e.g.
// "prod-orders" -> "production". Returns "" when nothing matches.
func DetectEnvironment(contextName string) string {
	lower := strings.ToLower(contextName)
	for _, tier := range environmentTiers {
		if strings.Contains(lower, tier.substr) {
			return tier.tier
		}
	}
	return ""
}

func templateDefaults(operation, context string) map[string]any {
	byContext, ok := templates[operation]
	if !ok {
		return nil
	}
	if vals, ok := byContext[context]; ok {
		return vals
	}
	if tier := DetectEnvironment(context); tier != "" {
		if vals, ok := byContext[tier]; ok {
			return vals
		}
	}
	return byContext["global"]
}
