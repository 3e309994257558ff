package registry

import "strings"

// IsDefaultContext reports whether ctx denotes the default context. "."
// and the empty string must be indistinguishable in every URL-building
// and listing path — this is the single choke point
// that guarantees it, so every other file must call through it rather
// than comparing ctx to "." or "" directly.
func IsDefaultContext(ctx string) bool {
	return ctx == "" || ctx == "."
}

// buildURL constructs the path for a registry operation, inserting the
// /contexts/{ctx} segment only for a named, non-default context — the
// invariant whose violation shows up as zero-subject listings.
func buildURL(base, ctx, path string) string {
	base = strings.TrimRight(base, "/")
	if IsDefaultContext(ctx) {
		return base + path
	}
	return base + "/contexts/" + ctx + path
}

// NormalizeSubject strips a context-qualified subject (":.ctx:name") down
// to its bare name, per migration step 4.4.1.2. Context-qualified subjects
// are a Confluent convention for addressing a subject independently of the
// URL's own context segment; the control plane always carries context
// separately; so qualification is redundant and is discarded.
func NormalizeSubject(subject string) string {
	if !strings.HasPrefix(subject, ":.") {
		return subject
	}
	rest := subject[2:]
	idx := strings.Index(rest, ":")
	if idx < 0 {
		return subject
	}
	return rest[idx+1:]
}
