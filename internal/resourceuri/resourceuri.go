// Package resourceuri builds the registry:// linking scheme.
// Tool results embed these strings in resourceURI fields so
// clients can cross-reference a result back to the entity it describes.
package resourceuri

import (
	"fmt"
	"regexp"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Sanitize replaces every character outside [A-Za-z0-9._-] with an
// underscore.
func Sanitize(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// Registry builds registry://{registry}.
func Registry(registry string) string {
	return fmt.Sprintf("registry://%s", Sanitize(registry))
}

// Context builds registry://{registry}/contexts/{context}.
func Context(registry, context string) string {
	return fmt.Sprintf("%s/contexts/%s", Registry(registry), Sanitize(context))
}

// Subject builds registry://{registry}/contexts/{context}/subjects/{subject}.
func Subject(registry, context, subject string) string {
	return fmt.Sprintf("%s/subjects/%s", Context(registry, context), Sanitize(subject))
}

// Version builds .../subjects/{subject}/versions/{version}.
func Version(registry, context, subject string, version int) string {
	return fmt.Sprintf("%s/versions/%d", Subject(registry, context, subject), version)
}

// SubjectConfig builds .../subjects/{subject}/config.
func SubjectConfig(registry, context, subject string) string {
	return fmt.Sprintf("%s/config", Subject(registry, context, subject))
}

// SubjectMode builds .../subjects/{subject}/mode.
func SubjectMode(registry, context, subject string) string {
	return fmt.Sprintf("%s/mode", Subject(registry, context, subject))
}

// SubjectCompatibility builds .../subjects/{subject}/compatibility.
func SubjectCompatibility(registry, context, subject string) string {
	return fmt.Sprintf("%s/compatibility", Subject(registry, context, subject))
}

// ContextConfig builds registry://{registry}/contexts/{context}/config.
func ContextConfig(registry, context string) string {
	return fmt.Sprintf("%s/config", Context(registry, context))
}

// ContextMode builds registry://{registry}/contexts/{context}/mode.
func ContextMode(registry, context string) string {
	return fmt.Sprintf("%s/mode", Context(registry, context))
}

// Migration builds registry://{registry}/migrations/{id}.
func Migration(registry, id string) string {
	return fmt.Sprintf("%s/migrations/%s", Registry(registry), Sanitize(id))
}

// Task builds registry://{registry}/tasks/{id}.
func Task(registry, id string) string {
	return fmt.Sprintf("%s/tasks/%s", Registry(registry), Sanitize(id))
}
