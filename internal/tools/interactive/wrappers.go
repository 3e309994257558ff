package interactive

import (
	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
)

// WrapRegisterSchema makes registerSchemaInteractive: a registerSchema call
// missing its subject or schema body collects them through an elicitation.
func WrapRegisterSchema(coord *Coordinator, base mcp.Tool) *Wrapper {
	return Wrap(coord, base, "registerSchema", "registry", []elicitation.Field{
		{Name: "subject", Kind: elicitation.KindString, Required: true, Description: "subject name to register under"},
		{Name: "schema", Kind: elicitation.KindString, Required: true, Description: "schema body, verbatim"},
		{Name: "schemaType", Kind: elicitation.KindChoice, Options: []string{"AVRO", "JSON", "PROTOBUF"}, Default: "AVRO"},
		{Name: "context", Kind: elicitation.KindString, Description: "context to register in; omit for the default context"},
	})
}

// WrapMigrateContext makes migrateContextInteractive: a migrateContext call
// without migration preferences collects them before any write happens.
func WrapMigrateContext(coord *Coordinator, base mcp.Tool) *Wrapper {
	return Wrap(coord, base, "migrateContext", "targetRegistry", []elicitation.Field{
		{Name: "context", Kind: elicitation.KindString, Required: true, Description: "source context to migrate"},
		{Name: "sourceRegistry", Kind: elicitation.KindString, Required: true},
		{Name: "targetRegistry", Kind: elicitation.KindString, Required: true},
		{Name: "preserveIds", Kind: elicitation.KindBool, Required: true, Default: true, Description: "keep source schema ids on the target (IMPORT mode)"},
		{Name: "migrateAllVersions", Kind: elicitation.KindBool, Required: true, Default: true},
		{Name: "dryRun", Kind: elicitation.KindBool, Required: true, Default: true, Description: "plan only, write nothing"},
		{Name: "conflictResolution", Kind: elicitation.KindChoice, Options: []string{"skip", ""}, Default: "skip"},
	})
}

// WrapCreateContext makes createContextInteractive, collecting the context
// name when absent.
func WrapCreateContext(coord *Coordinator, base mcp.Tool) *Wrapper {
	return Wrap(coord, base, "createContext", "registry", []elicitation.Field{
		{Name: "context", Kind: elicitation.KindString, Required: true, Description: "name of the context to create"},
	})
}

// WrapCheckCompatibility makes checkCompatibilityInteractive: subject and
// candidate schema are collected when missing.
func WrapCheckCompatibility(coord *Coordinator, base mcp.Tool) *Wrapper {
	return Wrap(coord, base, "checkCompatibility", "registry", []elicitation.Field{
		{Name: "subject", Kind: elicitation.KindString, Required: true},
		{Name: "schema", Kind: elicitation.KindString, Required: true, Description: "candidate schema body to check"},
		{Name: "schemaType", Kind: elicitation.KindChoice, Options: []string{"AVRO", "JSON", "PROTOBUF"}, Default: "AVRO"},
	})
}
