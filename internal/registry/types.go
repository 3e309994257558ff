package registry

// SchemaType identifies the schema format.
type SchemaType string

const (
	SchemaTypeAvro     SchemaType = "AVRO"
	SchemaTypeJSON     SchemaType = "JSON"
	SchemaTypeProtobuf SchemaType = "PROTOBUF"
)

// Mode is a registry (or subject) write mode.
type Mode string

const (
	ModeImport    Mode = "IMPORT"
	ModeReadOnly  Mode = "READONLY"
	ModeReadWrite Mode = "READWRITE"
)

// SchemaRecord is one version of a subject's schema, as delivered by the
// registry. schemaBody is intentionally opaque — parsing Avro/JSON-Schema/
// Protobuf bodies is a spec Non-goal.
type SchemaRecord struct {
	ID         int        `json:"id"`
	Version    int        `json:"version"`
	Subject    string     `json:"subject"`
	SchemaType SchemaType `json:"schemaType"`
	SchemaBody string     `json:"schema"`
}

// ConnectionStatus is the result of testConnection.
type ConnectionStatus struct {
	Status string `json:"status"`
	RTTMs  int64  `json:"rttMs,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CompatibilityLevel is a global or subject-level compatibility setting.
type CompatibilityLevel string

const (
	CompatBackward           CompatibilityLevel = "BACKWARD"
	CompatBackwardTransitive CompatibilityLevel = "BACKWARD_TRANSITIVE"
	CompatForward            CompatibilityLevel = "FORWARD"
	CompatForwardTransitive  CompatibilityLevel = "FORWARD_TRANSITIVE"
	CompatFull               CompatibilityLevel = "FULL"
	CompatFullTransitive     CompatibilityLevel = "FULL_TRANSITIVE"
	CompatNone               CompatibilityLevel = "NONE"
)

// registerRequest is the POST /subjects/{s}/versions wire body.
type registerRequest struct {
	Schema     string     `json:"schema"`
	SchemaType SchemaType `json:"schemaType,omitempty"`
	ID         *int       `json:"id,omitempty"`
}

type registerResponse struct {
	ID int `json:"id"`
}

type modeRequest struct {
	Mode Mode `json:"mode"`
}

type modeResponse struct {
	Mode Mode `json:"mode"`
}

type configRequest struct {
	Compatibility CompatibilityLevel `json:"compatibility"`
}

type configResponse struct {
	CompatibilityLevel CompatibilityLevel `json:"compatibilityLevel"`
}

type compatibilityCheckResponse struct {
	IsCompatible bool     `json:"is_compatible"`
	Messages     []string `json:"messages,omitempty"`
}

type schemaWireRecord struct {
	Subject    string     `json:"subject"`
	Version    int        `json:"version"`
	ID         int        `json:"id"`
	SchemaType SchemaType `json:"schemaType,omitempty"`
	Schema     string     `json:"schema"`
}
