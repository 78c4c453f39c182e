package federation

import (
	"encoding/json"
	"strings"
)

type OperationKind string

const (
	Query    OperationKind = "query"
	Mutation OperationKind = "mutation"
)

// RootTypeName returns the name of the schema type that holds the root fields
// of this kind of operation.
func (k OperationKind) RootTypeName() string {
	switch k {
	case Mutation:
		return "Mutation"
	default:
		return "Query"
	}
}

func OperationKindFromString(s string) (OperationKind, bool) {
	switch strings.ToLower(s) {
	case string(Query):
		return Query, true
	case string(Mutation):
		return Mutation, true
	}
	return "", false
}

const (
	SchemaPath     string = "/federation/v1/schema"
	OperationsPath string = "/federation/v1/operations"
	EntitiesPath   string = "/federation/v1/entities"
	ExtensionsPath string = "/federation/v1/extensions"
)

// OperationRequest asks a subgraph to run one of its own root fields.
// Arguments are kept as raw JSON so that the receiving side can tell an
// omitted argument from an explicit null.
type OperationRequest struct {
	Operation OperationKind              `json:"operation"`
	Field     string                     `json:"field"`
	Arguments map[string]json.RawMessage `json:"arguments,omitempty"`
}

// EntitiesRequest asks a subgraph to resolve a batch of entity references.
// The response data is aligned with the representations.
type EntitiesRequest struct {
	Representations []Representation `json:"representations"`
}

// ExtensionRequest asks a subgraph to compute one extension field for a batch
// of foreign entities. The response data is aligned with the representations.
type ExtensionRequest struct {
	ParentType      string           `json:"parentType"`
	Field           string           `json:"field"`
	Representations []Representation `json:"representations"`
}

type SchemaResult struct {
	Name string `json:"name"`
	SDL  string `json:"sdl"`
}

type OperationResult struct {
	Data json.RawMessage `json:"data"`
}

type BatchResult struct {
	Data []json.RawMessage `json:"data"`
}

// IsNull reports whether a raw value is absent or an explicit JSON null
func IsNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
