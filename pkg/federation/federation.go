package federation

import (
	"encoding/json"
	"fmt"
	"maps"
)

// TypeNameField is the attribute that carries the entity type name in a
// representation on the wire.
const TypeNameField string = "__typename"

// Key identifies one logical entity across all subgraphs. It is comparable
// and is used as is for merging partial results.
type Key struct {
	TypeName string
	Field    string
	Value    string
}

func NewKey(typeName, field, value string) Key {
	return Key{TypeName: typeName, Field: field, Value: value}
}

func (k Key) String() string {
	return fmt.Sprintf("%s(%s=%s)", k.TypeName, k.Field, k.Value)
}

// Entity is either a Stub or a Full value. A nil Entity means that the key
// could not be resolved.
type Entity interface {
	Key() Key
	json.Marshaler

	isEntity()
}

// Stub is a value for an entity that is owned by another subgraph. It carries
// the key and whatever attributes the caller supplied, never more.
type Stub struct {
	key   Key
	known map[string]any
}

func NewStub(key Key) Stub {
	return Stub{key: key}
}

// NewStubWithAttributes creates a stub that also carries attributes already
// known by the caller. The key field is never duplicated into the attributes.
func NewStubWithAttributes(key Key, attributes map[string]any) Stub {
	s := Stub{key: key}

	for name, value := range attributes {
		if name == key.Field || name == TypeNameField {
			continue
		}
		if s.known == nil {
			s.known = map[string]any{}
		}
		s.known[name] = value
	}

	return s
}

func (s Stub) Key() Key { return s.key }

// Attribute returns a caller supplied attribute, or the key value when asked
// for the key field.
func (s Stub) Attribute(name string) (any, bool) {
	if name == s.key.Field {
		return s.key.Value, true
	}
	v, ok := s.known[name]
	return v, ok
}

// Attributes returns a copy of the caller supplied attributes
func (s Stub) Attributes() map[string]any {
	return maps.Clone(s.known)
}

func (s Stub) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.known)+1)
	maps.Copy(m, s.known)
	m[s.key.Field] = s.key.Value
	return json.Marshal(m)
}

func (Stub) isEntity() {}

// Full is a fully hydrated value for an entity owned by the subgraph that
// produced it.
type Full struct {
	key    Key
	record any
}

func NewFull(key Key, record any) Full {
	return Full{key: key, record: record}
}

func (f Full) Key() Key    { return f.key }
func (f Full) Record() any { return f.record }

func (f Full) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.record)
}

func (Full) isEntity() {}

// Representation is the wire form of an entity reference that is sent from
// the gateway to a subgraph: a type name, a key value and any attributes
// that are already known.
type Representation struct {
	TypeName   string
	Attributes map[string]any
}

func NewRepresentation(key Key, known map[string]any) Representation {
	attrs := make(map[string]any, len(known)+1)
	maps.Copy(attrs, known)
	attrs[key.Field] = key.Value

	return Representation{TypeName: key.TypeName, Attributes: attrs}
}

// KeyValue extracts the value of keyField as a string. Scalar keys that were
// transported as JSON numbers are formatted without exponent.
func (r Representation) KeyValue(keyField string) (string, bool) {
	v, ok := r.Attributes[keyField]
	if !ok || v == nil {
		return "", false
	}

	switch kv := v.(type) {
	case string:
		return kv, kv != ""
	case float64:
		return fmt.Sprintf("%.0f", kv), true
	case json.Number:
		return kv.String(), true
	}

	return fmt.Sprintf("%v", v), true
}

func (r Representation) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Attributes)+1)
	maps.Copy(m, r.Attributes)
	m[TypeNameField] = r.TypeName
	return json.Marshal(m)
}

func (r *Representation) UnmarshalJSON(data []byte) error {
	m := map[string]any{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	typeName, ok := m[TypeNameField].(string)
	if !ok || typeName == "" {
		return fmt.Errorf("representation is missing %s", TypeNameField)
	}

	delete(m, TypeNameField)

	r.TypeName = typeName
	r.Attributes = m

	return nil
}
