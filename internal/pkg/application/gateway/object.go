package gateway

import (
	"bytes"
	"encoding/json"
)

// Object is a JSON object that is marshalled with its keys in the order they
// were first set, which is how a GraphQL response must follow its selection.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

func (o *Object) Set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
