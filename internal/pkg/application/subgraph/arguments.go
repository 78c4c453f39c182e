package subgraph

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/federated-graph/pkg/federation/errors"
)

// Arguments holds the raw JSON value of every argument that was supplied with
// an operation. An argument that was omitted has no entry, while an argument
// that was explicitly set to null has an entry with a JSON null.
type Arguments map[string]json.RawMessage

// NewArguments marshals plain values into Arguments
func NewArguments(values map[string]any) (Arguments, error) {
	args := make(Arguments, len(values))

	for name, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("argument %s could not be encoded: %s", name, err.Error()))
		}
		args[name] = b
	}

	return args, nil
}

func (a Arguments) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a required, non null, string argument
func (a Arguments) String(name string) (string, error) {
	var s string
	err := a.Decode(name, &s)
	return s, err
}

// ID returns a required identifier. Unlike String it also rejects the empty
// string.
func (a Arguments) ID(name string) (string, error) {
	id, err := a.String(name)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.NewValidationError(fmt.Sprintf("argument %s must not be empty", name))
	}
	return id, nil
}

// Int returns a required integer within the range of a GraphQL Int, which is
// a signed 32 bit value.
func (a Arguments) Int(name string) (int, error) {
	var i int
	err := a.Decode(name, &i)
	if err != nil {
		return 0, err
	}
	return i, checkIntRange(name, i)
}

func (a Arguments) Float(name string) (float64, error) {
	var f float64
	err := a.Decode(name, &f)
	return f, err
}

func (a Arguments) OptionalInt(name string) (Optional[int], error) {
	o, err := decodeOptional[int](a, name)
	if err != nil {
		return o, err
	}

	if i, ok := o.Get(); ok {
		if err = checkIntRange(name, i); err != nil {
			return Unset[int](), err
		}
	}

	return o, nil
}

func checkIntRange(name string, i int) error {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return errors.NewValidationError(fmt.Sprintf("argument %s is outside the range of a 32 bit integer", name))
	}
	return nil
}

func (a Arguments) OptionalString(name string) (Optional[string], error) {
	return decodeOptional[string](a, name)
}

// Decode unmarshals a required, non null, argument into target
func (a Arguments) Decode(name string, target any) error {
	raw, ok := a[name]
	if !ok || federation.IsNull(raw) {
		return errors.NewValidationError(fmt.Sprintf("argument %s is required", name))
	}

	err := json.Unmarshal(raw, target)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("argument %s is malformed: %s", name, err.Error()))
	}

	return nil
}

func decodeOptional[T any](a Arguments, name string) (Optional[T], error) {
	raw, ok := a[name]
	if !ok {
		return Unset[T](), nil
	}
	if federation.IsNull(raw) {
		return Null[T](), nil
	}

	var v T
	err := json.Unmarshal(raw, &v)
	if err != nil {
		return Unset[T](), errors.NewValidationError(fmt.Sprintf("argument %s is malformed: %s", name, err.Error()))
	}

	return Value(v), nil
}

// Optional distinguishes between an argument that was omitted, one that was
// explicitly set to null, and one that carries a value.
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

func Unset[T any]() Optional[T] {
	return Optional[T]{}
}

func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

func Value[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

func (o Optional[T]) IsSet() bool  { return o.set }
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and true only when a non null value was supplied
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set && !o.null
}

func (o Optional[T]) OrElse(fallback T) T {
	if v, ok := o.Get(); ok {
		return v
	}
	return fallback
}
