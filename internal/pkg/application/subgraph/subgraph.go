package subgraph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/diwise/federated-graph/pkg/federation"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/federated-graph/pkg/federation/schema"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate moq -rm -out subgraph_mock.go . Subgraph

// Subgraph is the contract every subgraph service honours towards the
// gateway: local operations, reference resolution and extension resolution.
type Subgraph interface {
	Name() string
	SDL() string
	Contract() *schema.Contract

	Execute(ctx context.Context, kind federation.OperationKind, field string, args Arguments) (any, error)
	ResolveReference(ctx context.Context, typeName, keyValue string) (federation.Entity, error)
	ResolveReferences(ctx context.Context, representations []federation.Representation) ([]federation.Entity, error)
	ResolveExtension(ctx context.Context, parentType, field string, representation federation.Representation) (any, error)
}

type ResolverFunc func(ctx context.Context, args Arguments) (any, error)
type ReferenceFunc func(ctx context.Context, key federation.Key) (federation.Entity, error)
type ExtensionFunc func(ctx context.Context, parent federation.Stub) (any, error)

type Option func(*subgraph)

func Query(field string, fn ResolverFunc) Option {
	return func(s *subgraph) {
		s.addRoot(federation.Query, field, fn)
	}
}

func Mutation(field string, fn ResolverFunc) Option {
	return func(s *subgraph) {
		s.addRoot(federation.Mutation, field, fn)
	}
}

func Reference(typeName string, fn ReferenceFunc) Option {
	return func(s *subgraph) {
		if _, exists := s.references[typeName]; exists {
			s.problems = append(s.problems, fmt.Sprintf("duplicate reference resolver for %s", typeName))
		}
		s.references[typeName] = fn
	}
}

func Extension(typeName, field string, fn ExtensionFunc) Option {
	return func(s *subgraph) {
		k := extensionKey{typeName, field}
		if _, exists := s.extensions[k]; exists {
			s.problems = append(s.problems, fmt.Sprintf("duplicate extension resolver for %s.%s", typeName, field))
		}
		s.extensions[k] = fn
	}
}

var tracer = otel.Tracer("subgraph")

type extensionKey struct {
	typeName string
	field    string
}

type subgraph struct {
	name     string
	sdl      string
	contract *schema.Contract

	roots      map[federation.OperationKind]map[string]ResolverFunc
	references map[string]ReferenceFunc
	extensions map[extensionKey]ExtensionFunc

	problems []string
}

// New parses the SDL and binds the resolvers to it. Any mismatch between the
// schema and the registered resolvers fails the construction, so a subgraph
// that is returned can always serve every field it declares.
func New(name, sdl string, options ...Option) (Subgraph, error) {
	contract, err := schema.Parse(name, sdl)
	if err != nil {
		return nil, err
	}

	s := &subgraph{
		name:     name,
		sdl:      sdl,
		contract: contract,
		roots: map[federation.OperationKind]map[string]ResolverFunc{
			federation.Query:    {},
			federation.Mutation: {},
		},
		references: map[string]ReferenceFunc{},
		extensions: map[extensionKey]ExtensionFunc{},
	}

	for _, option := range options {
		option(s)
	}

	s.validate()

	if len(s.problems) > 0 {
		return nil, fedErrors.NewCompositionError(
			fmt.Sprintf("subgraph %s does not honour its schema: %s", name, strings.Join(s.problems, "; ")),
		)
	}

	// types that are only referenced resolve to a stub with the key
	for typeName := range contract.Extensions {
		s.references[typeName] = stubReference
	}

	return s, nil
}

func (s *subgraph) addRoot(kind federation.OperationKind, field string, fn ResolverFunc) {
	if _, exists := s.roots[kind][field]; exists {
		s.problems = append(s.problems, fmt.Sprintf("duplicate %s resolver for %s", kind, field))
	}
	s.roots[kind][field] = fn
}

func (s *subgraph) validate() {
	for kind, resolvers := range s.roots {
		declared := s.contract.RootFields[kind]

		for _, f := range declared {
			if _, ok := resolvers[f.Name]; !ok {
				s.problems = append(s.problems, fmt.Sprintf("%s.%s has no resolver", kind.RootTypeName(), f.Name))
			}
		}

		for field := range resolvers {
			if declared.ForName(field) == nil {
				s.problems = append(s.problems, fmt.Sprintf("resolver for %s.%s is not declared in the schema", kind.RootTypeName(), field))
			}
		}
	}

	for typeName := range s.contract.Entities {
		if _, ok := s.references[typeName]; !ok {
			s.problems = append(s.problems, fmt.Sprintf("owned entity %s has no reference resolver", typeName))
		}
	}

	for typeName := range s.references {
		if !s.contract.Owns(typeName) {
			s.problems = append(s.problems, fmt.Sprintf("reference resolver registered for %s which is not owned by %s", typeName, s.name))
		}
	}

	for typeName, ext := range s.contract.Extensions {
		for _, f := range ext.ExtensionFields {
			if _, ok := s.extensions[extensionKey{typeName, f.Name}]; !ok {
				s.problems = append(s.problems, fmt.Sprintf("extension field %s.%s has no resolver", typeName, f.Name))
			}
		}
	}

	for k := range s.extensions {
		ext, ok := s.contract.Extensions[k.typeName]
		if !ok || ext.ExtensionFields.ForName(k.field) == nil {
			s.problems = append(s.problems, fmt.Sprintf("resolver for %s.%s is not a declared extension field", k.typeName, k.field))
		}
	}

	slices.Sort(s.problems)
}

func (s *subgraph) Name() string               { return s.name }
func (s *subgraph) SDL() string                { return s.sdl }
func (s *subgraph) Contract() *schema.Contract { return s.contract }

func (s *subgraph) Execute(ctx context.Context, kind federation.OperationKind, field string, args Arguments) (any, error) {
	var err error

	ctx, span := tracer.Start(ctx, "execute-"+string(kind),
		trace.WithAttributes(attribute.String("field", field)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	fn, ok := s.roots[kind][field]
	if !ok {
		err = fedErrors.NewUnknownOperationError(fmt.Sprintf("%s has no %s field named %s", s.name, kind, field))
		return nil, err
	}

	log := logging.GetFromContext(ctx)
	log.Debug("executing operation", "kind", kind, "field", field)

	result, err := fn(ctx, args)
	if errors.Is(err, fedErrors.ErrNotFound) {
		log.Debug("operation target not found", "field", field, "err", err.Error())
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *subgraph) ResolveReference(ctx context.Context, typeName, keyValue string) (federation.Entity, error) {
	keyField, ok := s.contract.KeyField(typeName)
	if !ok {
		return nil, fedErrors.NewUnknownOperationError(fmt.Sprintf("%s does not know the entity type %s", s.name, typeName))
	}

	if keyValue == "" {
		return nil, fedErrors.NewValidationError(fmt.Sprintf("empty key for %s", typeName))
	}

	e, err := s.references[typeName](ctx, federation.NewKey(typeName, keyField, keyValue))
	if errors.Is(err, fedErrors.ErrNotFound) {
		return nil, nil
	}

	return e, err
}

func (s *subgraph) ResolveReferences(ctx context.Context, representations []federation.Representation) ([]federation.Entity, error) {
	var err error

	ctx, span := tracer.Start(ctx, "resolve-references",
		trace.WithAttributes(attribute.Int("batch-size", len(representations))),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result := make([]federation.Entity, 0, len(representations))

	for _, r := range representations {
		var keyValue string
		var e federation.Entity

		keyValue, err = s.keyValueOf(r)
		if err != nil {
			return nil, err
		}

		e, err = s.ResolveReference(ctx, r.TypeName, keyValue)
		if err != nil {
			return nil, err
		}

		result = append(result, e)
	}

	return result, nil
}

func (s *subgraph) ResolveExtension(ctx context.Context, parentType, field string, representation federation.Representation) (any, error) {
	fn, ok := s.extensions[extensionKey{parentType, field}]
	if !ok {
		return nil, fedErrors.NewUnknownOperationError(fmt.Sprintf("%s does not extend %s with %s", s.name, parentType, field))
	}

	if representation.TypeName != parentType {
		return nil, fedErrors.NewValidationError(fmt.Sprintf("representation of %s passed to an extension of %s", representation.TypeName, parentType))
	}

	keyValue, err := s.keyValueOf(representation)
	if err != nil {
		return nil, err
	}

	ext := s.contract.Extensions[parentType]

	known := map[string]any{}
	for name, value := range representation.Attributes {
		if ext.IsExternal(name) {
			known[name] = value
		}
	}

	parent := federation.NewStubWithAttributes(federation.NewKey(parentType, ext.KeyField, keyValue), known)

	return fn(ctx, parent)
}

func (s *subgraph) keyValueOf(r federation.Representation) (string, error) {
	keyField, ok := s.contract.KeyField(r.TypeName)
	if !ok {
		return "", fedErrors.NewUnknownOperationError(fmt.Sprintf("%s does not know the entity type %s", s.name, r.TypeName))
	}

	keyValue, ok := r.KeyValue(keyField)
	if !ok {
		return "", fedErrors.NewValidationError(fmt.Sprintf("representation of %s is missing its key %s", r.TypeName, keyField))
	}

	return keyValue, nil
}

func stubReference(_ context.Context, key federation.Key) (federation.Entity, error) {
	return federation.NewStub(key), nil
}
