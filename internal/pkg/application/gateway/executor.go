package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/diwise/federated-graph/pkg/federation"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/federated-graph/pkg/federation/schema"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// maxRounds bounds the number of entity resolution rounds of a single
// request. Every round resolves one more level of the selection, so only a
// query nested deeper than this is cut short.
const maxRounds int = 32

type failure struct {
	subgraph string
	err      error
}

// entityState is the canonical, merged view of one entity within a request
type entityState struct {
	key    federation.Key
	fields map[string]any
	failed map[string]failure
}

// scope maps keys to canonical entities. Query roots share a scope, while
// every mutation root gets its own so that it observes its own writes.
type scope map[federation.Key]*entityState

type rootResult struct {
	value any
	fail  *failure
}

type execution struct {
	sg        *Supergraph
	variables map[string]any
	errors    gqlerror.List
}

func (sg *Supergraph) Execute(ctx context.Context, op *Operation) *Response {
	var err error

	ctx, span := tracer.Start(ctx, "execute-"+string(op.Kind),
		trace.WithAttributes(attribute.String("operation", op.Name)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	ex := &execution{sg: sg, variables: op.variables}

	rootType := sg.schema.Types[op.Kind.RootTypeName()]
	fields := collectFields(op.definition.SelectionSet, rootType.Name, op.variables)

	results := ex.resolveRoots(ctx, op.Kind, rootType, fields)

	scopes := make([]scope, len(fields))
	shared := scope{}
	for i := range fields {
		scopes[i] = shared
		if op.Kind == federation.Mutation {
			scopes[i] = scope{}
		}
	}

	ex.resolveEntities(ctx, rootType, fields, results, scopes)

	data := NewObject()

	for i, f := range fields {
		path := ast.Path{ast.PathName(f.responseKey)}

		if results[i].fail != nil {
			data.Set(f.responseKey, nil)
			ex.fieldError(path, f.name, *results[i].fail)
			continue
		}

		data.Set(f.responseKey, ex.project(results[i].value, fieldType(rootType, f.name), f.selections, path, scopes[i]))
	}

	if len(ex.errors) > 0 {
		err = fmt.Errorf("%d fields could not be resolved (%w)", len(ex.errors), fedErrors.ErrRemoteCall)
	}

	return &Response{Data: data, Errors: ex.errors}
}

func (ex *execution) resolveRoots(ctx context.Context, kind federation.OperationKind, rootType *ast.Definition, fields []*selectedField) []rootResult {
	results := make([]rootResult, len(fields))

	resolve := func(ctx context.Context, i int) {
		f := fields[i]

		if f.name == federation.TypeNameField {
			results[i] = rootResult{value: rootType.Name}
			return
		}

		owner := ex.sg.roots[kind][f.name]
		m := ex.sg.members[owner]

		req := federation.OperationRequest{
			Operation: kind,
			Field:     f.name,
			Arguments: map[string]json.RawMessage{},
		}

		for name, value := range f.field.ArgumentMap(ex.variables) {
			raw, err := json.Marshal(value)
			if err != nil {
				results[i] = rootResult{fail: &failure{owner, fmt.Errorf("failed to marshal argument %s: %w", name, err)}}
				return
			}
			req.Arguments[name] = raw
		}

		var raw json.RawMessage
		err := m.call(ctx, string(kind), func(ctx context.Context) error {
			var err error
			raw, err = m.client.Execute(ctx, req)
			return err
		})

		var value any
		if err == nil {
			value, err = decode(raw)
		}

		if err != nil {
			results[i] = rootResult{fail: &failure{owner, err}}
			return
		}

		results[i] = rootResult{value: value}
	}

	if kind == federation.Mutation {
		for i := range fields {
			resolve(ctx, i)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range fields {
		g.Go(func() error {
			resolve(gctx, i)
			return nil
		})
	}
	g.Wait()

	return results
}

// resolveEntities walks the results one level at a time, and fetches every
// selected entity field that is not yet known from the subgraph that owns it.
func (ex *execution) resolveEntities(ctx context.Context, rootType *ast.Definition, fields []*selectedField, results []rootResult, scopes []scope) {
	for round := range maxRounds {
		p := newPlan()

		for i, f := range fields {
			if results[i].fail == nil {
				ex.walk(results[i].value, fieldType(rootType, f.name), f.selections, scopes[i], p)
			}
		}

		if len(p.batches) == 0 {
			return
		}

		logging.GetFromContext(ctx).Debug("resolving entity fields", "round", round, "batches", len(p.batches))

		ex.dispatch(ctx, p)
	}

	logging.GetFromContext(ctx).Warn("entity resolution stopped before the selection was complete", "rounds", maxRounds)
}

func (ex *execution) walk(value any, typ *ast.Type, set ast.SelectionSet, s scope, p *plan) {
	if value == nil || len(set) == 0 {
		return
	}

	if list, ok := value.([]any); ok {
		elem := typ
		if typ != nil && typ.Elem != nil {
			elem = typ.Elem
		}
		for _, v := range list {
			ex.walk(v, elem, set, s, p)
		}
		return
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return
	}

	typeName := schema.NamedType(typ)
	def := ex.sg.schema.Types[typeName]
	if def == nil {
		return
	}

	fields := collectFields(set, typeName, ex.variables)

	if state := ex.register(typeName, obj, s); state != nil {
		info := ex.sg.entities[typeName]

		for _, f := range fields {
			if f.name == federation.TypeNameField {
				continue
			}

			if v, known := state.fields[f.name]; known {
				ex.walk(v, fieldType(def, f.name), f.selections, s, p)
				continue
			}

			if _, failed := state.failed[f.name]; failed {
				continue
			}

			p.add(ex.sg, info, state, f.name)
		}

		return
	}

	for _, f := range fields {
		ex.walk(obj[f.name], fieldType(def, f.name), f.selections, s, p)
	}
}

// register merges an entity object into its canonical state. Fields that are
// already known are never overwritten. A nil result means that the object is
// not an entity, or that it lacks a key.
func (ex *execution) register(typeName string, obj map[string]any, s scope) *entityState {
	info, ok := ex.sg.entities[typeName]
	if !ok {
		return nil
	}

	keyValue, ok := keyValueOf(obj[info.keyField])
	if !ok {
		return nil
	}

	key := federation.NewKey(typeName, info.keyField, keyValue)

	state, ok := s[key]
	if !ok {
		state = &entityState{
			key:    key,
			fields: map[string]any{},
			failed: map[string]failure{},
		}
		s[key] = state
	}

	mergeFields(state, obj)

	return state
}

func mergeFields(state *entityState, obj map[string]any) {
	for name, v := range obj {
		if name == federation.TypeNameField {
			continue
		}
		if _, exists := state.fields[name]; !exists {
			state.fields[name] = v
		}
	}
}

func keyValueOf(v any) (string, bool) {
	switch key := v.(type) {
	case string:
		return key, key != ""
	case json.Number:
		return key.String(), true
	}
	return "", false
}

type batchKey struct {
	subgraph   string
	parentType string
	field      string
}

func (bk batchKey) isExtension() bool {
	return bk.field != ""
}

type batchTarget struct {
	representation federation.Representation
	states         []*entityState
	fields         []string
}

type batch struct {
	key     batchKey
	order   []federation.Key
	targets map[federation.Key]*batchTarget
}

type plan struct {
	batches []*batch
	index   map[batchKey]*batch
}

func newPlan() *plan {
	return &plan{index: map[batchKey]*batch{}}
}

// add schedules the resolution of a single field of an entity. Fields owned by
// the entity owner are fetched as references with nothing but the key, while
// fields contributed by other subgraphs are fetched as extensions together
// with the external attributes that are already known.
func (p *plan) add(sg *Supergraph, info *entityInfo, state *entityState, field string) {
	owner, ok := sg.Owner(info.name, field)
	if !ok {
		state.fields[field] = nil
		return
	}

	bk := batchKey{subgraph: owner}
	if owner != info.owner {
		bk = batchKey{subgraph: owner, parentType: info.name, field: field}
	}

	b, ok := p.index[bk]
	if !ok {
		b = &batch{key: bk, targets: map[federation.Key]*batchTarget{}}
		p.index[bk] = b
		p.batches = append(p.batches, b)
	}

	t, ok := b.targets[state.key]
	if !ok {
		known := map[string]any{}
		if bk.isExtension() {
			for _, name := range info.external[owner] {
				if v, ok := state.fields[name]; ok && v != nil {
					known[name] = v
				}
			}
		}

		t = &batchTarget{representation: federation.NewRepresentation(state.key, known)}
		b.targets[state.key] = t
		b.order = append(b.order, state.key)
	}

	if !slices.Contains(t.states, state) {
		t.states = append(t.states, state)
	}

	if !slices.Contains(t.fields, field) {
		t.fields = append(t.fields, field)
	}
}

type batchResult struct {
	values []any
	err    error
}

// dispatch sends all batches in parallel and merges the results when every
// batch has completed, so that merging never races with the fetching.
func (ex *execution) dispatch(ctx context.Context, p *plan) {
	results := make([]batchResult, len(p.batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range p.batches {
		g.Go(func() error {
			results[i] = ex.fetch(gctx, b)
			return nil
		})
	}
	g.Wait()

	for i, b := range p.batches {
		ex.merge(ctx, b, results[i])
	}
}

func (ex *execution) fetch(ctx context.Context, b *batch) batchResult {
	m := ex.sg.members[b.key.subgraph]

	representations := make([]federation.Representation, 0, len(b.order))
	for _, key := range b.order {
		representations = append(representations, b.targets[key].representation)
	}

	kind := callKindEntities
	if b.key.isExtension() {
		kind = callKindExtensions
	}

	var raw []json.RawMessage
	err := m.call(ctx, kind, func(ctx context.Context) error {
		var err error
		if b.key.isExtension() {
			raw, err = m.client.ResolveExtensions(ctx, b.key.parentType, b.key.field, representations)
		} else {
			raw, err = m.client.ResolveEntities(ctx, representations)
		}
		return err
	})
	if err != nil {
		return batchResult{err: err}
	}

	if len(raw) != len(representations) {
		return batchResult{err: fmt.Errorf("%s returned %d values for %d representations (%w)", m.name, len(raw), len(representations), fedErrors.ErrBadResponse)}
	}

	values := make([]any, 0, len(raw))
	for _, r := range raw {
		v, err := decode(r)
		if err != nil {
			return batchResult{err: err}
		}
		values = append(values, v)
	}

	return batchResult{values: values}
}

func (ex *execution) merge(ctx context.Context, b *batch, result batchResult) {
	if result.err != nil {
		logging.GetFromContext(ctx).Warn("subgraph call failed", "subgraph", b.key.subgraph, "type", b.key.parentType, "field", b.key.field, "err", result.err.Error())

		for _, t := range b.targets {
			for _, state := range t.states {
				for _, f := range t.fields {
					state.failed[f] = failure{subgraph: b.key.subgraph, err: result.err}
				}
			}
		}
		return
	}

	for i, key := range b.order {
		t := b.targets[key]
		value := result.values[i]

		for _, state := range t.states {
			if b.key.isExtension() {
				if _, exists := state.fields[b.key.field]; !exists {
					state.fields[b.key.field] = value
				}
				continue
			}

			if obj, ok := value.(map[string]any); ok {
				mergeFields(state, obj)
			}

			// an entity that the owner does not know resolves to nulls
			for _, f := range t.fields {
				if _, exists := state.fields[f]; !exists {
					state.fields[f] = nil
				}
			}
		}
	}
}

func (ex *execution) project(value any, typ *ast.Type, set ast.SelectionSet, path ast.Path, s scope) any {
	if value == nil {
		return nil
	}

	if list, ok := value.([]any); ok {
		elem := typ
		if typ != nil && typ.Elem != nil {
			elem = typ.Elem
		}

		result := make([]any, 0, len(list))
		for i, v := range list {
			result = append(result, ex.project(v, elem, set, appendPath(path, ast.PathIndex(i)), s))
		}
		return result
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return value
	}

	typeName := schema.NamedType(typ)
	def := ex.sg.schema.Types[typeName]

	var state *entityState
	if info, isEntity := ex.sg.entities[typeName]; isEntity {
		if keyValue, ok := keyValueOf(obj[info.keyField]); ok {
			state = s[federation.NewKey(typeName, info.keyField, keyValue)]
		}
	}

	result := NewObject()

	for _, f := range collectFields(set, typeName, ex.variables) {
		fieldPath := appendPath(path, ast.PathName(f.responseKey))

		if f.name == federation.TypeNameField {
			result.Set(f.responseKey, typeName)
			continue
		}

		v := obj[f.name]

		if state != nil {
			if fail, failed := state.failed[f.name]; failed {
				result.Set(f.responseKey, nil)
				ex.fieldError(fieldPath, f.name, fail)
				continue
			}
			v = state.fields[f.name]
		}

		result.Set(f.responseKey, ex.project(v, fieldType(def, f.name), f.selections, fieldPath, s))
	}

	return result
}

func (ex *execution) fieldError(path ast.Path, field string, f failure) {
	ex.errors = append(ex.errors, &gqlerror.Error{
		Message: fmt.Sprintf("failed to resolve %s from subgraph %s: %s", field, f.subgraph, f.err.Error()),
		Path:    path,
		Extensions: map[string]any{
			"code":     codeOf(f.err),
			"subgraph": f.subgraph,
		},
	})
}

func codeOf(err error) string {
	switch {
	case errors.Is(err, fedErrors.ErrValidation), errors.Is(err, fedErrors.ErrUnknownOperation):
		return CodeValidation
	case errors.Is(err, fedErrors.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, fedErrors.ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, fedErrors.ErrRemoteCall):
		return CodeRemoteCallFailure
	}
	return CodeRemoteCallFailure
}

// call runs fn with the timeout of the subgraph and records its outcome
func (m *member) call(ctx context.Context, kind string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	observe(m.name, kind, start, err)

	// a cancelled or expired call is reported as such, whatever the client
	// made of it
	if err != nil && ctx.Err() != nil {
		err = fedErrors.NewRemoteCallError(fmt.Sprintf("%s call to %s was abandoned: %s", kind, m.name, ctx.Err().Error()))
	}

	return err
}

func decode(raw json.RawMessage) (any, error) {
	if federation.IsNull(raw) {
		return nil, nil
	}

	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()

	var v any
	err := d.Decode(&v)
	if err != nil {
		return nil, fmt.Errorf("failed to decode subgraph response: %s (%w)", err.Error(), fedErrors.ErrBadResponse)
	}

	return v, nil
}

func fieldType(def *ast.Definition, field string) *ast.Type {
	if def == nil {
		return nil
	}
	if f := def.Fields.ForName(field); f != nil {
		return f.Type
	}
	return nil
}

func appendPath(path ast.Path, elem ast.PathElement) ast.Path {
	p := make(ast.Path, 0, len(path)+1)
	p = append(p, path...)
	return append(p, elem)
}
