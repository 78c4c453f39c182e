package schema

import (
	"fmt"
	"strings"

	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const (
	DirectiveKey      string = "key"
	DirectiveExternal string = "external"
	DirectiveExtends  string = "extends"
)

// FederationDirectives are the directives that only have a meaning in a
// subgraph schema and that are removed when subgraphs are composed.
var FederationDirectives = []string{DirectiveKey, DirectiveExternal, DirectiveExtends}

// Entity is an entity type that the subgraph owns
type Entity struct {
	Name     string
	KeyField string
	Fields   ast.FieldList
}

// ExtendedEntity is an entity type owned by another subgraph that this
// subgraph references, and possibly contributes fields to.
type ExtendedEntity struct {
	Name            string
	KeyField        string
	External        []string
	ExtensionFields ast.FieldList
}

func (e ExtendedEntity) IsExternal(field string) bool {
	for _, f := range e.External {
		if f == field {
			return true
		}
	}
	return false
}

// Contract is the parsed schema contribution of one subgraph
type Contract struct {
	Subgraph string
	Document *ast.SchemaDocument

	Entities   map[string]*Entity
	Extensions map[string]*ExtendedEntity
	RootFields map[federation.OperationKind]ast.FieldList
	ValueTypes map[string]*ast.Definition
}

func (c *Contract) Owns(typeName string) bool {
	_, ok := c.Entities[typeName]
	return ok
}

// KeyField returns the key field of an entity type that is either owned or
// extended by the subgraph.
func (c *Contract) KeyField(typeName string) (string, bool) {
	if e, ok := c.Entities[typeName]; ok {
		return e.KeyField, true
	}
	if e, ok := c.Extensions[typeName]; ok {
		return e.KeyField, true
	}
	return "", false
}

// Parse reads the SDL of a subgraph and extracts its federation contract
func Parse(subgraph, sdl string) (*Contract, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: subgraph + ".graphql", Input: sdl})
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("failed to parse schema of subgraph %s: %s", subgraph, err.Error()))
	}

	c := &Contract{
		Subgraph:   subgraph,
		Document:   doc,
		Entities:   map[string]*Entity{},
		Extensions: map[string]*ExtendedEntity{},
		RootFields: map[federation.OperationKind]ast.FieldList{},
		ValueTypes: map[string]*ast.Definition{},
	}

	for _, def := range doc.Definitions {
		if err := c.addDefinition(def, false); err != nil {
			return nil, err
		}
	}

	for _, def := range doc.Extensions {
		if err := c.addDefinition(def, true); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Contract) addDefinition(def *ast.Definition, extended bool) error {
	if kind, ok := rootKind(def.Name); ok {
		if def.Kind != ast.Object {
			return errors.NewValidationError(fmt.Sprintf("%s must be an object type in subgraph %s", def.Name, c.Subgraph))
		}
		c.RootFields[kind] = append(c.RootFields[kind], def.Fields...)
		return nil
	}

	if def.Directives.ForName(DirectiveExtends) != nil {
		extended = true
	}

	keyDirective := def.Directives.ForName(DirectiveKey)
	if keyDirective == nil {
		if extended {
			return errors.NewValidationError(fmt.Sprintf("extended type %s in subgraph %s has no @key", def.Name, c.Subgraph))
		}
		if _, exists := c.ValueTypes[def.Name]; exists {
			return errors.NewValidationError(fmt.Sprintf("type %s is declared twice in subgraph %s", def.Name, c.Subgraph))
		}
		c.ValueTypes[def.Name] = def
		return nil
	}

	if def.Kind != ast.Object {
		return errors.NewValidationError(fmt.Sprintf("@key is only allowed on object types (%s in subgraph %s)", def.Name, c.Subgraph))
	}

	keyField, err := keyFieldOf(def, keyDirective)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("subgraph %s: %s", c.Subgraph, err.Error()))
	}

	if def.Fields.ForName(keyField) == nil {
		return errors.NewValidationError(fmt.Sprintf("key field %s is not a field of %s in subgraph %s", keyField, def.Name, c.Subgraph))
	}

	if _, exists := c.Entities[def.Name]; exists {
		return errors.NewValidationError(fmt.Sprintf("entity %s is declared twice in subgraph %s", def.Name, c.Subgraph))
	}
	if _, exists := c.Extensions[def.Name]; exists {
		return errors.NewValidationError(fmt.Sprintf("entity %s is extended twice in subgraph %s", def.Name, c.Subgraph))
	}

	if !extended {
		c.Entities[def.Name] = &Entity{Name: def.Name, KeyField: keyField, Fields: def.Fields}
		return nil
	}

	ext := &ExtendedEntity{Name: def.Name, KeyField: keyField}

	for _, f := range def.Fields {
		if f.Directives.ForName(DirectiveExternal) != nil {
			ext.External = append(ext.External, f.Name)
			continue
		}
		if f.Name == keyField {
			return errors.NewValidationError(fmt.Sprintf("key field %s.%s must be @external in subgraph %s", def.Name, keyField, c.Subgraph))
		}
		ext.ExtensionFields = append(ext.ExtensionFields, f)
	}

	c.Extensions[def.Name] = ext

	return nil
}

func keyFieldOf(def *ast.Definition, key *ast.Directive) (string, error) {
	arg := key.Arguments.ForName("fields")
	if arg == nil || arg.Value == nil {
		return "", fmt.Errorf("@key on %s is missing the fields argument", def.Name)
	}

	fields := strings.Fields(arg.Value.Raw)
	if len(fields) != 1 {
		return "", fmt.Errorf("@key on %s must name exactly one scalar field, got %q", def.Name, arg.Value.Raw)
	}

	return fields[0], nil
}

func rootKind(typeName string) (federation.OperationKind, bool) {
	switch typeName {
	case "Query":
		return federation.Query, true
	case "Mutation":
		return federation.Mutation, true
	}
	return "", false
}

// NamedType unwraps list and non null wrappers and returns the name of the
// innermost type.
func NamedType(t *ast.Type) string {
	for t != nil && t.NamedType == "" {
		t = t.Elem
	}
	if t == nil {
		return ""
	}
	return t.NamedType
}

// WithoutFederationDirectives returns a copy of the definition where all
// federation directives have been removed, on the type as well as on its
// fields.
func WithoutFederationDirectives(def *ast.Definition) *ast.Definition {
	cp := *def
	cp.Directives = stripDirectives(def.Directives)
	cp.Fields = make(ast.FieldList, 0, len(def.Fields))

	for _, f := range def.Fields {
		fc := *f
		fc.Directives = stripDirectives(f.Directives)
		cp.Fields = append(cp.Fields, &fc)
	}

	return &cp
}

func stripDirectives(list ast.DirectiveList) ast.DirectiveList {
	var result ast.DirectiveList

	for _, d := range list {
		federated := false
		for _, name := range FederationDirectives {
			if d.Name == name {
				federated = true
				break
			}
		}
		if !federated {
			result = append(result, d)
		}
	}

	return result
}
