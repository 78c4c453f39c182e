package gateway

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/federated-graph/pkg/federation/client"
	"github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/federated-graph/pkg/federation/schema"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// Contribution is what a single subgraph brings to the supergraph
type Contribution struct {
	Name    string
	SDL     string
	Client  client.SubgraphClient
	Timeout time.Duration
}

type member struct {
	name    string
	client  client.SubgraphClient
	timeout time.Duration
}

type fieldRef struct {
	typeName string
	field    string
}

type entityInfo struct {
	name     string
	owner    string
	keyField string
	// external lists, per extending subgraph, the fields it declared @external
	external map[string][]string
}

// Supergraph is the composed schema together with the static ownership table
// that is used to route every field to exactly one subgraph.
type Supergraph struct {
	schema *ast.Schema
	sdl    string

	members  map[string]*member
	roots    map[federation.OperationKind]map[string]string
	owners   map[fieldRef]string
	entities map[string]*entityInfo
}

func (sg *Supergraph) SDL() string {
	return sg.sdl
}

// Owner returns the name of the subgraph that resolves a field of a type
func (sg *Supergraph) Owner(typeName, field string) (string, bool) {
	if kind, ok := federation.OperationKindFromString(typeName); ok {
		owner, found := sg.roots[kind][field]
		return owner, found
	}

	owner, ok := sg.owners[fieldRef{typeName, field}]
	return owner, ok
}

type composer struct {
	sg *Supergraph

	contracts   []*schema.Contract
	rootFields  map[federation.OperationKind]ast.FieldList
	definitions map[string]*ast.Definition
	order       []string
	valueTypes  map[string]string
}

// Compose validates that the contributions agree on ownership and merges them
// into a single executable schema. Any disagreement is an ErrComposition.
func Compose(contributions []Contribution) (*Supergraph, error) {
	c := &composer{
		sg: &Supergraph{
			members:  map[string]*member{},
			roots:    map[federation.OperationKind]map[string]string{federation.Query: {}, federation.Mutation: {}},
			owners:   map[fieldRef]string{},
			entities: map[string]*entityInfo{},
		},
		rootFields:  map[federation.OperationKind]ast.FieldList{},
		definitions: map[string]*ast.Definition{},
		valueTypes:  map[string]string{},
	}

	if len(contributions) == 0 {
		return nil, errors.NewCompositionError("there are no subgraphs to compose")
	}

	for _, contribution := range contributions {
		if err := c.addMember(contribution); err != nil {
			return nil, err
		}
	}

	steps := []func(*schema.Contract) error{
		c.addRootFields,
		c.addEntities,
		c.addValueTypes,
		c.addExtensions,
	}

	for _, step := range steps {
		for _, contract := range c.contracts {
			if err := step(contract); err != nil {
				return nil, err
			}
		}
	}

	if err := c.render(); err != nil {
		return nil, err
	}

	return c.sg, nil
}

func (c *composer) addMember(contribution Contribution) error {
	if contribution.Name == "" {
		return errors.NewCompositionError("every subgraph must have a name")
	}

	if _, exists := c.sg.members[contribution.Name]; exists {
		return errors.NewCompositionError(fmt.Sprintf("subgraph %s is contributed more than once", contribution.Name))
	}

	contract, err := schema.Parse(contribution.Name, contribution.SDL)
	if err != nil {
		return errors.NewCompositionError(err.Error())
	}

	timeout := contribution.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c.sg.members[contribution.Name] = &member{
		name:    contribution.Name,
		client:  contribution.Client,
		timeout: timeout,
	}
	c.contracts = append(c.contracts, contract)

	return nil
}

func (c *composer) addRootFields(contract *schema.Contract) error {
	for _, kind := range []federation.OperationKind{federation.Query, federation.Mutation} {
		for _, f := range contract.RootFields[kind] {
			if owner, exists := c.sg.roots[kind][f.Name]; exists {
				return errors.NewCompositionError(fmt.Sprintf(
					"%s.%s is provided by both %s and %s", kind.RootTypeName(), f.Name, owner, contract.Subgraph,
				))
			}

			c.sg.roots[kind][f.Name] = contract.Subgraph
			c.rootFields[kind] = append(c.rootFields[kind], f)
		}
	}

	return nil
}

func (c *composer) addEntities(contract *schema.Contract) error {
	for _, def := range contract.Document.Definitions {
		e, ok := contract.Entities[def.Name]
		if !ok {
			continue
		}

		if existing, owned := c.sg.entities[def.Name]; owned {
			return errors.NewCompositionError(fmt.Sprintf("entity %s is owned by both %s and %s", def.Name, existing.owner, contract.Subgraph))
		}

		c.sg.entities[def.Name] = &entityInfo{
			name:     def.Name,
			owner:    contract.Subgraph,
			keyField: e.KeyField,
			external: map[string][]string{},
		}

		for _, f := range def.Fields {
			c.sg.owners[fieldRef{def.Name, f.Name}] = contract.Subgraph
		}

		c.define(schema.WithoutFederationDirectives(def))
	}

	return nil
}

func (c *composer) addValueTypes(contract *schema.Contract) error {
	for _, def := range contract.Document.Definitions {
		if _, ok := contract.ValueTypes[def.Name]; !ok {
			continue
		}

		if owner, exists := c.valueTypes[def.Name]; exists {
			return errors.NewCompositionError(fmt.Sprintf("type %s is declared by both %s and %s", def.Name, owner, contract.Subgraph))
		}

		if e, isEntity := c.sg.entities[def.Name]; isEntity {
			return errors.NewCompositionError(fmt.Sprintf("%s declares %s as a plain type, but it is an entity owned by %s", contract.Subgraph, def.Name, e.owner))
		}

		c.valueTypes[def.Name] = contract.Subgraph
		c.define(schema.WithoutFederationDirectives(def))
	}

	return nil
}

func (c *composer) addExtensions(contract *schema.Contract) error {
	for _, name := range slices.Sorted(maps.Keys(contract.Extensions)) {
		ext := contract.Extensions[name]

		e, owned := c.sg.entities[name]
		if !owned {
			return errors.NewCompositionError(fmt.Sprintf("%s extends %s, but no subgraph owns it", contract.Subgraph, name))
		}

		if e.keyField != ext.KeyField {
			return errors.NewCompositionError(fmt.Sprintf(
				"%s uses %s as the key of %s, but the owner %s uses %s", contract.Subgraph, ext.KeyField, name, e.owner, e.keyField,
			))
		}

		def := c.definitions[name]

		for _, external := range ext.External {
			if def.Fields.ForName(external) == nil {
				return errors.NewCompositionError(fmt.Sprintf("%s declares %s.%s as external, but %s has no such field", contract.Subgraph, name, external, e.owner))
			}
		}
		e.external[contract.Subgraph] = ext.External

		for _, f := range ext.ExtensionFields {
			ref := fieldRef{name, f.Name}
			if owner, exists := c.sg.owners[ref]; exists {
				return errors.NewCompositionError(fmt.Sprintf("%s.%s is provided by both %s and %s", name, f.Name, owner, contract.Subgraph))
			}

			c.sg.owners[ref] = contract.Subgraph
			stripped := schema.WithoutFederationDirectives(&ast.Definition{Fields: ast.FieldList{f}})
			def.Fields = append(def.Fields, stripped.Fields...)
		}
	}

	return nil
}

func (c *composer) define(def *ast.Definition) {
	c.definitions[def.Name] = def
	c.order = append(c.order, def.Name)
}

func (c *composer) render() error {
	if len(c.rootFields[federation.Query]) == 0 {
		return errors.NewCompositionError("the composed schema has no query fields")
	}

	doc := &ast.SchemaDocument{}

	for _, kind := range []federation.OperationKind{federation.Query, federation.Mutation} {
		if len(c.rootFields[kind]) == 0 {
			continue
		}

		root := schema.WithoutFederationDirectives(&ast.Definition{
			Kind:   ast.Object,
			Name:   kind.RootTypeName(),
			Fields: c.rootFields[kind],
		})
		doc.Definitions = append(doc.Definitions, root)
	}

	for _, name := range c.order {
		doc.Definitions = append(doc.Definitions, c.definitions[name])
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	c.sg.sdl = buf.String()

	s, err := gqlparser.LoadSchema(&ast.Source{Name: "supergraph.graphql", Input: c.sg.sdl})
	if err != nil {
		return errors.NewCompositionError(fmt.Sprintf("composed schema is invalid: %s", strings.TrimSpace(err.Error())))
	}

	c.sg.schema = s

	return nil
}
