package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/federated-graph/pkg/federation/client"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

//go:generate moq -rm -out gateway_mock.go . Gateway

var tracer = otel.Tracer("federation-gateway")

const (
	CodeValidation        string = "VALIDATION_ERROR"
	CodeRemoteCallFailure string = "REMOTE_CALL_FAILURE"
	CodeNotFound          string = "NOT_FOUND"
	CodeUnauthorized      string = "UNAUTHORIZED"
	CodeInternal          string = "INTERNAL_ERROR"
)

type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is a GraphQL response. Data is left out entirely when the request
// could not be executed at all.
type Response struct {
	Data   *Object       `json:"data,omitempty"`
	Errors gqlerror.List `json:"errors,omitempty"`
}

// Operation is a validated request that is ready to be executed
type Operation struct {
	Kind       federation.OperationKind
	Name       string
	RootFields []string

	definition *ast.OperationDefinition
	variables  map[string]any
}

type Gateway interface {
	// Prepare parses and validates a request against the composed schema
	// without calling any subgraph.
	Prepare(req Request) (*Operation, gqlerror.List)
	Execute(ctx context.Context, op *Operation) *Response
	SDL() string
}

// New fetches the schema of every configured subgraph and composes them. Any
// subgraph that can not be reached or composed prevents the gateway from
// being created.
func New(ctx context.Context, cfg *Config, options ...client.ClientOption) (Gateway, error) {
	contributions, err := LoadContributions(ctx, cfg, options...)
	if err != nil {
		return nil, err
	}

	sg, err := Compose(contributions)
	if err != nil {
		return nil, err
	}

	logging.GetFromContext(ctx).Info("supergraph composed", "subgraphs", len(contributions), "entities", len(sg.entities))

	return sg, nil
}

func LoadContributions(ctx context.Context, cfg *Config, options ...client.ClientOption) ([]Contribution, error) {
	contributions := make([]Contribution, len(cfg.Subgraphs))

	g, ctx := errgroup.WithContext(ctx)

	for i, sc := range cfg.Subgraphs {
		g.Go(func() error {
			c := client.New(sc.Name, sc.Endpoint, options...)
			timeout := cfg.TimeoutFor(sc)

			sdl, err := loadSDL(ctx, c, sc, timeout)
			if err != nil {
				return fmt.Errorf("failed to load the schema of subgraph %s: %w", sc.Name, err)
			}

			contributions[i] = Contribution{
				Name:    sc.Name,
				SDL:     sdl,
				Client:  c,
				Timeout: timeout,
			}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return contributions, nil
}

func loadSDL(ctx context.Context, c client.SubgraphClient, sc SubgraphConfig, timeout time.Duration) (string, error) {
	if sc.SchemaPath != "" {
		b, err := os.ReadFile(sc.SchemaPath)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := c.Schema(ctx)
	observe(sc.Name, callKindSchema, start, err)

	if err != nil {
		return "", err
	}

	if result.Name != "" && result.Name != sc.Name {
		logging.GetFromContext(ctx).Warn("subgraph reports a different name than configured", "configured", sc.Name, "reported", result.Name)
	}

	return result.SDL, nil
}

func (sg *Supergraph) Prepare(req Request) (*Operation, gqlerror.List) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, gqlerror.List{validationError(gqlerror.Errorf("the request contains no query"))}
	}

	doc, errs := gqlparser.LoadQuery(sg.schema, req.Query)
	if len(errs) > 0 {
		for _, e := range errs {
			validationError(e)
		}
		return nil, errs
	}

	def := doc.Operations.ForName(req.OperationName)
	if def == nil {
		msg := fmt.Sprintf("unknown operation named %q", req.OperationName)
		if req.OperationName == "" {
			msg = "an operation name is required when the document contains more than one operation"
		}
		return nil, gqlerror.List{validationError(gqlerror.Errorf("%s", msg))}
	}

	kind, ok := federation.OperationKindFromString(string(def.Operation))
	if !ok {
		return nil, gqlerror.List{validationError(gqlerror.Errorf("%s operations are not supported", def.Operation))}
	}

	variables, err := validator.VariableValues(sg.schema, def, req.Variables)
	if err != nil {
		var gqlErr *gqlerror.Error
		if !errors.As(err, &gqlErr) {
			gqlErr = gqlerror.Errorf("%s", err.Error())
		}
		return nil, gqlerror.List{validationError(gqlErr)}
	}

	op := &Operation{
		Kind:       kind,
		Name:       def.Name,
		definition: def,
		variables:  variables,
	}

	for _, f := range collectFields(def.SelectionSet, kind.RootTypeName(), variables) {
		if strings.HasPrefix(f.name, "__") && f.name != federation.TypeNameField {
			return nil, gqlerror.List{validationError(gqlerror.Errorf("introspection field %s is not supported", f.name))}
		}
		op.RootFields = append(op.RootFields, f.name)
	}

	return op, nil
}

func validationError(e *gqlerror.Error) *gqlerror.Error {
	if e.Extensions == nil {
		e.Extensions = map[string]any{}
	}
	if _, ok := e.Extensions["code"]; !ok {
		e.Extensions["code"] = CodeValidation
	}
	return e
}

// selectedField is a field of a selection set after fragments have been
// flattened and fields with the same response key have been merged.
type selectedField struct {
	responseKey string
	name        string
	field       *ast.Field
	selections  ast.SelectionSet
}

func collectFields(set ast.SelectionSet, typeName string, variables map[string]any) []*selectedField {
	var result []*selectedField
	index := map[string]*selectedField{}

	var walk func(ast.SelectionSet)
	walk = func(set ast.SelectionSet) {
		for _, s := range set {
			switch sel := s.(type) {
			case *ast.Field:
				if !included(sel.Directives, variables) {
					continue
				}

				key := sel.Alias
				if key == "" {
					key = sel.Name
				}

				if f, ok := index[key]; ok {
					f.selections = append(f.selections, sel.SelectionSet...)
					continue
				}

				f := &selectedField{
					responseKey: key,
					name:        sel.Name,
					field:       sel,
					selections:  append(ast.SelectionSet{}, sel.SelectionSet...),
				}
				index[key] = f
				result = append(result, f)

			case *ast.InlineFragment:
				if included(sel.Directives, variables) && applies(sel.TypeCondition, typeName) {
					walk(sel.SelectionSet)
				}

			case *ast.FragmentSpread:
				if sel.Definition == nil || !included(sel.Directives, variables) {
					continue
				}
				if applies(sel.Definition.TypeCondition, typeName) {
					walk(sel.Definition.SelectionSet)
				}
			}
		}
	}

	walk(set)

	return result
}

// TODO: type conditions on interfaces and unions are never satisfied, since no
// subgraph declares abstract types yet.
func applies(typeCondition, typeName string) bool {
	return typeCondition == "" || typeCondition == typeName
}

func included(directives ast.DirectiveList, variables map[string]any) bool {
	for _, d := range directives {
		if d.Name != "skip" && d.Name != "include" {
			continue
		}

		arg := d.Arguments.ForName("if")
		if arg == nil || arg.Value == nil {
			continue
		}

		v, err := arg.Value.Value(variables)
		if err != nil {
			continue
		}

		condition, _ := v.(bool)
		if d.Name == "skip" && condition {
			return false
		}
		if d.Name == "include" && !condition {
			return false
		}
	}

	return true
}
