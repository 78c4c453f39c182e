package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/federated-graph/pkg/federation"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/open-policy-agent/opa/rego"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("federation-gateway/authz")

// Enticator decides whether a prepared GraphQL operation may be executed
type Enticator interface {
	CheckAccess(ctx context.Context, r *http.Request, kind federation.OperationKind, rootFields []string) error
}

type enticatorImpl struct {
	preparedQuery rego.PreparedEvalQuery
}

// NewAuthenticator compiles a rego module that must define
// data.federation.authz.allow
func NewAuthenticator(ctx context.Context, policies io.Reader) (Enticator, error) {
	module, err := io.ReadAll(policies)
	if err != nil {
		return nil, fmt.Errorf("unable to read authz policies: %s", err.Error())
	}

	impl := &enticatorImpl{}

	impl.preparedQuery, err = rego.New(
		rego.Query("x = data.federation.authz.allow"),
		rego.Module("federation.rego", string(module)),
	).PrepareForEval(ctx)

	if err != nil {
		return nil, err
	}

	return impl, nil
}

func (e *enticatorImpl) CheckAccess(ctx context.Context, r *http.Request, kind federation.OperationKind, rootFields []string) error {
	var err error

	_, span := tracer.Start(ctx, "check-auth", trace.WithAttributes(
		attribute.String("operation", string(kind)),
	))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	token := r.Header.Get("Authorization")
	token, _ = strings.CutPrefix(token, "Bearer ")

	path := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	fields := make([]any, 0, len(rootFields))
	for _, f := range rootFields {
		fields = append(fields, f)
	}

	input := map[string]any{
		"method":    r.Method,
		"path":      path,
		"token":     token,
		"operation": string(kind),
		"fields":    fields,
	}

	results, err := e.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		err = fmt.Errorf("opa eval failed: %w", err)
		return err
	}

	if len(results) == 0 {
		err = fedErrors.NewUnauthorizedError("auth failed: opa query could not be satisfied")
		return err
	}

	binding := results[0].Bindings["x"]

	// a denied request binds a single false
	allowed, ok := binding.(bool)
	if ok && !allowed {
		err = fedErrors.NewUnauthorizedError("authorization failed")
		return err
	}

	if _, ok = binding.(map[string]any); !ok {
		err = fmt.Errorf("opa error: unexpected result type %T", binding)
		return err
	}

	return nil
}
