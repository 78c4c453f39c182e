package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/diwise/federated-graph/internal/pkg/application/gateway"
	"github.com/diwise/federated-graph/internal/pkg/presentation/api/auth"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("federation-gateway/graphql")

const (
	GraphQLPath  string = "/graphql"
	SchemaPath   string = "/graphql/schema"
	MetricsPath  string = "/metrics"
	RequestIDKey string = "X-Request-Id"

	TraceAttributeOperation string = "graphql.operation"
	TraceAttributeRequestID string = "request_id"
)

func RegisterHandlers(r chi.Router, gw gateway.Gateway, authenticator auth.Enticator) {
	r.Handle(MetricsPath, promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequestID())

		r.Post(GraphQLPath, NewGraphQLHandler(gw, authenticator))
		r.Get(SchemaPath, NewSchemaHandler(gw))
	})
}

// RequestID reuses an incoming request id, or creates a new one, and adds it
// to the response headers and to the request logger.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDKey)
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDKey, id)

			if labeler, found := otelhttp.LabelerFromContext(r.Context()); found {
				labeler.Add(attribute.String(TraceAttributeRequestID, id))
			}

			ctx := logging.NewContextWithLogger(r.Context(), logging.GetFromContext(r.Context()), "request_id", id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func NewSchemaHandler(gw gateway.Gateway) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(gw.SDL()))
	})
}

// NewGraphQLHandler validates, authorizes and executes a GraphQL request.
// Requests that can not be executed at all get a 4xx status and no data,
// while partial failures are reported in the errors of a 200 response.
func NewGraphQLHandler(gw gateway.Gateway, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		log := logging.GetFromContext(ctx)

		req := gateway.Request{}
		err = decodeBody(r.Body, &req)
		if err != nil {
			writeErrors(ctx, w, http.StatusBadRequest, gateway.CodeValidation, err)
			return
		}

		op, errs := gw.Prepare(req)
		if len(errs) > 0 {
			err = errs
			log.Info("rejected invalid operation", "name", req.OperationName, "err", errs.Error())
			writeResponse(ctx, w, http.StatusBadRequest, &gateway.Response{Errors: errs})
			return
		}

		ctx, span := tracer.Start(ctx, "graphql-"+string(op.Kind),
			trace.WithAttributes(attribute.String(TraceAttributeOperation, op.Name)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = authenticator.CheckAccess(ctx, r, op.Kind, op.RootFields)
		if err != nil {
			log.Warn("access denied", "name", op.Name, "kind", op.Kind, "err", err.Error())
			writeErrors(ctx, w, http.StatusUnauthorized, gateway.CodeUnauthorized, err)
			return
		}

		log.Info("received operation", "name", op.Name, "kind", op.Kind, "fields", op.RootFields)

		response := gw.Execute(ctx, op)

		if len(response.Errors) > 0 {
			log.Warn("operation completed with errors", "name", op.Name, "errors", len(response.Errors))
		} else {
			log.Info("operation completed", "name", op.Name)
		}

		writeResponse(ctx, w, http.StatusOK, response)
	})
}

func decodeBody(body io.Reader, v any) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("unable to read request body: %s", err.Error())
	}

	err = json.Unmarshal(b, v)
	if err != nil {
		return fmt.Errorf("unable to decode request payload: %s", err.Error())
	}

	return nil
}

func writeErrors(ctx context.Context, w http.ResponseWriter, statusCode int, code string, err error) {
	writeResponse(ctx, w, statusCode, &gateway.Response{
		Errors: gqlerror.List{{
			Message:    err.Error(),
			Extensions: map[string]any{"code": code},
		}},
	})
}

func writeResponse(ctx context.Context, w http.ResponseWriter, statusCode int, response *gateway.Response) {
	b, err := json.Marshal(response)
	if err != nil {
		logging.GetFromContext(ctx).Error("failed to marshal response", "err", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}

func addLabelIfError(err error, labeler *otelhttp.Labeler) {
	if err != nil && labeler != nil {
		labeler.Add(attribute.Bool("error", true))
	}
}
