package federation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/diwise/federated-graph/internal/pkg/application/subgraph"
	"github.com/diwise/federated-graph/pkg/federation"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("federation/handlers")

const (
	TraceAttributeSubgraph string = "subgraph"
	TraceAttributeField    string = "field"
)

// RegisterHandlers exposes a subgraph over the federation wire protocol
func RegisterHandlers(r chi.Router, sg subgraph.Subgraph) {
	r.Get(federation.SchemaPath, NewSchemaHandler(sg))
	r.Post(federation.OperationsPath, NewOperationHandler(sg))
	r.Post(federation.EntitiesPath, NewEntitiesHandler(sg))
	r.Post(federation.ExtensionsPath, NewExtensionsHandler(sg))
}

func NewSchemaHandler(sg subgraph.Subgraph) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, federation.SchemaResult{
			Name: sg.Name(),
			SDL:  sg.SDL(),
		})
	})
}

// NewOperationHandler runs one of the subgraph's own root fields. A target
// that does not exist is reported as null data rather than as an error.
func NewOperationHandler(sg subgraph.Subgraph) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		req := federation.OperationRequest{}
		err = decodeBody(r.Body, &req)
		if err != nil {
			fedErrors.ReportValidationError(w, err.Error(), traceID(ctx))
			return
		}

		kind, ok := federation.OperationKindFromString(string(req.Operation))
		if !ok {
			err = fmt.Errorf("unsupported operation %q", req.Operation)
			fedErrors.ReportValidationError(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "handle-"+string(kind),
			trace.WithAttributes(
				attribute.String(TraceAttributeSubgraph, sg.Name()),
				attribute.String(TraceAttributeField, req.Field),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		result, err := sg.Execute(ctx, kind, req.Field, subgraph.Arguments(req.Arguments))
		if err != nil {
			logging.GetFromContext(ctx).Warn("operation failed", "field", req.Field, "err", err.Error())
			mapToProblemReport(w, err, traceID(ctx))
			return
		}

		data, err := json.Marshal(result)
		if err != nil {
			fedErrors.ReportNewInternalError(w, err.Error(), traceID(ctx))
			return
		}

		writeJSON(ctx, w, federation.OperationResult{Data: data})
	})
}

// NewEntitiesHandler resolves a batch of references. The response holds one
// value per representation, in request order, with null for unknown keys.
func NewEntitiesHandler(sg subgraph.Subgraph) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		req := federation.EntitiesRequest{}
		err = decodeBody(r.Body, &req)
		if err != nil {
			fedErrors.ReportValidationError(w, err.Error(), traceID(ctx))
			return
		}

		entities, err := sg.ResolveReferences(ctx, req.Representations)
		if err != nil {
			logging.GetFromContext(ctx).Warn("failed to resolve references", "count", len(req.Representations), "err", err.Error())
			mapToProblemReport(w, err, traceID(ctx))
			return
		}

		result := federation.BatchResult{Data: make([]json.RawMessage, 0, len(entities))}
		for _, e := range entities {
			var raw json.RawMessage
			raw, err = marshalEntity(e)
			if err != nil {
				fedErrors.ReportNewInternalError(w, err.Error(), traceID(ctx))
				return
			}
			result.Data = append(result.Data, raw)
		}

		writeJSON(ctx, w, result)
	})
}

// NewExtensionsHandler computes an extension field for every representation
// in the batch. The whole batch fails if any single resolution fails.
func NewExtensionsHandler(sg subgraph.Subgraph) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		req := federation.ExtensionRequest{}
		err = decodeBody(r.Body, &req)
		if err != nil {
			fedErrors.ReportValidationError(w, err.Error(), traceID(ctx))
			return
		}

		ctx, span := tracer.Start(ctx, "handle-extension",
			trace.WithAttributes(
				attribute.String(TraceAttributeSubgraph, sg.Name()),
				attribute.String(TraceAttributeField, req.ParentType+"."+req.Field),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		result := federation.BatchResult{Data: make([]json.RawMessage, 0, len(req.Representations))}

		for _, rep := range req.Representations {
			var value any
			value, err = sg.ResolveExtension(ctx, req.ParentType, req.Field, rep)
			if err != nil {
				logging.GetFromContext(ctx).Warn("failed to resolve extension field", "type", req.ParentType, "field", req.Field, "err", err.Error())
				mapToProblemReport(w, err, traceID(ctx))
				return
			}

			var raw []byte
			raw, err = json.Marshal(value)
			if err != nil {
				fedErrors.ReportNewInternalError(w, err.Error(), traceID(ctx))
				return
			}
			result.Data = append(result.Data, raw)
		}

		writeJSON(ctx, w, result)
	})
}

func marshalEntity(e federation.Entity) (json.RawMessage, error) {
	if e == nil {
		return json.RawMessage("null"), nil
	}
	return json.Marshal(e)
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

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logging.GetFromContext(ctx).Error("failed to marshal response", "err", err.Error())
		fedErrors.ReportNewInternalError(w, err.Error(), traceID(ctx))
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func mapToProblemReport(w http.ResponseWriter, err error, traceID string) {
	switch {
	case errors.Is(err, fedErrors.ErrValidation):
		fedErrors.ReportValidationError(w, err.Error(), traceID)
	case errors.Is(err, fedErrors.ErrUnknownOperation):
		fedErrors.ReportUnknownOperationError(w, err.Error(), traceID)
	case errors.Is(err, fedErrors.ErrNotFound):
		fedErrors.ReportNotFoundError(w, err.Error(), traceID)
	case errors.Is(err, fedErrors.ErrUnauthorized):
		fedErrors.ReportUnauthorizedRequest(w, err.Error(), traceID)
	default:
		fedErrors.ReportNewInternalError(w, err.Error(), traceID)
	}
}

func addLabelIfError(err error, labeler *otelhttp.Labeler) {
	if err != nil && labeler != nil {
		labeler.Add(attribute.Bool("error", true))
	}
}

func traceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
