package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate moq -rm -out client_mock.go . SubgraphClient

type SubgraphClient interface {
	Name() string
	Schema(ctx context.Context) (*federation.SchemaResult, error)
	Execute(ctx context.Context, req federation.OperationRequest) (json.RawMessage, error)
	ResolveEntities(ctx context.Context, representations []federation.Representation) ([]json.RawMessage, error)
	ResolveExtensions(ctx context.Context, parentType, field string, representations []federation.Representation) ([]json.RawMessage, error)
}

type ClientOption func(*sgClient)

func Debug(enabled string) ClientOption {
	return func(c *sgClient) {
		c.debug = (enabled == "true")
	}
}

func Headers(headers map[string][]string) ClientOption {
	return func(c *sgClient) {
		c.headers = headers
	}
}

func New(name, endpoint string, options ...ClientOption) SubgraphClient {
	c := &sgClient{
		name:    name,
		baseURL: strings.TrimSuffix(endpoint, "/"),
		debug:   false,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const (
	TraceAttributeSubgraph   string = "subgraph"
	TraceAttributeField      string = "field"
	TraceAttributeParentType string = "parent-type"
	TraceAttributeBatchSize  string = "batch-size"
)

var tracer = otel.Tracer("federation-client")

type sgClient struct {
	name       string
	baseURL    string
	debug      bool
	headers    map[string][]string
	httpClient http.Client
}

func (c *sgClient) Name() string {
	return c.name
}

func (c *sgClient) Schema(ctx context.Context) (*federation.SchemaResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "fetch-schema",
		trace.WithAttributes(attribute.String(TraceAttributeSubgraph, c.name)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	respBody, err := c.callSubgraph(ctx, http.MethodGet, federation.SchemaPath, nil)
	if err != nil {
		return nil, err
	}

	result := &federation.SchemaResult{}
	err = json.Unmarshal(respBody, result)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal schema from %s: %s (%w)", c.name, err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	if result.SDL == "" {
		err = fmt.Errorf("subgraph %s returned an empty schema (%w)", c.name, errors.ErrBadResponse)
		return nil, err
	}

	return result, nil
}

func (c *sgClient) Execute(ctx context.Context, req federation.OperationRequest) (json.RawMessage, error) {
	var err error

	ctx, span := tracer.Start(ctx, "execute-"+string(req.Operation),
		trace.WithAttributes(
			attribute.String(TraceAttributeSubgraph, c.name),
			attribute.String(TraceAttributeField, req.Field),
		),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	respBody, err := c.post(ctx, federation.OperationsPath, req)
	if err != nil {
		return nil, err
	}

	result := &federation.OperationResult{}
	err = json.Unmarshal(respBody, result)
	if err != nil {
		err = c.unmarshalError(respBody, err)
		return nil, err
	}

	return result.Data, nil
}

func (c *sgClient) ResolveEntities(ctx context.Context, representations []federation.Representation) ([]json.RawMessage, error) {
	var err error

	ctx, span := tracer.Start(ctx, "resolve-entities",
		trace.WithAttributes(
			attribute.String(TraceAttributeSubgraph, c.name),
			attribute.Int(TraceAttributeBatchSize, len(representations)),
		),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	respBody, err := c.post(ctx, federation.EntitiesPath, federation.EntitiesRequest{
		Representations: representations,
	})
	if err != nil {
		return nil, err
	}

	data, err := c.alignedBatch(respBody, len(representations))
	return data, err
}

func (c *sgClient) ResolveExtensions(ctx context.Context, parentType, field string, representations []federation.Representation) ([]json.RawMessage, error) {
	var err error

	ctx, span := tracer.Start(ctx, "resolve-extensions",
		trace.WithAttributes(
			attribute.String(TraceAttributeSubgraph, c.name),
			attribute.String(TraceAttributeParentType, parentType),
			attribute.String(TraceAttributeField, field),
			attribute.Int(TraceAttributeBatchSize, len(representations)),
		),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	respBody, err := c.post(ctx, federation.ExtensionsPath, federation.ExtensionRequest{
		ParentType:      parentType,
		Field:           field,
		Representations: representations,
	})
	if err != nil {
		return nil, err
	}

	data, err := c.alignedBatch(respBody, len(representations))
	return data, err
}

func (c *sgClient) alignedBatch(respBody []byte, expected int) ([]json.RawMessage, error) {
	result := &federation.BatchResult{}

	err := json.Unmarshal(respBody, result)
	if err != nil {
		return nil, c.unmarshalError(respBody, err)
	}

	if len(result.Data) != expected {
		return nil, fmt.Errorf("subgraph %s returned %d values for %d representations (%w)", c.name, len(result.Data), expected, errors.ErrBadResponse)
	}

	return result.Data, nil
}

func (c *sgClient) unmarshalError(respBody []byte, err error) error {
	if c.debug && len(respBody) < 1000 {
		return fmt.Errorf("unmarshaling of %s failed with err %s (%w)", string(respBody), err.Error(), errors.ErrBadResponse)
	}
	return fmt.Errorf("failed to unmarshal response from %s: %s (%w)", c.name, err.Error(), errors.ErrBadResponse)
}

func (c *sgClient) post(ctx context.Context, path string, request any) ([]byte, error) {
	b, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	return c.callSubgraph(ctx, http.MethodPost, path, bytes.NewBuffer(b))
}

func (c *sgClient) callSubgraph(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	req.Header.Add("Accept", "application/json")
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	for header, headerValue := range c.headers {
		for _, val := range headerValue {
			req.Header.Add(header, val)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %s (%w)", c.name, err.Error(), errors.ErrRequest)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
	}

	if resp.StatusCode != http.StatusOK {
		contentType := resp.Header.Get("Content-Type")
		if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode <= http.StatusInternalServerError {
			return nil, errors.NewErrorFromProblemReport(resp.StatusCode, contentType, respBody)
		}

		return nil, fmt.Errorf("unexpected response code %d from %s (%w)", resp.StatusCode, c.name, errors.ErrInternal)
	}

	return respBody, nil
}
