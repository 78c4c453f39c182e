package federation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diwise/federated-graph/internal/pkg/application/customers"
	"github.com/diwise/federated-graph/internal/pkg/application/orders"
	"github.com/diwise/federated-graph/internal/pkg/application/subgraph"
	"github.com/diwise/federated-graph/internal/pkg/infrastructure/router"
	"github.com/diwise/federated-graph/pkg/federation"
	"github.com/diwise/federated-graph/pkg/federation/client"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/matryer/is"
)

func TestSchemaIsServed(t *testing.T) {
	is, ts, sg := setupCustomers(t)
	defer ts.Close()

	result, err := client.New(sg.Name(), ts.URL).Schema(context.Background())
	is.NoErr(err)
	is.Equal(result.Name, "customers")
	is.Equal(result.SDL, customers.SDL)
}

func TestExecuteQueryOverTheWire(t *testing.T) {
	is, ts, sg := setupCustomers(t)
	defer ts.Close()

	data, err := client.New(sg.Name(), ts.URL).Execute(context.Background(), federation.OperationRequest{
		Operation: federation.Query,
		Field:     "customer",
		Arguments: map[string]json.RawMessage{"id": json.RawMessage(`"3"`)},
	})
	is.NoErr(err)

	c := map[string]any{}
	is.NoErr(json.Unmarshal(data, &c))
	is.Equal(c["name"], "Carol Davis")
	is.Equal(c["tier"], "SILVER")
}

func TestExecuteOnMissingTargetReturnsNullData(t *testing.T) {
	is, ts, sg := setupCustomers(t)
	defer ts.Close()

	data, err := client.New(sg.Name(), ts.URL).Execute(context.Background(), federation.OperationRequest{
		Operation: federation.Mutation,
		Field:     "updateLoyaltyPoints",
		Arguments: map[string]json.RawMessage{
			"customerId": json.RawMessage(`"42"`),
			"points":     json.RawMessage(`100`),
		},
	})
	is.NoErr(err)
	is.True(federation.IsNull(data))
}

func TestExecuteUnknownFieldIsReportedAsUnknownOperation(t *testing.T) {
	is, ts, sg := setupCustomers(t)
	defer ts.Close()

	_, err := client.New(sg.Name(), ts.URL).Execute(context.Background(), federation.OperationRequest{
		Operation: federation.Query,
		Field:     "orders",
	})
	is.True(errors.Is(err, fedErrors.ErrUnknownOperation))
}

func TestExecuteWithInvalidArgumentsIsReportedAsValidationError(t *testing.T) {
	is, ts, sg := setupCustomers(t)
	defer ts.Close()

	_, err := client.New(sg.Name(), ts.URL).Execute(context.Background(), federation.OperationRequest{
		Operation: federation.Mutation,
		Field:     "updateLoyaltyPoints",
		Arguments: map[string]json.RawMessage{
			"customerId": json.RawMessage(`"1"`),
			"points":     json.RawMessage(`"many"`),
		},
	})
	is.True(errors.Is(err, fedErrors.ErrValidation))
}

func TestMalformedRequestBodyReturnsBadRequest(t *testing.T) {
	is, ts, _ := setupCustomers(t)
	defer ts.Close()

	for _, path := range []string{federation.OperationsPath, federation.EntitiesPath, federation.ExtensionsPath} {
		resp, body := newTestRequest(is, ts, http.MethodPost, path, strings.NewReader("this is not my json"))

		is.Equal(resp.StatusCode, http.StatusBadRequest) // malformed json must be rejected
		is.Equal(resp.Header.Get("Content-Type"), fedErrors.ProblemReportContentType)
		is.True(strings.Contains(body, "ValidationError"))
	}
}

func TestUnsupportedOperationKindReturnsBadRequest(t *testing.T) {
	is, ts, _ := setupCustomers(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodPost, federation.OperationsPath,
		strings.NewReader(`{"operation":"subscription","field":"customers"}`))

	is.Equal(resp.StatusCode, http.StatusBadRequest)
}

func TestEntitiesAreAlignedWithRepresentations(t *testing.T) {
	is, ts, sg := setupCustomers(t)
	defer ts.Close()

	data, err := client.New(sg.Name(), ts.URL).ResolveEntities(context.Background(), []federation.Representation{
		federation.NewRepresentation(federation.NewKey("Customer", "id", "5"), nil),
		federation.NewRepresentation(federation.NewKey("Customer", "id", "404"), nil),
		federation.NewRepresentation(federation.NewKey("Customer", "id", "1"), nil),
	})
	is.NoErr(err)
	is.Equal(len(data), 3)

	first := map[string]any{}
	is.NoErr(json.Unmarshal(data[0], &first))
	is.Equal(first["name"], "Emma Martinez")

	is.True(federation.IsNull(data[1]))

	last := map[string]any{}
	is.NoErr(json.Unmarshal(data[2], &last))
	is.Equal(last["name"], "Alice Johnson")
}

func TestEntitiesOfUnknownTypeAreRejected(t *testing.T) {
	is, ts, sg := setupCustomers(t)
	defer ts.Close()

	_, err := client.New(sg.Name(), ts.URL).ResolveEntities(context.Background(), []federation.Representation{
		federation.NewRepresentation(federation.NewKey("Order", "id", "ORD-001"), nil),
	})
	is.True(errors.Is(err, fedErrors.ErrUnknownOperation))
}

func TestExtensionsAreResolvedPerRepresentation(t *testing.T) {
	is := is.New(t)

	sg, err := orders.NewSubgraph(orders.NewMemoryStore(nil))
	is.NoErr(err)

	ts := newTestServer(sg)
	defer ts.Close()

	data, err := client.New(sg.Name(), ts.URL).ResolveExtensions(context.Background(), "Customer", "orders", []federation.Representation{
		federation.NewRepresentation(federation.NewKey("Customer", "id", "2"), nil),
		federation.NewRepresentation(federation.NewKey("Customer", "id", "99"), nil),
	})
	is.NoErr(err)
	is.Equal(len(data), 2)

	forBob := []map[string]any{}
	is.NoErr(json.Unmarshal(data[0], &forBob))
	is.Equal(len(forBob), 2)
	is.Equal(forBob[0]["id"], "ORD-002")
	is.Equal(forBob[1]["id"], "ORD-005")

	is.Equal(string(data[1]), "[]")
}

func TestExtensionFailureFailsTheBatch(t *testing.T) {
	is := is.New(t)

	sg := &subgraph.SubgraphMock{
		NameFunc: func() string { return "flaky" },
		ResolveExtensionFunc: func(ctx context.Context, parentType, field string, rep federation.Representation) (any, error) {
			if rep.Attributes["id"] == "2" {
				return nil, fmt.Errorf("storage unavailable")
			}
			return []string{}, nil
		},
	}

	ts := newTestServer(sg)
	defer ts.Close()

	_, err := client.New(sg.Name(), ts.URL).ResolveExtensions(context.Background(), "Customer", "orders", []federation.Representation{
		federation.NewRepresentation(federation.NewKey("Customer", "id", "1"), nil),
		federation.NewRepresentation(federation.NewKey("Customer", "id", "2"), nil),
	})
	is.True(errors.Is(err, fedErrors.ErrInternal))
	is.Equal(len(sg.ResolveExtensionCalls()), 2)
}

func TestArgumentsArePassedThroughUnchanged(t *testing.T) {
	is := is.New(t)

	var received subgraph.Arguments

	sg := &subgraph.SubgraphMock{
		NameFunc: func() string { return "recorder" },
		ExecuteFunc: func(ctx context.Context, kind federation.OperationKind, field string, args subgraph.Arguments) (any, error) {
			received = args
			return nil, nil
		},
	}

	ts := newTestServer(sg)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, federation.OperationsPath,
		bytes.NewBufferString(`{"operation":"MUTATION","field":"updateCustomerProfile","arguments":{"customerId":"3","phone":null}}`))

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"data":null}`)

	call := sg.ExecuteCalls()[0]
	is.Equal(call.Kind, federation.Mutation)
	is.True(received.Has("phone"))
	is.True(!received.Has("name"))

	phone, err := received.OptionalString("phone")
	is.NoErr(err)
	is.True(phone.IsNull())
}

func setupCustomers(t *testing.T) (*is.I, *httptest.Server, subgraph.Subgraph) {
	is := is.New(t)

	sg, err := customers.NewSubgraph(customers.NewMemoryStore())
	is.NoErr(err)

	return is, newTestServer(sg), sg
}

func newTestServer(sg subgraph.Subgraph) *httptest.Server {
	r := router.New("federation-test", slog.Default())
	RegisterHandlers(r, sg)
	return httptest.NewServer(r)
}

func newTestRequest(is *is.I, ts *httptest.Server, method, path string, body io.Reader) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)
	req.Header.Add("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	return resp, string(respBody)
}
