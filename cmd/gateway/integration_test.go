package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diwise/federated-graph/internal/pkg/application/customers"
	"github.com/diwise/federated-graph/internal/pkg/application/orders"
	"github.com/diwise/federated-graph/internal/pkg/application/products"
	"github.com/diwise/federated-graph/internal/pkg/application/subgraph"
	"github.com/diwise/federated-graph/internal/pkg/infrastructure/router"
	"github.com/diwise/federated-graph/internal/pkg/presentation/api/federation"
	"github.com/matryer/is"
)

func TestIntegrateFederatedQuery(t *testing.T) {
	is, gw := setupIntegrationTest(t)

	resp, body := testRequest(is, gw.URL, `{"query":"{ customer(id: \"1\") { name orders { id items { product { name } } } } }"}`, "")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"data":{"customer":{"name":"Alice Johnson","orders":[`+
		`{"id":"ORD-001","items":[{"product":{"name":"Laptop Pro"}},{"product":{"name":"Wireless Mouse"}}]},`+
		`{"id":"ORD-003","items":[{"product":{"name":"Monitor 27\""}}]}]}}}`)
}

func TestIntegrateMutationRequiresToken(t *testing.T) {
	is, gw := setupIntegrationTest(t)

	mutation := `{"query":"mutation { updateStock(productId: \"2\", quantity: -5) { name stock } }"}`

	resp, _ := testRequest(is, gw.URL, mutation, "")
	is.Equal(resp.StatusCode, http.StatusUnauthorized)

	resp, body := testRequest(is, gw.URL, mutation, "Bearer letmein")
	is.Equal(resp.StatusCode, http.StatusOK)

	result := struct {
		Data struct {
			UpdateStock struct {
				Name string `json:"name"`
			} `json:"updateStock"`
		} `json:"data"`
	}{}
	is.NoErr(json.Unmarshal([]byte(body), &result))
	is.Equal(result.Data.UpdateStock.Name, "Wireless Mouse")
}

func TestIntegrateComposedSchemaIsServed(t *testing.T) {
	is, gw := setupIntegrationTest(t)

	resp, err := http.Get(gw.URL + "/graphql/schema")
	is.NoErr(err)
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.Contains(string(b), "recentOrders"))
	is.True(strings.Contains(string(b), "searchProducts"))
}

func TestInitializeFailsWhenASubgraphIsUnreachable(t *testing.T) {
	is := is.New(t)

	cfg := "timeout: 1s\nsubgraphs:\n  - name: customers\n    endpoint: http://127.0.0.1:1\n"

	_, err := initialize(context.Background(), strings.NewReader(cfg), strings.NewReader(opaModule))
	is.True(err != nil)
}

func setupIntegrationTest(t *testing.T) (*is.I, *httptest.Server) {
	is := is.New(t)

	now := func() time.Time { return time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC) }

	customersSG, err := customers.NewSubgraph(customers.NewMemoryStore())
	is.NoErr(err)
	ordersSG, err := orders.NewSubgraph(orders.NewMemoryStore(now))
	is.NoErr(err)
	productsSG, err := products.NewSubgraph(products.NewMemoryStore())
	is.NoErr(err)

	cfg := "timeout: 5s\nsubgraphs:\n"

	for _, sg := range []subgraph.Subgraph{customersSG, ordersSG, productsSG} {
		r := router.New(sg.Name(), slog.Default())
		federation.RegisterHandlers(r, sg)

		ts := httptest.NewServer(r)
		t.Cleanup(ts.Close)

		cfg += fmt.Sprintf("  - name: %s\n    endpoint: %s\n", sg.Name(), ts.URL)
	}

	handler, err := initialize(context.Background(), strings.NewReader(cfg), strings.NewReader(opaModule))
	is.NoErr(err)

	gw := httptest.NewServer(handler)
	t.Cleanup(gw.Close)

	return is, gw
}

func testRequest(is *is.I, baseURL, body, token string) (*http.Response, string) {
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	return resp, string(respBody)
}

const opaModule string = `
package federation.authz

default allow = false

allow = response {
	input.operation == "query"
	response := {}
}

allow = response {
	input.operation == "mutation"
	input.token == "letmein"
	response := {}
}
`
