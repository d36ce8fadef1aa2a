package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/models"
	"github.com/prasenjit/swagger-hub/internal/option"
	"github.com/prasenjit/swagger-hub/internal/stats"
	"github.com/prasenjit/swagger-hub/internal/storage"
)

const ordersJSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Orders", "version": "1.0"},
  "tags": [{"name": "orders"}],
  "paths": {
    "/orders": {
      "get": {
        "operationId": "listOrders",
        "tags": ["orders"],
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Order"}}}
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Order": {"type": "object"},
      "Shared": {"type": "string"}
    }
  }
}`

const billingYAML = `swagger: "2.0"
info:
  title: Billing
  version: "1.0"
paths:
  /invoices:
    get:
      operationId: listInvoices
      produces:
        - application/json
      responses:
        "200":
          description: ok
          schema:
            $ref: "#/definitions/Invoice"
definitions:
  Invoice:
    type: object
`

const usersJSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Users", "version": "1.0"},
  "paths": {"/users": {"get": {"responses": {"200": {"description": "ok"}}}}},
  "components": {"schemas": {"Shared": {"type": "string"}}}
}`

const conflictingJSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Legacy", "version": "1.0"},
  "paths": {"/legacy": {"get": {"responses": {"200": {"description": "ok"}}}}},
  "components": {"schemas": {"Order": {"type": "string"}}}
}`

type testServer struct {
	*httptest.Server
	failing    atomic.Bool
	requestIDs atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{}
	mux := http.NewServeMux()
	serve := func(body, contentType string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if ts.failing.Load() {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			if r.Header.Get("X-Request-Id") != "" {
				ts.requestIDs.Add(1)
			}
			w.Header().Set("Content-Type", contentType)
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("/orders/swagger.json", serve(ordersJSON, "application/json"))
	mux.HandleFunc("/billing/docs/swagger.yaml", serve(billingYAML, "application/yaml"))
	mux.HandleFunc("/users/swagger.json", serve(usersJSON, "application/json"))
	mux.HandleFunc("/legacy/swagger.json", serve(conflictingJSON, "application/json"))
	mux.HandleFunc("/plain.json", serve(`{"title": "not an api"}`, "application/json"))

	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func hubOption(t *testing.T, data string) models.SwaggerHubOption {
	t.Helper()
	root, err := config.Parse([]byte(data))
	require.NoError(t, err)
	opt, err := option.HubOption(root, "Swagger")
	require.NoError(t, err)
	return opt
}

func twoDocumentOption(t *testing.T, baseURL string) models.SwaggerHubOption {
	return hubOption(t, fmt.Sprintf(`
Swagger:
  Title: Platform
  Version: 2.0.0
  Documents:
    - BaseAddressUrl: %[1]s/orders/
      DocumentUrl: swagger.json
      IsDirectCall: "true"
    - BaseAddressUrl: %[1]s/billing/
      DocumentUrl: docs/swagger.yaml
      UrlSuffix: billing
      Parameters:
        - Name: X-Api-Key
          In: header
          Required: "true"
          Schema:
            type: string
`, baseURL))
}

func TestDocuments(t *testing.T) {
	ts := newTestServer(t)
	p := Create(http.DefaultTransport, twoDocumentOption(t, ts.URL), nil)

	docs, err := p.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, 0, docs[0].Index)
	assert.Equal(t, ts.URL+"/orders/swagger.json", docs[0].Location)
	assert.Equal(t, "3.0.3", docs[0].Version)
	assert.False(t, docs[0].Stale)
	assert.NotEmpty(t, docs[0].RequestID)
	assert.Equal(t, "Orders", docs[0].Spec.Info.Title)

	assert.Equal(t, 1, docs[1].Index)
	assert.Equal(t, "2.0", docs[1].Version)
	require.NotNil(t, docs[1].Spec)
	assert.NotNil(t, docs[1].Spec.Paths.Value("/invoices"))

	assert.Equal(t, int32(2), ts.requestIDs.Load())
}

func TestDocument(t *testing.T) {
	ts := newTestServer(t)
	p := Create(http.DefaultTransport, twoDocumentOption(t, ts.URL), nil)

	doc, err := p.Document(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Billing", doc.Spec.Info.Title)

	_, err = p.Document(context.Background(), 2)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = p.Document(context.Background(), -1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestAggregate(t *testing.T) {
	ts := newTestServer(t)
	p := Create(http.DefaultTransport, twoDocumentOption(t, ts.URL), nil)

	doc, err := p.Aggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "Platform", doc.Info.Title)
	assert.Equal(t, "2.0.0", doc.Info.Version)

	// Direct call: path kept, server points at the service
	orders := doc.Paths.Value("/orders")
	require.NotNil(t, orders)
	require.Len(t, orders.Servers, 1)
	assert.Equal(t, ts.URL+"/orders/", orders.Servers[0].URL)
	assert.Nil(t, orders.Get.Parameters.GetByInAndName(openapi3.ParameterInHeader, "X-Api-Key"))

	// Routed through the hub: prefixed with the suffix, parameters added
	assert.Nil(t, doc.Paths.Value("/invoices"))
	invoices := doc.Paths.Value("/billing/invoices")
	require.NotNil(t, invoices)
	assert.Empty(t, invoices.Servers)
	apiKey := invoices.Get.Parameters.GetByInAndName(openapi3.ParameterInHeader, "X-Api-Key")
	require.NotNil(t, apiKey)
	assert.True(t, apiKey.Required)

	// Components and tags merged
	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.Schemas, "Order")
	assert.Contains(t, doc.Components.Schemas, "Invoice")
	require.Contains(t, doc.Components.Schemas, "Shared")
	assert.True(t, doc.Components.Schemas["Shared"].Value.Type.Is(openapi3.TypeString))
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "orders", doc.Tags[0].Name)
}

func TestAggregate_IdenticalComponentsMerged(t *testing.T) {
	ts := newTestServer(t)
	opt := hubOption(t, fmt.Sprintf(`
Swagger:
  Documents:
    - BaseAddressUrl: %[1]s/orders/
      DocumentUrl: swagger.json
    - BaseAddressUrl: %[1]s/users/
      DocumentUrl: swagger.json
`, ts.URL))

	doc, err := Create(http.DefaultTransport, opt, nil).Aggregate(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Value("/users"))
	require.Contains(t, doc.Components.Schemas, "Shared")
	assert.True(t, doc.Components.Schemas["Shared"].Value.Type.Is(openapi3.TypeString))
}

func TestAggregate_ConflictingComponents(t *testing.T) {
	ts := newTestServer(t)
	opt := hubOption(t, fmt.Sprintf(`
Swagger:
  Documents:
    - BaseAddressUrl: %[1]s/orders/
      DocumentUrl: swagger.json
    - BaseAddressUrl: %[1]s/legacy/
      DocumentUrl: swagger.json
`, ts.URL))

	_, err := Create(http.DefaultTransport, opt, nil).Aggregate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema Order is declared differently by documents 0 and 1")
}

func TestAggregate_NoDocuments(t *testing.T) {
	p := Create(http.DefaultTransport, hubOption(t, "Swagger:\n  Title: Empty\n"), nil)

	doc, err := p.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Empty", doc.Info.Title)
	assert.Zero(t, doc.Paths.Len())
}

func TestAggregate_PathCollision(t *testing.T) {
	ts := newTestServer(t)
	opt := hubOption(t, fmt.Sprintf(`
Swagger:
  Documents:
    - BaseAddressUrl: %[1]s/orders/
      DocumentUrl: swagger.json
    - BaseAddressUrl: %[1]s/orders/
      DocumentUrl: swagger.json
`, ts.URL))

	_, err := Create(http.DefaultTransport, opt, nil).Aggregate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/orders")
}

func TestFetch_ServesSnapshotWhenRemoteFails(t *testing.T) {
	ts := newTestServer(t)
	collector := stats.NewCollector()
	store := storage.NewMemoryStorage()
	p := Create(http.DefaultTransport, twoDocumentOption(t, ts.URL), nil, WithStorage(store), WithStats(collector))

	first, err := p.Document(context.Background(), 0)
	require.NoError(t, err)

	ts.failing.Store(true)

	doc, err := p.Document(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, doc.Stale)
	assert.Equal(t, first.RequestID, doc.RequestID)
	assert.Equal(t, "Orders", doc.Spec.Info.Title)

	stat := collector.GetDocumentStats(0)
	require.NotNil(t, stat)
	assert.Equal(t, int64(2), stat.TotalFetches)
	assert.Equal(t, int64(1), stat.TotalErrors)
	assert.Equal(t, int64(1), stat.StaleServed)
	assert.Contains(t, stat.LastError, "unexpected status 503")
}

func TestFetch_FailsWithoutSnapshot(t *testing.T) {
	ts := newTestServer(t)
	ts.failing.Store(true)
	p := Create(http.DefaultTransport, twoDocumentOption(t, ts.URL), nil)

	_, err := p.Document(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")

	_, err = p.Documents(context.Background())
	assert.Error(t, err)
}

func TestFetch_NotAnAPIDocument(t *testing.T) {
	ts := newTestServer(t)
	opt := hubOption(t, fmt.Sprintf(`
Swagger:
  Documents:
    - BaseAddressUrl: %s/plain.json
`, ts.URL))

	_, err := Create(http.DefaultTransport, opt, nil).Document(context.Background(), 0)
	assert.ErrorIs(t, err, errUnknownFormat)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFetch_UsesTransport(t *testing.T) {
	var calls atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		rec := httptest.NewRecorder()
		rec.Header().Set("Content-Type", "application/json")
		fmt.Fprint(rec, ordersJSON)
		return rec.Result(), nil
	})

	opt := hubOption(t, `
Swagger:
  Documents:
    - BaseAddressUrl: https://orders.internal/
      DocumentUrl: swagger.json
`)

	doc, err := Create(transport, opt, nil).Document(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "https://orders.internal/swagger.json", doc.Location)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"openapi json", `{"openapi": "3.1.0"}`, "3.1.0", false},
		{"swagger json", `{"swagger": "2.0"}`, "2.0", false},
		{"openapi yaml", "openapi: 3.0.1\ninfo: {}\n", "3.0.1", false},
		{"swagger yaml", "swagger: \"2.0\"\n", "2.0", false},
		{"json without version", `{"info": {}}`, "", true},
		{"yaml without version", "info:\n  title: x\n", "", true},
		{"garbage", "{{{", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detectVersion([]byte(tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoutePath(t *testing.T) {
	tests := []struct {
		name string
		opt  models.SwaggerDocumentOption
		key  string
		want string
	}{
		{"no suffix", models.SwaggerDocumentOption{}, "/users", "/users"},
		{"suffix", models.SwaggerDocumentOption{URLSuffix: "billing"}, "/invoices", "/billing/invoices"},
		{"suffix with slashes", models.SwaggerDocumentOption{URLSuffix: "/billing/"}, "/invoices/{id}", "/billing/invoices/{id}"},
		{"trailing slash kept", models.SwaggerDocumentOption{URLSuffix: "billing"}, "/invoices/", "/billing/invoices/"},
		{"direct call ignores suffix", models.SwaggerDocumentOption{URLSuffix: "billing", IsDirectCall: true}, "/invoices", "/invoices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routePath(tt.opt, tt.key))
		})
	}
}

func TestFetch_RejectsOversizedDocument(t *testing.T) {
	ts := newTestServer(t)
	opt := twoDocumentOption(t, ts.URL)

	_, err := Create(http.DefaultTransport, opt, nil, WithMaxDocumentSize(64)).Document(context.Background(), 0)
	require.ErrorIs(t, err, errTooLarge)
	assert.Contains(t, err.Error(), "exceeds 64 bytes")

	// A limit equal to the body size still succeeds
	doc, err := Create(http.DefaultTransport, opt, nil, WithMaxDocumentSize(int64(len(ordersJSON)))).Document(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "Orders", doc.Spec.Info.Title)
}
