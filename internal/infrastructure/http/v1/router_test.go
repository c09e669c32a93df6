package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinito/internal/domain/contribution"
	"infinito/internal/domain/impact"
	"infinito/internal/domain/product"
	"infinito/internal/infrastructure/export"
	"infinito/internal/infrastructure/storage/memory"
	"infinito/internal/metadata"
	"infinito/pkg/logger"
	"infinito/pkg/numerator"
)

type listBody struct {
	Items []map[string]any `json:"items"`
	Stats struct {
		Total             int `json:"total"`
		Kept              int `json:"kept"`
		ActiveConstraints int `json:"activeConstraints"`
	} `json:"stats"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := memory.NewSeededStore(context.Background())
	require.NoError(t, err)
	exporter, err := export.NewExporter()
	require.NoError(t, err)

	num := numerator.New(numerator.NewMemoryStore())
	calc := impact.NewCalculator()
	contributions := contribution.NewService(contribution.Config{
		Repo:       store.Contributions,
		Numerator:  num,
		Calculator: calc,
	})
	products := product.NewService(product.Config{
		Repo:          store.Products,
		Numerator:     num,
		Contributions: contributions,
	})

	return NewRouter(RouterConfig{
		Logger:           logger.Nop(),
		Version:          "test",
		Contributions:    contributions,
		Products:         products,
		Calculator:       calc,
		Exporter:         exporter,
		MetadataRegistry: metadata.NewDefaultRegistry(),
	})
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/health/info"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}

	info := decode[map[string]any](t, do(t, r, http.MethodGet, "/health/info", nil))
	assert.Equal(t, "memory", info["storage"])
}

func TestListContributions(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		query      url.Values
		wantKept   int
		wantActive int
	}{
		{"no filters", nil, 8, 0},
		{"blank params are unset", url.Values{"type": {" "}, "search": {""}}, 8, 0},
		{"type", url.Values{"type": {"clothing"}}, 4, 1},
		{"verified", url.Values{"verified": {"true"}}, 4, 1},
		{"certificate", url.Values{"hasCertificate": {"true"}}, 2, 1},
		{"search donor", url.Values{"search": {"INF-2024-0000"}}, 8, 1},
		{"clothing with expression", url.Values{"type": {"clothing"}, "expr": {"co2 > 20.0"}}, 2, 2},
		{"product-only filter ignored", url.Values{"priceMin": {"1000"}}, 8, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, "/api/v1/contributions?"+tt.query.Encode(), nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			body := decode[listBody](t, rec)
			assert.Equal(t, 8, body.Stats.Total)
			assert.Equal(t, tt.wantKept, body.Stats.Kept)
			assert.Len(t, body.Items, tt.wantKept)
			assert.Equal(t, tt.wantActive, body.Stats.ActiveConstraints)
		})
	}
}

func TestListProducts_PriceRange(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/products?priceMin=10&priceMax=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[listBody](t, rec)
	assert.Equal(t, 6, body.Stats.Total)
	require.Len(t, body.Items, 3)
	for i, sku := range []string{"PRD-2024-00001", "PRD-2024-00002", "PRD-2024-00003"} {
		assert.Equal(t, sku, body.Items[i]["sku"])
	}
}

func TestList_BadRequests(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name     string
		target   string
		wantCode string
	}{
		{"malformed price", "/api/v1/products?priceMin=barato", "VALIDATION_ERROR"},
		{"malformed date", "/api/v1/contributions?dateFrom=ayer", "VALIDATION_ERROR"},
		{"non-boolean expression", "/api/v1/contributions?expr=co2", "CONTRACT_VIOLATION"},
		{"unknown export format", "/api/v1/products/export?format=xlsx", "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decode[errorBody](t, rec).Code)
		})
	}
}

func TestGetContribution(t *testing.T) {
	r := newTestRouter(t)

	byCode := do(t, r, http.MethodGet, "/api/v1/contributions/INF-2024-00003", nil)
	require.Equal(t, http.StatusOK, byCode.Code)
	c := decode[map[string]any](t, byCode)
	assert.Equal(t, "fecha pendiente", c["eventDate"], "unparseable dates are returned verbatim")

	byID := do(t, r, http.MethodGet, "/api/v1/contributions/"+c["id"].(string), nil)
	assert.Equal(t, http.StatusOK, byID.Code)

	missing := do(t, r, http.MethodGet, "/api/v1/contributions/0190f3a2-6c1e-7a10-8000-0000000000ff", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	bad := do(t, r, http.MethodGet, "/api/v1/contributions/nope", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestContributionLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/contributions", map[string]any{
		"donorName":  "Carmen Ruiz",
		"type":       "clothing",
		"material":   "cotton",
		"totalItems": 5,
		"weightKg":   "2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.True(t, strings.HasPrefix(created["trackingCode"].(string), "INF-"))
	assert.Equal(t, "pending", created["status"])
	assert.EqualValues(t, 16, created["co2"])
	contribID := created["id"].(string)

	rec = do(t, r, http.MethodPost, "/api/v1/contributions/"+contribID+"/classify", map[string]any{
		"classification": "reusable",
		"destination":    "sale",
		"decision":       "approved",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, to := range []string{"delivered", "verified"} {
		rec = do(t, r, http.MethodPost, "/api/v1/contributions/"+contribID+"/transition", map[string]any{"to": to})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Equal(t, true, decode[map[string]any](t, rec)["verified"])

	rec = do(t, r, http.MethodPost, "/api/v1/contributions/"+contribID+"/transition", map[string]any{"to": "pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/products/publish", map[string]any{
		"contributionId": contribID,
		"name":           "Camisetas de algodón",
		"seller":         "Tienda Verde",
		"condition":      "good",
		"price":          "12.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[map[string]any](t, rec)
	assert.Equal(t, "cotton", p["material"])
	assert.Equal(t, contribID, p["contributionId"])

	rec = do(t, r, http.MethodPost, "/api/v1/products/publish", map[string]any{
		"contributionId": contribID,
		"name":           "Camisetas de algodón",
		"seller":         "Tienda Verde",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "DUPLICATE_ENTRY", decode[errorBody](t, rec).Code)

	list := decode[listBody](t, do(t, r, http.MethodGet, "/api/v1/products?seller=tienda+verde", nil))
	assert.Equal(t, 3, list.Stats.Kept)
}

func TestPublish_Rejected(t *testing.T) {
	r := newTestRouter(t)

	donation := decode[map[string]any](t, do(t, r, http.MethodGet, "/api/v1/contributions/INF-2024-00002", nil))
	rec := do(t, r, http.MethodPost, "/api/v1/products/publish", map[string]any{
		"contributionId": donation["id"],
		"name":           "Cuadro",
		"seller":         "Galería",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NOT_PUBLISHABLE", decode[errorBody](t, rec).Code)
}

func TestCreateContribution_Validation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing donor", map[string]any{"type": "clothing"}},
		{"unknown type", map[string]any{"donorName": "Ana", "type": "furniture"}},
		{"negative items", map[string]any{"donorName": "Ana", "type": "art", "totalItems": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/api/v1/contributions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestExport(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		target      string
		contentType string
		ext         string
	}{
		{"/api/v1/contributions/export?type=clothing", "text/csv; charset=utf-8", ".csv"},
		{"/api/v1/contributions/export?format=pdf", "application/pdf", ".pdf"},
		{"/api/v1/products/export?format=csv.zst", "application/zstd", ".csv.zst"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), tt.ext+`"`)
			assert.NotEmpty(t, rec.Body.Bytes())
		})
	}

	rec := do(t, r, http.MethodGet, "/api/v1/contributions/export?type=clothing", nil)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 5, "header plus four clothing contributions")
}

func TestImpactAndMeta(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/impact/calculate", map[string]any{"material": "Wool coat", "weightKg": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	assert.Equal(t, "wool", res["material"])
	assert.Equal(t, "27.8", res["co2Kg"])

	rec = do(t, r, http.MethodPost, "/api/v1/impact/calculate", map[string]any{"material": "wool", "weightKg": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	metas := decode[[]map[string]any](t, do(t, r, http.MethodGet, "/api/v1/meta", nil))
	assert.Len(t, metas, 2)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/meta/product", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/v1/meta/order", nil).Code)
}
