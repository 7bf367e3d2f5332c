package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deskshop/internal/db"
	"deskshop/internal/seed"
)

const validOrder = `{"items":[{"product_id":"p1","title":"Retro Gamer Setup","price":699.0,"quantity":2}],` +
	`"customer":{"name":"Ann","email":"ann@example.com"},"note":"gift wrap"}`

type testServer struct {
	router *gin.Engine
	store  db.Store
}

func newTestServer(t *testing.T, store db.Store) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	h := NewHandler(store, seed.New(store, log), store.Enabled())
	return &testServer{router: NewRouter(h, log, []string{"*"}), store: store}
}

func newSQLServer(t *testing.T) (*testServer, *db.SQLStore) {
	t.Helper()
	store, err := db.OpenSQL(context.Background(), db.Config{URL: "sqlite::memory:", ConnectTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return newTestServer(t, store), store
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, db.Disabled{})

	w, body := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rootMessage, body["message"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

// leakyPingStore fails pings with driver text naming internal hosts.
type leakyPingStore struct{ db.Disabled }

func (leakyPingStore) Enabled() bool { return true }
func (leakyPingStore) Ping(context.Context) error {
	return errors.New("dial tcp 10.0.0.7:27017: connect: connection refused")
}

func TestHealth(t *testing.T) {
	w, body := newTestServer(t, db.Disabled{}).do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, healthUnavailable, body["db"])

	w, body = newTestServer(t, leakyPingStore{}).do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, healthUnavailable, body["db"])
	assert.NotContains(t, w.Body.String(), "10.0.0.7")

	s, _ := newSQLServer(t)
	w, body = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
}

func TestDiagnostics_Disabled(t *testing.T) {
	w, body := newTestServer(t, db.Disabled{}).do(t, http.MethodGet, "/test", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "✅ Running", body["backend"])
	assert.Equal(t, "⚠️  Available but not initialized", body["database"])
	assert.Nil(t, body["database_url"])
	assert.Nil(t, body["database_name"])
	assert.Equal(t, "Not Connected", body["connection_status"])
	assert.Equal(t, []any{}, body["collections"])
}

// unreachableStore is configured but every call fails.
type unreachableStore struct{ db.Disabled }

func (unreachableStore) Enabled() bool { return true }
func (unreachableStore) Name() string { return "shop" }
func (unreachableStore) Collections(context.Context) ([]string, error) {
	return nil, errors.New("server selection error: context deadline exceeded, current topology: { Type: Unknown, Servers: [] }")
}

func TestDiagnostics_Unreachable(t *testing.T) {
	w, body := newTestServer(t, unreachableStore{}).do(t, http.MethodGet, "/test", "")

	assert.Equal(t, http.StatusOK, w.Code)
	database := body["database"].(string)
	assert.True(t, strings.HasPrefix(database, "⚠️  Connected but Error: server selection error"))
	assert.LessOrEqual(t, len([]rune(strings.TrimPrefix(database, "⚠️  Connected but Error: "))), 80)
	assert.Equal(t, "✅ Set", body["database_url"])
	assert.Equal(t, "shop", body["database_name"])
	assert.Equal(t, "Connected", body["connection_status"])
}

func TestDiagnostics_Healthy(t *testing.T) {
	s, _ := newSQLServer(t)
	w, body := s.do(t, http.MethodGet, "/test", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "✅ Connected & Working", body["database"])
	assert.Subset(t, body["collections"], []any{"product", "order"})
}

func TestListProducts_SeedsOnce(t *testing.T) {
	s, store := newSQLServer(t)

	w, body := s.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]any)
	assert.Len(t, items, 5)
	for _, raw := range items {
		it := raw.(map[string]any)
		assert.NotEmpty(t, it["id"])
		assert.NotContains(t, it, "_id")
		assert.GreaterOrEqual(t, it["price"].(float64), 0.0)
		assert.NotEmpty(t, it["category"])
	}

	for i := 0; i < 3; i++ {
		s.do(t, http.MethodGet, "/api/products", "")
		s.do(t, http.MethodGet, "/api/categories", "")
	}
	n, err := store.CountProducts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestListProducts_Filters(t *testing.T) {
	s, _ := newSQLServer(t)

	_, all := s.do(t, http.MethodGet, "/api/products", "")
	_, allExplicit := s.do(t, http.MethodGet, "/api/products?category=all", "")
	assert.Equal(t, all, allExplicit)

	_, gaming := s.do(t, http.MethodGet, "/api/products?category=GAMING", "")
	gamingItems := gaming["items"].([]any)
	require.NotEmpty(t, gamingItems)
	for _, raw := range gamingItems {
		assert.Equal(t, "gaming", strings.ToLower(raw.(map[string]any)["category"].(string)))
	}

	_, monitor := s.do(t, http.MethodGet, "/api/products?q=Monitor", "")
	monitorItems := monitor["items"].([]any)
	require.NotEmpty(t, monitorItems)
	for _, raw := range monitorItems {
		it := raw.(map[string]any)
		text := strings.ToLower(it["title"].(string) + " " + it["description"].(string))
		assert.Contains(t, text, "monitor")
	}

	_, none := s.do(t, http.MethodGet, "/api/products?category=nope", "")
	assert.Equal(t, []any{}, none["items"])
}

func TestListProducts_Disabled(t *testing.T) {
	w, body := newTestServer(t, db.Disabled{}).do(t, http.MethodGet, "/api/products", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database not configured", body["detail"])
}

func TestListCategories(t *testing.T) {
	s, _ := newSQLServer(t)

	w, body := s.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"all", "creator", "gaming", "minimal", "productivity", "streaming"}, body["categories"])

	w, _ = newTestServer(t, db.Disabled{}).do(t, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCategoryList(t *testing.T) {
	assert.Equal(t, []string{"all"}, categoryList(nil))
	assert.Equal(t, []string{"all", "a", "b"}, categoryList([]string{"b", "all", "a", "b", ""}))
}

func TestCreateOrder(t *testing.T) {
	s, store := newSQLServer(t)

	w, body := s.do(t, http.MethodPost, "/api/orders", validOrder)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	order, err := store.FindOrder(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "p1", order.Items[0].ProductID)
	assert.Equal(t, "Retro Gamer Setup", order.Items[0].Title)
	assert.Equal(t, 699.0, order.Items[0].Price)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "Ann", order.Customer.Name)
	assert.Equal(t, "ann@example.com", order.Customer.Email)
	assert.Equal(t, "gift wrap", order.Note)
}

func TestCreateOrder_EmptyTextAccepted(t *testing.T) {
	s, store := newSQLServer(t)

	body := `{"items":[{"product_id":"","title":"","price":1,"quantity":1}],` +
		`"customer":{"name":"","email":"ann@example.com"}}`
	w, resp := s.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := resp["id"].(string)
	require.NotEmpty(t, id)

	order, err := store.FindOrder(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Empty(t, order.Items[0].ProductID)
	assert.Empty(t, order.Items[0].Title)
	assert.Empty(t, order.Customer.Name)
}

func TestCreateOrder_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
		wantField  string
	}{
		{
			name:       "empty items",
			body:       `{"items":[],"customer":{"name":"Ann","email":"ann@example.com"}}`,
			wantDetail: "Order must contain at least one item",
		},
		{
			name:       "bad email",
			body:       `{"items":[{"product_id":"p1","title":"t","price":1,"quantity":1}],"customer":{"name":"Ann","email":"not-an-email"}}`,
			wantDetail: "Request validation failed",
			wantField:  "customer.email",
		},
		{
			name:       "zero quantity",
			body:       `{"items":[{"product_id":"p1","title":"t","price":1,"quantity":0}],"customer":{"name":"Ann","email":"ann@example.com"}}`,
			wantDetail: "Request validation failed",
			wantField:  "items[0].quantity",
		},
		{
			name:       "wrong type",
			body:       `{"items":[{"product_id":"p1","title":"t","price":1,"quantity":"two"}],"customer":{"name":"Ann","email":"ann@example.com"}}`,
			wantDetail: "Request validation failed",
			wantField:  "quantity",
		},
		{
			name:       "missing product id",
			body:       `{"items":[{"title":"t","price":1,"quantity":1}],"customer":{"name":"Ann","email":"ann@example.com"}}`,
			wantDetail: "Request validation failed",
			wantField:  "items[0].product_id",
		},
		{
			name:       "missing customer name",
			body:       `{"items":[{"product_id":"p1","title":"t","price":1,"quantity":1}],"customer":{"email":"ann@example.com"}}`,
			wantDetail: "Request validation failed",
			wantField:  "customer.name",
		},
		{
			name:       "malformed json",
			body:       `{"items":`,
			wantDetail: "Invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newSQLServer(t)

			w, body := s.do(t, http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantDetail, body["detail"])
			if tt.wantField != "" {
				errs := body["errors"].([]any)
				require.NotEmpty(t, errs)
				assert.Contains(t, errs[0].(map[string]any)["field"], tt.wantField)
			}

			n, err := store.CountOrders(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestCreateOrder_Disabled(t *testing.T) {
	w, body := newTestServer(t, db.Disabled{}).do(t, http.MethodPost, "/api/orders", validOrder)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database not configured", body["detail"])
}

func TestSchema(t *testing.T) {
	w, body := newTestServer(t, db.Disabled{}).do(t, http.MethodGet, "/schema", "")

	assert.Equal(t, http.StatusOK, w.Code)
	content := body["content"].(string)
	assert.Contains(t, content, `"product"`)
	assert.Contains(t, content, `"email"`)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, db.Disabled{})

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://shop.test")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://shop.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer(t, db.Disabled{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
