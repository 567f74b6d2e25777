package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diyor-ux/star/internal/repository"
)

type fakeProductStore struct {
	listGot  repository.ProductFilter
	rows     []repository.ProductRow
	total    int64
	created  []repository.NewProduct
	getErr   error
	delErr   error
	lowStock []repository.LowStockRow
}

func (f *fakeProductStore) List(_ context.Context, fl repository.ProductFilter) ([]repository.ProductRow, int64, error) {
	f.listGot = fl
	return f.rows, f.total, nil
}

func (f *fakeProductStore) GetActive(_ context.Context, id uint64) (repository.ProductRow, error) {
	if f.getErr != nil {
		return repository.ProductRow{}, f.getErr
	}
	return repository.ProductRow{ID: id, Name: "Beans"}, nil
}

func (f *fakeProductStore) Create(_ context.Context, np repository.NewProduct) (uint64, error) {
	f.created = append(f.created, np)
	return 1, nil
}

func (f *fakeProductStore) Update(_ context.Context, _ uint64, _ repository.ProductPatch) error {
	return nil
}

func (f *fakeProductStore) Deactivate(_ context.Context, _ uint64) error { return f.delErr }

func (f *fakeProductStore) ListLowStock(_ context.Context) ([]repository.LowStockRow, error) {
	return f.lowStock, nil
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string, params ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	require.NoError(t, h(c))

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestProductList(t *testing.T) {
	store := &fakeProductStore{
		rows: []repository.ProductRow{
			{ID: 1, Name: "Beans", Price: decimal.RequireFromString("12.50"), Stock: 10},
		},
		total: 45,
	}
	h := &ProductHandler{Products: store}

	rec, out := doRequest(t, h.List, http.MethodGet,
		"/api/products?category_id=4&featured=true&search=bean&page=2&limit=20", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, uint64(4), store.listGot.CategoryID)
	assert.True(t, store.listGot.Featured)
	assert.Equal(t, "bean", store.listGot.Search)
	assert.Equal(t, 2, store.listGot.Page)

	pg := out["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pg["page"])
	assert.EqualValues(t, 20, pg["limit"])
	assert.EqualValues(t, 45, pg["total"])
	assert.EqualValues(t, 3, pg["pages"])
}

func TestProductListLimitCap(t *testing.T) {
	store := &fakeProductStore{}
	h := &ProductHandler{Products: store}

	rec, _ := doRequest(t, h.List, http.MethodGet, "/api/products?limit=5000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, store.listGot.Limit)
}

func TestProductGetNotFound(t *testing.T) {
	store := &fakeProductStore{getErr: repository.ErrNotFound}
	h := &ProductHandler{Products: store}

	rec, out := doRequest(t, h.Get, http.MethodGet, "/api/products/5", "", "id", "5")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", out["error"])
}

func TestProductCreateValidation(t *testing.T) {
	store := &fakeProductStore{}
	h := &ProductHandler{Products: store}

	t.Run("missing required fields", func(t *testing.T) {
		rec, _ := doRequest(t, h.Create, http.MethodPost, "/api/products",
			`{"name":"Beans"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, store.created)
	})

	t.Run("negative price", func(t *testing.T) {
		rec, _ := doRequest(t, h.Create, http.MethodPost, "/api/products",
			`{"name":"Beans","price":"-1.00","category_id":4}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		rec, out := doRequest(t, h.Create, http.MethodPost, "/api/products",
			`{"name":"Beans","price":"12.50","category_id":4,"quantity_in_stock":10}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.EqualValues(t, 1, out["product_id"])
		require.Len(t, store.created, 1)
		assert.True(t, store.created[0].Price.Equal(decimal.RequireFromString("12.50")))
	})
}

func TestProductDeleteNotFound(t *testing.T) {
	store := &fakeProductStore{delErr: repository.ErrNotFound}
	h := &ProductHandler{Products: store}

	rec, _ := doRequest(t, h.Delete, http.MethodDelete, "/api/products/9", "", "id", "9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
