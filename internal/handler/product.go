package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Diyor-ux/star/internal/repository"
)

// ProductStore is the catalog access the product handlers need.
type ProductStore interface {
	List(ctx context.Context, f repository.ProductFilter) ([]repository.ProductRow, int64, error)
	GetActive(ctx context.Context, id uint64) (repository.ProductRow, error)
	Create(ctx context.Context, np repository.NewProduct) (uint64, error)
	Update(ctx context.Context, id uint64, p repository.ProductPatch) error
	Deactivate(ctx context.Context, id uint64) error
	ListLowStock(ctx context.Context) ([]repository.LowStockRow, error)
}

// ProductHandler serves the catalog: public reads, employee writes.
type ProductHandler struct {
	Products ProductStore
}

// List returns active products matching the query filters, wrapped in the
// standard data/pagination envelope.
func (h *ProductHandler) List(c echo.Context) error {
	page, limit := parsePageLimit(c)
	f := repository.ProductFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	}
	if v, err := strconv.ParseUint(c.QueryParam("category_id"), 10, 64); err == nil {
		f.CategoryID = v
	}
	if c.QueryParam("featured") == "true" {
		f.Featured = true
	}

	products, total, err := h.Products.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list products"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":       products,
		"pagination": newPagination(page, limit, total),
	})
}

// Get returns one active product.
func (h *ProductHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Products.GetActive(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load product"})
	}
	return c.JSON(http.StatusOK, p)
}

type productCreateRequest struct {
	CategoryID   uint64           `json:"category_id"`
	Name         string           `json:"name"`
	Description  *string          `json:"description"`
	Barcode      *string          `json:"barcode"`
	SKU          *string          `json:"sku"`
	Price        *decimal.Decimal `json:"price"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	Stock        uint32           `json:"quantity_in_stock"`
	ReorderLevel uint32           `json:"reorder_level"`
	ImageURL     *string          `json:"image_url"`
	IsFeatured   bool             `json:"is_featured"`
}

// Create inserts a product. Name, price and category are required; price
// must be non-negative.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Price == nil || req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, price and category_id are required"})
	}
	if req.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	np := repository.NewProduct{
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		Barcode:      req.Barcode,
		SKU:          req.SKU,
		Price:        *req.Price,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
		ImageURL:     req.ImageURL,
		IsFeatured:   req.IsFeatured,
	}
	if req.CostPrice != nil {
		np.CostPrice = *req.CostPrice
	}
	if req.TaxRate != nil {
		np.TaxRate = *req.TaxRate
	}

	id, err := h.Products.Create(c.Request().Context(), np)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product with this barcode or SKU already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"product_id": id})
}

type productUpdateRequest struct {
	CategoryID   *uint64          `json:"category_id"`
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Barcode      *string          `json:"barcode"`
	SKU          *string          `json:"sku"`
	Price        *decimal.Decimal `json:"price"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	Stock        *uint32          `json:"quantity_in_stock"`
	ReorderLevel *uint32          `json:"reorder_level"`
	Status       *string          `json:"status"`
	ImageURL     *string          `json:"image_url"`
	IsFeatured   *bool            `json:"is_featured"`
}

// Update applies a partial update; absent fields keep their stored values.
func (h *ProductHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Price != nil && req.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	err := h.Products.Update(c.Request().Context(), id, repository.ProductPatch{
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		Barcode:      req.Barcode,
		SKU:          req.SKU,
		Price:        req.Price,
		CostPrice:    req.CostPrice,
		TaxRate:      req.TaxRate,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
		Status:       req.Status,
		ImageURL:     req.ImageURL,
		IsFeatured:   req.IsFeatured,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product with this barcode or SKU already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product updated"})
}

// Delete soft-deletes a product. The row survives so historical
// reservation items keep a valid reference.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	if err := h.Products.Deactivate(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

// LowStock lists products at or below their reorder level.
func (h *ProductHandler) LowStock(c echo.Context) error {
	out, err := h.Products.ListLowStock(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list low stock products"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}
