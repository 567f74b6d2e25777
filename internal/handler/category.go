package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diyor-ux/star/internal/repository"
)

// CategoryStore is the category access the handlers need.
type CategoryStore interface {
	ListActive(ctx context.Context) ([]repository.CategoryRow, error)
	Create(ctx context.Context, name string, description, imageURL *string, displayOrder uint32) (uint64, error)
	Update(ctx context.Context, id uint64, p repository.CategoryPatch) error
}

// CategoryHandler serves category reads (public) and writes (employee).
type CategoryHandler struct {
	Categories CategoryStore
}

// List returns active categories with their active-product counts.
func (h *CategoryHandler) List(c echo.Context) error {
	out, err := h.Categories.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list categories"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

type categoryCreateRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"image_url"`
	DisplayOrder uint32  `json:"display_order"`
}

// Create inserts a category.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryCreateRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	id, err := h.Categories.Create(c.Request().Context(), req.Name, req.Description, req.ImageURL, req.DisplayOrder)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create category"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"category_id": id})
}

type categoryUpdateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"image_url"`
	DisplayOrder *uint32 `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// Update applies a partial update to a category.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	var req categoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	err := h.Categories.Update(c.Request().Context(), id, repository.CategoryPatch{
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update category"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category updated"})
}
