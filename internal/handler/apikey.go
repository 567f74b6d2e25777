package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Diyor-ux/star/internal/repository"
)

// APIKeyStore provisions and lists service keys.
type APIKeyStore interface {
	Create(ctx context.Context, appName, key string, permissions *string) (uint64, error)
	List(ctx context.Context) ([]repository.APIKeyRow, error)
}

// APIKeyHandler serves admin-only API key provisioning. The full key value
// is returned exactly once, on creation; listings only show a prefix.
type APIKeyHandler struct {
	Keys APIKeyStore
}

type apiKeyCreateRequest struct {
	AppName     string  `json:"app_name"`
	Permissions *string `json:"permissions"`
}

// Create provisions a key for an application identity. The key material is
// two concatenated UUIDs with the dashes stripped.
func (h *APIKeyHandler) Create(c echo.Context) error {
	var req apiKeyCreateRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.AppName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "app_name is required"})
	}

	key := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	id, err := h.Keys.Create(c.Request().Context(), strings.TrimSpace(req.AppName), key, req.Permissions)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "API key for this application already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create API key"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"key_id":   id,
		"app_name": strings.TrimSpace(req.AppName),
		"api_key":  key,
	})
}

// List returns all keys with truncated key material.
func (h *APIKeyHandler) List(c echo.Context) error {
	out, err := h.Keys.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list API keys"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}
