package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"arcanum/internal/models"
	"arcanum/internal/services"
)

type handler struct {
	svcs   *services.Services
	logger *zap.Logger
}

func newHandler(svcs *services.Services, logger *zap.Logger) *handler {
	return &handler{svcs: svcs, logger: logger}
}

func (h *handler) register(e *echo.Echo) {
	e.GET("/healthz", h.health)

	api := e.Group("/api")
	api.GET("/catalog", h.catalog)
	api.GET("/items", h.listItems)
	api.GET("/items/search", h.searchItems)
	api.GET("/items/:id", h.getItem)
	api.DELETE("/items/:id", h.deleteItem)
	api.POST("/items/generate", h.generateItem)
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, models.DefaultCatalog())
}

func (h *handler) listItems(c echo.Context) error {
	limit, offset := pageParams(c)
	items := h.svcs.Items.List(c.Request().Context(), limit, offset)
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *handler) searchItems(c echo.Context) error {
	limit, offset := pageParams(c)
	items := h.svcs.Items.Search(c.Request().Context(), c.QueryParam("q"), limit, offset)
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// getItem serves the detail and permalink views; it is the only read that
// returns the full image payload.
func (h *handler) getItem(c echo.Context) error {
	item := h.svcs.Items.GetByID(c.Request().Context(), c.Param("id"))
	if item == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "item not found"})
	}
	detail, err := itemDetail(item)
	if err != nil {
		h.logger.Error("failed to decode stored item", zap.String("id", item.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "item is unreadable"})
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *handler) deleteItem(c echo.Context) error {
	err := h.svcs.Items.Remove(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrStoreNotConfigured) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "item store is not configured"})
		}
		h.logger.Error("failed to delete item", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) generateItem(c echo.Context) error {
	var settings models.GenerationSettings
	if err := c.Bind(&settings); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	outcome, err := h.svcs.Generation.Generate(c.Request().Context(), settings, c.RealIP(), nil)
	if err != nil {
		var limited *services.RateLimitError
		switch {
		case errors.As(err, &limited):
			c.Response().Header().Set("Retry-After", strconv.Itoa(limited.RetryAfterSeconds))
			return c.JSON(http.StatusTooManyRequests, map[string]any{
				"error":             "too many generations, slow down",
				"retryAfterSeconds": limited.RetryAfterSeconds,
			})
		case errors.Is(err, services.ErrGenerationNotConfigured):
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "generation is not configured"})
		default:
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, outcome)
}

// itemDetailResponse is the full-record payload for detail/permalink views.
type itemDetailResponse struct {
	ID          string          `json:"id"`
	CreatedAt   string          `json:"createdAt"`
	Item        models.ItemData `json:"item"`
	ImagePrompt string          `json:"imagePrompt,omitempty"`
	ItemCard    string          `json:"itemCard,omitempty"`
	Image       string          `json:"image,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
}

func itemDetail(record *models.MagicItem) (*itemDetailResponse, error) {
	item, err := record.Item()
	if err != nil {
		return nil, err
	}
	return &itemDetailResponse{
		ID:          record.ID,
		CreatedAt:   record.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Item:        item,
		ImagePrompt: record.ImagePrompt,
		ItemCard:    record.ItemCard,
		Image:       record.Image,
		Thumbnail:   record.Thumbnail,
	}, nil
}

func pageParams(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
