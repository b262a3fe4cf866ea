package handlers

import (
	"net/http"

	"worksite/internal/common"
	"worksite/internal/models"
	"worksite/internal/services"

	"github.com/labstack/echo/v4"
)

// WorkerTypesHandlers handles worker type related HTTP requests
type WorkerTypesHandlers struct {
	siteService services.SiteService
}

func NewWorkerTypesHandlers(siteService services.SiteService) *WorkerTypesHandlers {
	return &WorkerTypesHandlers{
		siteService: siteService,
	}
}

type createWorkerTypeRequest struct {
	Name      string  `json:"name"`
	DailyRate float64 `json:"daily_rate"`
}

// CreateWorkerType defines a new labor category for a site
func (h *WorkerTypesHandlers) CreateWorkerType(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	siteID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req createWorkerTypeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	workerType := &models.WorkerType{
		SiteID:    siteID,
		Name:      req.Name,
		DailyRate: req.DailyRate,
	}
	if err := h.siteService.CreateWorkerType(ctx, workerType, actor, common.GetRequestMetaFromContext(ctx)); err != nil {
		return recordErrorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, workerType)
}

// ListWorkerTypes lists the labor categories of a site
func (h *WorkerTypesHandlers) ListWorkerTypes(c echo.Context) error {
	ctx := c.Request().Context()

	siteID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	activeOnly := c.QueryParam("include_inactive") != "true"
	workerTypes, err := h.siteService.ListWorkerTypes(ctx, siteID, activeOnly)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve worker types")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"site_id": siteID,
		"data":    workerTypes,
	})
}
