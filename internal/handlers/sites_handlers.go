package handlers

import (
	"net/http"
	"strconv"

	"worksite/internal/common"
	"worksite/internal/models"
	"worksite/internal/services"

	"github.com/labstack/echo/v4"
)

// SitesHandlers handles site related HTTP requests
type SitesHandlers struct {
	siteService services.SiteService
}

func NewSitesHandlers(siteService services.SiteService) *SitesHandlers {
	return &SitesHandlers{
		siteService: siteService,
	}
}

type createSiteRequest struct {
	ProjectID     string  `json:"project_id"`
	Name          string  `json:"name"`
	Location      *string `json:"location"`
	ClientCompany *string `json:"client_company"`
}

// CreateSite registers a new work site
func (h *SitesHandlers) CreateSite(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req createSiteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	projectID, err := common.ValidateUUID(req.ProjectID, "project_id")
	if err != nil {
		return common.SendValidationError(c, "project_id", err.Error())
	}

	site := &models.Site{
		ProjectID:     projectID,
		Name:          req.Name,
		Location:      req.Location,
		ClientCompany: req.ClientCompany,
		Status:        models.SiteStatusActive,
	}
	if err := h.siteService.CreateSite(ctx, site, actor, common.GetRequestMetaFromContext(ctx)); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, site)
}

// GetSite returns one site
func (h *SitesHandlers) GetSite(c echo.Context) error {
	ctx := c.Request().Context()

	siteID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	site, err := h.siteService.GetSite(ctx, siteID)
	if err != nil {
		return recordErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, site)
}

// ListSites returns a paginated site listing
func (h *SitesHandlers) ListSites(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, limit = common.ValidatePaginationParams(page, limit)

	sites, err := h.siteService.ListSites(ctx, limit, (page-1)*limit)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve sites")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  sites,
		"page":  page,
		"limit": limit,
	})
}
