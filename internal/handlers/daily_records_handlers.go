package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"worksite/internal/common"
	"worksite/internal/models"
	"worksite/internal/services"

	"github.com/labstack/echo/v4"
)

// DailyRecordsHandlers handles daily record related HTTP requests
type DailyRecordsHandlers struct {
	recordService services.RecordService
}

func NewDailyRecordsHandlers(recordService services.RecordService) *DailyRecordsHandlers {
	return &DailyRecordsHandlers{
		recordService: recordService,
	}
}

type createRecordRequest struct {
	SiteID         string              `json:"site_id"`
	RecordDate     string              `json:"record_date"`
	WorkerCounts   map[string]int      `json:"worker_counts"`
	PaymentsMade   map[string]float64  `json:"payments_made"`
	ProductionData models.JSONB        `json:"production_data"`
	WorkerNames    map[string][]string `json:"worker_names"`
	Notes          *string             `json:"notes"`
}

type correctRecordRequest struct {
	Patch            models.RecordPatch `json:"patch"`
	CorrectionReason string             `json:"correction_reason"`
}

// CreateRecord creates the daily record for a site and date
func (h *DailyRecordsHandlers) CreateRecord(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	siteID, err := common.ValidateUUID(req.SiteID, "site_id")
	if err != nil {
		return common.SendValidationError(c, "site_id", err.Error())
	}
	recordDate, err := common.ParseDate(req.RecordDate, "record_date")
	if err != nil {
		return common.SendValidationError(c, "record_date", err.Error())
	}

	record, err := h.recordService.CreateRecord(ctx, actor, common.GetRequestMetaFromContext(ctx), &services.CreateRecordInput{
		SiteID:         siteID,
		RecordDate:     recordDate,
		WorkerCounts:   req.WorkerCounts,
		PaymentsMade:   req.PaymentsMade,
		ProductionData: req.ProductionData,
		WorkerNames:    req.WorkerNames,
		Notes:          req.Notes,
	})
	if err != nil {
		return recordErrorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, record)
}

// GetRecord returns one record with its correction history
func (h *DailyRecordsHandlers) GetRecord(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	recordID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	record, err := h.recordService.GetRecord(ctx, actor, recordID)
	if err != nil {
		return recordErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, record)
}

// ListRecords returns a filtered, paginated record listing. Supervisors only
// see records for their assigned sites.
func (h *DailyRecordsHandlers) ListRecords(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	filter := &models.RecordSearchFilter{}
	if siteID := c.QueryParam("site_id"); siteID != "" {
		id, err := common.ValidateUUID(siteID, "site_id")
		if err != nil {
			return common.SendValidationError(c, "site_id", err.Error())
		}
		filter.SiteID = &id
	}
	if supervisorID := c.QueryParam("supervisor_id"); supervisorID != "" {
		id, err := common.ValidateUUID(supervisorID, "supervisor_id")
		if err != nil {
			return common.SendValidationError(c, "supervisor_id", err.Error())
		}
		filter.SupervisorID = &id
	}
	if projectID := c.QueryParam("project_id"); projectID != "" {
		id, err := common.ValidateUUID(projectID, "project_id")
		if err != nil {
			return common.SendValidationError(c, "project_id", err.Error())
		}
		filter.ProjectID = &id
	}
	filter.ClientCompany = c.QueryParam("client_company")

	if startDate := c.QueryParam("start_date"); startDate != "" {
		date, err := common.ParseDate(startDate, "start_date")
		if err != nil {
			return common.SendValidationError(c, "start_date", err.Error())
		}
		filter.StartDate = &date
	}
	if endDate := c.QueryParam("end_date"); endDate != "" {
		date, err := common.ParseDate(endDate, "end_date")
		if err != nil {
			return common.SendValidationError(c, "end_date", err.Error())
		}
		filter.EndDate = &date
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		if err := common.ValidateDateRange(*filter.StartDate, *filter.EndDate); err != nil {
			return common.SendValidationError(c, "date_range", err.Error())
		}
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, limit = common.ValidatePaginationParams(page, limit)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	result, err := h.recordService.ListRecords(ctx, actor, filter)
	if err != nil {
		return recordErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// CorrectRecord applies a same-day correction to a record
func (h *DailyRecordsHandlers) CorrectRecord(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	recordID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req correctRecordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	record, err := h.recordService.CorrectRecord(ctx, actor, common.GetRequestMetaFromContext(ctx), recordID, &req.Patch, req.CorrectionReason)
	if err != nil {
		return recordErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, record)
}

// LockRecord finalizes a record so no further corrections are possible
func (h *DailyRecordsHandlers) LockRecord(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	recordID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	record, err := h.recordService.LockRecord(ctx, actor, common.GetRequestMetaFromContext(ctx), recordID)
	if err != nil {
		return recordErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, record)
}

// ListCorrections returns the correction history for a record, newest first
func (h *DailyRecordsHandlers) ListCorrections(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := common.GetActorFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	recordID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	record, err := h.recordService.GetRecord(ctx, actor, recordID)
	if err != nil {
		return recordErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"record_id":   record.ID,
		"corrections": record.Corrections,
	})
}

// recordErrorResponse translates service sentinel errors into HTTP responses
func recordErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		return common.SendNotFoundError(c, "Record")
	case errors.Is(err, services.ErrSiteNotFound):
		return common.SendNotFoundError(c, "Site")
	case errors.Is(err, services.ErrUnauthorized):
		return common.SendForbiddenError(c)
	case errors.Is(err, services.ErrDuplicateRecord):
		return common.SendConflictError(c, err.Error())
	case errors.Is(err, services.ErrSiteInactive),
		errors.Is(err, services.ErrInvalidWorkerType),
		errors.Is(err, services.ErrNegativeValue),
		errors.Is(err, services.ErrFutureDate),
		errors.Is(err, services.ErrNotSameDay),
		errors.Is(err, services.ErrRecordLocked),
		errors.Is(err, services.ErrAlreadyLocked),
		errors.Is(err, services.ErrMissingReason),
		errors.Is(err, services.ErrEmptyPatch),
		errors.Is(err, services.ErrWorkerTypeExists):
		return common.SendClientError(c, err.Error())
	default:
		return common.SendServerError(c, "Internal server error")
	}
}
