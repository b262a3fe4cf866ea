package handlers

import (
	"net/http"
	"strconv"
	"time"

	"worksite/internal/common"
	"worksite/internal/models"
	"worksite/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers handles audit trail related HTTP requests
type AuditLogsHandlers struct {
	auditService services.AuditService
}

func NewAuditLogsHandlers(auditService services.AuditService) *AuditLogsHandlers {
	return &AuditLogsHandlers{
		auditService: auditService,
	}
}

// ListAuditLogs retrieves audit entries with filtering and pagination
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	ctx := c.Request().Context()

	filters := &models.AuditLogFilters{}
	if table := c.QueryParam("table"); table != "" {
		filters.TableName = &table
	}
	if recordID := c.QueryParam("record_id"); recordID != "" {
		filters.RecordID = &recordID
	}
	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}
	if userID := c.QueryParam("user_id"); userID != "" {
		uid, err := common.ValidateUUID(userID, "user_id")
		if err != nil {
			return common.SendValidationError(c, "user_id", err.Error())
		}
		filters.UserID = &uid
	}
	if startDate := c.QueryParam("start_date"); startDate != "" {
		if sd, err := time.Parse(time.RFC3339, startDate); err == nil {
			filters.StartDate = &sd
		}
	}
	if endDate := c.QueryParam("end_date"); endDate != "" {
		if ed, err := time.Parse(time.RFC3339, endDate); err == nil {
			filters.EndDate = &ed
		}
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	filters.Limit = limit
	filters.Offset = offset

	logs, err := h.auditService.ListAuditLogs(ctx, filters)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   logs,
		"total":  len(logs),
		"limit":  filters.Limit,
		"offset": filters.Offset,
	})
}

// GetAuditLog retrieves a single audit entry
func (h *AuditLogsHandlers) GetAuditLog(c echo.Context) error {
	ctx := c.Request().Context()

	auditLogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "id is not a valid UUID")
	}

	entry, err := h.auditService.GetAuditLog(ctx, auditLogID)
	if err != nil {
		return common.SendNotFoundError(c, "Audit log")
	}

	return c.JSON(http.StatusOK, entry)
}

// GetEntityHistory retrieves the audit history of one entity
func (h *AuditLogsHandlers) GetEntityHistory(c echo.Context) error {
	ctx := c.Request().Context()

	tableName := c.Param("table")
	recordID := c.Param("recordId")
	if err := common.ValidateRequiredString(tableName, "table"); err != nil {
		return common.SendValidationError(c, "table", err.Error())
	}
	if err := common.ValidateRequiredString(recordID, "recordId"); err != nil {
		return common.SendValidationError(c, "recordId", err.Error())
	}

	limit, offset := historyPagination(c)
	logs, err := h.auditService.GetEntityHistory(ctx, tableName, recordID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve entity history")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"table":     tableName,
		"record_id": recordID,
		"history":   logs,
	})
}

// GetUserActivity retrieves the audit entries produced by one user
func (h *AuditLogsHandlers) GetUserActivity(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := common.ValidateUUID(c.Param("userId"), "userId")
	if err != nil {
		return common.SendValidationError(c, "userId", err.Error())
	}

	limit, offset := historyPagination(c)
	logs, err := h.auditService.GetUserActivity(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve user activity")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":  userID,
		"activity": logs,
	})
}

func historyPagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
