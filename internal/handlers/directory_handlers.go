package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"worksite/internal/common"
	"worksite/internal/repositories"

	"github.com/labstack/echo/v4"
)

// DirectoryHandlers serves the user and project listings admins use when
// filtering records and reading the audit trail.
type DirectoryHandlers struct {
	usersRepo    repositories.UsersRepository
	projectsRepo repositories.ProjectsRepository
}

func NewDirectoryHandlers(usersRepo repositories.UsersRepository, projectsRepo repositories.ProjectsRepository) *DirectoryHandlers {
	return &DirectoryHandlers{
		usersRepo:    usersRepo,
		projectsRepo: projectsRepo,
	}
}

// ListUsers lists users, optionally filtered by role
func (h *DirectoryHandlers) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, limit = common.ValidatePaginationParams(page, limit)

	users, err := h.usersRepo.List(ctx, c.QueryParam("role"), limit, (page-1)*limit)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  users,
		"page":  page,
		"limit": limit,
	})
}

// GetUser returns one user
func (h *DirectoryHandlers) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.usersRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to retrieve user")
	}

	return c.JSON(http.StatusOK, user)
}

// ListProjects lists projects
func (h *DirectoryHandlers) ListProjects(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, limit = common.ValidatePaginationParams(page, limit)

	projects, err := h.projectsRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve projects")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  projects,
		"page":  page,
		"limit": limit,
	})
}

// GetProject returns one project
func (h *DirectoryHandlers) GetProject(c echo.Context) error {
	ctx := c.Request().Context()

	projectID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	project, err := h.projectsRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "Project")
		}
		return common.SendServerError(c, "Failed to retrieve project")
	}

	return c.JSON(http.StatusOK, project)
}
