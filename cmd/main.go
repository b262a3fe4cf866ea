package main

import (
	"log"
	"time"

	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"worksite/internal/caching"
	"worksite/internal/config"
	"worksite/internal/handlers"
	"worksite/internal/jobs"
	"worksite/internal/jobs/background"
	"worksite/internal/middleware"
	"worksite/internal/models"
	"worksite/internal/repositories"
	"worksite/internal/services"
	"worksite/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create repositories
	recordsRepo := repositories.NewDailyRecordsRepo(pool)
	correctionsRepo := repositories.NewCorrectionsRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)
	sitesRepo := repositories.NewSitesRepo(pool)
	workerTypesRepo := repositories.NewWorkerTypesRepo(pool)
	usersRepo := repositories.NewUsersRepo(pool)
	projectsRepo := repositories.NewProjectsRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Create services
	clock := clockwork.NewRealClock()
	auditSvc := services.NewAuditService(auditLogsRepo, clock)
	siteSvc := services.NewSiteService(sitesRepo, workerTypesRepo, cacheSvc, auditSvc)
	authzSvc := services.NewAuthzService(sitesRepo, cacheSvc)
	recordSvc := services.NewRecordService(recordsRepo, correctionsRepo, siteSvc, authzSvc, auditSvc, clock)

	// Create handlers
	recordHandlers := handlers.NewDailyRecordsHandlers(recordSvc)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	siteHandlers := handlers.NewSitesHandlers(siteSvc)
	workerTypeHandlers := handlers.NewWorkerTypesHandlers(siteSvc)
	directoryHandlers := handlers.NewDirectoryHandlers(usersRepo, projectsRepo)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	autoLock := jobs.NewRecordAutoLock(recordSvc, cfg.AutoLockAfterDays)
	scheduler := background.NewJobScheduler(autoLock, time.Duration(cfg.AutoLockIntervalMinutes)*time.Minute)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())

	// Health endpoints are unauthenticated
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTMiddleware(cfg.JWTSecret))
	v1.Use(middleware.RequestProvenance())

	// Daily records
	v1.POST("/records", recordHandlers.CreateRecord,
		middleware.RequireRole(models.RoleSupervisor, models.RoleSiteAdmin, models.RoleSuperAdmin))
	v1.GET("/records", recordHandlers.ListRecords)
	v1.GET("/records/:id", recordHandlers.GetRecord)
	v1.PUT("/records/:id", recordHandlers.CorrectRecord,
		middleware.RequireRole(models.RoleSupervisor, models.RoleSiteAdmin, models.RoleSuperAdmin))
	v1.PUT("/records/:id/lock", recordHandlers.LockRecord,
		middleware.RequireRole(models.RoleSiteAdmin, models.RoleSuperAdmin))
	v1.GET("/records/:id/corrections", recordHandlers.ListCorrections)

	// Audit trail, admin only
	adminOnly := middleware.RequireRole(models.RoleSiteAdmin, models.RoleSuperAdmin)
	v1.GET("/audit-logs", auditHandlers.ListAuditLogs, adminOnly)
	v1.GET("/audit-logs/users/:userId", auditHandlers.GetUserActivity, adminOnly)
	v1.GET("/audit-logs/:table/:recordId", auditHandlers.GetEntityHistory, adminOnly)
	v1.GET("/audit-logs/entry/:id", auditHandlers.GetAuditLog, adminOnly)

	// Sites and worker types
	v1.POST("/sites", siteHandlers.CreateSite, adminOnly)
	v1.GET("/sites", siteHandlers.ListSites)
	v1.GET("/sites/:id", siteHandlers.GetSite)
	v1.POST("/sites/:id/worker-types", workerTypeHandlers.CreateWorkerType, adminOnly)
	v1.GET("/sites/:id/worker-types", workerTypeHandlers.ListWorkerTypes)

	// Directory listings for admin tooling
	v1.GET("/users", directoryHandlers.ListUsers, adminOnly)
	v1.GET("/users/:id", directoryHandlers.GetUser, adminOnly)
	v1.GET("/projects", directoryHandlers.ListProjects, adminOnly)
	v1.GET("/projects/:id", directoryHandlers.GetProject, adminOnly)

	log.Fatal(e.Start(":" + cfg.Port))
}
