package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/workbridge/ims-api/api/swagger"
	"github.com/workbridge/ims-api/internal/handler"
	"github.com/workbridge/ims-api/internal/middleware"
	"github.com/workbridge/ims-api/internal/repository"
	"github.com/workbridge/ims-api/internal/service"
	"github.com/workbridge/ims-api/pkg/cache"
	"github.com/workbridge/ims-api/pkg/config"
	"github.com/workbridge/ims-api/pkg/database"
	"github.com/workbridge/ims-api/pkg/logger"
	corsmiddleware "github.com/workbridge/ims-api/pkg/middleware/cors"
	reqidmiddleware "github.com/workbridge/ims-api/pkg/middleware/requestid"
	"github.com/workbridge/ims-api/pkg/notify"
	"github.com/workbridge/ims-api/pkg/storage"
)

// @title WorkBridge IMS API
// @version 1.0.0
// @description Internship and employee management backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logr.Sugar().Warnw("unknown timezone, falling back to UTC", "timezone", cfg.Timezone)
		location = time.UTC
	}

	fileStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	mailer := notify.NewMailer(cfg.SMTP)
	whatsapp := notify.NewWhatsApp(cfg.WhatsApp)

	adminRepo := repository.NewAdminRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	internRepo := repository.NewInternRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(adminRepo, teacherRepo, internRepo, employeeRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	internSvc := service.NewInternService(internRepo, batchRepo, attendanceRepo, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, batchRepo, nil, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, attendanceRepo, nil, logr)
	batchSvc := service.NewBatchService(batchRepo, internRepo, teacherRepo, attendanceRepo, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, internRepo, employeeRepo, batchRepo, teacherRepo, redisClient, location, cfg.Reports.CacheTTL, nil, logr)
	notificationSvc := service.NewNotificationService(attendanceRepo, mailer, whatsapp, logr)
	importSvc := service.NewBulkImportService(internRepo, batchRepo, employeeRepo, nil, logr)
	noticeSvc := service.NewNoticeService(noticeRepo, batchRepo, nil, logr)
	noteSvc := service.NewNoteService(noteRepo, batchRepo, fileStore, nil, logr)

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Intern:     handler.NewInternHandler(internSvc),
		Teacher:    handler.NewTeacherHandler(teacherSvc),
		Employee:   handler.NewEmployeeHandler(employeeSvc),
		Batch:      handler.NewBatchHandler(batchSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, notificationSvc, metricsSvc),
		Upload:     handler.NewUploadHandler(importSvc, metricsSvc, cfg.Uploads.MaxFileSizeBytes),
		Notice:     handler.NewNoticeHandler(noticeSvc),
		Note:       handler.NewNoteHandler(noteSvc, cfg.Uploads.MaxFileSizeBytes),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
