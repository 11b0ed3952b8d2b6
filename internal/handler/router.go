package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/middleware"
	"github.com/workbridge/ims-api/internal/models"
	"github.com/workbridge/ims-api/internal/service"
)

// Handlers groups every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Intern     *InternHandler
	Teacher    *TeacherHandler
	Employee   *EmployeeHandler
	Batch      *BatchHandler
	Attendance *AttendanceHandler
	Upload     *UploadHandler
	Notice     *NoticeHandler
	Note       *NoteHandler
}

// RegisterRoutes mounts the API under prefix. Authentication endpoints are
// public; everything else requires a token, with role checks per route.
func RegisterRoutes(r *gin.Engine, prefix string, authService *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/admin/register", h.Auth.RegisterAdmin)
		auth.POST("/admin/login", h.Auth.Login(models.RoleAdmin))
		auth.POST("/teacher/login", h.Auth.Login(models.RoleTeacher))
		auth.POST("/intern/login", h.Auth.Login(models.RoleIntern))
		auth.POST("/employee/login", h.Auth.Login(models.RoleEmployee))
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.GET("/auth/me", h.Auth.Me)

	interns := protected.Group("/interns")
	{
		interns.POST("", middleware.RBAC(models.RoleAdmin), h.Intern.Create)
		interns.GET("", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Intern.List)
		interns.DELETE("", middleware.RBAC(models.RoleAdmin), h.Intern.DeleteAll)
		interns.GET("/:id", middleware.RBAC(models.RoleAdmin, models.RoleTeacher, middleware.Self), h.Intern.Get)
		interns.PUT("/:id", middleware.RBAC(models.RoleAdmin), h.Intern.Update)
		interns.DELETE("/:id", middleware.RBAC(models.RoleAdmin), h.Intern.Delete)
		interns.POST("/:id/batches/:batchId", middleware.RBAC(models.RoleAdmin), h.Intern.AssignBatch)
		interns.DELETE("/:id/batches/:batchId", middleware.RBAC(models.RoleAdmin), h.Intern.UnassignBatch)
	}

	teachers := protected.Group("/teachers")
	{
		teachers.POST("", middleware.RBAC(models.RoleAdmin), h.Teacher.Create)
		teachers.GET("", middleware.RBAC(models.RoleAdmin), h.Teacher.List)
		teachers.GET("/:id", middleware.RBAC(models.RoleAdmin, middleware.Self), h.Teacher.Get)
		teachers.PUT("/:id", middleware.RBAC(models.RoleAdmin), h.Teacher.Update)
		teachers.DELETE("/:id", middleware.RBAC(models.RoleAdmin), h.Teacher.Delete)
		teachers.GET("/:id/batches", middleware.RBAC(models.RoleAdmin, middleware.Self), h.Teacher.Batches)
		teachers.POST("/:id/batches/:batchId", middleware.RBAC(models.RoleAdmin), h.Teacher.AssignBatch)
		teachers.DELETE("/:id/batches/:batchId", middleware.RBAC(models.RoleAdmin), h.Teacher.UnassignBatch)
		teachers.GET("/:id/rollup", middleware.RBAC(models.RoleAdmin, middleware.Self), h.Teacher.Rollup)
		teachers.GET("/:id/rollups", middleware.RBAC(models.RoleAdmin, middleware.Self), h.Teacher.Rollups)
	}

	employees := protected.Group("/employees")
	{
		employees.POST("", middleware.RBAC(models.RoleAdmin), h.Employee.Create)
		employees.GET("", middleware.RBAC(models.RoleAdmin), h.Employee.List)
		employees.POST("/upload", middleware.RBAC(models.RoleAdmin), h.Upload.RegisterEmployees)
		employees.POST("/attendance", middleware.RBAC(models.RoleAdmin), h.Attendance.BulkMarkEmployees)
		employees.GET("/:id", middleware.RBAC(models.RoleAdmin, middleware.Self), h.Employee.Get)
		employees.PUT("/:id", middleware.RBAC(models.RoleAdmin), h.Employee.Update)
		employees.DELETE("/:id", middleware.RBAC(models.RoleAdmin), h.Employee.Delete)
	}

	batches := protected.Group("/batches")
	{
		batches.POST("", middleware.RBAC(models.RoleAdmin), h.Batch.Create)
		batches.GET("", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Batch.List)
		batches.DELETE("", middleware.RBAC(models.RoleAdmin), h.Batch.DeleteAll)
		batches.GET("/:id", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Batch.Get)
		batches.PUT("/:id", middleware.RBAC(models.RoleAdmin), h.Batch.Update)
		batches.PATCH("/:id/status", middleware.RBAC(models.RoleAdmin), h.Batch.UpdateStatus)
		batches.DELETE("/:id", middleware.RBAC(models.RoleAdmin), h.Batch.Delete)
		batches.GET("/:id/day", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Batch.DayView)
		batches.POST("/:id/attendance", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Attendance.BulkMarkInterns)
		batches.GET("/:id/interns", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Intern.ListByBatch)
		batches.DELETE("/:id/interns", middleware.RBAC(models.RoleAdmin), h.Intern.DeleteByBatch)
		batches.POST("/:id/interns/upload", middleware.RBAC(models.RoleAdmin), h.Upload.RegisterInterns)
		batches.POST("/:id/notices", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Notice.Create)
		batches.GET("/:id/notices", h.Notice.ListByBatch)
		batches.POST("/:id/notes", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Note.Create)
		batches.GET("/:id/notes", h.Note.ListByBatch)
	}

	notices := protected.Group("/notices")
	{
		notices.PUT("/:id", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Notice.Update)
		notices.DELETE("/:id", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Notice.Delete)
	}

	notes := protected.Group("/notes")
	{
		notes.GET("/:id", h.Note.Get)
		notes.DELETE("/:id", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Note.Delete)
	}

	attendance := protected.Group("/attendance")
	{
		attendance.POST("/clock-in", middleware.RBAC(models.RoleEmployee), h.Attendance.ClockIn)
		attendance.POST("/clock-out", middleware.RBAC(models.RoleEmployee), h.Attendance.ClockOut)
		attendance.GET("/me", h.Attendance.MyLedger)
		attendance.DELETE("/interns", middleware.RBAC(models.RoleAdmin), h.Attendance.ClearAll(models.KindIntern))
		attendance.DELETE("/employees", middleware.RBAC(models.RoleAdmin), h.Attendance.ClearAll(models.KindEmployee))
		attendance.POST("/interns/:id", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Attendance.Mark(models.KindIntern))
		attendance.GET("/interns/:id", middleware.RBAC(models.RoleAdmin, models.RoleTeacher, middleware.Self), h.Attendance.Ledger(models.KindIntern))
		attendance.DELETE("/interns/:id", middleware.RBAC(models.RoleAdmin), h.Attendance.ClearLedger(models.KindIntern))
		attendance.POST("/employees/:id", middleware.RBAC(models.RoleAdmin), h.Attendance.Mark(models.KindEmployee))
		attendance.GET("/employees/:id", middleware.RBAC(models.RoleAdmin, middleware.Self), h.Attendance.Ledger(models.KindEmployee))
		attendance.DELETE("/employees/:id", middleware.RBAC(models.RoleAdmin), h.Attendance.ClearLedger(models.KindEmployee))
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/:kind", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Attendance.Report)
		reports.GET("/:kind/export", middleware.RBAC(models.RoleAdmin, models.RoleTeacher), h.Attendance.ExportReport)
	}
}
