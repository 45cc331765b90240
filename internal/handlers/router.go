package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	courseHandler     *CourseHandler
	categoryHandler   *CategoryHandler
	enrollmentHandler *EnrollmentHandler
	progressHandler   *ProgressHandler
	activityHandler   *ActivityHandler
	adminHandler      *AdminHandler
	authMiddleware    *JWTAuthMiddleware
	uploadDir         string
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger, uploadDir string) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger, uploadDir),
		courseHandler:     NewCourseHandler(serviceManager.Course(), serviceManager.Lesson(), logger),
		categoryHandler:   NewCategoryHandler(serviceManager.Category(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		progressHandler:   NewProgressHandler(serviceManager.Progress(), logger),
		activityHandler:   NewActivityHandler(serviceManager.Activity(), logger),
		adminHandler:      NewAdminHandler(serviceManager.Admin(), serviceManager.Course(), serviceManager.Report(), logger),
		authMiddleware:    NewJWTAuthMiddleware(serviceManager.Auth()),
		uploadDir:         uploadDir,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	// Uploaded avatars are served statically
	router.Static("/uploads", hm.uploadDir)

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
	}

	v1.GET("/categories", hm.categoryHandler.ListCategories)
	v1.GET("/categories/:id", hm.categoryHandler.GetCategory)

	// Course browsing works anonymously but honors ownership when a token
	// is present
	v1.GET("/courses", hm.authMiddleware.OptionalAuthMiddleware(), hm.courseHandler.ListCourses)
	v1.GET("/courses/:id", hm.authMiddleware.OptionalAuthMiddleware(), hm.courseHandler.GetCourse)
	v1.GET("/courses/:id/lessons", hm.authMiddleware.OptionalAuthMiddleware(), hm.courseHandler.GetLessons)

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		profile := authed.Group("/auth/profile")
		{
			profile.GET("", hm.authHandler.GetProfile)
			profile.PUT("", hm.authHandler.UpdateProfile)
			profile.POST("/avatar", hm.authHandler.UploadAvatar)
		}

		// Course authoring - instructors and admins
		instructorOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin)
		courses := authed.Group("/courses")
		{
			courses.POST("", instructorOnly, hm.courseHandler.CreateCourse)
			courses.GET("/mine", instructorOnly, hm.courseHandler.GetMyCourses)
			courses.PUT("/:id", instructorOnly, hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", instructorOnly, hm.courseHandler.DeleteCourse)
			courses.PUT("/:id/publish", instructorOnly, hm.courseHandler.PublishCourse)
			courses.POST("/:id/submit", instructorOnly, hm.courseHandler.SubmitCourse)
			courses.POST("/:id/archive", instructorOnly, hm.courseHandler.ArchiveCourse)

			courses.POST("/:id/lessons", instructorOnly, hm.courseHandler.CreateLesson)
			courses.PUT("/:id/lessons/reorder", instructorOnly, hm.courseHandler.ReorderLessons)
			courses.PUT("/:id/lessons/:lesson_id", instructorOnly, hm.courseHandler.UpdateLesson)
			courses.DELETE("/:id/lessons/:lesson_id", instructorOnly, hm.courseHandler.DeleteLesson)
		}
		authed.GET("/instructor/stats", instructorOnly, hm.courseHandler.GetInstructorStats)

		// Enrollment and progress - any authenticated user
		enrollments := authed.Group("/enrollments")
		{
			enrollments.POST("/:course_id", hm.enrollmentHandler.Enroll)
			enrollments.DELETE("/:course_id", hm.enrollmentHandler.Unenroll)
			enrollments.GET("/:course_id/check", hm.enrollmentHandler.CheckEnrollment)
			enrollments.GET("/my-courses", hm.enrollmentHandler.GetMyCourses)
		}

		progress := authed.Group("/progress/courses/:course_id")
		{
			progress.GET("", hm.progressHandler.GetCourseProgress)
			progress.POST("/lessons/:lesson_id/complete", hm.progressHandler.CompleteLesson)
			progress.POST("/lessons/:lesson_id/time", hm.progressHandler.RecordLessonTime)
		}

		activities := authed.Group("/activities")
		{
			activities.GET("/recent", hm.activityHandler.GetRecentActivity)
			activities.GET("/stats", hm.activityHandler.GetActivityStats)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", hm.activityHandler.GetNotifications)
			notifications.PUT("/:id/read", hm.activityHandler.MarkNotificationRead)
		}

		// Admin routes
		adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)
		admin := authed.Group("/admin", adminOnly)
		{
			admin.GET("/stats", hm.adminHandler.GetPlatformStats)

			admin.GET("/users", hm.adminHandler.ListUsers)
			admin.PUT("/users/:id/active", hm.adminHandler.SetUserActive)
			admin.DELETE("/users/:id", hm.adminHandler.DeleteUser)

			admin.GET("/courses", hm.adminHandler.ListCourses)
			admin.PATCH("/courses/:id/approve", hm.adminHandler.ApproveCourse)
			admin.PATCH("/courses/:id/reject", hm.adminHandler.RejectCourse)
			admin.DELETE("/courses/:id", hm.adminHandler.DeleteCourse)

			admin.GET("/activities", hm.adminHandler.ListActivities)
			admin.GET("/audit-logs", hm.adminHandler.ListAuditLogs)
			admin.GET("/reports/courses", hm.adminHandler.ExportCourseReport)

			categories := admin.Group("/categories")
			{
				categories.POST("", hm.categoryHandler.CreateCategory)
				categories.PUT("/:id", hm.categoryHandler.UpdateCategory)
				categories.DELETE("/:id", hm.categoryHandler.DeleteCategory)
			}
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "learning-platform-service",
	})
}
