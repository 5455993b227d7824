package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dkaradag/tamatch/internal/app/controllers"
	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	preferenceController *controllers.PreferenceController,
	courseController *controllers.CourseController,
	professorController *controllers.ProfessorController,
	feedbackController *controllers.FeedbackController,
	adminController *controllers.AdminController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)

		// Catalog reads are open to every authenticated role
		courses := authenticated.Group("/courses")
		{
			courses.GET("", courseController.GetAllCourses)
			courses.GET("/:id", courseController.GetCourse)
			courses.GET("/:id/feedback", feedbackController.GetCourseFeedback)
		}

		// Student self-service routes
		students := authenticated.Group("/students")
		students.Use(authMiddleware.RoleRequired(models.RoleStudent))
		{
			students.GET("/profile", studentController.GetProfile)
			students.PUT("/profile", studentController.UpdateProfile)

			students.GET("/preferences", preferenceController.GetPreferences)
			students.POST("/preferences", preferenceController.CreatePreference)
			students.PUT("/preferences/order", preferenceController.ReorderPreferences)
			students.DELETE("/preferences/:id", preferenceController.DeletePreference)
		}

		// Professor dashboard routes (admins may use them too)
		professor := authenticated.Group("/professor")
		professor.Use(authMiddleware.RoleRequired(models.RoleProfessor, models.RoleAdmin))
		{
			professor.GET("/courses", professorController.GetMyCourses)
			professor.GET("/courses/:id/applications", professorController.GetCourseApplications)
			professor.POST("/courses/:id/assignments", professorController.AssignStudent)
			professor.DELETE("/courses/:id/assignments/:assignmentId", professorController.RemoveAssignment)
			professor.PUT("/preferences/:id/highlight", professorController.SetHighlight)
			professor.GET("/students/search", professorController.SearchStudents)
			professor.POST("/feedback", feedbackController.SubmitFeedback)
		}

		// Administrator routes
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.POST("/match", adminController.RunMatch)

			admin.POST("/assignments/propose", adminController.ProposeAssignment)
			admin.POST("/assignments", adminController.ConfirmAssignment)
			admin.GET("/assignments", adminController.GetAllAssignments)
			admin.DELETE("/assignments/:id", adminController.RemoveAssignment)
			admin.GET("/assignments/:id/notification", adminController.GetAssignmentNotification)

			admin.GET("/students", adminController.GetAllStudents)
			admin.GET("/students/:id", adminController.GetStudentDetails)
			admin.POST("/accounts", adminController.CreateAccount)

			admin.POST("/courses", courseController.CreateCourse)
			admin.POST("/courses/import", courseController.ImportCourses)
			admin.PUT("/courses/:id", courseController.UpdateCourse)
			admin.DELETE("/courses/:id", courseController.DeleteCourse)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
