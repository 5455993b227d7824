package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/app/services"
	"github.com/dkaradag/tamatch/internal/middleware"
)

// ProfessorController handles the professor dashboard: own courses, the
// applications they received, the highlight flag and direct assignment
// management for owned courses.
type ProfessorController struct {
	courseService     *services.CourseService
	preferenceService *services.PreferenceService
	assignmentService *services.AssignmentService
	studentService    *services.StudentService
}

// NewProfessorController creates a new ProfessorController
func NewProfessorController(
	courseService *services.CourseService,
	preferenceService *services.PreferenceService,
	assignmentService *services.AssignmentService,
	studentService *services.StudentService,
) *ProfessorController {
	return &ProfessorController{
		courseService:     courseService,
		preferenceService: preferenceService,
		assignmentService: assignmentService,
		studentService:    studentService,
	}
}

// GetMyCourses lists the professor's courses with counters
// @Summary List own courses
// @Description Lists the authenticated professor's courses with application and assignment counts
// @Tags professor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ProfessorCourse} "Courses"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professor/courses [get]
func (c *ProfessorController) GetMyCourses(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	courses, err := c.courseService.GetProfessorCourses(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      courses,
		Timestamp: time.Now(),
	})
}

// GetCourseApplications lists the applications to one of the professor's courses
// @Summary List course applications
// @Description Lists all student applications to one of the professor's courses
// @Tags professor
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseApplication} "Applications"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Course owned by another professor"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professor/courses/{id}/applications [get]
func (c *ProfessorController) GetCourseApplications(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}
	role, _ := middleware.GetRoleType(ctx)

	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	applications, err := c.preferenceService.GetCourseApplications(ctx, userID, role, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      applications,
		Timestamp: time.Now(),
	})
}

// highlightRequest is the toggle payload
type highlightRequest struct {
	Highlighted *bool `json:"highlighted" binding:"required"`
}

// SetHighlight toggles the highlight flag on an application
// @Summary Highlight an application
// @Description Sets or clears the highlight flag on a student application to one of the professor's courses
// @Tags professor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Preference ID"
// @Param request body highlightRequest true "Highlight flag"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Flag updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Course owned by another professor"
// @Failure 404 {object} dto.ErrorResponse "Preference not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professor/preferences/{id}/highlight [put]
func (c *ProfessorController) SetHighlight(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}
	role, _ := middleware.GetRoleType(ctx)

	preferenceID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req highlightRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid highlight data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.preferenceService.SetHighlight(ctx, userID, role, preferenceID, *req.Highlighted); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Highlight updated"},
		Timestamp: time.Now(),
	})
}

// assignStudentRequest is the direct-assignment payload
type assignStudentRequest struct {
	StudentID int64 `json:"studentId" binding:"required"`
}

// AssignStudent commits a student to one of the professor's courses
// @Summary Assign a student
// @Description Commits a student to one of the professor's courses through the ledger
// @Tags professor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body assignStudentRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=models.Assignment} "Assignment committed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Course owned by another professor"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Failure 409 {object} dto.ErrorResponse "Course full or student already assigned"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professor/courses/{id}/assignments [post]
func (c *ProfessorController) AssignStudent(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}
	role, _ := middleware.GetRoleType(ctx)

	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req assignStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid assignment data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	assignment, err := c.assignmentService.AssignForCourse(ctx, userID, role, courseID, req.StudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      assignment,
		Timestamp: time.Now(),
	})
}

// RemoveAssignment deletes an assignment from one of the professor's courses
// @Summary Remove an assignment
// @Description Deletes an assignment from one of the professor's courses and restores the vacancy
// @Tags professor
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param assignmentId path int true "Assignment ID"
// @Success 204 "Assignment removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Course owned by another professor"
// @Failure 404 {object} dto.ErrorResponse "Course or assignment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professor/courses/{id}/assignments/{assignmentId} [delete]
func (c *ProfessorController) RemoveAssignment(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}
	role, _ := middleware.GetRoleType(ctx)

	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(ctx, "assignmentId")
	if !ok {
		return
	}

	if err := c.assignmentService.RemoveForCourse(ctx, userID, role, courseID, assignmentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// SearchStudents looks up students by UNI or email fragment
// @Summary Search students
// @Description Finds active students whose UNI or email contains the query
// @Tags professor
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query, at least 2 characters"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentSummary} "Matching students"
// @Failure 400 {object} dto.ErrorResponse "Query too short"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professor/students/search [get]
func (c *ProfessorController) SearchStudents(ctx *gin.Context) {
	students, err := c.studentService.SearchStudents(ctx, ctx.Query("q"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      students,
		Timestamp: time.Now(),
	})
}
