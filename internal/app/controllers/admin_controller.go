package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/app/services"
	"github.com/dkaradag/tamatch/internal/middleware"
)

// AdminController handles the administrator surface: batch matching, the
// manual assignment path, student listings and account provisioning.
type AdminController struct {
	matchingService   *services.MatchingService
	assignmentService *services.AssignmentService
	studentService    *services.StudentService
	authService       *services.AuthService
}

// NewAdminController creates a new AdminController
func NewAdminController(
	matchingService *services.MatchingService,
	assignmentService *services.AssignmentService,
	studentService *services.StudentService,
	authService *services.AuthService,
) *AdminController {
	return &AdminController{
		matchingService:   matchingService,
		assignmentService: assignmentService,
		studentService:    studentService,
		authService:       authService,
	}
}

// RunMatch triggers a batch matching run
// @Summary Run batch matching
// @Description Matches all unassigned students to courses and commits the results. The body may override scoring weights for this run.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MatchRequest false "Weight overrides"
// @Success 200 {object} dto.APIResponse{data=dto.MatchResult} "Run summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid weight overrides"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 503 {object} dto.ErrorResponse "Matching input unavailable"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/match [post]
func (c *AdminController) RunMatch(ctx *gin.Context) {
	var req dto.MatchRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid match request")
			errorDetail = errorDetail.WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
	}

	result, err := c.matchingService.RunMatch(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// ProposeAssignment checks a manual pairing and reports conflicts
// @Summary Propose a manual assignment
// @Description Validates a student-course pairing and lists the student's other highlighted applications as advisory conflicts
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignmentRequest true "Pairing"
// @Success 200 {object} dto.APIResponse{data=dto.ProposalResponse} "Proposal with conflicts"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assignments/propose [post]
func (c *AdminController) ProposeAssignment(ctx *gin.Context) {
	var req dto.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid assignment data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	proposal, err := c.assignmentService.ProposeAssignment(ctx, req.StudentID, req.CourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      proposal,
		Timestamp: time.Now(),
	})
}

// ConfirmAssignment commits a manual pairing
// @Summary Commit a manual assignment
// @Description Commits a student-course pairing through the ledger, decrementing the course vacancy
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignmentRequest true "Pairing"
// @Success 201 {object} dto.APIResponse{data=models.Assignment} "Assignment committed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 409 {object} dto.ErrorResponse "Course full or student already assigned"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assignments [post]
func (c *AdminController) ConfirmAssignment(ctx *gin.Context) {
	var req dto.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid assignment data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	assignment, err := c.assignmentService.ConfirmAssignment(ctx, req.StudentID, req.CourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      assignment,
		Timestamp: time.Now(),
	})
}

// GetAllAssignments lists all assignments
// @Summary List assignments
// @Description Lists all assignments with student and course context
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.AssignmentDetails} "Assignments"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assignments [get]
func (c *AdminController) GetAllAssignments(ctx *gin.Context) {
	assignments, err := c.assignmentService.GetAllAssignments(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      assignments,
		Timestamp: time.Now(),
	})
}

// RemoveAssignment deletes an assignment and restores the vacancy
// @Summary Remove an assignment
// @Description Deletes an assignment and restores the course vacancy in the same transaction
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 204 "Assignment removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid assignment ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assignments/{id} [delete]
func (c *AdminController) RemoveAssignment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.assignmentService.RemoveAssignment(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusNoContent, dto.APIResponse{
		Timestamp: time.Now(),
	})
}

// GetAssignmentNotification composes the notification draft for an assignment
// @Summary Compose assignment notification
// @Description Builds the email draft announcing a committed assignment; delivery is out of scope
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=dto.EmailPayload} "Notification draft"
// @Failure 400 {object} dto.ErrorResponse "Invalid assignment ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assignments/{id}/notification [get]
func (c *AdminController) GetAssignmentNotification(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	payload, err := c.assignmentService.ComposeNotification(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      payload,
		Timestamp: time.Now(),
	})
}

// GetAllStudents lists all active students
// @Summary List students
// @Description Lists all active student profiles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Student} "Students"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/students [get]
func (c *AdminController) GetAllStudents(ctx *gin.Context) {
	students, err := c.studentService.GetAllStudents(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      students,
		Timestamp: time.Now(),
	})
}

// GetStudentDetails retrieves one student with account details
// @Summary Get student details
// @Description Retrieves one student profile with account details
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/students/{id} [get]
func (c *AdminController) GetStudentDetails(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudentDetails(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// CreateAccount provisions an account with an explicit role
// @Summary Create an account
// @Description Provisions a student, professor or admin account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAccountRequest true "Account data"
// @Success 201 {object} dto.APIResponse{data=models.User} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid account data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Email or UNI already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/accounts [post]
func (c *AdminController) CreateAccount(ctx *gin.Context) {
	var req dto.CreateAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid account data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, err := c.authService.CreateAccount(ctx, req.Email, req.UNI, req.Password, models.RoleType(req.Role))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      user,
		Timestamp: time.Now(),
	})
}
