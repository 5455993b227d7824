package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/app/services"
	"github.com/dkaradag/tamatch/internal/middleware"
)

// FeedbackController handles instructor reviews of completed assignments
type FeedbackController struct {
	feedbackService *services.FeedbackService
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService *services.FeedbackService) *FeedbackController {
	return &FeedbackController{
		feedbackService: feedbackService,
	}
}

// SubmitFeedback records a review of one assignment
// @Summary Submit assignment feedback
// @Description Records an instructor's rating and comments on an assignment; resubmitting replaces the earlier review
// @Tags professor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitFeedbackRequest true "Review"
// @Success 201 {object} dto.APIResponse{data=models.Feedback} "Feedback recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or mismatched assignment"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Course owned by another professor"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professor/feedback [post]
func (c *FeedbackController) SubmitFeedback(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}
	role, _ := middleware.GetRoleType(ctx)

	var req dto.SubmitFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid feedback data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	feedback, err := c.feedbackService.SubmitFeedback(ctx, userID, role, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      feedback,
		Timestamp: time.Now(),
	})
}

// GetCourseFeedback summarizes the reviews of one course
// @Summary Course feedback summary
// @Description Aggregates the reviews of one course into an average rating, a normalized score and the list of comments
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackSummary} "Summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/feedback [get]
func (c *FeedbackController) GetCourseFeedback(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	summary, err := c.feedbackService.GetCourseSummary(ctx, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      summary,
		Timestamp: time.Now(),
	})
}
