package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/app/services"
	"github.com/dkaradag/tamatch/internal/middleware"
)

// PreferenceController handles student preference endpoints
type PreferenceController struct {
	preferenceService *services.PreferenceService
}

// NewPreferenceController creates a new PreferenceController
func NewPreferenceController(preferenceService *services.PreferenceService) *PreferenceController {
	return &PreferenceController{
		preferenceService: preferenceService,
	}
}

func authenticatedUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return userID, true
}

// CreatePreference adds a ranked preference
// @Summary Add a course preference
// @Description Adds a ranked preference for the authenticated student
// @Tags preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePreferenceRequest true "Preference data"
// @Success 201 {object} dto.APIResponse{data=models.Preference} "Preference created"
// @Failure 400 {object} dto.ErrorResponse "Invalid preference data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Course or profile not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate course or rank"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/preferences [post]
func (c *PreferenceController) CreatePreference(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreatePreferenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid preference data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	pref, err := c.preferenceService.CreatePreference(ctx, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      pref,
		Timestamp: time.Now(),
	})
}

// GetPreferences lists the authenticated student's preferences
// @Summary List own preferences
// @Description Lists the authenticated student's preferences in rank order
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.PreferenceResponse} "Preferences"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Profile not created yet"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/preferences [get]
func (c *PreferenceController) GetPreferences(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	prefs, err := c.preferenceService.GetPreferences(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      prefs,
		Timestamp: time.Now(),
	})
}

// DeletePreference withdraws a preference
// @Summary Withdraw a preference
// @Description Withdraws one of the authenticated student's preferences
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Param id path int true "Preference ID"
// @Success 204 "Preference withdrawn"
// @Failure 400 {object} dto.ErrorResponse "Invalid preference ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Preference not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/preferences/{id} [delete]
func (c *PreferenceController) DeletePreference(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.preferenceService.DeletePreference(ctx, userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusNoContent, dto.APIResponse{
		Timestamp: time.Now(),
	})
}

// ReorderPreferences renumbers the student's preferences atomically
// @Summary Reorder preferences
// @Description Renumbers the authenticated student's preferences to ranks 1..n in the given order
// @Tags preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ReorderPreferencesRequest true "Ordered preference IDs"
// @Success 200 {object} dto.APIResponse{data=[]dto.PreferenceResponse} "Reordered preferences"
// @Failure 400 {object} dto.ErrorResponse "Incomplete or duplicated ID list"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Preference not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/preferences/order [put]
func (c *PreferenceController) ReorderPreferences(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	var req dto.ReorderPreferencesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid reorder data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	prefs, err := c.preferenceService.ReorderPreferences(ctx, userID, req.OrderedIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      prefs,
		Timestamp: time.Now(),
	})
}
