package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dkaradag/tamatch/internal/app/models/dto"
)

// Controllers defined in this package:
// - AuthController: registration, login and token lifecycle
// - StudentController: student profile endpoints
// - PreferenceController: student preference endpoints
// - CourseController: catalog endpoints
// - ProfessorController: professor dashboard endpoints
// - AdminController: matching, assignments and account provisioning

// parseIDParam parses a path parameter as an int64 ID. On failure it writes
// the validation response and returns false.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		errorDetail = errorDetail.WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
