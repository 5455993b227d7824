package middleware

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleAPIError(c, err)
	return w.Code
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"capacity exceeded", apperrors.ErrCapacityExceeded, 409},
		{"already assigned", apperrors.ErrAlreadyAssigned, 409},
		{"duplicate rank", apperrors.ErrDuplicateRank, 409},
		{"assignment not found", apperrors.ErrAssignmentNotFound, 404},
		{"course not found", apperrors.ErrCourseNotFound, 404},
		{"invalid credentials", apperrors.ErrInvalidCredentials, 401},
		{"token expired", apperrors.ErrTokenExpired, 401},
		{"permission denied", apperrors.ErrPermissionDenied, 403},
		{"account disabled", apperrors.ErrAccountDisabled, 403},
		{"bad request", apperrors.ErrBadRequest, 400},
		{"inconsistent snapshot", apperrors.ErrInconsistentSnapshot, 400},
		{"snapshot unavailable", apperrors.ErrSnapshotUnavailable, 503},
		{"unknown error", fmt.Errorf("disk on fire"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(t, tt.err))
		})
	}
}

func TestHandleAPIErrorMatchesWrappedSentinels(t *testing.T) {
	err := fmt.Errorf("%w: students: connection refused", apperrors.ErrSnapshotUnavailable)
	assert.Equal(t, 503, statusFor(t, err))
}
