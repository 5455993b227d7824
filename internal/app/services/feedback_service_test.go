package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// fakeFeedbackStore keeps one feedback row per assignment, like the
// database's unique constraint.
type fakeFeedbackStore struct {
	byAssignment map[int64]*models.Feedback
	nextID       int64
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{byAssignment: make(map[int64]*models.Feedback)}
}

func (f *fakeFeedbackStore) UpsertByAssignment(_ context.Context, feedback *models.Feedback) error {
	if existing, ok := f.byAssignment[feedback.AssignmentID]; ok {
		feedback.ID = existing.ID
	} else {
		f.nextID++
		feedback.ID = f.nextID
	}
	copied := *feedback
	f.byAssignment[feedback.AssignmentID] = &copied
	return nil
}

func (f *fakeFeedbackStore) GetByCourse(_ context.Context, courseID int64) ([]*models.Feedback, error) {
	var out []*models.Feedback
	for _, entry := range f.byAssignment {
		if entry.CourseID == courseID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func newTestFeedbackService(store *fakeFeedbackStore) *FeedbackService {
	owner := int64(50)
	assignments := map[int64]*models.Assignment{
		500: {ID: 500, StudentID: 1, CourseID: 10, Status: models.AssignmentConfirmed},
		501: {ID: 501, StudentID: 2, CourseID: 10, Status: models.AssignmentConfirmed},
		502: {ID: 502, StudentID: 3, CourseID: 20, Status: models.AssignmentConfirmed},
	}
	courses := map[int64]*models.Course{
		10: {ID: 10, Code: "IEOR4004", Title: "Optimization Models", ProfessorID: &owner},
		20: {ID: 20, Code: "IEOR4106", Title: "Stochastic Models"},
	}
	return NewFeedbackService(
		store,
		&fakeAssignmentReader{assignments: assignments},
		&fakeCourseReader{courses: courses},
		zerolog.Nop(),
	)
}

func submitRequest(assignmentID, studentID, courseID int64, rating int, comments *string) *dto.SubmitFeedbackRequest {
	return &dto.SubmitFeedbackRequest{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		CourseID:     courseID,
		Rating:       rating,
		Comments:     comments,
	}
}

func TestSubmitFeedbackByCourseOwner(t *testing.T) {
	store := newFakeFeedbackStore()
	svc := newTestFeedbackService(store)

	comment := "Great lab sessions"
	feedback, err := svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(500, 1, 10, 4, &comment))
	require.NoError(t, err)

	assert.Equal(t, 4, feedback.Rating)
	require.NotNil(t, store.byAssignment[500])
	assert.Equal(t, 4, store.byAssignment[500].Rating)
}

func TestSubmitFeedbackReplacesEarlierReview(t *testing.T) {
	store := newFakeFeedbackStore()
	svc := newTestFeedbackService(store)

	first, err := svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(500, 1, 10, 2, nil))
	require.NoError(t, err)

	second, err := svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(500, 1, 10, 5, nil))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.byAssignment, 1)
	assert.Equal(t, 5, store.byAssignment[500].Rating)
}

func TestSubmitFeedbackRejectsMismatchedPairing(t *testing.T) {
	svc := newTestFeedbackService(newFakeFeedbackStore())

	// Assignment 500 pairs student 1 with course 10.
	_, err := svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(500, 2, 10, 4, nil))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(500, 1, 20, 4, nil))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestSubmitFeedbackUnknownAssignment(t *testing.T) {
	svc := newTestFeedbackService(newFakeFeedbackStore())

	_, err := svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(999, 1, 10, 4, nil))
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
}

func TestSubmitFeedbackDeniedForForeignCourse(t *testing.T) {
	svc := newTestFeedbackService(newFakeFeedbackStore())

	// Course 20 has no owner, so only an admin may review assignment 502.
	_, err := svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(502, 3, 20, 4, nil))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.SubmitFeedback(context.Background(), 99, models.RoleAdmin,
		submitRequest(502, 3, 20, 4, nil))
	assert.NoError(t, err)
}

func TestSubmitFeedbackRejectsOutOfRangeRating(t *testing.T) {
	svc := newTestFeedbackService(newFakeFeedbackStore())

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
			submitRequest(500, 1, 10, rating, nil))
		assert.ErrorIs(t, err, apperrors.ErrBadRequest, "rating %d", rating)
	}
}

func TestGetCourseSummary(t *testing.T) {
	store := newFakeFeedbackStore()
	svc := newTestFeedbackService(store)

	comment := "Reliable grader"
	blank := "   "
	_, err := svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(500, 1, 10, 4, &comment))
	require.NoError(t, err)
	_, err = svc.SubmitFeedback(context.Background(), 50, models.RoleProfessor,
		submitRequest(501, 2, 10, 5, &blank))
	require.NoError(t, err)

	summary, err := svc.GetCourseSummary(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ReviewCount)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 4.5, *summary.AverageRating, 1e-9)
	require.NotNil(t, summary.NormalizedScore)
	assert.InDelta(t, 90.0, *summary.NormalizedScore, 1e-9)
	// Blank comments are dropped from the listing.
	assert.Equal(t, []string{"Reliable grader"}, summary.Comments)
}

func TestGetCourseSummaryNoReviews(t *testing.T) {
	svc := newTestFeedbackService(newFakeFeedbackStore())

	summary, err := svc.GetCourseSummary(context.Background(), 20)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ReviewCount)
	assert.Nil(t, summary.AverageRating)
	assert.Nil(t, summary.NormalizedScore)
	assert.Empty(t, summary.Comments)
}

func TestGetCourseSummaryUnknownCourse(t *testing.T) {
	svc := newTestFeedbackService(newFakeFeedbackStore())

	_, err := svc.GetCourseSummary(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}
