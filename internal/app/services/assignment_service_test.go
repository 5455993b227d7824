package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

type fakeAssignmentReader struct {
	assignments map[int64]*models.Assignment
}

func (f *fakeAssignmentReader) GetByID(_ context.Context, id int64) (*models.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, apperrors.ErrAssignmentNotFound
	}
	return a, nil
}

func (f *fakeAssignmentReader) GetAllDetailed(context.Context) ([]*models.Assignment, error) {
	out := make([]*models.Assignment, 0, len(f.assignments))
	for _, a := range f.assignments {
		out = append(out, a)
	}
	return out, nil
}

type fakeHighlightedSource struct {
	highlighted map[int64][]*models.Preference
}

func (f *fakeHighlightedSource) GetHighlightedByStudent(_ context.Context, studentID int64) ([]*models.Preference, error) {
	return f.highlighted[studentID], nil
}

type fakeStudentReader struct {
	students map[int64]*models.Student
}

func (f *fakeStudentReader) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeStudentReader) GetDetails(ctx context.Context, id int64) (*models.Student, error) {
	return f.GetByID(ctx, id)
}

type fakeCourseReader struct {
	courses map[int64]*models.Course
}

func (f *fakeCourseReader) GetByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return c, nil
}

func newTestAssignmentService(highlighted map[int64][]*models.Preference) *AssignmentService {
	students := map[int64]*models.Student{
		1: {ID: 1, UserID: 11, User: uniUser(11, "aa1111")},
	}
	courses := map[int64]*models.Course{
		10: {ID: 10, Code: "IEOR4004", Title: "Optimization Models"},
		20: {ID: 20, Code: "IEOR4106", Title: "Stochastic Models"},
	}
	return NewAssignmentService(
		&fakeAssignmentReader{assignments: map[int64]*models.Assignment{}},
		&fakeHighlightedSource{highlighted: highlighted},
		&fakeStudentReader{students: students},
		&fakeCourseReader{courses: courses},
		&fakeCommitLedger{},
		zerolog.Nop(),
	)
}

func TestProposeAssignmentSurfacesConflicts(t *testing.T) {
	otherCourse := &models.Course{ID: 20, Code: "IEOR4106", Title: "Stochastic Models"}
	svc := newTestAssignmentService(map[int64][]*models.Preference{
		1: {
			{ID: 100, StudentID: 1, CourseID: 20, Rank: 2, Highlighted: true, Course: otherCourse},
		},
	})

	proposal, err := svc.ProposeAssignment(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Len(t, proposal.Conflicts, 1)
	assert.Equal(t, int64(100), proposal.Conflicts[0].PreferenceID)
	assert.Equal(t, int64(20), proposal.Conflicts[0].CourseID)
	assert.Equal(t, "IEOR4106", proposal.Conflicts[0].CourseCode)
	assert.Equal(t, 2, proposal.Conflicts[0].Rank)
}

func TestProposeAssignmentIgnoresHighlightOnProposedCourse(t *testing.T) {
	proposedCourse := &models.Course{ID: 10, Code: "IEOR4004", Title: "Optimization Models"}
	svc := newTestAssignmentService(map[int64][]*models.Preference{
		1: {
			{ID: 100, StudentID: 1, CourseID: 10, Rank: 1, Highlighted: true, Course: proposedCourse},
		},
	})

	proposal, err := svc.ProposeAssignment(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, proposal.Conflicts)
}

func TestProposeAssignmentNoHighlights(t *testing.T) {
	svc := newTestAssignmentService(nil)

	proposal, err := svc.ProposeAssignment(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, proposal.Conflicts)
	assert.Equal(t, int64(1), proposal.StudentID)
	assert.Equal(t, int64(10), proposal.CourseID)
}

func TestProposeAssignmentUnknownStudent(t *testing.T) {
	svc := newTestAssignmentService(nil)

	_, err := svc.ProposeAssignment(context.Background(), 99, 10)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestProposeAssignmentUnknownCourse(t *testing.T) {
	svc := newTestAssignmentService(nil)

	_, err := svc.ProposeAssignment(context.Background(), 1, 99)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestConfirmAssignmentCommitsThroughLedger(t *testing.T) {
	svc := newTestAssignmentService(nil)

	assignment, err := svc.ConfirmAssignment(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), assignment.StudentID)
	assert.Equal(t, int64(10), assignment.CourseID)
	assert.Equal(t, models.AssignmentConfirmed, assignment.Status)
}

func newOwnedCourseService(ledger *fakeCommitLedger, assignments map[int64]*models.Assignment) *AssignmentService {
	owner := int64(50)
	other := int64(60)
	students := map[int64]*models.Student{
		1: {ID: 1, UserID: 11, User: uniUser(11, "aa1111")},
	}
	courses := map[int64]*models.Course{
		10: {ID: 10, Code: "IEOR4004", Title: "Optimization Models", ProfessorID: &owner},
		20: {ID: 20, Code: "IEOR4106", Title: "Stochastic Models", ProfessorID: &other},
		30: {ID: 30, Code: "IEOR4150", Title: "Probability and Statistics"},
	}
	if assignments == nil {
		assignments = map[int64]*models.Assignment{}
	}
	return NewAssignmentService(
		&fakeAssignmentReader{assignments: assignments},
		&fakeHighlightedSource{},
		&fakeStudentReader{students: students},
		&fakeCourseReader{courses: courses},
		ledger,
		zerolog.Nop(),
	)
}

func TestAssignForCourseByOwner(t *testing.T) {
	ledger := &fakeCommitLedger{}
	svc := newOwnedCourseService(ledger, nil)

	assignment, err := svc.AssignForCourse(context.Background(), 50, models.RoleProfessor, 10, 1)
	require.NoError(t, err)

	assert.Equal(t, models.AssignmentConfirmed, assignment.Status)
	require.Len(t, ledger.commits, 1)
	assert.Equal(t, int64(1), ledger.commits[0].StudentID)
	assert.Equal(t, int64(10), ledger.commits[0].CourseID)
}

func TestAssignForCourseDeniedForForeignCourse(t *testing.T) {
	ledger := &fakeCommitLedger{}
	svc := newOwnedCourseService(ledger, nil)

	_, err := svc.AssignForCourse(context.Background(), 50, models.RoleProfessor, 20, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, ledger.commits)
}

func TestAssignForCourseDeniedForUnownedCourse(t *testing.T) {
	ledger := &fakeCommitLedger{}
	svc := newOwnedCourseService(ledger, nil)

	_, err := svc.AssignForCourse(context.Background(), 50, models.RoleProfessor, 30, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAssignForCourseAdminBypassesOwnership(t *testing.T) {
	ledger := &fakeCommitLedger{}
	svc := newOwnedCourseService(ledger, nil)

	assignment, err := svc.AssignForCourse(context.Background(), 99, models.RoleAdmin, 20, 1)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentConfirmed, assignment.Status)
}

func TestAssignForCourseUnknownStudent(t *testing.T) {
	ledger := &fakeCommitLedger{}
	svc := newOwnedCourseService(ledger, nil)

	_, err := svc.AssignForCourse(context.Background(), 50, models.RoleProfessor, 10, 99)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.Empty(t, ledger.commits)
}

func TestRemoveForCourseByOwner(t *testing.T) {
	ledger := &fakeCommitLedger{}
	svc := newOwnedCourseService(ledger, map[int64]*models.Assignment{
		500: {ID: 500, StudentID: 1, CourseID: 10, Status: models.AssignmentConfirmed},
	})

	err := svc.RemoveForCourse(context.Background(), 50, models.RoleProfessor, 10, 500)
	require.NoError(t, err)
	assert.Equal(t, []int64{500}, ledger.removed)
}

func TestRemoveForCourseRejectsMismatchedCourse(t *testing.T) {
	ledger := &fakeCommitLedger{}
	svc := newOwnedCourseService(ledger, map[int64]*models.Assignment{
		500: {ID: 500, StudentID: 1, CourseID: 20, Status: models.AssignmentConfirmed},
	})

	err := svc.RemoveForCourse(context.Background(), 50, models.RoleProfessor, 10, 500)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
	assert.Empty(t, ledger.removed)
}

func TestRemoveForCourseDeniedForForeignCourse(t *testing.T) {
	ledger := &fakeCommitLedger{}
	svc := newOwnedCourseService(ledger, map[int64]*models.Assignment{
		500: {ID: 500, StudentID: 1, CourseID: 20, Status: models.AssignmentConfirmed},
	})

	err := svc.RemoveForCourse(context.Background(), 50, models.RoleProfessor, 20, 500)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, ledger.removed)
}
