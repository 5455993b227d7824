package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
	"github.com/dkaradag/tamatch/internal/pkg/matchengine"
)

// fakeSnapshot serves all four snapshot source interfaces from fixtures
type fakeSnapshot struct {
	students    []*models.Student
	courses     []*models.Course
	preferences []*models.Preference
	assigned    []int64

	studentsErr error
}

func (f *fakeSnapshot) GetAllActive(context.Context) ([]*models.Student, error) {
	if f.studentsErr != nil {
		return nil, f.studentsErr
	}
	return f.students, nil
}

func (f *fakeSnapshot) GetAll(context.Context) ([]*models.Course, error) {
	return f.courses, nil
}

func (f *fakeSnapshot) AssignedStudentIDs(context.Context) ([]int64, error) {
	return f.assigned, nil
}

type fakePreferenceSource struct {
	preferences []*models.Preference
}

func (f *fakePreferenceSource) GetAllActive(context.Context) ([]*models.Preference, error) {
	return f.preferences, nil
}

// fakeCommitLedger records commits and removals and can reject chosen students
type fakeCommitLedger struct {
	nextID   int64
	commits  []models.Assignment
	removed  []int64
	rejected map[int64]error
}

func (f *fakeCommitLedger) Commit(_ context.Context, studentID, courseID int64, status models.AssignmentStatus) (*models.Assignment, error) {
	if err, ok := f.rejected[studentID]; ok {
		return nil, err
	}
	f.nextID++
	a := models.Assignment{ID: f.nextID, StudentID: studentID, CourseID: courseID, Status: status}
	f.commits = append(f.commits, a)
	return &a, nil
}

func (f *fakeCommitLedger) Remove(_ context.Context, id int64) (*models.Assignment, error) {
	f.removed = append(f.removed, id)
	return &models.Assignment{ID: id}, nil
}

func uniUser(id int64, uni string) *models.User {
	return &models.User{ID: id, UNI: uni, Email: uni + "@school.edu"}
}

func matchFixture() *fakeSnapshot {
	track := models.TrackOptimization
	resume := "/files/resume.pdf"
	return &fakeSnapshot{
		students: []*models.Student{
			{ID: 1, UserID: 11, User: uniUser(11, "aa1111"), ResumePath: &resume},
			{ID: 2, UserID: 12, User: uniUser(12, "bb2222")},
			{ID: 3, UserID: 13, User: uniUser(13, "cc3333")},
		},
		courses: []*models.Course{
			{ID: 10, Code: "IEOR4004", Title: "Optimization Models", Track: &track, Vacancies: 1},
			{ID: 20, Code: "IEOR4106", Title: "Stochastic Models", Vacancies: 1},
		},
		preferences: []*models.Preference{
			{ID: 100, StudentID: 1, CourseID: 10, Rank: 1},
			{ID: 101, StudentID: 2, CourseID: 10, Rank: 1},
			{ID: 102, StudentID: 2, CourseID: 20, Rank: 2},
			{ID: 103, StudentID: 3, CourseID: 20, Rank: 1},
		},
	}
}

func newTestMatcher(snap *fakeSnapshot, ledger assignmentLedger) *MatchingService {
	return NewMatchingService(
		snap,
		snap,
		&fakePreferenceSource{preferences: snap.preferences},
		snap,
		ledger,
		matchengine.DefaultWeights(),
		zerolog.Nop(),
	)
}

func TestRunMatchCommitsTentativeAssignments(t *testing.T) {
	snap := matchFixture()
	ledger := &fakeCommitLedger{}

	result, err := newTestMatcher(snap, ledger).RunMatch(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	// Student 1 has a resume, so their rank-1 bid beats student 2 for the
	// single optimization seat. Student 3 outranks student 2 on course 20.
	require.Len(t, result.Assignments, 2)
	byStudent := make(map[int64]dto.MatchAssignment)
	for _, a := range result.Assignments {
		byStudent[a.StudentID] = a
	}
	assert.Equal(t, int64(10), byStudent[1].CourseID)
	assert.Equal(t, "IEOR4004", byStudent[1].CourseCode)
	assert.Equal(t, "aa1111", byStudent[1].StudentUNI)
	assert.Equal(t, int64(20), byStudent[3].CourseID)

	assert.Equal(t, []int64{2}, result.Skipped)
	assert.Len(t, ledger.commits, 2)
	// Batch results start pending; only the manual paths confirm outright
	for _, c := range ledger.commits {
		assert.Equal(t, models.AssignmentPending, c.Status)
	}
}

func TestRunMatchIsDeterministic(t *testing.T) {
	first, err := newTestMatcher(matchFixture(), &fakeCommitLedger{}).RunMatch(context.Background(), nil)
	require.NoError(t, err)
	second, err := newTestMatcher(matchFixture(), &fakeCommitLedger{}).RunMatch(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Skipped, second.Skipped)
}

func TestRunMatchCommitRejectionIsNonFatal(t *testing.T) {
	snap := matchFixture()
	ledger := &fakeCommitLedger{rejected: map[int64]error{1: apperrors.ErrCapacityExceeded}}

	result, err := newTestMatcher(snap, ledger).RunMatch(context.Background(), nil)
	require.NoError(t, err)

	// Student 1's commit was rejected; the run still lands student 3
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, int64(3), result.Assignments[0].StudentID)
	assert.Equal(t, []int64{1, 2}, result.Skipped)
}

func TestRunMatchExcludesAssignedStudents(t *testing.T) {
	snap := matchFixture()
	snap.assigned = []int64{1}
	ledger := &fakeCommitLedger{}

	result, err := newTestMatcher(snap, ledger).RunMatch(context.Background(), nil)
	require.NoError(t, err)

	for _, a := range result.Assignments {
		assert.NotEqual(t, int64(1), a.StudentID)
	}
	// With student 1 out, student 2 wins the optimization seat
	byStudent := make(map[int64]dto.MatchAssignment)
	for _, a := range result.Assignments {
		byStudent[a.StudentID] = a
	}
	assert.Equal(t, int64(10), byStudent[2].CourseID)
}

func TestRunMatchSnapshotFailureIsFatal(t *testing.T) {
	snap := matchFixture()
	snap.studentsErr = errors.New("connection refused")

	_, err := newTestMatcher(snap, &fakeCommitLedger{}).RunMatch(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrSnapshotUnavailable)
}

func TestRunMatchReportsIssues(t *testing.T) {
	snap := matchFixture()
	snap.preferences = append(snap.preferences,
		&models.Preference{ID: 104, StudentID: 3, CourseID: 999, Rank: 5})

	result, err := newTestMatcher(snap, &fakeCommitLedger{}).RunMatch(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, int64(104), result.Issues[0].PreferenceID)
	assert.Equal(t, matchengine.ReasonUnknownCourse, result.Issues[0].Reason)
	// The malformed record never blocks the rest of the run
	assert.Len(t, result.Assignments, 2)
}

func TestRunMatchRejectsInvalidWeightOverride(t *testing.T) {
	bad := 0.1 // rank weight below the track weight breaks the ordering rule
	_, err := newTestMatcher(matchFixture(), &fakeCommitLedger{}).RunMatch(
		context.Background(), &dto.MatchRequest{RankWeight: &bad})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
