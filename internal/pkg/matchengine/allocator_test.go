package matchengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator() *Allocator {
	return NewAllocator(NewScorer(DefaultWeights()))
}

func TestAllocateTrackAndProfileBreakEqualRank(t *testing.T) {
	// Course A has 1 vacancy, track Optimization. S1 ranks it first with a
	// track match and a full profile; S2 ranks it first with neither.
	snap := Snapshot{
		Students: []Student{
			{ID: 1, HasResume: true, HasTranscript: true, Interests: []string{"Optimization"}},
			{ID: 2},
		},
		Courses: []Course{{ID: 100, Track: "Optimization", Vacancies: 1}},
		Preferences: []Preference{
			{ID: 1, StudentID: 1, CourseID: 100, Rank: 1},
			{ID: 2, StudentID: 2, CourseID: 100, Rank: 1},
		},
	}

	proposal := newTestAllocator().Allocate(snap)

	require.Len(t, proposal.Tentative, 1)
	assert.Equal(t, int64(1), proposal.Tentative[0].StudentID)
	assert.Equal(t, []int64{2}, proposal.Skipped)
	assert.Empty(t, proposal.Issues)
}

func TestAllocatePrefersLowerRank(t *testing.T) {
	// One student, two single-vacancy courses with identical track/profile
	// contribution: the rank-1 course wins the seat.
	snap := Snapshot{
		Students: []Student{{ID: 1}},
		Courses: []Course{
			{ID: 100, Vacancies: 1},
			{ID: 200, Vacancies: 1},
		},
		Preferences: []Preference{
			{ID: 1, StudentID: 1, CourseID: 200, Rank: 2},
			{ID: 2, StudentID: 1, CourseID: 100, Rank: 1},
		},
	}

	proposal := newTestAllocator().Allocate(snap)

	require.Len(t, proposal.Tentative, 1)
	assert.Equal(t, int64(100), proposal.Tentative[0].CourseID)
	assert.Empty(t, proposal.Skipped)
}

func TestAllocateRespectsCapacity(t *testing.T) {
	snap := Snapshot{
		Students: []Student{{ID: 1}, {ID: 2}, {ID: 3}},
		Courses:  []Course{{ID: 100, Vacancies: 2}},
		Preferences: []Preference{
			{ID: 1, StudentID: 1, CourseID: 100, Rank: 1},
			{ID: 2, StudentID: 2, CourseID: 100, Rank: 1},
			{ID: 3, StudentID: 3, CourseID: 100, Rank: 1},
		},
	}

	proposal := newTestAllocator().Allocate(snap)

	assert.Len(t, proposal.Tentative, 2)
	assert.Len(t, proposal.Skipped, 1)
}

func TestAllocateSkipsStudentsWithOnlyFullCourses(t *testing.T) {
	snap := Snapshot{
		Students: []Student{{ID: 1}},
		Courses:  []Course{{ID: 100, Vacancies: 0}},
		Preferences: []Preference{
			{ID: 1, StudentID: 1, CourseID: 100, Rank: 1},
		},
	}

	proposal := newTestAllocator().Allocate(snap)

	assert.Empty(t, proposal.Tentative)
	assert.Equal(t, []int64{1}, proposal.Skipped)
}

func TestAllocateExcludesAlreadyAssignedStudents(t *testing.T) {
	snap := Snapshot{
		Students: []Student{{ID: 1}, {ID: 2}},
		Courses:  []Course{{ID: 100, Vacancies: 1}},
		Preferences: []Preference{
			{ID: 1, StudentID: 1, CourseID: 100, Rank: 1},
			{ID: 2, StudentID: 2, CourseID: 100, Rank: 2},
		},
		AssignedStudents: []int64{1},
	}

	proposal := newTestAllocator().Allocate(snap)

	require.Len(t, proposal.Tentative, 1)
	assert.Equal(t, int64(2), proposal.Tentative[0].StudentID)
	// Students already holding an assignment are not counted as skipped.
	assert.Empty(t, proposal.Skipped)
}

func TestAllocateOneSeatPerStudent(t *testing.T) {
	snap := Snapshot{
		Students: []Student{{ID: 1}},
		Courses: []Course{
			{ID: 100, Vacancies: 1},
			{ID: 200, Vacancies: 1},
		},
		Preferences: []Preference{
			{ID: 1, StudentID: 1, CourseID: 100, Rank: 1},
			{ID: 2, StudentID: 1, CourseID: 200, Rank: 2},
		},
	}

	proposal := newTestAllocator().Allocate(snap)

	assert.Len(t, proposal.Tentative, 1)
}

func TestAllocateDeterministic(t *testing.T) {
	snap := Snapshot{
		Students: []Student{
			{ID: 1, HasResume: true, Interests: []string{"Operations"}},
			{ID: 2, HasTranscript: true},
			{ID: 3, HasResume: true, HasTranscript: true},
			{ID: 4},
		},
		Courses: []Course{
			{ID: 100, Track: "Operations", Vacancies: 1},
			{ID: 200, Track: "Optimization", Vacancies: 2},
		},
		Preferences: []Preference{
			{ID: 1, StudentID: 1, CourseID: 100, Rank: 1},
			{ID: 2, StudentID: 1, CourseID: 200, Rank: 2},
			{ID: 3, StudentID: 2, CourseID: 100, Rank: 1},
			{ID: 4, StudentID: 3, CourseID: 200, Rank: 1},
			{ID: 5, StudentID: 4, CourseID: 200, Rank: 1},
			{ID: 6, StudentID: 2, CourseID: 200, Rank: 3},
		},
	}

	alloc := newTestAllocator()
	first := alloc.Allocate(snap)
	second := alloc.Allocate(snap)

	assert.Equal(t, first, second)
}

func TestAllocateTieBreakByCreationOrderThenStudentID(t *testing.T) {
	// Two identical students with identical preferences for the same
	// course: the earlier-created preference wins.
	snap := Snapshot{
		Students: []Student{{ID: 2}, {ID: 1}},
		Courses:  []Course{{ID: 100, Vacancies: 1}},
		Preferences: []Preference{
			{ID: 8, StudentID: 1, CourseID: 100, Rank: 1},
			{ID: 5, StudentID: 2, CourseID: 100, Rank: 1},
		},
	}

	proposal := newTestAllocator().Allocate(snap)

	require.Len(t, proposal.Tentative, 1)
	assert.Equal(t, int64(2), proposal.Tentative[0].StudentID)
	assert.Equal(t, []int64{1}, proposal.Skipped)
}

func TestAllocateReportsMalformedRecords(t *testing.T) {
	snap := Snapshot{
		Students: []Student{{ID: 1}, {ID: 2}},
		Courses:  []Course{{ID: 100, Vacancies: 2}},
		Preferences: []Preference{
			{ID: 1, StudentID: 1, CourseID: 100, Rank: 1},
			{ID: 2, StudentID: 1, CourseID: 999, Rank: 2}, // unknown course
			{ID: 3, StudentID: 2, CourseID: 100, Rank: 1},
			{ID: 4, StudentID: 2, CourseID: 100, Rank: 1}, // duplicate rank, later creation
			{ID: 5, StudentID: 7, CourseID: 100, Rank: 1}, // unknown student
		},
	}

	proposal := newTestAllocator().Allocate(snap)

	// Both known students still get seats; the malformed records are
	// reported, not fatal.
	assert.Len(t, proposal.Tentative, 2)
	require.Len(t, proposal.Issues, 3)

	reasons := map[int64]string{}
	for _, issue := range proposal.Issues {
		reasons[issue.PreferenceID] = issue.Reason
	}
	assert.Equal(t, ReasonUnknownCourse, reasons[2])
	assert.Equal(t, ReasonDuplicateRank, reasons[4])
	assert.Equal(t, ReasonUnknownStudent, reasons[5])
}

func TestAllocateDuplicateRankKeepsEarlierCreated(t *testing.T) {
	snap := Snapshot{
		Students: []Student{{ID: 1}},
		Courses: []Course{
			{ID: 100, Vacancies: 1},
			{ID: 200, Vacancies: 1},
		},
		Preferences: []Preference{
			{ID: 9, StudentID: 1, CourseID: 100, Rank: 1},
			{ID: 4, StudentID: 1, CourseID: 200, Rank: 1},
		},
	}

	proposal := newTestAllocator().Allocate(snap)

	require.Len(t, proposal.Tentative, 1)
	assert.Equal(t, int64(200), proposal.Tentative[0].CourseID)
	require.Len(t, proposal.Issues, 1)
	assert.Equal(t, int64(9), proposal.Issues[0].PreferenceID)
}
