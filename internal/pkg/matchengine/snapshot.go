// Package matchengine implements the capacitated student/course matching
// core: scoring of (student, preference, course) candidates and the
// deterministic greedy allocation walk. The engine is pure computation over
// an immutable snapshot; reading the snapshot and committing the resulting
// assignments through the ledger belong to the service layer.
package matchengine

// Student is the slice of a student profile the engine needs.
type Student struct {
	ID            int64
	HasResume     bool
	HasTranscript bool
	// Interests holds the student's declared interest tracks. Used for
	// track matching when a preference carries no declared track.
	Interests []string
}

// Course is the slice of a catalog record the engine needs. Vacancies is the
// remaining capacity at snapshot time; the allocator never mutates it,
// tracking tentative consumption in local counters instead.
type Course struct {
	ID        int64
	Track     string // empty when the course has no track
	Vacancies int
}

// Preference is one ranked interest of one student. IDs are assigned in
// creation order, which the allocator relies on for reproducible tie-breaks.
type Preference struct {
	ID          int64
	StudentID   int64
	CourseID    int64
	Rank        int
	Track       string // optional declared track, empty = fall back to interests
	Highlighted bool
}

// Snapshot is the read-only view of students, preferences and courses one
// match run operates on. The engine trusts referential integrity only as far
// as reporting violations as issues; it never fails the run over them.
type Snapshot struct {
	Students    []Student
	Courses     []Course
	Preferences []Preference
	// AssignedStudents lists students already holding a confirmed
	// assignment. They are excluded from candidate building so a batch run
	// never overwrites a manual override.
	AssignedStudents []int64
}
