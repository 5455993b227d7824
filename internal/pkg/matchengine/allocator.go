package matchengine

import "sort"

// Candidate is one scored (student, preference, course) tuple.
type Candidate struct {
	StudentID    int64
	PreferenceID int64
	CourseID     int64
	Rank         int
	Score        float64
}

// Issue reports a malformed snapshot record that was skipped while building
// candidates. The offending record is excluded and the run continues.
type Issue struct {
	PreferenceID int64
	StudentID    int64
	CourseID     int64
	Reason       string
}

// Issue reasons.
const (
	ReasonUnknownCourse  = "preference references unknown course"
	ReasonUnknownStudent = "preference references unknown student"
	ReasonDuplicateRank  = "duplicate rank for student"
	ReasonInvalidRank    = "rank must be a positive integer"
)

// Proposal is the tentative, uncommitted result of one allocation walk.
// Discarding it has no effect; only assignments committed through the
// ledger are durable.
type Proposal struct {
	// Tentative holds the chosen candidates in commit order.
	Tentative []Candidate
	// Skipped lists students with at least one active preference that ended
	// the walk without a tentative assignment, ascending by ID.
	Skipped []int64
	// Issues lists malformed records excluded from the run.
	Issues []Issue
}

// Allocator runs the priority-greedy capacitated assignment over a snapshot.
// Greedy best-score-wins was chosen over two-sided stable matching on
// purpose: the product requirement is that the best-scoring candidate takes
// a seat, not stability between two preference orders.
type Allocator struct {
	scorer *Scorer
}

// NewAllocator creates an allocator using the given scorer.
func NewAllocator(scorer *Scorer) *Allocator {
	return &Allocator{scorer: scorer}
}

// Allocate walks all active preferences once and tentatively fills course
// capacity in score order. For a fixed snapshot and fixed weights the result
// is byte-identical across runs: the candidate ordering is total (score
// desc, rank asc, preference creation order asc, student ID asc).
func (a *Allocator) Allocate(snap Snapshot) Proposal {
	courses := make(map[int64]Course, len(snap.Courses))
	for _, c := range snap.Courses {
		courses[c.ID] = c
	}
	students := make(map[int64]Student, len(snap.Students))
	for _, s := range snap.Students {
		students[s.ID] = s
	}
	alreadyAssigned := make(map[int64]bool, len(snap.AssignedStudents))
	for _, id := range snap.AssignedStudents {
		alreadyAssigned[id] = true
	}

	// Validate in creation order so that, of two preferences sharing a
	// rank, the earlier-created one survives.
	prefs := make([]Preference, len(snap.Preferences))
	copy(prefs, snap.Preferences)
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].ID < prefs[j].ID })

	var proposal Proposal
	seenRanks := make(map[int64]map[int]bool)
	participants := make(map[int64]bool)
	var candidates []Candidate

	for _, pref := range prefs {
		student, ok := students[pref.StudentID]
		if !ok {
			proposal.Issues = append(proposal.Issues, newIssue(pref, ReasonUnknownStudent))
			continue
		}
		course, ok := courses[pref.CourseID]
		if !ok {
			proposal.Issues = append(proposal.Issues, newIssue(pref, ReasonUnknownCourse))
			continue
		}
		if pref.Rank < 1 {
			proposal.Issues = append(proposal.Issues, newIssue(pref, ReasonInvalidRank))
			continue
		}
		if seenRanks[pref.StudentID] == nil {
			seenRanks[pref.StudentID] = make(map[int]bool)
		}
		if seenRanks[pref.StudentID][pref.Rank] {
			proposal.Issues = append(proposal.Issues, newIssue(pref, ReasonDuplicateRank))
			continue
		}
		seenRanks[pref.StudentID][pref.Rank] = true

		if alreadyAssigned[pref.StudentID] {
			continue
		}
		participants[pref.StudentID] = true
		candidates = append(candidates, Candidate{
			StudentID:    pref.StudentID,
			PreferenceID: pref.ID,
			CourseID:     pref.CourseID,
			Rank:         pref.Rank,
			Score:        a.scorer.Score(student, pref, course),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.Score != cj.Score {
			return ci.Score > cj.Score
		}
		if ci.Rank != cj.Rank {
			return ci.Rank < cj.Rank
		}
		if ci.PreferenceID != cj.PreferenceID {
			return ci.PreferenceID < cj.PreferenceID
		}
		return ci.StudentID < cj.StudentID
	})

	// Single greedy walk. Capacity is consumed from local counters seeded
	// with the snapshot vacancies; the authoritative re-check happens at
	// ledger commit time.
	remaining := make(map[int64]int, len(snap.Courses))
	for _, c := range snap.Courses {
		remaining[c.ID] = c.Vacancies
	}
	taken := make(map[int64]bool)

	for _, cand := range candidates {
		if taken[cand.StudentID] {
			continue
		}
		if remaining[cand.CourseID] <= 0 {
			continue
		}
		remaining[cand.CourseID]--
		taken[cand.StudentID] = true
		proposal.Tentative = append(proposal.Tentative, cand)
	}

	for id := range participants {
		if !taken[id] {
			proposal.Skipped = append(proposal.Skipped, id)
		}
	}
	sort.Slice(proposal.Skipped, func(i, j int) bool { return proposal.Skipped[i] < proposal.Skipped[j] })

	return proposal
}

func newIssue(pref Preference, reason string) Issue {
	return Issue{
		PreferenceID: pref.ID,
		StudentID:    pref.StudentID,
		CourseID:     pref.CourseID,
		Reason:       reason,
	}
}
