package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
	"github.com/dkaradag/tamatch/internal/pkg/matchengine"
)

// Snapshot sources. Implemented by the corresponding repositories; split
// into small interfaces so match runs can be tested without a database.
type (
	studentSource interface {
		GetAllActive(ctx context.Context) ([]*models.Student, error)
	}
	courseSource interface {
		GetAll(ctx context.Context) ([]*models.Course, error)
	}
	preferenceSource interface {
		GetAllActive(ctx context.Context) ([]*models.Preference, error)
	}
	assignedSource interface {
		AssignedStudentIDs(ctx context.Context) ([]int64, error)
	}
)

// MatchingService runs batch matching: it reads one consistent snapshot of
// students, preferences and courses, scores and allocates candidates, then
// commits each tentative pairing through the assignment ledger.
type MatchingService struct {
	students    studentSource
	courses     courseSource
	preferences preferenceSource
	assigned    assignedSource
	ledger      assignmentLedger
	weights     matchengine.Weights
	logger      zerolog.Logger
}

// NewMatchingService creates a new matching service. The weights are the
// configured defaults; a run request may override them.
func NewMatchingService(
	students studentSource,
	courses courseSource,
	preferences preferenceSource,
	assigned assignedSource,
	ledger assignmentLedger,
	weights matchengine.Weights,
	logger zerolog.Logger,
) *MatchingService {
	return &MatchingService{
		students:    students,
		courses:     courses,
		preferences: preferences,
		assigned:    assigned,
		ledger:      ledger,
		weights:     weights,
		logger:      logger,
	}
}

// resolveWeights applies per-run overrides on top of the configured weights
func (s *MatchingService) resolveWeights(req *dto.MatchRequest) (matchengine.Weights, error) {
	weights := s.weights
	if req != nil {
		if req.RankWeight != nil {
			weights.Rank = *req.RankWeight
		}
		if req.TrackWeight != nil {
			weights.Track = *req.TrackWeight
		}
		if req.ProfileWeight != nil {
			weights.Profile = *req.ProfileWeight
		}
	}
	if err := weights.Validate(); err != nil {
		return matchengine.Weights{}, apperrors.NewBadRequestError(err.Error())
	}
	return weights, nil
}

// loadSnapshot reads the full matching input. Any read failure aborts the
// run with apperrors.ErrSnapshotUnavailable; a partial snapshot must never
// be matched against.
func (s *MatchingService) loadSnapshot(ctx context.Context) (matchengine.Snapshot, []*models.Student, []*models.Course, error) {
	students, err := s.students.GetAllActive(ctx)
	if err != nil {
		return matchengine.Snapshot{}, nil, nil, fmt.Errorf("%w: students: %v", apperrors.ErrSnapshotUnavailable, err)
	}
	courses, err := s.courses.GetAll(ctx)
	if err != nil {
		return matchengine.Snapshot{}, nil, nil, fmt.Errorf("%w: courses: %v", apperrors.ErrSnapshotUnavailable, err)
	}
	preferences, err := s.preferences.GetAllActive(ctx)
	if err != nil {
		return matchengine.Snapshot{}, nil, nil, fmt.Errorf("%w: preferences: %v", apperrors.ErrSnapshotUnavailable, err)
	}
	assignedIDs, err := s.assigned.AssignedStudentIDs(ctx)
	if err != nil {
		return matchengine.Snapshot{}, nil, nil, fmt.Errorf("%w: assignments: %v", apperrors.ErrSnapshotUnavailable, err)
	}

	snap := matchengine.Snapshot{
		Students:         make([]matchengine.Student, 0, len(students)),
		Courses:          make([]matchengine.Course, 0, len(courses)),
		Preferences:      make([]matchengine.Preference, 0, len(preferences)),
		AssignedStudents: assignedIDs,
	}
	for _, st := range students {
		interests := make([]string, 0, len(st.Interests))
		for _, t := range st.Interests {
			interests = append(interests, string(t))
		}
		snap.Students = append(snap.Students, matchengine.Student{
			ID:            st.ID,
			HasResume:     st.HasResume(),
			HasTranscript: st.HasTranscript(),
			Interests:     interests,
		})
	}
	for _, c := range courses {
		track := ""
		if c.Track != nil {
			track = string(*c.Track)
		}
		snap.Courses = append(snap.Courses, matchengine.Course{
			ID:        c.ID,
			Track:     track,
			Vacancies: c.Vacancies,
		})
	}
	for _, p := range preferences {
		track := ""
		if p.Track != nil {
			track = string(*p.Track)
		}
		snap.Preferences = append(snap.Preferences, matchengine.Preference{
			ID:          p.ID,
			StudentID:   p.StudentID,
			CourseID:    p.CourseID,
			Rank:        p.Rank,
			Track:       track,
			Highlighted: p.Highlighted,
		})
	}

	return snap, students, courses, nil
}

// RunMatch executes one batch matching run. The allocation itself is pure
// and deterministic; commits go through the ledger one candidate at a time,
// and a candidate the ledger rejects (course filled by a concurrent manual
// commit, student assigned meanwhile) is skipped rather than failing the
// run.
func (s *MatchingService) RunMatch(ctx context.Context, req *dto.MatchRequest) (*dto.MatchResult, error) {
	weights, err := s.resolveWeights(req)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	runLog := s.logger.With().Str("runId", runID).Logger()

	snap, students, courses, err := s.loadSnapshot(ctx)
	if err != nil {
		runLog.Error().Err(err).Msg("Match run aborted, snapshot unavailable")
		return nil, err
	}

	runLog.Info().
		Int("students", len(snap.Students)).
		Int("courses", len(snap.Courses)).
		Int("preferences", len(snap.Preferences)).
		Int("alreadyAssigned", len(snap.AssignedStudents)).
		Msg("Match run started")

	allocator := matchengine.NewAllocator(matchengine.NewScorer(weights))
	proposal := allocator.Allocate(snap)

	uniByStudent := make(map[int64]string, len(students))
	for _, st := range students {
		if st.User != nil {
			uniByStudent[st.ID] = st.User.UNI
		}
	}
	codeByCourse := make(map[int64]string, len(courses))
	for _, c := range courses {
		codeByCourse[c.ID] = c.Code
	}

	result := &dto.MatchResult{
		RunID:       runID,
		Assignments: make([]dto.MatchAssignment, 0, len(proposal.Tentative)),
		Skipped:     append([]int64(nil), proposal.Skipped...),
	}
	for _, issue := range proposal.Issues {
		result.Issues = append(result.Issues, dto.MatchIssue{
			PreferenceID: issue.PreferenceID,
			StudentID:    issue.StudentID,
			CourseID:     issue.CourseID,
			Reason:       issue.Reason,
		})
	}

	for _, cand := range proposal.Tentative {
		assignment, err := s.ledger.Commit(ctx, cand.StudentID, cand.CourseID, models.AssignmentPending)
		if err != nil {
			// The proposal was computed against a snapshot; the ledger is
			// the authority at commit time. A rejected candidate costs the
			// student this run, nothing more.
			if errors.Is(err, apperrors.ErrCapacityExceeded) || errors.Is(err, apperrors.ErrAlreadyAssigned) {
				runLog.Warn().
					Err(err).
					Int64("studentId", cand.StudentID).
					Int64("courseId", cand.CourseID).
					Msg("Tentative assignment rejected at commit")
			} else {
				runLog.Error().
					Err(err).
					Int64("studentId", cand.StudentID).
					Int64("courseId", cand.CourseID).
					Msg("Assignment commit failed")
			}
			result.Skipped = append(result.Skipped, cand.StudentID)
			continue
		}

		result.Assignments = append(result.Assignments, dto.MatchAssignment{
			AssignmentID: assignment.ID,
			StudentID:    cand.StudentID,
			StudentUNI:   uniByStudent[cand.StudentID],
			CourseID:     cand.CourseID,
			CourseCode:   codeByCourse[cand.CourseID],
			Rank:         cand.Rank,
			Score:        cand.Score,
		})
	}

	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i] < result.Skipped[j] })

	runLog.Info().
		Int("committed", len(result.Assignments)).
		Int("skipped", len(result.Skipped)).
		Int("issues", len(result.Issues)).
		Msg("Match run finished")

	return result, nil
}
