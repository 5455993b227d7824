package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// feedbackStore is the feedback storage surface, implemented by
// repositories.FeedbackRepository.
type feedbackStore interface {
	UpsertByAssignment(ctx context.Context, feedback *models.Feedback) error
	GetByCourse(ctx context.Context, courseID int64) ([]*models.Feedback, error)
}

// FeedbackService handles instructor reviews of completed assignments:
// submitting a rating with optional comments and aggregating them into a
// per-course summary.
type FeedbackService struct {
	feedbackRepo   feedbackStore
	assignmentRepo assignmentReader
	courseRepo     courseReader
	logger         zerolog.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(
	feedbackRepo feedbackStore,
	assignmentRepo assignmentReader,
	courseRepo courseReader,
	logger zerolog.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo:   feedbackRepo,
		assignmentRepo: assignmentRepo,
		courseRepo:     courseRepo,
		logger:         logger,
	}
}

// SubmitFeedback records an instructor's review of one assignment. The
// student and course in the request must match the assignment, and a
// professor may only review assignments to their own courses. Resubmitting
// replaces the earlier review.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, actorUserID int64, actorRole models.RoleType, req *dto.SubmitFeedbackRequest) (*models.Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.NewBadRequestError("rating must be between 1 and 5")
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.StudentID != req.StudentID || assignment.CourseID != req.CourseID {
		return nil, apperrors.NewBadRequestError("assignment does not match the provided student and course")
	}

	if actorRole != models.RoleAdmin {
		course, err := s.courseRepo.GetByID(ctx, assignment.CourseID)
		if err != nil {
			return nil, err
		}
		if course.ProfessorID == nil || *course.ProfessorID != actorUserID {
			return nil, apperrors.ErrPermissionDenied
		}
	}

	feedback := &models.Feedback{
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
		CourseID:     req.CourseID,
		Rating:       req.Rating,
		Comments:     req.Comments,
	}
	if err := s.feedbackRepo.UpsertByAssignment(ctx, feedback); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("assignmentId", req.AssignmentID).
		Int("rating", req.Rating).
		Int64("actorId", actorUserID).
		Msg("Feedback submitted")

	return feedback, nil
}

// GetCourseSummary aggregates the reviews of one course. The average and
// normalized score are omitted while the course has no reviews; only
// non-empty comments are listed.
func (s *FeedbackService) GetCourseSummary(ctx context.Context, courseID int64) (*dto.FeedbackSummary, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	entries, err := s.feedbackRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	summary := &dto.FeedbackSummary{
		CourseID:    courseID,
		ReviewCount: len(entries),
		Comments:    []string{},
	}
	if len(entries) == 0 {
		return summary, nil
	}

	var ratingSum, normalizedSum float64
	for _, entry := range entries {
		ratingSum += float64(entry.Rating)
		normalizedSum += normalizeRating(entry.Rating)
		if entry.Comments != nil {
			if comment := strings.TrimSpace(*entry.Comments); comment != "" {
				summary.Comments = append(summary.Comments, comment)
			}
		}
	}

	average := ratingSum / float64(len(entries))
	normalized := normalizedSum / float64(len(entries))
	summary.AverageRating = &average
	summary.NormalizedScore = &normalized

	return summary, nil
}

// normalizeRating maps a 1-5 rating onto a 0-100 scale. Out-of-range values
// from older rows are clamped rather than rejected.
func normalizeRating(rating int) float64 {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	return float64(rating) / 5 * 100
}
