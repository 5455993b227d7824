package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkaradag/tamatch/internal/app/models"
)

// FeedbackRepository handles database operations for instructor feedback
type FeedbackRepository struct {
	db *pgxpool.Pool
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{
		db: db,
	}
}

// UpsertByAssignment creates the feedback row for an assignment, or
// replaces its rating and comments when the instructor resubmits
func (r *FeedbackRepository) UpsertByAssignment(ctx context.Context, feedback *models.Feedback) error {
	query := `
		INSERT INTO instructor_feedback (assignment_id, student_id, course_id, rating, comments)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (assignment_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			comments = EXCLUDED.comments,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		feedback.AssignmentID,
		feedback.StudentID,
		feedback.CourseID,
		feedback.Rating,
		feedback.Comments,
	).Scan(&feedback.ID, &feedback.CreatedAt, &feedback.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting feedback: %w", err)
	}

	return nil
}

// GetByCourse retrieves all feedback rows for one course
func (r *FeedbackRepository) GetByCourse(ctx context.Context, courseID int64) ([]*models.Feedback, error) {
	query := `
		SELECT id, assignment_id, student_id, course_id, rating, comments, created_at, updated_at
		FROM instructor_feedback
		WHERE course_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving feedback: %w", err)
	}
	defer rows.Close()

	var entries []*models.Feedback
	for rows.Next() {
		var f models.Feedback
		err := rows.Scan(
			&f.ID, &f.AssignmentID, &f.StudentID, &f.CourseID,
			&f.Rating, &f.Comments, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
