package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
	"github.com/dkaradag/tamatch/internal/pkg/dberrors"
)

// PreferenceRepository handles database operations for student course
// preferences (the preference store).
type PreferenceRepository struct {
	db *pgxpool.Pool
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{
		db: db,
	}
}

const preferenceColumns = `id, student_id, course_id, rank, track, highlighted, notes, created_at, updated_at`

func scanPreference(row pgx.Row) (*models.Preference, error) {
	var pref models.Preference
	err := row.Scan(
		&pref.ID,
		&pref.StudentID,
		&pref.CourseID,
		&pref.Rank,
		&pref.Track,
		&pref.Highlighted,
		&pref.Notes,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Create creates a new preference for a student
func (r *PreferenceRepository) Create(ctx context.Context, pref *models.Preference) error {
	query := `
		INSERT INTO preferences (student_id, course_id, rank, track, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, highlighted, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		pref.StudentID, pref.CourseID, pref.Rank, pref.Track, pref.Notes,
	).Scan(&pref.ID, &pref.Highlighted, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_preference_student_course") {
			return apperrors.ErrDuplicatePreference
		}
		if dberrors.IsDuplicateConstraintError(err, "uq_preference_student_rank") {
			return apperrors.ErrDuplicateRank
		}
		return fmt.Errorf("error creating preference: %w", err)
	}

	return nil
}

// GetByID retrieves a preference by ID
func (r *PreferenceRepository) GetByID(ctx context.Context, id int64) (*models.Preference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM preferences WHERE id = $1`

	pref, err := scanPreference(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("error retrieving preference: %w", err)
	}
	return pref, nil
}

// GetByStudent retrieves a student's preferences in rank order with course
// details attached.
func (r *PreferenceRepository) GetByStudent(ctx context.Context, studentID int64) ([]*models.Preference, error) {
	query := `
		SELECT p.id, p.student_id, p.course_id, p.rank, p.track, p.highlighted, p.notes,
			p.created_at, p.updated_at,
			c.id, c.code, c.title, c.track, c.vacancies
		FROM preferences p
		JOIN courses c ON c.id = p.course_id
		WHERE p.student_id = $1
		ORDER BY p.rank
	`

	return r.queryWithCourse(ctx, query, studentID)
}

// GetByCourse retrieves all preferences naming a course, rank order.
func (r *PreferenceRepository) GetByCourse(ctx context.Context, courseID int64) ([]*models.Preference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM preferences WHERE course_id = $1 ORDER BY rank`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*models.Preference
	for rows.Next() {
		pref, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return prefs, nil
}

// GetAllActive retrieves every preference of active students, in creation
// order. This is the preference side of a match snapshot.
func (r *PreferenceRepository) GetAllActive(ctx context.Context) ([]*models.Preference, error) {
	query := `
		SELECT p.id, p.student_id, p.course_id, p.rank, p.track, p.highlighted, p.notes,
			p.created_at, p.updated_at
		FROM preferences p
		JOIN student_profiles sp ON sp.id = p.student_id
		JOIN users u ON u.id = sp.user_id
		WHERE u.is_active
		ORDER BY p.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*models.Preference
	for rows.Next() {
		pref, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return prefs, nil
}

// GetHighlightedByStudent retrieves a student's highlighted preferences with
// course details, rank order. The conflict detector reads these.
func (r *PreferenceRepository) GetHighlightedByStudent(ctx context.Context, studentID int64) ([]*models.Preference, error) {
	query := `
		SELECT p.id, p.student_id, p.course_id, p.rank, p.track, p.highlighted, p.notes,
			p.created_at, p.updated_at,
			c.id, c.code, c.title, c.track, c.vacancies
		FROM preferences p
		JOIN courses c ON c.id = p.course_id
		WHERE p.student_id = $1 AND p.highlighted
		ORDER BY p.rank
	`

	return r.queryWithCourse(ctx, query, studentID)
}

func (r *PreferenceRepository) queryWithCourse(ctx context.Context, query string, args ...interface{}) ([]*models.Preference, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*models.Preference
	for rows.Next() {
		var pref models.Preference
		var course models.Course
		err := rows.Scan(
			&pref.ID, &pref.StudentID, &pref.CourseID, &pref.Rank, &pref.Track,
			&pref.Highlighted, &pref.Notes, &pref.CreatedAt, &pref.UpdatedAt,
			&course.ID, &course.Code, &course.Title, &course.Track, &course.Vacancies,
		)
		if err != nil {
			return nil, err
		}
		pref.Course = &course
		prefs = append(prefs, &pref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return prefs, nil
}

// SetHighlighted sets the highlighted flag of a preference
func (r *PreferenceRepository) SetHighlighted(ctx context.Context, id int64, highlighted bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE preferences SET highlighted = $1, updated_at = NOW() WHERE id = $2`, highlighted, id)
	if err != nil {
		return fmt.Errorf("error updating highlight: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPreferenceNotFound
	}
	return nil
}

// Delete removes a preference owned by a student (withdrawal)
func (r *PreferenceRepository) Delete(ctx context.Context, id, studentID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM preferences WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return fmt.Errorf("error deleting preference: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPreferenceNotFound
	}
	return nil
}

// Reorder renumbers a student's preferences to match the given ID sequence
// (first ID gets rank 1 and so on) inside the caller's transaction. Ranks
// are parked outside the positive range first so the per-student uniqueness
// constraint cannot trip mid-renumbering.
func (r *PreferenceRepository) Reorder(ctx context.Context, tx pgx.Tx, studentID int64, orderedIDs []int64) error {
	var count int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM preferences WHERE student_id = $1`, studentID).Scan(&count)
	if err != nil {
		return fmt.Errorf("error counting preferences: %w", err)
	}
	if count != len(orderedIDs) {
		return apperrors.NewBadRequestError("reorder must list every preference of the student exactly once")
	}

	_, err = tx.Exec(ctx,
		`UPDATE preferences SET rank = -rank WHERE student_id = $1`, studentID)
	if err != nil {
		return fmt.Errorf("error parking ranks: %w", err)
	}

	for i, id := range orderedIDs {
		cmdTag, err := tx.Exec(ctx,
			`UPDATE preferences SET rank = $1, updated_at = NOW() WHERE id = $2 AND student_id = $3`,
			i+1, id, studentID)
		if err != nil {
			return fmt.Errorf("error renumbering preference %d: %w", id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrPreferenceNotFound
		}
	}

	return nil
}
