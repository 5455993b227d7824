package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
	"github.com/dkaradag/tamatch/internal/pkg/dberrors"
)

// CourseRepository handles database operations for the course catalog.
// Vacancy counts are read here but mutated only through the assignment
// ledger's transactional methods on AssignmentRepository.
type CourseRepository struct {
	db *pgxpool.Pool
	// Use squirrel instance with placeholder format
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var courseColumns = []string{
	"id", "code", "title", "instructor", "instructor_email", "professor_id",
	"track", "vacancies", "grade_threshold", "similar_courses", "created_at", "updated_at",
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID,
		&course.Code,
		&course.Title,
		&course.Instructor,
		&course.InstructorEmail,
		&course.ProfessorID,
		&course.Track,
		&course.Vacancies,
		&course.GradeThreshold,
		&course.SimilarCourses,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Create creates a new course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("code", "title", "instructor", "instructor_email", "professor_id",
			"track", "vacancies", "grade_threshold", "similar_courses").
		Values(course.Code, course.Title, course.Instructor, course.InstructorEmail,
			course.ProfessorID, course.Track, course.Vacancies, course.GradeThreshold, course.SimilarCourses).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building course insert: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrCourseAlreadyExists
		}
		return fmt.Errorf("error creating course: %w", err)
	}

	return nil
}

// Update updates a course's descriptive fields. Vacancies are never
// written here; capacity edits go through the ledger so they cannot race
// a commit's decrement.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Update("courses").
		Set("code", course.Code).
		Set("title", course.Title).
		Set("instructor", course.Instructor).
		Set("instructor_email", course.InstructorEmail).
		Set("professor_id", course.ProfessorID).
		Set("track", course.Track).
		Set("grade_threshold", course.GradeThreshold).
		Set("similar_courses", course.SimilarCourses).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building course update: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrCourseAlreadyExists
		}
		return fmt.Errorf("error updating course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}

// UpsertByCode inserts a course or updates the existing row with the same
// code. Used by CSV import. New rows take their vacancies from the file;
// rows that already exist keep their current count, which the ledger owns.
func (r *CourseRepository) UpsertByCode(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses
			(code, title, instructor, instructor_email, professor_id, track, vacancies, grade_threshold, similar_courses)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			title = EXCLUDED.title,
			instructor = EXCLUDED.instructor,
			instructor_email = EXCLUDED.instructor_email,
			track = EXCLUDED.track,
			grade_threshold = EXCLUDED.grade_threshold,
			similar_courses = EXCLUDED.similar_courses,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		course.Code, course.Title, course.Instructor, course.InstructorEmail, course.ProfessorID,
		course.Track, course.Vacancies, course.GradeThreshold, course.SimilarCourses,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building course select: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	return course, nil
}

// GetAll retrieves all courses ordered by code
func (r *CourseRepository) GetAll(ctx context.Context) ([]*models.Course, error) {
	return r.list(ctx, nil)
}

// GetByProfessorID retrieves all courses owned by a professor account
func (r *CourseRepository) GetByProfessorID(ctx context.Context, professorID int64) ([]*models.Course, error) {
	return r.list(ctx, squirrel.Eq{"professor_id": professorID})
}

func (r *CourseRepository) list(ctx context.Context, where interface{}) ([]*models.Course, error) {
	builder := r.sb.Select(courseColumns...).From("courses").OrderBy("code")
	if where != nil {
		builder = builder.Where(where)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building course list: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

// Delete deletes a course by ID
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building course delete: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}

// CountPreferences counts the applications a course has received
func (r *CourseRepository) CountPreferences(ctx context.Context, courseID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM preferences WHERE course_id = $1`, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting preferences: %w", err)
	}
	return count, nil
}

// CountAssignments counts the confirmed assignments a course holds
func (r *CourseRepository) CountAssignments(ctx context.Context, courseID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE course_id = $1`, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting assignments: %w", err)
	}
	return count, nil
}
