package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// courseStore is the catalog storage surface, implemented by
// repositories.CourseRepository.
type courseStore interface {
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	UpsertByCode(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetAll(ctx context.Context) ([]*models.Course, error)
	GetByProfessorID(ctx context.Context, professorID int64) ([]*models.Course, error)
	Delete(ctx context.Context, id int64) error
	CountPreferences(ctx context.Context, courseID int64) (int, error)
	CountAssignments(ctx context.Context, courseID int64) (int, error)
}

// capacityEditor is the ledger's capacity-edit surface
type capacityEditor interface {
	SetCapacity(ctx context.Context, courseID int64, vacancies int) error
}

// CourseService handles catalog operations. Descriptive fields are written
// through the repository; vacancy edits are handed to the ledger, which is
// the only writer of capacity.
type CourseService struct {
	courseRepo courseStore
	ledger     capacityEditor
	logger     zerolog.Logger
}

// NewCourseService creates a new course service
func NewCourseService(courseRepo courseStore, ledger capacityEditor, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		ledger:     ledger,
		logger:     logger,
	}
}

func courseFromRequest(req *dto.CourseRequest) (*models.Course, error) {
	var track *models.Track
	if req.Track != nil && *req.Track != "" {
		t, err := models.ParseTrack(*req.Track)
		if err != nil {
			return nil, apperrors.NewBadRequestError("unknown track: " + *req.Track)
		}
		track = &t
	}

	return &models.Course{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Title:           strings.TrimSpace(req.Title),
		Instructor:      req.Instructor,
		InstructorEmail: req.InstructorEmail,
		ProfessorID:     req.ProfessorID,
		Track:           track,
		Vacancies:       req.Vacancies,
		GradeThreshold:  req.GradeThreshold,
		SimilarCourses:  req.SimilarCourses,
	}, nil
}

// CreateCourse creates a new catalog entry
func (s *CourseService) CreateCourse(ctx context.Context, req *dto.CourseRequest) (*models.Course, error) {
	course, err := courseFromRequest(req)
	if err != nil {
		return nil, err
	}
	if course.Code == "" {
		return nil, apperrors.NewBadRequestError("course code cannot be empty")
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseId", course.ID).Str("code", course.Code).Msg("Course created")
	return course, nil
}

// UpdateCourse updates an existing catalog entry. The vacancy count is
// written through the ledger so an edit cannot overwrite a concurrent
// commit's decrement.
func (s *CourseService) UpdateCourse(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error) {
	course, err := courseFromRequest(req)
	if err != nil {
		return nil, err
	}
	course.ID = id

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	if err := s.ledger.SetCapacity(ctx, id, req.Vacancies); err != nil {
		return nil, err
	}

	return s.courseRepo.GetByID(ctx, id)
}

// GetCourse retrieves one course
func (s *CourseService) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// GetAllCourses lists the catalog
func (s *CourseService) GetAllCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.GetAll(ctx)
}

// DeleteCourse removes a catalog entry
func (s *CourseService) DeleteCourse(ctx context.Context, id int64) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("courseId", id).Msg("Course deleted")
	return nil
}

// GetProfessorCourses lists a professor's courses with application and
// assignment counts for the dashboard.
func (s *CourseService) GetProfessorCourses(ctx context.Context, professorID int64) ([]dto.ProfessorCourse, error) {
	courses, err := s.courseRepo.GetByProfessorID(ctx, professorID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ProfessorCourse, 0, len(courses))
	for _, c := range courses {
		applications, err := s.courseRepo.CountPreferences(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		assignments, err := s.courseRepo.CountAssignments(ctx, c.ID)
		if err != nil {
			return nil, err
		}

		pc := dto.ProfessorCourse{
			ID:               c.ID,
			Code:             c.Code,
			Title:            c.Title,
			Vacancies:        c.Vacancies,
			ApplicationCount: applications,
			AssignmentCount:  assignments,
		}
		if c.Track != nil {
			track := string(*c.Track)
			pc.Track = &track
		}
		out = append(out, pc)
	}

	return out, nil
}

// csvHeader is the expected column order of a catalog import file
var csvHeader = []string{"code", "title", "instructor", "instructor_email", "track", "vacancies", "grade_threshold", "similar_courses"}

// ImportCSV loads or refreshes the catalog from a CSV export. Rows are
// matched on course code; malformed rows are rejected individually and
// reported without failing the rest of the import. Vacancies from the
// file apply to new courses only; existing courses keep their
// ledger-managed count.
func (s *CourseService) ImportCSV(ctx context.Context, r io.Reader) (*dto.CourseImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewBadRequestError("empty or unreadable CSV file")
	}
	if len(header) < len(csvHeader) {
		return nil, apperrors.NewBadRequestError(
			"CSV header must contain columns: " + strings.Join(csvHeader, ", "))
	}

	result := &dto.CourseImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Rejected = append(result.Rejected, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		course, err := courseFromCSVRecord(record)
		if err != nil {
			result.Rejected = append(result.Rejected, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if err := s.courseRepo.UpsertByCode(ctx, course); err != nil {
			result.Rejected = append(result.Rejected, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	s.logger.Info().
		Int("imported", result.Imported).
		Int("rejected", len(result.Rejected)).
		Msg("Course catalog imported")

	return result, nil
}

func courseFromCSVRecord(record []string) (*models.Course, error) {
	if len(record) < len(csvHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(record))
	}

	code := strings.ToUpper(strings.TrimSpace(record[0]))
	title := strings.TrimSpace(record[1])
	if code == "" || title == "" {
		return nil, fmt.Errorf("code and title are required")
	}

	vacancies, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil || vacancies < 0 {
		return nil, fmt.Errorf("invalid vacancies value %q", record[5])
	}

	course := &models.Course{
		Code:      code,
		Title:     title,
		Vacancies: vacancies,
	}

	if v := strings.TrimSpace(record[2]); v != "" {
		course.Instructor = &v
	}
	if v := strings.TrimSpace(record[3]); v != "" {
		course.InstructorEmail = &v
	}
	if v := strings.TrimSpace(record[4]); v != "" {
		track, err := models.ParseTrack(v)
		if err != nil {
			return nil, err
		}
		course.Track = &track
	}
	if v := strings.TrimSpace(record[6]); v != "" {
		course.GradeThreshold = &v
	}
	if v := strings.TrimSpace(record[7]); v != "" {
		course.SimilarCourses = &v
	}

	return course, nil
}
