package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/app/repositories"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// StudentService handles student profile operations
type StudentService struct {
	studentRepo *repositories.StudentRepository
	logger      zerolog.Logger
}

// NewStudentService creates a new student service
func NewStudentService(studentRepo *repositories.StudentRepository, logger zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		logger:      logger,
	}
}

// GetProfile retrieves the profile of the authenticated user's account
func (s *StudentService) GetProfile(ctx context.Context, userID int64) (*models.Student, error) {
	return s.studentRepo.GetByUserID(ctx, userID)
}

// UpdateProfile creates or updates the profile of a user. Fields omitted
// from the request are cleared; the client sends the full profile.
func (s *StudentService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Student, error) {
	interests := make([]models.Track, 0, len(req.Interests))
	for _, raw := range req.Interests {
		track, err := models.ParseTrack(raw)
		if err != nil {
			return nil, apperrors.NewBadRequestError("unknown interest track: " + raw)
		}
		interests = append(interests, track)
	}

	var level *models.StudyLevel
	if req.LevelOfStudy != nil {
		l := models.StudyLevel(*req.LevelOfStudy)
		if l != models.LevelUndergrad && l != models.LevelMasters {
			return nil, apperrors.NewBadRequestError("level of study must be undergraduate or masters")
		}
		level = &l
	}

	student := &models.Student{
		UserID:         userID,
		FullName:       req.FullName,
		DegreeProgram:  req.DegreeProgram,
		LevelOfStudy:   level,
		Interests:      interests,
		ResumePath:     req.ResumePath,
		TranscriptPath: req.TranscriptPath,
		PhotoURL:       req.PhotoURL,
	}

	if err := s.studentRepo.Upsert(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("userId", userID).Int64("studentId", student.ID).Msg("Student profile updated")

	return student, nil
}

// GetStudentDetails retrieves a student with account details for staff views
func (s *StudentService) GetStudentDetails(ctx context.Context, studentID int64) (*models.Student, error) {
	return s.studentRepo.GetDetails(ctx, studentID)
}

// GetAllStudents lists all active students
func (s *StudentService) GetAllStudents(ctx context.Context) ([]*models.Student, error) {
	return s.studentRepo.GetAllActive(ctx)
}

// SearchStudents finds students by UNI or email fragment for the
// assignment picker. Queries shorter than two characters are rejected so
// a lookup never scans the whole roster.
func (s *StudentService) SearchStudents(ctx context.Context, query string) ([]dto.StudentSummary, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, apperrors.NewBadRequestError("search query must be at least 2 characters")
	}

	students, err := s.studentRepo.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]dto.StudentSummary, 0, len(students))
	for _, student := range students {
		summary := dto.StudentSummary{
			StudentID: student.ID,
			FullName:  student.FullName,
		}
		if student.User != nil {
			summary.UNI = student.User.UNI
			summary.Email = student.User.Email
		}
		out = append(out, summary)
	}

	return out, nil
}
