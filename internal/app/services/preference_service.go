package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/app/repositories"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// PreferenceService handles student course preferences: creation,
// withdrawal, atomic reordering and the professor-side highlight flag.
type PreferenceService struct {
	preferenceRepo *repositories.PreferenceRepository
	studentRepo    *repositories.StudentRepository
	courseRepo     *repositories.CourseRepository
	assignmentRepo *repositories.AssignmentRepository
	db             txRunner
	logger         zerolog.Logger
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(
	preferenceRepo *repositories.PreferenceRepository,
	studentRepo *repositories.StudentRepository,
	courseRepo *repositories.CourseRepository,
	assignmentRepo *repositories.AssignmentRepository,
	db txRunner,
	logger zerolog.Logger,
) *PreferenceService {
	return &PreferenceService{
		preferenceRepo: preferenceRepo,
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		assignmentRepo: assignmentRepo,
		db:             db,
		logger:         logger,
	}
}

// CreatePreference adds a ranked preference for the authenticated student.
// Ranks must be positive and unique per student but need not be contiguous.
func (s *PreferenceService) CreatePreference(ctx context.Context, userID int64, req *dto.CreatePreferenceRequest) (*models.Preference, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Rank < 1 {
		return nil, apperrors.NewBadRequestError("rank must be a positive number")
	}

	if _, err := s.courseRepo.GetByID(ctx, req.CourseID); err != nil {
		return nil, err
	}

	var track *models.Track
	if req.Track != nil && *req.Track != "" {
		t, err := models.ParseTrack(*req.Track)
		if err != nil {
			return nil, apperrors.NewBadRequestError("unknown track: " + *req.Track)
		}
		track = &t
	}

	pref := &models.Preference{
		StudentID: student.ID,
		CourseID:  req.CourseID,
		Rank:      req.Rank,
		Track:     track,
		Notes:     req.Notes,
	}

	if err := s.preferenceRepo.Create(ctx, pref); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("studentId", student.ID).
		Int64("courseId", req.CourseID).
		Int("rank", req.Rank).
		Msg("Preference created")

	return pref, nil
}

// GetPreferences lists the authenticated student's preferences in rank order
func (s *PreferenceService) GetPreferences(ctx context.Context, userID int64) ([]dto.PreferenceResponse, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs, err := s.preferenceRepo.GetByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PreferenceResponse, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, toPreferenceResponse(p))
	}
	return out, nil
}

func toPreferenceResponse(p *models.Preference) dto.PreferenceResponse {
	resp := dto.PreferenceResponse{
		ID:          p.ID,
		CourseID:    p.CourseID,
		Rank:        p.Rank,
		Highlighted: p.Highlighted,
		Notes:       p.Notes,
	}
	if p.Track != nil {
		track := string(*p.Track)
		resp.Track = &track
	}
	if p.Course != nil {
		resp.CourseCode = p.Course.Code
		resp.CourseTitle = p.Course.Title
	}
	return resp
}

// DeletePreference withdraws one of the authenticated student's preferences
func (s *PreferenceService) DeletePreference(ctx context.Context, userID, preferenceID int64) error {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	return s.preferenceRepo.Delete(ctx, preferenceID, student.ID)
}

// ReorderPreferences renumbers the student's preferences to ranks 1..n in
// the requested order, atomically. Either the entire new ordering lands or
// the old one stays.
func (s *PreferenceService) ReorderPreferences(ctx context.Context, userID int64, orderedIDs []int64) ([]dto.PreferenceResponse, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return nil, apperrors.NewBadRequestError("reorder lists a preference twice")
		}
		seen[id] = struct{}{}
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.preferenceRepo.Reorder(ctx, tx, student.ID, orderedIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("studentId", student.ID).Int("count", len(orderedIDs)).Msg("Preferences reordered")

	return s.GetPreferences(ctx, userID)
}

// SetHighlight toggles the highlight flag on a preference. Professors may
// only flag applications to their own courses; admins may flag any.
func (s *PreferenceService) SetHighlight(ctx context.Context, actorUserID int64, actorRole models.RoleType, preferenceID int64, highlighted bool) error {
	pref, err := s.preferenceRepo.GetByID(ctx, preferenceID)
	if err != nil {
		return err
	}

	if actorRole != models.RoleAdmin {
		course, err := s.courseRepo.GetByID(ctx, pref.CourseID)
		if err != nil {
			return err
		}
		if course.ProfessorID == nil || *course.ProfessorID != actorUserID {
			return apperrors.ErrPermissionDenied
		}
	}

	if err := s.preferenceRepo.SetHighlighted(ctx, preferenceID, highlighted); err != nil {
		return err
	}

	s.logger.Debug().
		Int64("preferenceId", preferenceID).
		Bool("highlighted", highlighted).
		Int64("actorId", actorUserID).
		Msg("Preference highlight changed")

	return nil
}

// GetCourseApplications lists all applications to one course for its owning
// professor (or an admin), with student context and assignment status.
func (s *PreferenceService) GetCourseApplications(ctx context.Context, actorUserID int64, actorRole models.RoleType, courseID int64) ([]dto.CourseApplication, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin {
		if course.ProfessorID == nil || *course.ProfessorID != actorUserID {
			return nil, apperrors.ErrPermissionDenied
		}
	}

	prefs, err := s.preferenceRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	assignedStudents := make(map[int64]struct{}, len(assignments))
	for _, a := range assignments {
		assignedStudents[a.StudentID] = struct{}{}
	}

	out := make([]dto.CourseApplication, 0, len(prefs))
	for _, p := range prefs {
		app := dto.CourseApplication{
			PreferenceID: p.ID,
			StudentID:    p.StudentID,
			Rank:         p.Rank,
			Highlighted:  p.Highlighted,
			Notes:        p.Notes,
		}
		if _, ok := assignedStudents[p.StudentID]; ok {
			app.IsAssigned = true
		}

		student, err := s.studentRepo.GetDetails(ctx, p.StudentID)
		if err == nil {
			app.StudentName = student.FullName
			if student.User != nil {
				app.StudentUNI = student.User.UNI
				app.StudentEmail = student.User.Email
			}
		}

		out = append(out, app)
	}

	return out, nil
}
