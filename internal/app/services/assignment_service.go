package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/models/dto"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// Read surfaces the assignment service depends on, implemented by the
// corresponding repositories.
type (
	assignmentReader interface {
		GetByID(ctx context.Context, id int64) (*models.Assignment, error)
		GetAllDetailed(ctx context.Context) ([]*models.Assignment, error)
	}
	highlightedSource interface {
		GetHighlightedByStudent(ctx context.Context, studentID int64) ([]*models.Preference, error)
	}
	studentReader interface {
		GetByID(ctx context.Context, id int64) (*models.Student, error)
		GetDetails(ctx context.Context, id int64) (*models.Student, error)
	}
	courseReader interface {
		GetByID(ctx context.Context, id int64) (*models.Course, error)
	}
)

// AssignmentService handles the manual assignment path: proposing a
// pairing (with conflict detection), committing it through the ledger,
// listing and removing assignments, and composing notification drafts.
type AssignmentService struct {
	assignmentRepo assignmentReader
	preferenceRepo highlightedSource
	studentRepo    studentReader
	courseRepo     courseReader
	ledger         assignmentLedger
	logger         zerolog.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	assignmentRepo assignmentReader,
	preferenceRepo highlightedSource,
	studentRepo studentReader,
	courseRepo courseReader,
	ledger assignmentLedger,
	logger zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		preferenceRepo: preferenceRepo,
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		ledger:         ledger,
		logger:         logger,
	}
}

// ProposeAssignment checks a manual pairing before the admin commits it and
// lists the student's other highlighted preferences as advisory conflicts.
// An empty conflict list means no other professor has flagged the student;
// a non-empty one never blocks the commit.
func (s *AssignmentService) ProposeAssignment(ctx context.Context, studentID, courseID int64) (*dto.ProposalResponse, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	conflicts, err := s.detectConflicts(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	return &dto.ProposalResponse{
		StudentID: studentID,
		CourseID:  courseID,
		Conflicts: conflicts,
	}, nil
}

// detectConflicts lists the student's highlighted preferences pointing at
// courses other than the proposed one.
func (s *AssignmentService) detectConflicts(ctx context.Context, studentID, courseID int64) ([]dto.ConflictItem, error) {
	highlighted, err := s.preferenceRepo.GetHighlightedByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error detecting conflicts: %w", err)
	}

	conflicts := make([]dto.ConflictItem, 0, len(highlighted))
	for _, pref := range highlighted {
		if pref.CourseID == courseID {
			continue
		}
		item := dto.ConflictItem{
			PreferenceID: pref.ID,
			CourseID:     pref.CourseID,
			Rank:         pref.Rank,
		}
		if pref.Course != nil {
			item.CourseCode = pref.Course.Code
			item.CourseTitle = pref.Course.Title
		}
		conflicts = append(conflicts, item)
	}

	return conflicts, nil
}

// ConfirmAssignment commits a manual pairing through the ledger. Conflicts
// reported at proposal time are advisory only and not re-checked here.
func (s *AssignmentService) ConfirmAssignment(ctx context.Context, studentID, courseID int64) (*models.Assignment, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	return s.ledger.Commit(ctx, studentID, courseID, models.AssignmentConfirmed)
}

// verifyCourseOwnership resolves the course and checks the actor may manage
// its assignments. Admins may manage any course; professors only their own.
func (s *AssignmentService) verifyCourseOwnership(ctx context.Context, actorUserID int64, actorRole models.RoleType, courseID int64) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin {
		if course.ProfessorID == nil || *course.ProfessorID != actorUserID {
			return nil, apperrors.ErrPermissionDenied
		}
	}
	return course, nil
}

// AssignForCourse commits a student to a course on behalf of its owning
// professor (or an admin) through the ledger.
func (s *AssignmentService) AssignForCourse(ctx context.Context, actorUserID int64, actorRole models.RoleType, courseID, studentID int64) (*models.Assignment, error) {
	if _, err := s.verifyCourseOwnership(ctx, actorUserID, actorRole, courseID); err != nil {
		return nil, err
	}
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	assignment, err := s.ledger.Commit(ctx, studentID, courseID, models.AssignmentConfirmed)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("assignmentId", assignment.ID).
		Int64("courseId", courseID).
		Int64("studentId", studentID).
		Int64("actorId", actorUserID).
		Msg("Assignment committed for course")

	return assignment, nil
}

// RemoveForCourse deletes one of a course's assignments on behalf of its
// owning professor (or an admin). The assignment must belong to the course.
func (s *AssignmentService) RemoveForCourse(ctx context.Context, actorUserID int64, actorRole models.RoleType, courseID, assignmentID int64) error {
	if _, err := s.verifyCourseOwnership(ctx, actorUserID, actorRole, courseID); err != nil {
		return err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment.CourseID != courseID {
		return apperrors.ErrAssignmentNotFound
	}

	if _, err := s.ledger.Remove(ctx, assignmentID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("assignmentId", assignmentID).
		Int64("courseId", courseID).
		Int64("actorId", actorUserID).
		Msg("Assignment removed for course")

	return nil
}

// RemoveAssignment deletes an assignment and restores the course vacancy
func (s *AssignmentService) RemoveAssignment(ctx context.Context, assignmentID int64) error {
	_, err := s.ledger.Remove(ctx, assignmentID)
	return err
}

// GetAllAssignments lists all assignments with student and course context
func (s *AssignmentService) GetAllAssignments(ctx context.Context) ([]dto.AssignmentDetails, error) {
	assignments, err := s.assignmentRepo.GetAllDetailed(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving assignments: %w", err)
	}

	details := make([]dto.AssignmentDetails, 0, len(assignments))
	for _, a := range assignments {
		d := dto.AssignmentDetails{
			ID:        a.ID,
			StudentID: a.StudentID,
			CourseID:  a.CourseID,
			Status:    string(a.Status),
			CreatedAt: a.CreatedAt,
		}
		if a.Student != nil {
			d.StudentName = a.Student.FullName
			if a.Student.User != nil {
				d.StudentUNI = a.Student.User.UNI
			}
		}
		if a.Course != nil {
			d.CourseCode = a.Course.Code
			d.CourseTitle = a.Course.Title
			if a.Course.Instructor != nil {
				d.Instructor = *a.Course.Instructor
			}
		}
		details = append(details, d)
	}

	return details, nil
}

// ComposeNotification builds the email draft announcing one committed
// assignment. The student is the addressee and the course instructor is
// copied when an address is on file. Delivery is the caller's concern.
func (s *AssignmentService) ComposeNotification(ctx context.Context, assignmentID int64) (*dto.EmailPayload, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetDetails(ctx, assignment.StudentID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}

	payload := &dto.EmailPayload{
		Subject: fmt.Sprintf("TA assignment: %s %s", course.Code, course.Title),
	}

	studentName := "Student"
	if student.FullName != nil && *student.FullName != "" {
		studentName = *student.FullName
	}
	if student.User != nil {
		payload.To = append(payload.To, dto.EmailRecipient{
			Email: student.User.Email,
			Name:  student.FullName,
		})
	}
	if course.InstructorEmail != nil && *course.InstructorEmail != "" {
		payload.Cc = append(payload.Cc, dto.EmailRecipient{
			Email: *course.InstructorEmail,
			Name:  course.Instructor,
		})
	}

	instructorLine := ""
	if course.Instructor != nil && *course.Instructor != "" {
		instructorLine = fmt.Sprintf(" taught by %s", *course.Instructor)
	}
	payload.Body = fmt.Sprintf(
		"Dear %s,\n\nYou have been assigned as a teaching assistant for %s (%s)%s. "+
			"Please reach out to the instructor to coordinate your duties.\n\nBest regards,\nTA Matching Team",
		studentName, course.Title, course.Code, instructorLine,
	)

	return payload, nil
}
