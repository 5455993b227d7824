package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	StudentRepository    *StudentRepository
	CourseRepository     *CourseRepository
	PreferenceRepository *PreferenceRepository
	AssignmentRepository *AssignmentRepository
	FeedbackRepository   *FeedbackRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
		StudentRepository:    NewStudentRepository(db),
		CourseRepository:     NewCourseRepository(db),
		PreferenceRepository: NewPreferenceRepository(db),
		AssignmentRepository: NewAssignmentRepository(db),
		FeedbackRepository:   NewFeedbackRepository(db),
	}
}
