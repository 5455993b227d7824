package models

import "time"

// StudyLevel represents the level of study of a student
type StudyLevel string

const (
	LevelUndergrad StudyLevel = "undergraduate"
	LevelMasters   StudyLevel = "masters"
)

// Student defines the student profile model based on the 'student_profiles' table
type Student struct {
	ID             int64       `json:"id" db:"id" example:"1"`                        // Unique identifier for the student profile
	UserID         int64       `json:"userId" db:"user_id" example:"5"`               // ID of the associated user account
	FullName       *string     `json:"fullName,omitempty" db:"full_name"`             // Student's full name (nullable)
	DegreeProgram  *string     `json:"degreeProgram,omitempty" db:"degree_program"`   // Degree program the student is enrolled in
	LevelOfStudy   *StudyLevel `json:"levelOfStudy,omitempty" db:"level_of_study"`    // undergraduate or masters
	Interests      []Track     `json:"interests" db:"interests"`                      // Declared interest tracks
	ResumePath     *string     `json:"resumePath,omitempty" db:"resume_path"`         // Path of the uploaded resume (nullable)
	TranscriptPath *string     `json:"transcriptPath,omitempty" db:"transcript_path"` // Path of the uploaded transcript (nullable)
	PhotoURL       *string     `json:"photoUrl,omitempty" db:"photo_url"`             // URL of the profile photo (nullable)
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	User *User `json:"user,omitempty"`
}

// HasResume reports whether a resume has been uploaded.
func (s *Student) HasResume() bool {
	return s.ResumePath != nil && *s.ResumePath != ""
}

// HasTranscript reports whether a transcript has been uploaded.
func (s *Student) HasTranscript() bool {
	return s.TranscriptPath != nil && *s.TranscriptPath != ""
}
