package dto

// UpdateProfileRequest is the payload for a student updating their profile
type UpdateProfileRequest struct {
	FullName       *string  `json:"fullName"`
	DegreeProgram  *string  `json:"degreeProgram"`
	LevelOfStudy   *string  `json:"levelOfStudy" binding:"omitempty,oneof=undergraduate masters"`
	Interests      []string `json:"interests"`
	ResumePath     *string  `json:"resumePath"`
	TranscriptPath *string  `json:"transcriptPath"`
	PhotoURL       *string  `json:"photoUrl"`
}

// StudentSummary is the compact student shape embedded in other responses
type StudentSummary struct {
	StudentID int64   `json:"studentId"`
	UNI       string  `json:"uni"`
	Email     string  `json:"email"`
	FullName  *string `json:"fullName,omitempty"`
}
