package dto

// CourseRequest is the payload for creating or updating a course
type CourseRequest struct {
	Code            string  `json:"code" binding:"required"`
	Title           string  `json:"title" binding:"required"`
	Instructor      *string `json:"instructor"`
	InstructorEmail *string `json:"instructorEmail" binding:"omitempty,email"`
	ProfessorID     *int64  `json:"professorId"`
	Track           *string `json:"track"`
	Vacancies       int     `json:"vacancies" binding:"min=0"`
	GradeThreshold  *string `json:"gradeThreshold"`
	SimilarCourses  *string `json:"similarCourses"`
}

// CourseImportResult summarizes a CSV catalog import
type CourseImportResult struct {
	Imported int      `json:"imported"`
	Rejected []string `json:"rejected,omitempty"`
}

// ProfessorCourse is a course with application and assignment counts as
// shown on the professor dashboard
type ProfessorCourse struct {
	ID               int64   `json:"id"`
	Code             string  `json:"code"`
	Title            string  `json:"title"`
	Track            *string `json:"track,omitempty"`
	Vacancies        int     `json:"vacancies"`
	ApplicationCount int     `json:"applicationCount"`
	AssignmentCount  int     `json:"assignmentCount"`
}
