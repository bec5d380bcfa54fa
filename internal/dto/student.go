package dto

// AddScoreRequest captures POST /students/:id/scores payload; the student comes from the path.
type AddScoreRequest struct {
	SubjectID string   `json:"subjectId"`
	Score     *float64 `json:"score" validate:"required"`
	Type      string   `json:"type"`
}

// DeleteStudentResponse reports whether a student was removed.
type DeleteStudentResponse struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}
