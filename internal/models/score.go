package models

import (
	"fmt"
	"math"
)

// ScoreType enumerates assessment kinds.
type ScoreType string

const (
	ScoreTypeQuiz       ScoreType = "quiz"
	ScoreTypeAssignment ScoreType = "assignment"
	ScoreTypeMidterm    ScoreType = "midterm"
	ScoreTypeFinal      ScoreType = "final"
)

// Score bounds on the 10-point scale.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// DateLayout is the calendar date format of ScoreEntry.Date.
const DateLayout = "2006-01-02"

// ValidScoreType reports whether t is a known assessment kind.
func ValidScoreType(t ScoreType) bool {
	switch t {
	case ScoreTypeQuiz, ScoreTypeAssignment, ScoreTypeMidterm, ScoreTypeFinal:
		return true
	}
	return false
}

// ScoreEntry is one immutable assessment result.
type ScoreEntry struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	SubjectID string    `json:"subjectId"`
	Score     float64   `json:"score"`
	Type      ScoreType `json:"type"`
	Date      string    `json:"date"`
}

// ValidateScore checks that v is finite and inside [MinScore, MaxScore].
func ValidateScore(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("score must be a finite number")
	}
	if v < MinScore || v > MaxScore {
		return fmt.Errorf("score must be between %g and %g", MinScore, MaxScore)
	}
	return nil
}

// Month returns the YYYY-MM prefix of the entry date.
func (e ScoreEntry) Month() string {
	if len(e.Date) < 7 {
		return e.Date
	}
	return e.Date[:7]
}
