package models

import (
	"errors"
	"strings"
)

// Student represents a tracked learner.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade string `json:"grade"`
	Email string `json:"email,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search string
}

// Matches reports whether the student name or grade contains the search text, ignoring case.
func (f StudentFilter) Matches(s Student) bool {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), needle) || strings.Contains(strings.ToLower(s.Grade), needle)
}

// Validate checks the required fields.
func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(s.Grade) == "" {
		return errors.New("grade is required")
	}
	return nil
}
