package models

import "time"

// ExportKind enumerates background export categories.
type ExportKind string

const (
	// ExportKindStudentReport runs the AI analysis for a student and renders it as a document.
	ExportKindStudentReport ExportKind = "student_report"
	ExportKindSpreadsheet   ExportKind = "spreadsheet"
	ExportKindSlides        ExportKind = "slides"
)

// ValidExportKind reports whether k is supported.
func ValidExportKind(k ExportKind) bool {
	switch k {
	case ExportKindStudentReport, ExportKindSpreadsheet, ExportKindSlides:
		return true
	}
	return false
}

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// Terminal reports whether the job has stopped running.
func (s ExportStatus) Terminal() bool {
	return s == ExportStatusFinished || s == ExportStatusFailed
}

// ExportJob is the metadata of one background export.
type ExportJob struct {
	ID           string       `json:"id"`
	Kind         ExportKind   `json:"kind"`
	StudentID    string       `json:"studentId,omitempty"`
	Status       ExportStatus `json:"status"`
	Progress     int          `json:"progress"`
	Filename     string       `json:"filename,omitempty"`
	FilePath     string       `json:"-"`
	DownloadURL  string       `json:"downloadUrl,omitempty"`
	ExpiresAt    *time.Time   `json:"expiresAt,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`
}
