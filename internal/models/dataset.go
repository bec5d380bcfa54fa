package models

import "github.com/google/uuid"

// DatasetVersion is written into every persisted dataset.
const DatasetVersion = 1

// Dataset is the aggregate root: every collection plus settings, persisted as one unit.
type Dataset struct {
	Students []Student    `json:"students"`
	Subjects []Subject    `json:"subjects"`
	Scores   []ScoreEntry `json:"scores"`
	Settings Settings     `json:"settings"`
}

// NewID returns a collision-resistant identifier for new records.
func NewID() string {
	return uuid.NewString()
}

// DefaultDataset is the seed used on first start and after a full reset.
func DefaultDataset(apiKey string) Dataset {
	return Dataset{
		Students: []Student{},
		Subjects: DefaultSubjects(),
		Scores:   []ScoreEntry{},
		Settings: Settings{
			Theme:         ThemeLight,
			GeminiAPIKey:  apiKey,
			SelectedModel: DefaultModelID(),
		},
	}
}

// Clone returns a deep copy so callers may not alias the store's slices.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Students: make([]Student, len(d.Students)),
		Subjects: make([]Subject, len(d.Subjects)),
		Scores:   make([]ScoreEntry, len(d.Scores)),
		Settings: d.Settings,
	}
	copy(out.Students, d.Students)
	copy(out.Subjects, d.Subjects)
	copy(out.Scores, d.Scores)
	return out
}

// Normalize replaces nil collections with empty ones and fills unset settings.
func (d *Dataset) Normalize() {
	if d.Students == nil {
		d.Students = []Student{}
	}
	if d.Subjects == nil {
		d.Subjects = DefaultSubjects()
	}
	if d.Scores == nil {
		d.Scores = []ScoreEntry{}
	}
	if d.Settings.Theme == "" {
		d.Settings.Theme = ThemeLight
	}
	if d.Settings.SelectedModel == "" {
		d.Settings.SelectedModel = DefaultModelID()
	}
}

// FindStudent returns the student with id.
func (d Dataset) FindStudent(id string) (Student, bool) {
	for _, s := range d.Students {
		if s.ID == id {
			return s, true
		}
	}
	return Student{}, false
}

// FindSubject returns the subject with id.
func (d Dataset) FindSubject(id string) (Subject, bool) {
	for _, s := range d.Subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// ScoresOf returns the entries of one student in stored order.
func (d Dataset) ScoresOf(studentID string) []ScoreEntry {
	out := make([]ScoreEntry, 0)
	for _, s := range d.Scores {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out
}

// RemoveStudent drops the student and every score that references it. It reports whether the
// student existed; the dataset is untouched otherwise.
func (d *Dataset) RemoveStudent(id string) bool {
	idx := -1
	for i, s := range d.Students {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	students := make([]Student, 0, len(d.Students)-1)
	students = append(students, d.Students[:idx]...)
	d.Students = append(students, d.Students[idx+1:]...)

	scores := make([]ScoreEntry, 0, len(d.Scores))
	for _, s := range d.Scores {
		if s.StudentID != id {
			scores = append(scores, s)
		}
	}
	d.Scores = scores
	return true
}
