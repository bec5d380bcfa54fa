// Package stats derives read-only aggregates from score entries. Every function is pure,
// tolerates empty input and never produces NaN.
package stats

import (
	"math"
	"sort"

	"github.com/noah-isme/edusmart/internal/models"
)

// Round1 rounds half away from zero to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// OverallAverage is the mean of all scores rounded to one decimal; 0 when empty.
func OverallAverage(scores []models.ScoreEntry) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s.Score
	}
	return Round1(mean(sum, len(scores)))
}

// SubjectAverage is the mean score of one subject.
type SubjectAverage struct {
	SubjectID string  `json:"subjectId"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

// PerSubjectAverage returns one entry per subject in declaration order. Subjects without
// entries report 0.
func PerSubjectAverage(scores []models.ScoreEntry, subjects []models.Subject) []SubjectAverage {
	sums := make(map[string]float64, len(subjects))
	counts := make(map[string]int, len(subjects))
	for _, s := range scores {
		sums[s.SubjectID] += s.Score
		counts[s.SubjectID]++
	}
	out := make([]SubjectAverage, 0, len(subjects))
	for _, sub := range subjects {
		out = append(out, SubjectAverage{
			SubjectID: sub.ID,
			Name:      sub.Name,
			Color:     sub.Color,
			Average:   Round1(mean(sums[sub.ID], counts[sub.ID])),
			Count:     counts[sub.ID],
		})
	}
	return out
}

// MonthAverage is the mean score of one YYYY-MM month.
type MonthAverage struct {
	Month   string  `json:"month"`
	Average float64 `json:"avg"`
}

// MonthlyTrend groups entries by month and returns the means in ascending month order.
func MonthlyTrend(scores []models.ScoreEntry) []MonthAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range scores {
		m := s.Month()
		sums[m] += s.Score
		counts[m]++
	}
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthAverage, 0, len(months))
	for _, m := range months {
		out = append(out, MonthAverage{Month: m, Average: Round1(mean(sums[m], counts[m]))})
	}
	return out
}

// BandKey identifies a score band.
type BandKey string

const (
	BandExcellent BandKey = "excellent"
	BandGood      BandKey = "good"
	BandAverage   BandKey = "average"
	BandWeak      BandKey = "weak"
)

type band struct {
	key   BandKey
	label string
	lower float64
}

// bands are ordered from the top; a score belongs to the first band whose lower bound it meets.
var bands = []band{
	{BandExcellent, "Giỏi", 8},
	{BandGood, "Khá", 6.5},
	{BandAverage, "Trung bình", 5},
	{BandWeak, "Yếu", math.Inf(-1)},
}

// BandCount is the number of entries in one band.
type BandCount struct {
	Key   BandKey `json:"key"`
	Label string  `json:"name"`
	Count int     `json:"value"`
}

// BandOf classifies a single score.
func BandOf(score float64) BandKey {
	for _, b := range bands {
		if score >= b.lower {
			return b.key
		}
	}
	return BandWeak
}

// ScoreDistribution counts entries per band in fixed band order, omitting empty bands.
func ScoreDistribution(scores []models.ScoreEntry) []BandCount {
	counts := make(map[BandKey]int, len(bands))
	for _, s := range scores {
		counts[BandOf(s.Score)]++
	}
	out := make([]BandCount, 0, len(bands))
	for _, b := range bands {
		if n := counts[b.key]; n > 0 {
			out = append(out, BandCount{Key: b.key, Label: b.label, Count: n})
		}
	}
	return out
}

// StudentAverage returns the rounded mean of one student's entries. ok is false when the
// student has no entries, which is distinct from a true average of 0.
func StudentAverage(studentID string, scores []models.ScoreEntry) (avg float64, ok bool) {
	sum, n := 0.0, 0
	for _, s := range scores {
		if s.StudentID == studentID {
			sum += s.Score
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return Round1(sum / float64(n)), true
}

// StudentScoreCount returns how many entries a student has.
func StudentScoreCount(studentID string, scores []models.ScoreEntry) int {
	n := 0
	for _, s := range scores {
		if s.StudentID == studentID {
			n++
		}
	}
	return n
}

// RankedStudent is one row of the ranking.
type RankedStudent struct {
	Rank    int            `json:"rank"`
	Student models.Student `json:"student"`
	Average float64        `json:"average"`
	Count   int            `json:"count"`
}

// Ranking orders students with at least one entry by average, highest first. Students without
// entries are excluded and ties keep declaration order. limit <= 0 returns every ranked student.
func Ranking(students []models.Student, scores []models.ScoreEntry, limit int) []RankedStudent {
	type agg struct {
		sum float64
		n   int
	}
	byStudent := make(map[string]*agg, len(students))
	for _, s := range scores {
		a, ok := byStudent[s.StudentID]
		if !ok {
			a = &agg{}
			byStudent[s.StudentID] = a
		}
		a.sum += s.Score
		a.n++
	}

	out := make([]RankedStudent, 0, len(students))
	for _, st := range students {
		a, ok := byStudent[st.ID]
		if !ok {
			continue
		}
		out = append(out, RankedStudent{Student: st, Average: Round1(a.sum / float64(a.n)), Count: a.n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average > out[j].Average })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Overview carries the headline totals of the dashboard and slide deck.
type Overview struct {
	TotalStudents    int     `json:"totalStudents"`
	TotalScores      int     `json:"totalScores"`
	Average          float64 `json:"average"`
	ExcellentCount   int     `json:"excellentCount"`
	NeedsImprovement int     `json:"needsImprovementCount"`
}

// Summarize computes the overview totals of a dataset.
func Summarize(d models.Dataset) Overview {
	o := Overview{
		TotalStudents: len(d.Students),
		TotalScores:   len(d.Scores),
		Average:       OverallAverage(d.Scores),
	}
	for _, s := range d.Scores {
		if s.Score >= 8 {
			o.ExcellentCount++
		}
		if s.Score < 5 {
			o.NeedsImprovement++
		}
	}
	return o
}

// RecentStudents returns up to n most recently added students, newest first.
func RecentStudents(students []models.Student, n int) []models.Student {
	if n <= 0 || n > len(students) {
		n = len(students)
	}
	out := make([]models.Student, 0, n)
	for i := len(students) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, students[i])
	}
	return out
}
