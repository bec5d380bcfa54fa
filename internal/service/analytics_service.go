package service

import (
	"context"

	"github.com/noah-isme/edusmart/internal/models"
	"github.com/noah-isme/edusmart/internal/stats"
	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

const (
	dashboardRankingSize = 5
	recentStudentsSize   = 5
)

// Dashboard aggregates every derived view shown on the overview screen.
type Dashboard struct {
	Overview        stats.Overview         `json:"overview"`
	SubjectAverages []stats.SubjectAverage `json:"subjectAverages"`
	MonthlyTrend    []stats.MonthAverage   `json:"monthlyTrend"`
	Distribution    []stats.BandCount      `json:"distribution"`
	TopStudents     []stats.RankedStudent  `json:"topStudents"`
	RecentStudents  []models.Student       `json:"recentStudents"`
}

// StudentStats is the per-student view. Average is nil when the student has no scores.
type StudentStats struct {
	Student         models.Student         `json:"student"`
	Average         *float64               `json:"average"`
	ScoreCount      int                    `json:"scoreCount"`
	SubjectAverages []stats.SubjectAverage `json:"subjectAverages"`
	MonthlyTrend    []stats.MonthAverage   `json:"monthlyTrend"`
	Distribution    []stats.BandCount      `json:"distribution"`
	Scores          []models.ScoreEntry    `json:"scores"`
}

// AnalyticsService computes statistics over dataset snapshots on demand.
type AnalyticsService struct {
	store *DatasetStore
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(store *DatasetStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Dashboard returns the overview aggregates.
func (s *AnalyticsService) Dashboard(ctx context.Context) Dashboard {
	data := s.store.Snapshot()
	return Dashboard{
		Overview:        stats.Summarize(data),
		SubjectAverages: stats.PerSubjectAverage(data.Scores, data.Subjects),
		MonthlyTrend:    stats.MonthlyTrend(data.Scores),
		Distribution:    stats.ScoreDistribution(data.Scores),
		TopStudents:     stats.Ranking(data.Students, data.Scores, dashboardRankingSize),
		RecentStudents:  stats.RecentStudents(data.Students, recentStudentsSize),
	}
}

// Ranking returns students ordered by average; limit <= 0 returns all ranked students.
func (s *AnalyticsService) Ranking(ctx context.Context, limit int) []stats.RankedStudent {
	data := s.store.Snapshot()
	return stats.Ranking(data.Students, data.Scores, limit)
}

// Student returns the statistics of one student.
func (s *AnalyticsService) Student(ctx context.Context, id string) (*StudentStats, error) {
	data := s.store.Snapshot()
	st, ok := data.FindStudent(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	scores := data.ScoresOf(id)
	out := &StudentStats{
		Student:         st,
		ScoreCount:      len(scores),
		SubjectAverages: stats.PerSubjectAverage(scores, data.Subjects),
		MonthlyTrend:    stats.MonthlyTrend(scores),
		Distribution:    stats.ScoreDistribution(scores),
		Scores:          scores,
	}
	if avg, ok := stats.StudentAverage(id, scores); ok {
		out.Average = &avg
	}
	return out, nil
}
