package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusmart/internal/models"
)

func scenario() ([]models.Student, []models.ScoreEntry) {
	students := []models.Student{{ID: "s1", Name: "An", Grade: "10A1"}}
	scores := []models.ScoreEntry{
		{ID: "e1", StudentID: "s1", SubjectID: "math", Score: 9, Type: models.ScoreTypeQuiz, Date: "2024-01-15"},
		{ID: "e2", StudentID: "s1", SubjectID: "math", Score: 7, Type: models.ScoreTypeMidterm, Date: "2024-02-10"},
	}
	return students, scores
}

func TestScenarioSingleStudent(t *testing.T) {
	_, scores := scenario()

	avg, ok := StudentAverage("s1", scores)
	require.True(t, ok)
	assert.Equal(t, 8.0, avg)

	assert.Equal(t, []MonthAverage{{Month: "2024-01", Average: 9}, {Month: "2024-02", Average: 7}}, MonthlyTrend(scores))
	assert.Equal(t, []BandCount{
		{Key: BandExcellent, Label: "Giỏi", Count: 1},
		{Key: BandGood, Label: "Khá", Count: 1},
	}, ScoreDistribution(scores))
}

func TestEmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, OverallAverage(nil))
	assert.Empty(t, Ranking(nil, nil, 5))
	assert.NotNil(t, Ranking(nil, nil, 5))
	assert.Empty(t, ScoreDistribution(nil))
	assert.Empty(t, MonthlyTrend(nil))

	avg, ok := StudentAverage("s1", nil)
	assert.False(t, ok)
	assert.Equal(t, 0.0, avg)
}

func TestOverallAverageRounds(t *testing.T) {
	scores := []models.ScoreEntry{{Score: 7}, {Score: 8}, {Score: 8}}
	assert.Equal(t, 7.7, OverallAverage(scores))
	assert.Equal(t, 8.5, OverallAverage([]models.ScoreEntry{{Score: 8.45}, {Score: 8.55}}))
}

func TestPerSubjectAverageKeepsDeclarationOrder(t *testing.T) {
	subjects := models.DefaultSubjects()
	scores := []models.ScoreEntry{
		{SubjectID: "biology", Score: 6},
		{SubjectID: "math", Score: 9},
		{SubjectID: "math", Score: 8},
	}
	got := PerSubjectAverage(scores, subjects)
	require.Len(t, got, len(subjects))
	for i, sub := range subjects {
		assert.Equal(t, sub.ID, got[i].SubjectID)
	}
	assert.Equal(t, 8.5, got[0].Average)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 0.0, got[1].Average)
	assert.Equal(t, 0, got[1].Count)
	assert.Equal(t, 6.0, got[5].Average)
}

func TestBandBoundaries(t *testing.T) {
	cases := map[float64]BandKey{
		10: BandExcellent, 8: BandExcellent, 7.99: BandGood, 6.5: BandGood,
		6.49: BandAverage, 5: BandAverage, 4.99: BandWeak, 0: BandWeak,
	}
	for score, want := range cases {
		assert.Equal(t, want, BandOf(score), score)
	}
}

func TestRankingExcludesStudentsWithoutScoresAndKeepsTieOrder(t *testing.T) {
	students := []models.Student{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	scores := []models.ScoreEntry{
		{StudentID: "b", Score: 7},
		{StudentID: "c", Score: 9},
		{StudentID: "d", Score: 7},
	}
	got := Ranking(students, scores, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Student.ID)
	assert.Equal(t, "b", got[1].Student.ID)
	assert.Equal(t, "d", got[2].Student.ID)
	assert.Equal(t, 3, got[2].Rank)

	top := Ranking(students, scores, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[1].Student.ID)
}

func TestRankingReflectsDeletedStudent(t *testing.T) {
	d := models.DefaultDataset("")
	d.Students = []models.Student{{ID: "s1"}, {ID: "s2"}}
	d.Scores = []models.ScoreEntry{{StudentID: "s1", SubjectID: "math", Score: 10}, {StudentID: "s2", SubjectID: "math", Score: 6}}
	require.True(t, d.RemoveStudent("s1"))

	ranking := Ranking(d.Students, d.Scores, 5)
	require.Len(t, ranking, 1)
	assert.Equal(t, "s2", ranking[0].Student.ID)
	assert.Equal(t, 6.0, PerSubjectAverage(d.Scores, d.Subjects)[0].Average)
}

func TestSummarizeAndRecent(t *testing.T) {
	d := models.DefaultDataset("")
	d.Students = []models.Student{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	d.Scores = []models.ScoreEntry{{Score: 9}, {Score: 4}, {Score: 6}}
	o := Summarize(d)
	assert.Equal(t, Overview{TotalStudents: 3, TotalScores: 3, Average: 6.3, ExcellentCount: 1, NeedsImprovement: 1}, o)

	recent := RecentStudents(d.Students, 2)
	assert.Equal(t, []models.Student{{ID: "3"}, {ID: "2"}}, recent)
	assert.Len(t, RecentStudents(d.Students, 10), 3)
}
