package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/require"
)

func TestDocumentExporterRender(t *testing.T) {
	out, err := NewDocumentExporter("").Render(Document{
		Title:       "Báo cáo học tập",
		Markup:      "# Tổng quan\n- **Toán**: tiến bộ\n1. Ôn tập\n> Lưu ý\nKết luận *tốt*",
		GeneratedAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestDocumentExporterRejectsBlankContent(t *testing.T) {
	_, err := NewDocumentExporter("").Render(Document{Title: "x", Markup: "  \n "})
	require.Error(t, err)
}

func TestBundledTypefaceKeepsVietnamese(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	face, err := loadTypeface(pdf, "")
	require.NoError(t, err)
	require.Equal(t, utf8Family, face.family)

	text := "Báo cáo học tập - Điểm trung bình - Học sinh Nguyễn Văn Ân"
	require.Equal(t, text, face.tr(text))

	pdf.AddPage()
	pdf.SetFont(face.family, "B", 14)
	pdf.CellFormat(0, 8, face.tr(text), "", 1, "L", false, 0, "")
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	require.Contains(t, buf.String(), "/FontFile2")
}

func TestDocumentExporterMissingFont(t *testing.T) {
	_, err := NewDocumentExporter("/nonexistent/font.ttf").Render(Document{Title: "x", Markup: "y"})
	require.Error(t, err)
}

func TestSlideDeckExporterRender(t *testing.T) {
	out, err := NewSlideDeckExporter("").Render(SlideDeck{
		StudentCount: 2,
		ScoreCount:   4,
		Stats: []StatCard{
			{Label: "Tổng học sinh", Value: "2", Color: "6366F1"},
			{Label: "Điểm trung bình", Value: "8", Color: "10B981"},
		},
		Bars:    []ChartValue{{Label: "Toán học", Value: 8.5}, {Label: "Ngữ văn", Value: 7}},
		Slices:  []ChartValue{{Label: "Giỏi (≥8)", Value: 2}, {Label: "Khá (6.5-8)", Value: 2}},
		Ranking: []RankRow{{Name: "An", Grade: "10A1", Average: 9, Count: 2}, {Name: "Bình", Grade: "10A1", Average: 4.5, Count: 2}},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestSlideDeckExporterEmptyCharts(t *testing.T) {
	out, err := NewSlideDeckExporter("").Render(SlideDeck{StudentCount: 1})
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestSectorPointsCloseTheArc(t *testing.T) {
	points := sectorPoints(0, 0, 10, 0, 90)
	require.Equal(t, 0.0, points[0].X)
	last := points[len(points)-1]
	require.InDelta(t, 0, last.X, 1e-9)
	require.InDelta(t, 10, last.Y, 1e-9)
}
