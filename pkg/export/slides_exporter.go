package export

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// 10in x 5.625in, the 16:9 presentation page.
const (
	slideWidth  = 254.0
	slideHeight = 142.875
)

// StatCard is one headline figure on the overview slide.
type StatCard struct {
	Label string
	Value string
	Color string
}

// ChartValue is one labelled value of a bar or pie chart.
type ChartValue struct {
	Label string
	Value float64
}

// RankRow is one line of the ranking table.
type RankRow struct {
	Name    string
	Grade   string
	Average float64
	Count   int
}

// SlideDeck holds the content of the semester summary presentation.
type SlideDeck struct {
	StudentCount int
	ScoreCount   int
	Stats        []StatCard
	Bars         []ChartValue
	Slices       []ChartValue
	Ranking      []RankRow
	GeneratedAt  time.Time
}

// SlideDeckExporter renders a SlideDeck as landscape PDF pages, one slide per page.
type SlideDeckExporter struct {
	fontFile string
}

// NewSlideDeckExporter constructs a slide deck exporter.
func NewSlideDeckExporter(fontFile string) *SlideDeckExporter {
	return &SlideDeckExporter{fontFile: fontFile}
}

type slideRenderer struct {
	pdf  *gofpdf.Fpdf
	face typeface
}

// Render draws the six slides.
func (e *SlideDeckExporter) Render(deck SlideDeck) ([]byte, error) {
	if deck.GeneratedAt.IsZero() {
		deck.GeneratedAt = time.Now()
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: slideWidth, Ht: slideHeight},
	})
	face, err := loadTypeface(pdf, e.fontFile)
	if err != nil {
		return nil, err
	}
	pdf.SetTitle("Tổng kết học kỳ — EduSmart", face.family == utf8Family)
	pdf.SetAuthor("EduSmart AI", face.family == utf8Family)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	r := &slideRenderer{pdf: pdf, face: face}
	r.titleSlide(deck)
	r.overviewSlide(deck.Stats)
	r.barSlide(deck.Bars)
	r.pieSlide(deck.Slices)
	r.rankingSlide(deck.Ranking)
	r.closingSlide()

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render slides: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *slideRenderer) text(x, y, w, h float64, size float64, style string, color rgb, align, s string) {
	r.pdf.SetFont(r.face.family, style, size)
	setText(r.pdf, color)
	r.pdf.SetXY(x, y)
	r.pdf.CellFormat(w, h, r.face.tr(s), "", 0, align, false, 0, "")
}

func (r *slideRenderer) darkBackground() {
	setFill(r.pdf, colorDark)
	r.pdf.Rect(0, 0, slideWidth, slideHeight, "F")
}

func (r *slideRenderer) header(title, subtitle string) {
	setFill(r.pdf, colorLightGray)
	r.pdf.Rect(0, 0, slideWidth, 40.6, "F")
	r.text(20, 7.6, 203, 17.8, 24, "B", colorDark, "L", title)
	r.text(20, 22.9, 203, 12.7, 13, "", colorGray, "L", subtitle)
}

func (r *slideRenderer) emptyNotice(s string) {
	r.text(25, 76, 203, 25, 20, "", colorGray, "C", s)
}

func (r *slideRenderer) titleSlide(deck SlideDeck) {
	r.pdf.AddPage()
	r.darkBackground()
	r.pdf.SetAlpha(0.15, "Normal")
	setFill(r.pdf, colorPrimary)
	r.pdf.Circle(241, 38, 63, "F")
	setFill(r.pdf, colorSecondary)
	r.pdf.SetAlpha(0.1, "Normal")
	r.pdf.Circle(25, 152, 51, "F")
	r.pdf.SetAlpha(1, "Normal")

	r.text(25, 55, 203, 18, 44, "B", colorWhite, "L", "EduSmart AI")
	r.text(25, 75, 203, 12, 28, "", colorGray, "L", "Tổng kết học kỳ")
	caption := fmt.Sprintf("%d học sinh · %d đánh giá · %s", deck.StudentCount, deck.ScoreCount, deck.GeneratedAt.Format("2/1/2006"))
	r.text(25, 127, 203, 12.7, 14, "", colorGray, "L", caption)
}

func (r *slideRenderer) overviewSlide(stats []StatCard) {
	r.pdf.AddPage()
	r.header("Tổng quan", "Số liệu tổng hợp")
	for i, stat := range stats {
		x := 12.7 + float64(i)*61
		setFill(r.pdf, colorWhite)
		setDraw(r.pdf, colorBorder)
		r.pdf.SetLineWidth(0.3)
		r.pdf.Rect(x, 56, 53.3, 63.5, "FD")
		color := rgb(stat.Color)
		if color == "" {
			color = colorPrimary
		}
		r.text(x, 63.5, 53.3, 30.5, 36, "B", color, "C", stat.Value)
		r.text(x, 94, 53.3, 10, 11, "", colorGray, "C", stat.Label)
	}
}

func (r *slideRenderer) barSlide(bars []ChartValue) {
	r.pdf.AddPage()
	r.header("Hiệu suất theo môn học", "Điểm trung bình mỗi môn")
	if len(bars) == 0 {
		r.emptyNotice("Chưa có dữ liệu điểm số")
		return
	}

	const (
		chartX = 30.0
		chartY = 52.0
		chartW = 200.0
		chartH = 70.0
		maxVal = 10.0
	)
	setDraw(r.pdf, colorBorder)
	r.pdf.SetLineWidth(0.2)
	for tick := 0.0; tick <= maxVal; tick += 2 {
		y := chartY + chartH - tick/maxVal*chartH
		r.pdf.Line(chartX, y, chartX+chartW, y)
		r.text(chartX-12, y-3, 10, 6, 9, "", colorGray, "R", strconv.FormatFloat(tick, 'f', 0, 64))
	}

	slot := chartW / float64(len(bars))
	barW := math.Min(slot*0.6, 25)
	for i, bar := range bars {
		value := math.Max(0, math.Min(bar.Value, maxVal))
		h := value / maxVal * chartH
		x := chartX + float64(i)*slot + (slot-barW)/2
		setFill(r.pdf, colorPrimary)
		r.pdf.Rect(x, chartY+chartH-h, barW, h, "F")
		r.text(x-5, chartY+chartH-h-6, barW+10, 5, 10, "B", colorDark, "C", formatScore(bar.Value))
		r.text(chartX+float64(i)*slot, chartY+chartH+2, slot, 6, 9, "", colorGray, "C", bar.Label)
	}
}

var sliceColors = []rgb{colorSuccess, colorPrimary, colorWarning, colorDanger}

func (r *slideRenderer) pieSlide(slices []ChartValue) {
	r.pdf.AddPage()
	r.header("Phân bố điểm số", "Tỷ lệ xếp loại học lực")
	total := 0.0
	for _, s := range slices {
		total += s.Value
	}
	if total <= 0 {
		r.emptyNotice("Chưa có dữ liệu điểm số")
		return
	}

	const (
		cx     = 90.0
		cy     = 92.0
		radius = 40.0
	)
	start := -90.0
	for i, s := range slices {
		sweep := s.Value / total * 360
		color := sliceColors[i%len(sliceColors)]
		setFill(r.pdf, color)
		setDraw(r.pdf, colorWhite)
		r.pdf.Polygon(sectorPoints(cx, cy, radius, start, start+sweep), "FD")
		start += sweep

		ly := 65 + float64(i)*12
		r.pdf.Rect(160, ly+1.5, 5, 5, "F")
		label := fmt.Sprintf("%s  %.0f%%", s.Label, s.Value/total*100)
		r.text(168, ly, 80, 8, 12, "", colorDark, "L", label)
	}
}

// sectorPoints approximates a pie sector with a polygon; angles are in degrees.
func sectorPoints(cx, cy, radius, from, to float64) []gofpdf.PointType {
	points := []gofpdf.PointType{{X: cx, Y: cy}}
	steps := int(math.Ceil((to-from)/3)) + 1
	for i := 0; i <= steps; i++ {
		a := (from + (to-from)*float64(i)/float64(steps)) * math.Pi / 180
		points = append(points, gofpdf.PointType{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)})
	}
	return points
}

func (r *slideRenderer) rankingSlide(rows []RankRow) {
	r.pdf.AddPage()
	r.header("Bảng xếp hạng", "Top học sinh xuất sắc")
	if len(rows) == 0 {
		r.emptyNotice("Chưa có dữ liệu điểm số")
		return
	}

	widths := []float64{15.2, 76.2, 30.5, 40.6, 40.6}
	headers := []string{"#", "Họ tên", "Lớp", "Điểm TB", "Bài KT"}
	x0, y := 25.4, 50.8

	setFill(r.pdf, colorPrimary)
	setDraw(r.pdf, colorBorder)
	r.pdf.SetLineWidth(0.2)
	r.pdf.SetFont(r.face.family, "B", 11)
	setText(r.pdf, colorWhite)
	r.pdf.SetXY(x0, y)
	for i, h := range headers {
		r.pdf.CellFormat(widths[i], 11.4, r.face.tr(h), "1", 0, "C", true, 0, "")
	}
	y += 11.4

	for i, row := range rows {
		cells := []string{strconv.Itoa(i + 1), row.Name, row.Grade, formatScore(row.Average), strconv.Itoa(row.Count)}
		r.pdf.SetXY(x0, y)
		for c, cell := range cells {
			style, color, align := "", colorDark, "C"
			switch c {
			case 1:
				align = "L"
				if i < 3 {
					style = "B"
				}
			case 3:
				style = "B"
				color = averageColor(row.Average)
			}
			r.pdf.SetFont(r.face.family, style, 11)
			setText(r.pdf, color)
			r.pdf.CellFormat(widths[c], 10.2, r.face.tr(cell), "1", 0, align, false, 0, "")
		}
		y += 10.2
	}
}

func (r *slideRenderer) closingSlide() {
	r.pdf.AddPage()
	r.darkBackground()
	r.text(25, 55, 203, 20, 48, "B", colorWhite, "C", "Cảm ơn!")
	r.text(25, 78, 203, 10, 18, "", colorGray, "C", "Được tạo bởi EduSmart AI")
}

func averageColor(avg float64) rgb {
	switch {
	case avg >= 8:
		return colorSuccess
	case avg >= 5:
		return colorDark
	default:
		return colorDanger
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
