package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	documentHeader = "EduSmart AI — Báo cáo"
	lineHeight     = 6.0
)

// Document is a titled markup report.
type Document struct {
	Title       string
	Markup      string
	GeneratedAt time.Time
}

// DocumentExporter renders light markup into a paginated A4 PDF.
type DocumentExporter struct {
	fontFile string
}

// NewDocumentExporter constructs a document exporter. fontFile may point at a TTF with
// Vietnamese coverage; when empty the bundled DejaVu Sans is used.
func NewDocumentExporter(fontFile string) *DocumentExporter {
	return &DocumentExporter{fontFile: fontFile}
}

// Render produces the PDF bytes for doc.
func (e *DocumentExporter) Render(doc Document) ([]byte, error) {
	if strings.TrimSpace(doc.Markup) == "" {
		return nil, fmt.Errorf("document content is empty")
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	face, err := loadTypeface(pdf, e.fontFile)
	if err != nil {
		return nil, err
	}
	isUTF8 := face.family == utf8Family
	pdf.SetTitle(doc.Title, isUTF8)
	pdf.SetAuthor("EduSmart AI", isUTF8)
	pdf.SetMargins(25, 25, 25)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		pdf.SetY(10)
		pdf.SetFont(face.family, "", 9)
		setText(pdf, colorMuted)
		pdf.CellFormat(0, 5, face.tr(documentHeader), "", 1, "R", false, 0, "")
		pdf.SetY(25)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(face.family, "", 9)
		setText(pdf, colorMuted)
		pdf.CellFormat(0, 5, face.tr(fmt.Sprintf("Trang %d / {nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(face.family, "B", 24)
	setText(pdf, colorPrimary)
	pdf.MultiCell(0, 11, face.tr(doc.Title), "", "C", false)
	pdf.Ln(3)
	pdf.SetFont(face.family, "I", 11)
	setText(pdf, colorMuted)
	subtitle := fmt.Sprintf("Tạo bởi EduSmart AI — %s", doc.GeneratedAt.Format("2/1/2006"))
	pdf.CellFormat(0, 6, face.tr(subtitle), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	for _, block := range ParseMarkup(doc.Markup) {
		renderBlock(pdf, face, block)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

var headingSizes = map[int]struct {
	size  float64
	color rgb
}{
	1: {18, colorDark},
	2: {15, "334155"},
	3: {13, "475569"},
}

func renderBlock(pdf *gofpdf.Fpdf, face typeface, block Block) {
	left, _, _, _ := pdf.GetMargins()
	switch block.Kind {
	case BlockHeading:
		h := headingSizes[block.Level]
		pdf.Ln(4)
		pdf.SetFont(face.family, "B", h.size)
		setText(pdf, h.color)
		pdf.MultiCell(0, h.size*0.45, face.tr(block.PlainText()), "", "L", false)
		pdf.Ln(2)
	case BlockBullet, BlockNumbered:
		marker := "•"
		if block.Kind == BlockNumbered {
			marker = block.Number + "."
		}
		pdf.SetFont(face.family, "", 12)
		setText(pdf, colorDark)
		pdf.SetX(left + 4)
		pdf.CellFormat(8, lineHeight, face.tr(marker), "", 0, "L", false, 0, "")
		pdf.SetLeftMargin(left + 12)
		writeRuns(pdf, face, block.Runs, colorDark)
		pdf.SetLeftMargin(left)
		pdf.Ln(lineHeight + 1)
	case BlockQuote:
		y := pdf.GetY()
		pdf.SetLeftMargin(left + 12)
		pdf.SetX(left + 12)
		pdf.SetFont(face.family, "I", 12)
		setText(pdf, colorPrimaryDark)
		pdf.MultiCell(0, lineHeight, face.tr(block.PlainText()), "", "L", false)
		pdf.SetLeftMargin(left)
		setDraw(pdf, colorPrimary)
		pdf.SetLineWidth(0.8)
		pdf.Line(left+8, y, left+8, pdf.GetY())
		pdf.Ln(2)
	default:
		pdf.SetX(left)
		writeRuns(pdf, face, block.Runs, colorDark)
		pdf.Ln(lineHeight + 2)
	}
}

func writeRuns(pdf *gofpdf.Fpdf, face typeface, runs []Run, color rgb) {
	setText(pdf, color)
	for _, run := range runs {
		style := ""
		if run.Bold {
			style += "B"
		}
		if run.Italic {
			style += "I"
		}
		pdf.SetFont(face.family, style, 12)
		pdf.Write(lineHeight, face.tr(run.Text))
	}
}
