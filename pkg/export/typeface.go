package export

import (
	"embed"
	"fmt"
	"os"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

const utf8Family = "EduSmartSans"

//go:embed fonts/*.ttf
var bundledFonts embed.FS

var bundledFaces = map[string]string{
	"":   "fonts/DejaVuSansCondensed.ttf",
	"B":  "fonts/DejaVuSansCondensed-Bold.ttf",
	"I":  "fonts/DejaVuSansCondensed-Oblique.ttf",
	"BI": "fonts/DejaVuSansCondensed-BoldOblique.ttf",
}

// typeface is the UTF-8 family registered on a document; tr adapts text to it.
type typeface struct {
	family string
	tr     func(string) string
}

func identity(s string) string { return s }

// loadTypeface registers fontFile for every style, or the bundled DejaVu Sans when it is empty.
func loadTypeface(pdf *gofpdf.Fpdf, fontFile string) (typeface, error) {
	if fontFile == "" {
		for style, name := range bundledFaces {
			raw, err := bundledFonts.ReadFile(name)
			if err != nil {
				return typeface{}, fmt.Errorf("bundled export font: %w", err)
			}
			pdf.AddUTF8FontFromBytes(utf8Family, style, raw)
		}
		if err := pdf.Error(); err != nil {
			return typeface{}, fmt.Errorf("register bundled export font: %w", err)
		}
		return typeface{family: utf8Family, tr: identity}, nil
	}
	if _, err := os.Stat(fontFile); err != nil {
		return typeface{}, fmt.Errorf("export font: %w", err)
	}
	for _, style := range []string{"", "B", "I", "BI"} {
		pdf.AddUTF8Font(utf8Family, style, fontFile)
	}
	if err := pdf.Error(); err != nil {
		return typeface{}, fmt.Errorf("register export font: %w", err)
	}
	return typeface{family: utf8Family, tr: identity}, nil
}

// rgb is a hex colour like "6366F1".
type rgb string

func (c rgb) values() (int, int, int) {
	v, err := strconv.ParseUint(string(c), 16, 32)
	if err != nil || len(c) != 6 {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}

func setText(pdf *gofpdf.Fpdf, c rgb) { pdf.SetTextColor(c.values()) }
func setFill(pdf *gofpdf.Fpdf, c rgb) { pdf.SetFillColor(c.values()) }
func setDraw(pdf *gofpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.values()) }

const (
	colorPrimary     rgb = "6366F1"
	colorPrimaryDark rgb = "4F46E5"
	colorSecondary   rgb = "EC4899"
	colorWhite       rgb = "FFFFFF"
	colorDark        rgb = "1E293B"
	colorGray        rgb = "64748B"
	colorMuted       rgb = "94A3B8"
	colorLightGray   rgb = "F1F5F9"
	colorBorder      rgb = "E2E8F0"
	colorSuccess     rgb = "10B981"
	colorWarning     rgb = "F59E0B"
	colorDanger      rgb = "EF4444"
)
