package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSpreadsheetExporterRender(t *testing.T) {
	out, err := NewSpreadsheetExporter().Render([]Sheet{
		{
			Name:    "Học sinh",
			Headers: []string{"ID", "Họ tên", "Lớp", "Email"},
			Rows:    [][]interface{}{{"s1", "An", "10A1", ""}},
		},
		{
			Name:    "Điểm số",
			Headers: []string{"Học sinh", "Môn học", "Điểm", "Loại", "Ngày"},
			Rows:    [][]interface{}{{"An", "Toán học", 9.0, "quiz", "2024-01-10"}},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Học sinh", "Điểm số"}, f.GetSheetList())

	students, err := f.GetRows("Học sinh")
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, []string{"ID", "Họ tên", "Lớp", "Email"}, students[0])
	require.Equal(t, "An", students[1][1])

	score, err := f.GetCellValue("Điểm số", "C2")
	require.NoError(t, err)
	require.Equal(t, "9", score)
}

func TestSpreadsheetExporterRequiresSheets(t *testing.T) {
	_, err := NewSpreadsheetExporter().Render(nil)
	require.Error(t, err)
}
