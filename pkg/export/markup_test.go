package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkupBlocks(t *testing.T) {
	blocks := ParseMarkup("# Báo cáo\n\n## Xu hướng\n### Chi tiết\n- điểm **mạnh**\n* điểm yếu\n2. bước *một*\n> ghi chú\nĐoạn văn\r\n")
	require.Len(t, blocks, 8)

	assert.Equal(t, BlockHeading, blocks[0].Kind)
	assert.Equal(t, 1, blocks[0].Level)
	assert.Equal(t, "Báo cáo", blocks[0].PlainText())
	assert.Equal(t, 2, blocks[1].Level)
	assert.Equal(t, 3, blocks[2].Level)

	assert.Equal(t, BlockBullet, blocks[3].Kind)
	assert.Equal(t, []Run{{Text: "điểm "}, {Text: "mạnh", Bold: true}}, blocks[3].Runs)
	assert.Equal(t, BlockBullet, blocks[4].Kind)

	assert.Equal(t, BlockNumbered, blocks[5].Kind)
	assert.Equal(t, "2", blocks[5].Number)
	assert.Equal(t, []Run{{Text: "bước "}, {Text: "một", Italic: true}}, blocks[5].Runs)

	assert.Equal(t, BlockQuote, blocks[6].Kind)
	assert.True(t, blocks[6].Runs[0].Italic)

	assert.Equal(t, BlockParagraph, blocks[7].Kind)
	assert.Equal(t, "Đoạn văn", blocks[7].PlainText())
}

func TestParseMarkupHashWithoutSpaceIsParagraph(t *testing.T) {
	blocks := ParseMarkup("#hashtag")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
}

func TestParseInlineKeepsStrayAsterisk(t *testing.T) {
	assert.Equal(t, []Run{{Text: "2 * 3 = 6"}}, ParseInline("2 * 3 = 6"))
	assert.Equal(t, []Run{{Text: "Toán: "}, {Text: "8.5", Bold: true}, {Text: " và "}, {Text: "tốt", Italic: true}},
		ParseInline("Toán: **8.5** và *tốt*"))
}

func TestParseMarkupNestedEmphasis(t *testing.T) {
	blocks := ParseMarkup("***rất tốt*** nhé")
	require.Len(t, blocks, 1)
	assert.Equal(t, []Run{{Text: "rất tốt", Bold: true, Italic: true}, {Text: " nhé"}}, blocks[0].Runs)
}

func TestParseMarkupOrderedListNumbers(t *testing.T) {
	blocks := ParseMarkup("1. Ôn tập\n2. Làm bài\n#### Ghi chú")
	require.Len(t, blocks, 3)
	assert.Equal(t, "1", blocks[0].Number)
	assert.Equal(t, "2", blocks[1].Number)
	assert.Equal(t, BlockHeading, blocks[2].Kind)
	assert.Equal(t, 3, blocks[2].Level)
}

func TestParseMarkupEachLineIsABlock(t *testing.T) {
	blocks := ParseMarkup("> trích dẫn\nDòng tiếp theo")
	require.Len(t, blocks, 2)
	assert.Equal(t, BlockQuote, blocks[0].Kind)
	assert.Equal(t, BlockParagraph, blocks[1].Kind)
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "Báo cáo_ An _10A1_.pdf", SafeFilename("Báo cáo: An (10A1)", ".pdf"))
	assert.Equal(t, "EduSmart.pdf", SafeFilename("", ".pdf"))
}
