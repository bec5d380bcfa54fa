package export

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind classifies one line of light markup.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBullet
	BlockNumbered
	BlockQuote
)

// Run is a span of inline text with its emphasis.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Block is one rendered line. Level is set for headings (1-3), Number for numbered items.
type Block struct {
	Kind   BlockKind
	Level  int
	Number string
	Runs   []Run
}

var markdown = goldmark.New()

// ParseMarkup splits markup text into blocks. Every non-blank line is its own block.
func ParseMarkup(markup string) []Block {
	src := lineSeparated(markup)
	doc := markdown.Parser().Parse(text.NewReader(src))
	p := blockParser{src: src}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p.block(n)
	}
	return p.blocks
}

// ParseInline splits text into plain, **bold** and *italic* runs. Unmatched asterisks stay literal.
func ParseInline(markup string) []Run {
	src := []byte(strings.TrimSpace(markup))
	doc := markdown.Parser().Parse(text.NewReader(src))
	var runs []Run
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock || !isInlineContainer(n) {
			return ast.WalkContinue, nil
		}
		runs = appendRuns(runs, inlineRuns(n, src, style{}))
		return ast.WalkSkipChildren, nil
	})
	if len(runs) == 0 {
		runs = append(runs, Run{Text: markup})
	}
	return runs
}

// lineSeparated drops blank lines and puts a blank line between the rest, so no line
// continues the paragraph above it.
func lineSeparated(markup string) []byte {
	lines := strings.Split(strings.ReplaceAll(markup, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return []byte(strings.Join(kept, "\n\n"))
}

type blockParser struct {
	src    []byte
	blocks []Block
}

func (p *blockParser) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		level := node.Level
		if level > 3 {
			level = 3
		}
		p.add(Block{Kind: BlockHeading, Level: level, Runs: inlineRuns(node, p.src, style{bold: true})})
	case *ast.List:
		number := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			p.listItem(node, item, number)
			number++
		}
	case *ast.Blockquote:
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if isInlineContainer(child) {
				p.add(Block{Kind: BlockQuote, Runs: inlineRuns(child, p.src, style{italic: true})})
				continue
			}
			p.block(child)
		}
	case *ast.Paragraph, *ast.TextBlock:
		p.add(Block{Kind: BlockParagraph, Runs: inlineRuns(node, p.src, style{})})
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if line := strings.TrimSpace(string(seg.Value(p.src))); line != "" {
				p.add(Block{Kind: BlockParagraph, Runs: []Run{{Text: line}}})
			}
		}
	}
}

func (p *blockParser) listItem(list *ast.List, item ast.Node, number int) {
	kind, marker := BlockBullet, ""
	if list.IsOrdered() {
		kind, marker = BlockNumbered, strconv.Itoa(number)
	}
	first := true
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if first && isInlineContainer(child) {
			p.add(Block{Kind: kind, Number: marker, Runs: inlineRuns(child, p.src, style{})})
			first = false
			continue
		}
		p.block(child)
	}
}

func (p *blockParser) add(b Block) {
	if len(b.Runs) == 0 {
		return
	}
	p.blocks = append(p.blocks, b)
}

func isInlineContainer(n ast.Node) bool {
	switch n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		return true
	}
	return false
}

type style struct {
	bold   bool
	italic bool
}

func inlineRuns(parent ast.Node, src []byte, st style) []Run {
	var runs []Run
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				s += " "
			}
			runs = appendRun(runs, Run{Text: s, Bold: st.bold, Italic: st.italic})
		case *ast.String:
			runs = appendRun(runs, Run{Text: string(node.Value), Bold: st.bold, Italic: st.italic})
		case *ast.Emphasis:
			inner := st
			if node.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			runs = appendRuns(runs, inlineRuns(node, src, inner))
		case *ast.AutoLink:
			runs = appendRun(runs, Run{Text: string(node.URL(src)), Bold: st.bold, Italic: st.italic})
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				runs = appendRun(runs, Run{Text: string(seg.Value(src)), Bold: st.bold, Italic: st.italic})
			}
		default:
			runs = appendRuns(runs, inlineRuns(node, src, st))
		}
	}
	return runs
}

func appendRuns(runs, more []Run) []Run {
	for _, r := range more {
		runs = appendRun(runs, r)
	}
	return runs
}

// appendRun merges r into the previous run when both carry the same emphasis.
func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	if last := len(runs) - 1; last >= 0 && runs[last].Bold == r.Bold && runs[last].Italic == r.Italic {
		runs[last].Text += r.Text
		return runs
	}
	return append(runs, r)
}

// PlainText joins the runs of a block without emphasis.
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\x{00C0}-\x{024F}\x{1E00}-\x{1EFF}\s]`)

// SafeFilename replaces characters outside letters, digits and whitespace with '_' and adds ext.
func SafeFilename(title, ext string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "_")
	if strings.TrimSpace(name) == "" {
		name = "EduSmart"
	}
	return name + ext
}
