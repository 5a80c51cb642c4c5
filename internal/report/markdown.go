package report

import (
	"regexp"
	"strings"
)

// BlockKind classifies one line of narrative text.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockBullet    BlockKind = "bullet"
	BlockParagraph BlockKind = "paragraph"
	BlockSpacer    BlockKind = "spacer"
	BlockBreak     BlockKind = "break"
)

// Block is a classified narrative line. Text is escaped and may contain
// <b>...</b> emphasis markup; it is empty for spacers and breaks.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Level int       `json:"level,omitempty"` // number of leading '#' for headings
	Text  string    `json:"text,omitempty"`
}

var (
	headingPattern = regexp.MustCompile(`^(#+)\s*(.*)`)
	boldPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	markupEscaper  = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// ClassifyLine classifies a single line. Classification looks at the line
// alone; no state carries over between lines.
func ClassifyLine(line string) Block {
	line = strings.TrimSpace(line)
	if line == "" {
		return Block{Kind: BlockSpacer}
	}

	// Escape first so that the <b> tags added below survive.
	line = markupEscaper.Replace(line)
	line = boldPattern.ReplaceAllString(line, "<b>$1</b>")

	if m := headingPattern.FindStringSubmatch(line); m != nil {
		return Block{Kind: BlockHeading, Level: len(m[1]), Text: m[2]}
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return Block{Kind: BlockBullet, Text: strings.TrimSpace(line[2:])}
	}
	if line == "---" {
		return Block{Kind: BlockBreak}
	}
	return Block{Kind: BlockParagraph, Text: line}
}

// ParseNarrative splits text on newlines and classifies every line.
func ParseNarrative(text string) []Block {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, l := range lines {
		blocks = append(blocks, ClassifyLine(l))
	}
	return blocks
}

// Segment is a run of block text with uniform emphasis.
type Segment struct {
	Text string
	Bold bool
}

var unescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

// Segments splits block text on <b> markup and unescapes each run, for
// renderers that draw emphasis themselves.
func Segments(text string) []Segment {
	var out []Segment
	for text != "" {
		start := strings.Index(text, "<b>")
		if start < 0 {
			out = append(out, Segment{Text: unescaper.Replace(text)})
			break
		}
		end := strings.Index(text[start:], "</b>")
		if end < 0 {
			out = append(out, Segment{Text: unescaper.Replace(text)})
			break
		}
		end += start
		if start > 0 {
			out = append(out, Segment{Text: unescaper.Replace(text[:start])})
		}
		out = append(out, Segment{Text: unescaper.Replace(text[start+3 : end]), Bold: true})
		text = text[end+4:]
	}
	return out
}

// PlainText removes emphasis markup and unescapes block text.
func PlainText(text string) string {
	var b strings.Builder
	for _, s := range Segments(text) {
		b.WriteString(s.Text)
	}
	return b.String()
}
