package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/strengthscope/internal/report"
)

// Markdown renders a GitHub-flavored Markdown document.
type Markdown struct{}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func (Markdown) Render(w io.Writer, rep *report.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rep.Title)
	fmt.Fprintf(&b, "**Subject:** %s  \n", rep.Subject)
	fmt.Fprintf(&b, "**Edition:** %s (%d traits)  \n", rep.EditionName, rep.TraitCount)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", rep.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Categories\n\n")
	b.WriteString("| Category | Score |\n|---|---:|\n")
	for _, a := range rep.Summary.Chart.Axes {
		fmt.Fprintf(&b, "| %s | %d |\n", cellEscaper.Replace(a.Label), a.Value)
	}
	fmt.Fprintf(&b, "\n_%s_\n\n", rep.Summary.Caption)
	if len(rep.Unmapped) > 0 {
		fmt.Fprintf(&b, "Traits outside any category: %s\n\n", strings.Join(rep.Unmapped, ", "))
	}

	fmt.Fprintf(&b, "## Top %d\n\n", len(rep.Summary.Top))
	b.WriteString("| Rank | Trait | Category | Score |\n|---:|---|---|---:|\n")
	for _, r := range rep.Summary.Top {
		fmt.Fprintf(&b, "| %d | %s | %s | %d |\n", r.Rank, cellEscaper.Replace(r.Trait), cellEscaper.Replace(r.Category), r.Score)
	}

	b.WriteString("\n## Full ranking\n\n")
	b.WriteString("| Rank | Trait | Category | Score | Rank | Trait | Category | Score |\n")
	b.WriteString("|---:|---|---|---:|---:|---|---|---:|\n")
	for i := range rep.Listing.Left {
		fmt.Fprintf(&b, "| %s | %s |\n", markdownCells(rep.Listing.Left[i]), markdownCells(rep.Listing.Right[i]))
	}

	if rep.Narrative.Raw != "" {
		b.WriteString("\n## Interpretation\n\n")
		if rep.Narrative.Fallback {
			fmt.Fprintf(&b, "_%s_\n", rep.Narrative.Raw)
		} else {
			b.WriteString(markdownBlocks(rep.Narrative.Blocks))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func markdownCells(r report.Row) string {
	if r.Blank {
		return " |  |  | "
	}
	return fmt.Sprintf("%d | %s | %s | %d", r.Rank, cellEscaper.Replace(r.Trait), cellEscaper.Replace(r.Category), r.Score)
}

// markdownBlocks turns classified blocks back into normalized Markdown.
func markdownBlocks(blocks []report.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		text := markdownInline(blk.Text)
		switch blk.Kind {
		case report.BlockHeading:
			fmt.Fprintf(&b, "%s %s\n", strings.Repeat("#", min(max(blk.Level, 3), 6)), text)
		case report.BlockBullet:
			fmt.Fprintf(&b, "- %s\n", text)
		case report.BlockBreak:
			b.WriteString("\n---\n")
		case report.BlockSpacer:
			b.WriteString("\n")
		default:
			b.WriteString(text + "\n")
		}
	}
	return b.String()
}

func markdownInline(text string) string {
	var b strings.Builder
	for _, seg := range report.Segments(text) {
		if seg.Bold {
			b.WriteString("**" + seg.Text + "**")
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }
func (Markdown) Extension() string   { return "md" }
