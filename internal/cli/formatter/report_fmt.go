package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/strengthscope/internal/report"
	"github.com/alexanderramin/strengthscope/internal/service"
)

const scoreBarWidth = 24

// FormatReport renders a report for the terminal: header box, category
// bars, top ranking, full two-column listing and the narrative.
func FormatReport(rep *report.Report) string {
	var b strings.Builder

	meta := []string{
		Dim("Subject   ") + Bold(rep.Subject),
		Dim("Edition   ") + rep.EditionName + Dim(fmt.Sprintf(" (%d traits)", rep.TraitCount)),
		Dim("Generated ") + HumanDate(rep.GeneratedAt),
	}
	b.WriteString(RenderBox(rep.Title, strings.Join(meta, "\n")))
	b.WriteString("\n\n")

	b.WriteString(Header("Categories"))
	b.WriteString("\n")
	chart := rep.Summary.Chart
	labelWidth := 0
	for _, a := range chart.Axes {
		labelWidth = max(labelWidth, len([]rune(a.Label)))
	}
	for _, a := range chart.Axes {
		label := a.Label + strings.Repeat(" ", labelWidth-len([]rune(a.Label)))
		fmt.Fprintf(&b, "%s  %s\n", Swatch(a.Color, label), RenderScoreBar(a.Value, chart.Max, scoreBarWidth, a.Color))
	}
	if len(rep.Unmapped) > 0 {
		b.WriteString(Dim("Not in any category: " + strings.Join(rep.Unmapped, ", ")))
		b.WriteString("\n")
	}
	b.WriteString(Dim(rep.Summary.Caption))
	b.WriteString("\n\n")

	b.WriteString(Header(fmt.Sprintf("Top %d", len(rep.Summary.Top))))
	b.WriteString("\n")
	b.WriteString(RenderTable([]string{"#", "Trait", "Category", "Score"}, tableRows(rep.Summary.Top), 0, 3))
	b.WriteString("\n")

	b.WriteString(Header("Full ranking"))
	b.WriteString("\n")
	headers := []string{"#", "Trait", "Category", "Score"}
	left := RenderTable(headers, tableRows(rep.Listing.Left), 0, 3)
	right := RenderTable(headers, tableRows(rep.Listing.Right), 0, 3)
	b.WriteString(SideBySide(left, right, 4))
	b.WriteString("\n")

	if rep.Narrative.Raw != "" {
		b.WriteString("\n")
		b.WriteString(Header("Interpretation"))
		b.WriteString("\n")
		b.WriteString(FormatNarrative(rep.Narrative))
	}
	return b.String()
}

// tableRows renders ranking rows; blank padding rows stay empty.
func tableRows(rows []report.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r.Blank {
			out = append(out, []string{"", "", "", ""})
			continue
		}
		out = append(out, []string{
			strconv.Itoa(r.Rank),
			r.Trait,
			Swatch(r.Color, r.Category),
			strconv.Itoa(r.Score),
		})
	}
	return out
}

// FormatNarrative renders classified narrative blocks with terminal styling.
func FormatNarrative(n report.NarrativeSection) string {
	if n.Fallback {
		return StyleYellow.Render(n.Raw) + "\n"
	}
	var b strings.Builder
	for _, blk := range n.Blocks {
		switch blk.Kind {
		case report.BlockHeading:
			b.WriteString("\n" + StyleHeader.Render(report.PlainText(blk.Text)) + "\n")
		case report.BlockBullet:
			b.WriteString("  " + StylePurple.Render("•") + " " + styledSegments(blk.Text) + "\n")
		case report.BlockBreak:
			b.WriteString(Dim(strings.Repeat("─", 40)) + "\n")
		case report.BlockSpacer:
			b.WriteString("\n")
		default:
			b.WriteString(styledSegments(blk.Text) + "\n")
		}
	}
	return b.String()
}

func styledSegments(text string) string {
	var b strings.Builder
	for _, seg := range report.Segments(text) {
		if seg.Bold {
			b.WriteString(StyleBold.Render(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// FormatEditions lists the selectable editions.
func FormatEditions(editions []service.EditionInfo) string {
	rows := make([][]string, 0, len(editions))
	for _, e := range editions {
		rows = append(rows, []string{
			e.ID,
			e.Name,
			strconv.Itoa(e.TraitCount),
			strconv.Itoa(e.StatementCount),
			strings.Join(e.Categories, ", "),
		})
	}
	return RenderTable([]string{"ID", "Name", "Traits", "Statements", "Categories"}, rows, 2, 3)
}

// FormatValidation reports catalog validation results.
func FormatValidation(source string, errs []error) string {
	if len(errs) == 0 {
		return StyleGreen.Render("✔ ") + source + Dim(" is a valid catalog") + "\n"
	}
	var b strings.Builder
	b.WriteString(StyleRed.Render(fmt.Sprintf("✖ %s has %d problem(s)", source, len(errs))) + "\n")
	for _, err := range errs {
		b.WriteString("  " + StyleRed.Render("•") + " " + err.Error() + "\n")
	}
	return b.String()
}
