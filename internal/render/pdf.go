package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/alexanderramin/strengthscope/internal/report"
	"github.com/go-pdf/fpdf"
)

const (
	fontFamily = "body"
	pageLeft   = 15.0
	pageWidth  = 180.0 // A4 minus margins
	rowHeight  = 7.0
)

// PDF renders an A4 document: summary page, full ranking page and, when a
// narrative is present, an interpretation page.
type PDF struct {
	font []byte
}

// NewPDF loads the TrueType font used for every page. Unicode trait names
// cannot be drawn with the core PDF fonts, so the font is mandatory.
func NewPDF(fontPath string) (*PDF, error) {
	if strings.TrimSpace(fontPath) == "" {
		return nil, ErrFontRequired
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontRequired, err)
	}
	if !isTrueType(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFont, fontPath)
	}
	return &PDF{font: data}, nil
}

func isTrueType(b []byte) bool {
	if len(b) < 12 {
		return false
	}
	switch string(b[:4]) {
	case "\x00\x01\x00\x00", "true":
		return true
	}
	return false
}

func (*PDF) ContentType() string { return "application/pdf" }
func (*PDF) Extension() string   { return "pdf" }

func (p *PDF) Render(w io.Writer, rep *report.Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(rep.Title+" - "+rep.Subject, true)
	pdf.SetCreator("strengthscope", false)
	pdf.SetCreationDate(rep.GeneratedAt)
	pdf.AddUTF8FontFromBytes(fontFamily, "", p.font)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", p.font)
	pdf.SetMargins(pageLeft, 15, pageLeft)
	pdf.SetAutoPageBreak(true, 15)

	summaryPage(pdf, rep)
	listingPage(pdf, rep)
	if rep.Narrative.Raw != "" {
		narrativePage(pdf, rep.Narrative)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return nil
}

func summaryPage(pdf *fpdf.Fpdf, rep *report.Report) {
	pdf.AddPage()
	pdf.SetTextColor(44, 62, 80)
	pdf.SetFont(fontFamily, "B", 20)
	pdf.CellFormat(pageWidth, 10, rep.Title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(127, 140, 141)
	meta := fmt.Sprintf("%s  ·  %s (%d traits)  ·  %s",
		rep.Subject, rep.EditionName, rep.TraitCount, rep.GeneratedAt.Format("2006-01-02"))
	pdf.CellFormat(pageWidth, 6, meta, "", 1, "L", false, 0, "")

	drawRadar(pdf, rep.Summary.Chart, pageLeft+pageWidth/2, 90, 50)

	pdf.SetXY(pageLeft, 152)
	pdf.SetFont(fontFamily, "", 8)
	pdf.SetTextColor(127, 140, 141)
	pdf.CellFormat(pageWidth, 5, rep.Summary.Caption, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "B", 13)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(pageWidth, 8, fmt.Sprintf("Top %d", len(rep.Summary.Top)), "", 1, "L", false, 0, "")
	widths := []float64{18, 82, 55, 25}
	tableHeader(pdf, widths, []string{"Rank", "Trait", "Category", "Score"})
	for _, r := range rep.Summary.Top {
		pdf.CellFormat(widths[0], rowHeight, strconv.Itoa(r.Rank), "B", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, r.Trait, "B", 0, "L", false, 0, "")
		swatchCell(pdf, widths[2], r.Color, r.Category)
		pdf.CellFormat(widths[3], rowHeight, strconv.Itoa(r.Score), "B", 1, "R", false, 0, "")
	}
}

func drawRadar(pdf *fpdf.Fpdf, chart report.Chart, cx, cy, radius float64) {
	n := len(chart.Axes)
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(210, 215, 220)
	for i, level := range chart.GridLevels {
		if i == 0 {
			continue
		}
		if n < 3 {
			pdf.Circle(cx, cy, radius*level/float64(chart.Max), "D")
			continue
		}
		pts := make([]fpdf.PointType, 0, n)
		for _, a := range chart.Axes {
			x, y := chart.Cartesian(a.Angle, level, cx, cy, radius)
			pts = append(pts, fpdf.PointType{X: x, Y: y})
		}
		pdf.Polygon(pts, "D")
	}

	pdf.SetFont(fontFamily, "B", 10)
	for _, a := range chart.Axes {
		x, y := chart.Cartesian(a.Angle, float64(chart.Max), cx, cy, radius)
		pdf.Line(cx, cy, x, y)

		lx, ly := chart.Cartesian(a.Angle, float64(chart.Max)*1.15, cx, cy, radius)
		w := pdf.GetStringWidth(a.Label)
		switch s := math.Sin(a.Angle); {
		case s < -0.2:
			lx -= w
		case s <= 0.2:
			lx -= w / 2
		}
		r, g, b := hexToRGB(a.Color)
		pdf.SetTextColor(r, g, b)
		pdf.Text(lx, ly+1.5, a.Label)
	}

	if len(chart.Polygon) > 1 {
		pts := make([]fpdf.PointType, 0, len(chart.Polygon))
		for _, pt := range chart.Polygon {
			x, y := chart.Cartesian(pt.Angle, float64(pt.Value), cx, cy, radius)
			pts = append(pts, fpdf.PointType{X: x, Y: y})
		}
		r, g, b := hexToRGB(chart.LineColor)
		pdf.SetFillColor(r, g, b)
		pdf.SetAlpha(chart.FillOpacity, "Normal")
		pdf.Polygon(pts, "F")
		pdf.SetAlpha(1, "Normal")
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(0.7)
		pdf.Polygon(pts, "D")
	}

	for _, a := range chart.Axes {
		x, y := chart.Cartesian(a.Angle, float64(a.Value), cx, cy, radius)
		r, g, b := hexToRGB(a.Color)
		pdf.SetFillColor(r, g, b)
		pdf.Circle(x, y, 1.8, "F")
	}
	pdf.SetLineWidth(0.2)
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(52, 73, 94)
	pdf.SetTextColor(255, 255, 255)
	for i, l := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], rowHeight, l, "", ln, "C", true, 0, "")
	}
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(44, 62, 80)
	pdf.SetDrawColor(236, 240, 241)
}

func swatchCell(pdf *fpdf.Fpdf, width float64, hex, text string) {
	x, y := pdf.GetXY()
	r, g, b := hexToRGB(hex)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(x+1.5, y+2, 3, 3, "F")
	pdf.SetX(x + 6)
	pdf.CellFormat(width-6, rowHeight, text, "B", 0, "L", false, 0, "")
}

func listingPage(pdf *fpdf.Fpdf, rep *report.Report) {
	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 16)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(pageWidth, 10, "Full ranking", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	const gap = 6.0
	col := (pageWidth - gap) / 2
	widths := []float64{12, col - 12 - 28 - 14, 28, 14}
	top := pdf.GetY()

	for c, rows := range [][]report.Row{rep.Listing.Left, rep.Listing.Right} {
		x := pageLeft + float64(c)*(col+gap)
		pdf.SetXY(x, top)
		pdf.SetLeftMargin(x)
		tableHeader(pdf, widths, []string{"Rank", "Trait", "Category", "Score"})
		for _, r := range rows {
			if r.Blank {
				pdf.CellFormat(col, rowHeight, "", "", 1, "L", false, 0, "")
				continue
			}
			pdf.CellFormat(widths[0], rowHeight, strconv.Itoa(r.Rank), "B", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], rowHeight, r.Trait, "B", 0, "L", false, 0, "")
			swatchCell(pdf, widths[2], r.Color, r.Category)
			pdf.CellFormat(widths[3], rowHeight, strconv.Itoa(r.Score), "B", 1, "R", false, 0, "")
		}
	}
	pdf.SetLeftMargin(pageLeft)
}

func narrativePage(pdf *fpdf.Fpdf, n report.NarrativeSection) {
	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 16)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(pageWidth, 10, "Interpretation", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if n.Fallback {
		pdf.SetFont(fontFamily, "", 11)
		pdf.SetTextColor(192, 57, 43)
		pdf.MultiCell(pageWidth, 6, n.Raw, "", "L", false)
		return
	}

	for _, blk := range n.Blocks {
		switch blk.Kind {
		case report.BlockHeading:
			pdf.Ln(2)
			pdf.SetFont(fontFamily, "B", 13)
			pdf.SetTextColor(52, 73, 94)
			pdf.MultiCell(pageWidth, 7, report.PlainText(blk.Text), "", "L", false)
			pdf.Ln(1)
		case report.BlockBullet:
			pdf.SetX(pageLeft + 2)
			pdf.SetFont(fontFamily, "", 11)
			pdf.SetTextColor(44, 62, 80)
			pdf.Write(6, "•")
			pdf.SetLeftMargin(pageLeft + 7)
			pdf.SetX(pageLeft + 7)
			writeSegments(pdf, blk.Text)
			pdf.SetLeftMargin(pageLeft)
			pdf.Ln(6)
		case report.BlockBreak:
			y := pdf.GetY() + 2
			pdf.SetDrawColor(189, 195, 199)
			pdf.Line(pageLeft, y, pageLeft+pageWidth, y)
			pdf.Ln(4)
		case report.BlockSpacer:
			pdf.Ln(3)
		default:
			writeSegments(pdf, blk.Text)
			pdf.Ln(7)
		}
	}
}

func writeSegments(pdf *fpdf.Fpdf, text string) {
	pdf.SetTextColor(44, 62, 80)
	for _, seg := range report.Segments(text) {
		style := ""
		if seg.Bold {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, 11)
		pdf.Write(6, seg.Text)
	}
	pdf.SetFont(fontFamily, "", 11)
}

// hexToRGB parses #rrggbb, returning mid grey for anything else.
func hexToRGB(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 127, 140, 141
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 127, 140, 141
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
