package render

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/alexanderramin/strengthscope/internal/report"
)

const (
	svgSize   = 360.0
	svgRadius = 130.0
)

// HTML renders a standalone page with an inline SVG radar chart.
type HTML struct {
	tmpl *template.Template
}

// NewHTML parses the page template.
func NewHTML() *HTML {
	return &HTML{tmpl: template.Must(template.New("report").Funcs(template.FuncMap{
		"radar":     radarSVG,
		"narrative": narrativeHTML,
		"date":      func(r *report.Report) string { return r.GeneratedAt.Format("2006-01-02 15:04 MST") },
		"list":      func(cols ...[]report.Row) [][]report.Row { return cols },
	}).Parse(pageTemplate))}
}

func (h *HTML) Render(w io.Writer, rep *report.Report) error {
	if err := h.tmpl.Execute(w, rep); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}

func (*HTML) ContentType() string { return "text/html; charset=utf-8" }
func (*HTML) Extension() string   { return "html" }

// radarSVG draws the category chart. Values and labels are produced here,
// so the result is marked safe for the template.
func radarSVG(chart report.Chart) template.HTML {
	c := svgSize / 2
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f" role="img">`,
		svgSize, svgSize, svgSize, svgSize)

	n := len(chart.Axes)
	for i, level := range chart.GridLevels {
		if i == 0 {
			continue
		}
		if n < 3 {
			r := svgRadius * level / float64(chart.Max)
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#dddddd"/>`, c, c, r)
			continue
		}
		var pts []string
		for _, a := range chart.Axes {
			x, y := chart.Cartesian(a.Angle, level, c, c, svgRadius)
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
		}
		fmt.Fprintf(&b, `<polygon points="%s" fill="none" stroke="#dddddd"/>`, strings.Join(pts, " "))
	}

	for _, a := range chart.Axes {
		x, y := chart.Cartesian(a.Angle, float64(chart.Max), c, c, svgRadius)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#cccccc"/>`, c, c, x, y)
		lx, ly := chart.Cartesian(a.Angle, float64(chart.Max)*1.18, c, c, svgRadius)
		anchor := "middle"
		if s := math.Sin(a.Angle); s > 0.2 {
			anchor = "start"
		} else if s < -0.2 {
			anchor = "end"
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="%s" font-size="13" fill="%s">%s</text>`,
			lx, ly, anchor, template.HTMLEscapeString(a.Color), template.HTMLEscapeString(a.Label))
	}

	if len(chart.Polygon) > 0 {
		var pts []string
		for _, p := range chart.Polygon {
			x, y := chart.Cartesian(p.Angle, float64(p.Value), c, c, svgRadius)
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
		}
		fmt.Fprintf(&b, `<polyline points="%s" fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="2"/>`,
			strings.Join(pts, " "), chart.LineColor, chart.FillOpacity, chart.LineColor)
	}
	for _, a := range chart.Axes {
		x, y := chart.Cartesian(a.Angle, float64(a.Value), c, c, svgRadius)
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="6" fill="%s"/>`, x, y, template.HTMLEscapeString(a.Color))
		if chart.ShowValueLabels {
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="11">%d</text>`, x+8, y-8, a.Value)
		}
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// narrativeHTML emits classified blocks. Block text is already escaped by
// the line classifier and only carries <b> markup.
func narrativeHTML(n report.NarrativeSection) template.HTML {
	if n.Fallback {
		return template.HTML(`<p class="fallback">` + template.HTMLEscapeString(n.Raw) + `</p>`)
	}
	var b strings.Builder
	inList := false
	for _, blk := range n.Blocks {
		if blk.Kind != report.BlockBullet && inList {
			b.WriteString("</ul>\n")
			inList = false
		}
		switch blk.Kind {
		case report.BlockHeading:
			fmt.Fprintf(&b, "<h3>%s</h3>\n", blk.Text)
		case report.BlockBullet:
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", blk.Text)
		case report.BlockBreak:
			b.WriteString("<hr>\n")
		case report.BlockSpacer:
		default:
			fmt.Fprintf(&b, "<p>%s</p>\n", blk.Text)
		}
	}
	if inList {
		b.WriteString("</ul>\n")
	}
	return template.HTML(b.String())
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Subject}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; color: #2c3e50; }
h1 { border-bottom: 2px solid #34495e; padding-bottom: .3rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { border-bottom: 1px solid #ecf0f1; padding: .35rem .5rem; text-align: left; }
th { background: #34495e; color: #fff; }
td.num { text-align: right; }
.summary { display: flex; gap: 2rem; align-items: flex-start; }
.columns { display: flex; gap: 2rem; }
.columns table { width: 50%; }
.swatch { display: inline-block; width: .8em; height: .8em; margin-right: .4em; }
.caption, .meta { color: #7f8c8d; font-size: .9rem; }
.fallback { color: #c0392b; font-style: italic; }
section { page-break-after: always; }
</style>
</head>
<body>
<section>
<h1>{{.Title}}</h1>
<p class="meta">{{.Subject}} · {{.EditionName}} ({{.TraitCount}} traits) · {{date .}}</p>
<div class="summary">
<figure>{{radar .Summary.Chart}}<figcaption class="caption">{{.Summary.Caption}}</figcaption></figure>
<table>
<tr><th>Rank</th><th>Trait</th><th>Category</th><th>Score</th></tr>
{{range .Summary.Top}}<tr><td class="num">{{.Rank}}</td><td>{{.Trait}}</td><td><span class="swatch" style="background: {{.Color}}"></span>{{.Category}}</td><td class="num">{{.Score}}</td></tr>
{{end}}</table>
</div>
{{if .Unmapped}}<p class="caption">Traits outside any category: {{range $i, $t := .Unmapped}}{{if $i}}, {{end}}{{$t}}{{end}}</p>{{end}}
</section>
<section>
<h2>Full ranking</h2>
<div class="columns">
{{range $col := (list .Listing.Left .Listing.Right)}}<table>
<tr><th>Rank</th><th>Trait</th><th>Category</th><th>Score</th></tr>
{{range $col}}{{if .Blank}}<tr><td>&nbsp;</td><td></td><td></td><td></td></tr>{{else}}<tr><td class="num">{{.Rank}}</td><td>{{.Trait}}</td><td><span class="swatch" style="background: {{.Color}}"></span>{{.Category}}</td><td class="num">{{.Score}}</td></tr>{{end}}
{{end}}</table>
{{end}}</div>
</section>
{{if .Narrative.Raw}}<section>
<h2>Interpretation</h2>
{{narrative .Narrative}}
</section>{{end}}
</body>
</html>
`
