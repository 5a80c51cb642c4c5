package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/strengthscope/internal/cli/formatter"
	"github.com/alexanderramin/strengthscope/internal/render"
	"github.com/alexanderramin/strengthscope/internal/report"
)

const formatText = "text"

var errOutNeedsFormat = errors.New("--out needs a document format (md, html, json or pdf)")

// reportOutput selects how a finished report leaves the program.
type reportOutput struct {
	Format string
	Path   string
}

// preparedOutput is a reportOutput whose format, renderer and font have
// been checked. A nil renderer means the terminal text report.
type preparedOutput struct {
	path     string
	format   render.Format
	renderer render.Renderer
}

// prepare resolves the output before any answers are collected, so a bad
// format or a missing PDF font stops the command up front.
func (o reportOutput) prepare(app *App) (*preparedOutput, error) {
	if o.Format == "" || o.Format == formatText {
		if o.Path != "" {
			return nil, errOutNeedsFormat
		}
		return &preparedOutput{}, nil
	}

	f, err := render.ParseFormat(o.Format)
	if err != nil {
		return nil, err
	}
	r, err := render.New(f, render.Options{FontPath: app.Config.Font})
	if err != nil {
		return nil, err
	}
	return &preparedOutput{path: o.Path, format: f, renderer: r}, nil
}

func (p *preparedOutput) write(w io.Writer, app *App, rep *report.Report) error {
	if p.renderer == nil {
		fmt.Fprint(w, formatter.FormatReport(rep))
		return nil
	}

	data, err := render.Bytes(p.renderer, rep)
	app.Metrics.Rendered(string(p.format), err)
	if err != nil {
		return err
	}

	path := p.path
	if path == "" && p.format == render.FormatPDF {
		path = report.Filename(rep.Subject, p.renderer.Extension())
	}
	if path == "" {
		if p.format == render.FormatMarkdown && isTerminal(w) {
			data = []byte(prettyMarkdown(string(data)))
		}
		_, err := w.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(w, "%s %s\n", formatter.StyleGreen.Render("✔ Wrote"), path)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// prettyMarkdown renders Markdown for the terminal, falling back to the
// source text when the renderer cannot be built.
func prettyMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
