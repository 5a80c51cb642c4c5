package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/strengthscope/internal/report"
)

// Format names an output document type.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatPDF      Format = "pdf"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrFontRequired  = errors.New("pdf output requires a TrueType font file")
	ErrInvalidFont   = errors.New("font file is not a TrueType font")
)

// Renderer turns a report into one document type.
type Renderer interface {
	Render(w io.Writer, rep *report.Report) error
	ContentType() string
	Extension() string
}

// Options configures renderer construction.
type Options struct {
	// FontPath is the TrueType font used for PDF output.
	FontPath string
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// New returns the renderer for f. PDF renderers load their font here, so a
// missing font surfaces before any report is produced.
func New(f Format, opts Options) (Renderer, error) {
	switch f {
	case FormatMarkdown:
		return Markdown{}, nil
	case FormatHTML:
		return NewHTML(), nil
	case FormatJSON:
		return JSON{Indent: true}, nil
	case FormatPDF:
		return NewPDF(opts.FontPath)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Bytes renders into memory. On error no partial document is returned.
func Bytes(r Renderer, rep *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, rep); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// To renders fully before writing anything to w.
func To(w io.Writer, r Renderer, rep *report.Report) error {
	data, err := Bytes(r, rep)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
