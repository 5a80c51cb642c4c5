package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexanderramin/strengthscope/internal/report"
)

// JSON writes the report structure as-is.
type JSON struct {
	Indent bool
}

func (j JSON) Render(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

func (JSON) ContentType() string { return "application/json" }
func (JSON) Extension() string   { return "json" }
