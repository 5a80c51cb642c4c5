package report

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/scoring"
)

// TopN is the length of the summary table.
const TopN = 10

const defaultTitle = "Strength Report"

var (
	ErrNoResult       = errors.New("report requires a scoring result")
	ErrMissingSubject = errors.New("report requires a subject name")
)

// Row is one line of a ranking table. Blank rows pad the shorter column of
// the two-column listing.
type Row struct {
	Rank     int    `json:"rank,omitempty"`
	TraitID  string `json:"trait_id,omitempty"`
	Trait    string `json:"trait,omitempty"`
	Category string `json:"category,omitempty"`
	Color    string `json:"color,omitempty"`
	Score    int    `json:"score,omitempty"`
	Blank    bool   `json:"blank,omitempty"`
}

// Summary is the first page: category chart plus the top of the ranking.
type Summary struct {
	Chart   Chart  `json:"chart"`
	Top     []Row  `json:"top"`
	Caption string `json:"caption"`
}

// Listing is the full ranking split into two side-by-side columns of equal
// row count.
type Listing struct {
	Left  []Row `json:"left"`
	Right []Row `json:"right"`
}

// NarrativeSection holds the generated interpretation.
type NarrativeSection struct {
	Raw      string  `json:"raw"`
	Blocks   []Block `json:"blocks"`
	Fallback bool    `json:"fallback"`
	Model    string  `json:"model,omitempty"`
}

// Report is the renderer-agnostic description of a finished assessment.
type Report struct {
	Title          string                  `json:"title"`
	Subject        string                  `json:"subject"`
	EditionID      string                  `json:"edition"`
	EditionName    string                  `json:"edition_name"`
	CatalogVersion string                  `json:"catalog_version,omitempty"`
	GeneratedAt    time.Time               `json:"generated_at"`
	Summary        Summary                 `json:"summary"`
	Listing        Listing                 `json:"listing"`
	Categories     []scoring.CategoryScore `json:"categories"`
	Unmapped       []string                `json:"unmapped,omitempty"`
	TraitCount     int                     `json:"trait_count"`
	Narrative      NarrativeSection        `json:"narrative"`
}

// Input carries everything Build consumes. Build never re-derives scores.
type Input struct {
	Subject           string
	Result            *scoring.Result
	NarrativeText     string
	NarrativeFallback bool
	Model             string
	GeneratedAt       time.Time
}

// Build assembles the report sections from a scoring result and narrative text.
func Build(cat *catalog.Catalog, in Input) (*Report, error) {
	if in.Result == nil {
		return nil, ErrNoResult
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, ErrMissingSubject
	}

	edition, err := cat.Edition(in.Result.EditionID)
	if err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}

	title := cat.Title
	if title == "" {
		title = defaultTitle
	}
	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	ranked := in.Result.Ranked
	left, right := Halves(ranked)

	return &Report{
		Title:          title,
		Subject:        subject,
		EditionID:      edition.ID,
		EditionName:    edition.Name,
		CatalogVersion: cat.Version,
		GeneratedAt:    generated,
		Summary: Summary{
			Chart:   BuildChart(in.Result.Categories),
			Top:     rows(in.Result.Top(TopN), 1),
			Caption: "Chart values are the summed scores of each category.",
		},
		Listing:    pad(rows(left, 1), rows(right, len(left)+1)),
		Categories: append([]scoring.CategoryScore(nil), in.Result.Categories...),
		Unmapped:   append([]string(nil), in.Result.Unmapped...),
		TraitCount: len(ranked),
		Narrative: NarrativeSection{
			Raw:      in.NarrativeText,
			Blocks:   ParseNarrative(in.NarrativeText),
			Fallback: in.NarrativeFallback,
			Model:    in.Model,
		},
	}, nil
}

// Halves splits the ranking into ranks 1..ceil(n/2) and the remainder.
func Halves(ranked []scoring.TraitScore) ([]scoring.TraitScore, []scoring.TraitScore) {
	half := (len(ranked) + 1) / 2
	return ranked[:half], ranked[half:]
}

func rows(scores []scoring.TraitScore, firstRank int) []Row {
	out := make([]Row, len(scores))
	for i, s := range scores {
		category := s.CategoryName
		if category == "" {
			category = "-"
		}
		out[i] = Row{
			Rank:     firstRank + i,
			TraitID:  s.TraitID,
			Trait:    s.Name,
			Category: category,
			Color:    s.Color,
			Score:    s.Score,
		}
	}
	return out
}

func pad(left, right []Row) Listing {
	for len(right) < len(left) {
		right = append(right, Row{Blank: true})
	}
	return Listing{Left: left, Right: right}
}

var unsafeFilename = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// Filename returns the download name for a rendered report, e.g.
// "Taro_strength_report.pdf".
func Filename(subject, ext string) string {
	name := strings.TrimSpace(unsafeFilename.ReplaceAllString(subject, "_"))
	if name == "" {
		name = "report"
	}
	return name + "_strength_report." + strings.TrimPrefix(ext, ".")
}
