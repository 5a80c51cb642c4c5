package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
)

// ErrMissingAnswer means scoring was invoked before every statement was answered.
var ErrMissingAnswer = errors.New("missing answer")

// TraitScores maps trait ID to the sum of its answers.
type TraitScores map[string]int

// TraitScore is one entry of the ranked result.
type TraitScore struct {
	TraitID      string `json:"trait_id"`
	Name         string `json:"name"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Color        string `json:"color,omitempty"`
	Score        int    `json:"score"`
}

// CategoryScore is the sum of trait scores for one category.
type CategoryScore struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Score  int    `json:"score"`
	Traits int    `json:"traits"`
}

// Result is the full scoring output for one answer set.
type Result struct {
	EditionID  string          `json:"edition"`
	Ranked     []TraitScore    `json:"ranked"`
	Categories []CategoryScore `json:"categories"`
	Unmapped   []string        `json:"unmapped,omitempty"`
	Total      int             `json:"total"`
}

// Score sums the answers of every statement per trait.
func Score(items []questionnaire.Item, answers questionnaire.AnswerSet) (TraitScores, error) {
	scores := make(TraitScores)
	for _, it := range items {
		v, ok := answers[it.StatementID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAnswer, it.StatementID)
		}
		scores[it.TraitID] += v
	}
	return scores, nil
}

// Rank orders traits by score, highest first. Equal scores keep catalog order,
// so the cut line of a top-N list is reproducible under ties.
func Rank(cat *catalog.Catalog, scores TraitScores) []TraitScore {
	ranked := make([]TraitScore, 0, len(scores))
	for id, score := range scores {
		ts := TraitScore{TraitID: id, Name: id, Score: score}
		if t, ok := cat.Trait(id); ok {
			ts.Name = t.Name
		}
		if c, ok := cat.CategoryOf(id); ok {
			ts.CategoryID = c.ID
			ts.CategoryName = c.Name
			ts.Color = c.Color
		}
		ranked = append(ranked, ts)
	}

	// Map iteration order is random; fix catalog order first, then sort stably.
	sort.Slice(ranked, func(i, j int) bool {
		oi, oj := cat.Order(ranked[i].TraitID), cat.Order(ranked[j].TraitID)
		if oi != oj {
			return oi < oj
		}
		return ranked[i].TraitID < ranked[j].TraitID
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// AggregateByCategory sums trait scores per category, in catalog category
// order. Every category is present, with zero when none of its traits were
// scored. Traits without a defined category are excluded and returned.
func AggregateByCategory(cat *catalog.Catalog, scores TraitScores) ([]CategoryScore, []string) {
	out := make([]CategoryScore, len(cat.Categories))
	pos := make(map[string]int, len(cat.Categories))
	for i, c := range cat.Categories {
		out[i] = CategoryScore{ID: c.ID, Name: c.Name, Color: c.Color}
		pos[c.ID] = i
	}

	var unmapped []string
	for id, score := range scores {
		c, ok := cat.CategoryOf(id)
		if !ok {
			unmapped = append(unmapped, id)
			continue
		}
		i := pos[c.ID]
		out[i].Score += score
		out[i].Traits++
	}
	sort.Slice(unmapped, func(i, j int) bool {
		return cat.Order(unmapped[i]) < cat.Order(unmapped[j])
	})
	return out, unmapped
}

// Evaluate scores a session's answers against the catalog.
func Evaluate(cat *catalog.Catalog, s *questionnaire.Session) (*Result, error) {
	scores, err := Score(s.Items, s.Answers)
	if err != nil {
		return nil, err
	}
	categories, unmapped := AggregateByCategory(cat, scores)

	total := 0
	for _, v := range scores {
		total += v
	}

	return &Result{
		EditionID:  s.EditionID,
		Ranked:     Rank(cat, scores),
		Categories: categories,
		Unmapped:   unmapped,
		Total:      total,
	}, nil
}

// Top returns at most n leading entries of the ranking.
func (r *Result) Top(n int) []TraitScore {
	if n > len(r.Ranked) {
		n = len(r.Ranked)
	}
	return r.Ranked[:n]
}

// Bottom returns at most n trailing entries of the ranking.
func (r *Result) Bottom(n int) []TraitScore {
	if n > len(r.Ranked) {
		n = len(r.Ranked)
	}
	return r.Ranked[len(r.Ranked)-n:]
}

// CategoryTotal is the sum of all category scores.
func (r *Result) CategoryTotal() int {
	sum := 0
	for _, c := range r.Categories {
		sum += c.Score
	}
	return sum
}
