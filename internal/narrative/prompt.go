package narrative

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/scoring"
)

// ZoneSize is how many ranks the prompt treats as the top and bottom zones.
const ZoneSize = 10

var languageNames = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
}

func languageName(code string) string {
	if code == "" {
		return "English"
	}
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// BuildPrompt formats the full ranking into the interpretation request.
func BuildPrompt(subject string, res *scoring.Result, cat *catalog.Catalog) string {
	n := len(res.Ranked)
	top := min(ZoneSize, n)
	bottomStart := max(n-ZoneSize+1, 1)

	editionName := res.EditionID
	if e, err := cat.Edition(res.EditionID); err == nil && e.Name != "" {
		editionName = e.Name
	}

	var b strings.Builder
	b.WriteString("You are an experienced career coach and HR consultant who knows the IT industry well.\n")
	fmt.Fprintf(&b, "%s completed a strengths assessment (%s, %d traits). ", subject, editionName, n)
	fmt.Fprintf(&b, "The traits below are ordered from rank 1 to rank %d.\n\n", n)

	b.WriteString("## Ranking\n")
	for i, ts := range res.Ranked {
		category := ts.CategoryName
		if category == "" {
			category = "uncategorized"
		}
		fmt.Fprintf(&b, "%d. %s (%s) - %d points\n", i+1, ts.Name, category, ts.Score)
	}

	if len(res.Categories) > 0 {
		b.WriteString("\n## Category totals\n")
		for _, c := range res.Categories {
			fmt.Fprintf(&b, "- %s: %d\n", c.Name, c.Score)
		}
	}

	b.WriteString("\n## Request\n")
	fmt.Fprintf(&b, "Consider the order and score balance of all %d traits and profile this person as a whole. ", n)
	b.WriteString("Answer in Markdown using exactly these four sections:\n\n")

	b.WriteString("### 1. Profile summary\n")
	b.WriteString("Which IT role archetype fits this person (for example \"the firefighting drill sergeant\", ")
	b.WriteString("\"the architect of the future\", \"the team's emotional anchor\")? ")
	b.WriteString("Explain why from the combination of top traits and notable middle or bottom traits.\n\n")

	fmt.Fprintf(&b, "### 2. Strength structure (top zone, ranks 1-%d)\n", top)
	b.WriteString("Explain how the top traits work together. Focus on combinations rather than single traits ")
	b.WriteString("(for example Ideation x Strategic = innovation).\n\n")

	fmt.Fprintf(&b, "### 3. Blind spots and tensions (bottom zone, ranks %d-%d)\n", bottomStart, n)
	b.WriteString("- Weak areas and work risks predicted by the bottom traits.\n")
	b.WriteString("- Top traits that become risky when overused, and tensions between top and bottom traits.\n\n")

	b.WriteString("### 4. Action plan\n")
	b.WriteString("Concrete actions to start tomorrow that use this profile and cover its weaknesses, ")
	b.WriteString("from engineering, management and communication angles.\n\n")

	b.WriteString("---\n")
	b.WriteString("Tone: professional and insightful. The reader should feel they received a manual for themselves, ")
	b.WriteString("convincing and encouraging.\n")
	fmt.Fprintf(&b, "Write the whole answer in %s.\n", languageName(cat.Language))

	return b.String()
}
