package importer

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
)

// ErrSeedRequired rejects positional answers that carry no seed.
var ErrSeedRequired = errors.New("positional answers need the seed of the questionnaire they answer")

// ValidateAnswerFile checks af against the catalog before conversion and
// returns every problem found. Completeness is not checked here since
// missing answers may still be filled with defaults.
func ValidateAnswerFile(af *AnswerFile, cat *catalog.Catalog, defaultEdition string) []error {
	editionID := af.Edition
	if editionID == "" {
		editionID = defaultEdition
	}
	traits, err := cat.ActiveTraits(editionID)
	if err != nil {
		return []error{fmt.Errorf("edition: %w", err)}
	}

	var errs []error
	statements := make(map[string]int, len(traits))
	total := 0
	for _, t := range traits {
		statements[t.ID] = len(t.Statements)
		total += len(t.Statements)
	}

	if len(af.Positional) > 0 {
		if af.Seed == nil {
			errs = append(errs, ErrSeedRequired)
		}
		if len(af.Positional) != total {
			errs = append(errs, fmt.Errorf("positional: %w: got %d values for %d statements",
				questionnaire.ErrIncomplete, len(af.Positional), total))
		}
		for i, v := range af.Positional {
			if !inRange(v) {
				errs = append(errs, fmt.Errorf("positional[%d]: %w: %d (want %d..%d)",
					i, questionnaire.ErrOutOfRange, v, questionnaire.MinAnswer, questionnaire.MaxAnswer))
			}
		}
	}

	for _, id := range sortedKeys(af.Answers) {
		traitID, n, ok := questionnaire.ParseStatementID(id)
		if count, known := statements[traitID]; !ok || !known || n >= count {
			errs = append(errs, fmt.Errorf("answers.%s: %w", id, questionnaire.ErrUnknownStatement))
			continue
		}
		if v := af.Answers[id]; !inRange(v) {
			errs = append(errs, fmt.Errorf("answers.%s: %w: %d (want %d..%d)",
				id, questionnaire.ErrOutOfRange, v, questionnaire.MinAnswer, questionnaire.MaxAnswer))
		}
	}

	return errs
}

func inRange(v int) bool {
	return v >= questionnaire.MinAnswer && v <= questionnaire.MaxAnswer
}
