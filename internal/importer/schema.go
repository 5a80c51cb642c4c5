// Package importer reads and writes answer files: the offline form of a
// questionnaire run that "score" consumes and "questions --template" emits.
package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/strengthscope/internal/questionnaire"
)

// AnswerFile is the on-disk answer document. JSON is accepted as well since
// it is valid YAML.
//
// Answers keyed by statement ID need no seed. Positional answers follow the
// display order and are only meaningful together with the seed that
// produced it.
type AnswerFile struct {
	Subject    string                  `yaml:"subject" json:"subject"`
	Edition    string                  `yaml:"edition,omitempty" json:"edition,omitempty"`
	Seed       *uint64                 `yaml:"seed,omitempty" json:"seed,omitempty"`
	Answers    questionnaire.AnswerSet `yaml:"answers,omitempty" json:"answers,omitempty"`
	Positional []int                   `yaml:"positional,omitempty" json:"positional,omitempty"`
}

// LoadFile reads and parses the answer file at path.
func LoadFile(path string) (*AnswerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answers: %w", err)
	}
	af, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing answers %s: %w", path, err)
	}
	return af, nil
}

// Parse decodes an answer document.
func Parse(data []byte) (*AnswerFile, error) {
	var af AnswerFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, err
	}
	return &af, nil
}
