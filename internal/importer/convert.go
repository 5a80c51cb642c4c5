package importer

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
)

// Options adjusts Convert.
type Options struct {
	// DefaultEdition is used when the file names none.
	DefaultEdition string
	// Subject overrides the file's subject when non-empty.
	Subject string
	// FillDefaults answers every remaining statement with the neutral value.
	FillDefaults bool
}

// Convert rebuilds the questionnaire the file answers and applies its
// answers. Call ValidateAnswerFile first; Convert stops at the first error.
func Convert(af *AnswerFile, cat *catalog.Catalog, opts Options) (*questionnaire.Session, error) {
	edition := af.Edition
	if edition == "" {
		edition = opts.DefaultEdition
	}
	var seed uint64
	if af.Seed != nil {
		seed = *af.Seed
	} else if len(af.Positional) > 0 {
		return nil, ErrSeedRequired
	}

	sess, err := questionnaire.Assemble(cat, edition, seed)
	if err != nil {
		return nil, err
	}
	sess.Subject = af.Subject
	if opts.Subject != "" {
		sess.Subject = opts.Subject
	}
	sess.Subject = strings.TrimSpace(sess.Subject)

	if len(af.Positional) > 0 {
		if err := sess.AnswerPositional(af.Positional); err != nil {
			return nil, err
		}
	}
	if len(af.Answers) > 0 {
		if err := sess.AnswerAll(af.Answers); err != nil {
			return nil, err
		}
	}
	if opts.FillDefaults {
		sess.FillDefaults()
	}
	return sess, nil
}

// WriteTemplate emits an answer file for sess whose keys follow display
// order, each commented with its question number and text.
func WriteTemplate(w io.Writer, sess *questionnaire.Session) error {
	answers := &yaml.Node{Kind: yaml.MappingNode}
	for i, it := range sess.Items {
		answers.Content = append(answers.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: it.StatementID},
			&yaml.Node{
				Kind:        yaml.ScalarNode,
				Tag:         "!!int",
				Value:       strconv.Itoa(questionnaire.DefaultAnswer),
				LineComment: fmt.Sprintf("Q.%d %s", i+1, it.Text),
			},
		)
	}

	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		HeadComment: fmt.Sprintf("Rate each statement from %d (disagree) to %d (agree).",
			questionnaire.MinAnswer, questionnaire.MaxAnswer),
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "subject"},
			{Kind: yaml.ScalarNode, Value: "", Style: yaml.DoubleQuotedStyle},
			{Kind: yaml.ScalarNode, Value: "edition"},
			{Kind: yaml.ScalarNode, Value: sess.EditionID},
			{Kind: yaml.ScalarNode, Value: "seed"},
			{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(sess.Seed, 10)},
			{Kind: yaml.ScalarNode, Value: "answers"},
			answers,
		},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing answer template: %w", err)
	}
	return enc.Close()
}

func sortedKeys(m questionnaire.AnswerSet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
