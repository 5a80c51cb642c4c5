package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/strengthscope/internal/cli/formatter"
	"github.com/alexanderramin/strengthscope/internal/importer"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
)

const questionColumnWidth = 48

func newQuestionsCmd(st *rootState) *cobra.Command {
	var (
		seed     uint64
		template bool
	)
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print a shuffled questionnaire or an answer-file template",
		Long: `Print the statements of one shuffled questionnaire, numbered Q.1, Q.2, ...
in display order. With --template the output is an answer file with every
statement set to the neutral value, ready to be edited and passed to
"strengthscope score --answers".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = questionnaire.NewSeed()
			}
			sess, err := questionnaire.Assemble(app.Catalog, app.Config.Edition, seed)
			if err != nil {
				return err
			}
			if template {
				return importer.WriteTemplate(cmd.OutOrStdout(), sess)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatQuestions(sess))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "shuffle seed (random when omitted)")
	cmd.Flags().BoolVar(&template, "template", false, "emit a YAML answer file instead of a listing")
	return cmd
}

// formatQuestions prints a one-line header, then the statements in two
// columns. The left column holds Q.1 through Q.floor(n/2) and the right one
// the rest, so an odd count leaves the extra statement on the right.
func formatQuestions(sess *questionnaire.Session) string {
	lines := make([]string, len(sess.Items))
	for i, it := range sess.Items {
		lines[i] = formatter.Bold(fmt.Sprintf("Q.%-3d", i+1)) + " " + formatter.Truncate(it.Text, questionColumnWidth)
	}
	half := len(lines) / 2

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", formatter.Bold(fmt.Sprintf("%d statements", len(lines))),
		formatter.Dim(fmt.Sprintf("edition %s, seed %d", sess.EditionID, sess.Seed)))
	b.WriteString(formatter.SideBySide(strings.Join(lines[:half], "\n"), strings.Join(lines[half:], "\n"), 4))
	b.WriteString("\n")
	return b.String()
}
