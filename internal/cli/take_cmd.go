package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/strengthscope/internal/cli/formatter"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
	"github.com/alexanderramin/strengthscope/internal/report"
	"github.com/alexanderramin/strengthscope/internal/service"
)

// Layout of the interactive form.
const (
	statementsPerPage = 10
	progressWidth     = 20
)

var errNotInteractive = errors.New(`"take" needs an interactive terminal; use "questions --template" and "score" instead`)

var likertLabels = map[int]string{
	1: "1 disagree",
	2: "2",
	3: "3 neutral",
	4: "4",
	5: "5 agree",
}

// strengthHuhTheme styles forms with the formatter palette.
func strengthHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.NextIndicator = lipgloss.NewStyle().Foreground(formatter.ColorHeader).MarginLeft(1)
	t.Focused.PrevIndicator = lipgloss.NewStyle().Foreground(formatter.ColorHeader).MarginRight(1)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func likertOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, questionnaire.MaxAnswer-questionnaire.MinAnswer+1)
	for v := questionnaire.MinAnswer; v <= questionnaire.MaxAnswer; v++ {
		opts = append(opts, huh.NewOption(likertLabels[v], v))
	}
	return opts
}

func validateSubject(s string) error {
	if strings.TrimSpace(s) == "" {
		return questionnaire.ErrMissingSubject
	}
	return nil
}

// questionGroups builds one form page per statementsPerPage statements.
// Every control starts at the neutral value, so skipping through a page
// answers it neutrally.
func questionGroups(items []questionnaire.Item, values []int) []*huh.Group {
	var groups []*huh.Group
	for start := 0; start < len(items); start += statementsPerPage {
		end := min(start+statementsPerPage, len(items))
		fields := make([]huh.Field, 0, end-start)
		for i := start; i < end; i++ {
			values[i] = questionnaire.DefaultAnswer
			fields = append(fields, huh.NewSelect[int]().
				Title(fmt.Sprintf("Q.%d", i+1)).
				Description(items[i].Text).
				Options(likertOptions()...).
				Inline(true).
				Value(&values[i]))
		}
		groups = append(groups, huh.NewGroup(fields...).
			Description(formatter.Dim(fmt.Sprintf("Statements %d-%d of %d  ", start+1, end, len(items)))+
				formatter.RenderProgress(start, len(items), progressWidth)))
	}
	return groups
}

func newTakeCmd(st *rootState) *cobra.Command {
	var (
		subject string
		seed    uint64
		out     reportOutput
	)
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Answer the questionnaire interactively and show the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.load(cmd)
			if err != nil {
				return err
			}
			dest, err := out.prepare(app)
			if err != nil {
				return err
			}
			if !app.interactive() {
				return errNotInteractive
			}
			ctx := cmd.Context()

			if strings.TrimSpace(subject) == "" {
				err := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title("Your name").
						Description("Shown on the report and used for the file name.").
						Validate(validateSubject).
						Value(&subject),
				)).WithTheme(strengthHuhTheme()).WithShowHelp(false).RunWithContext(ctx)
				if err != nil {
					return err
				}
			}

			req := service.StartRequest{EditionID: app.Config.Edition, Subject: strings.TrimSpace(subject)}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}
			sess, err := app.Assessments.Start(ctx, req)
			if err != nil {
				return err
			}

			values := make([]int, len(sess.Items))
			form := huh.NewForm(questionGroups(sess.Items, values)...).
				WithTheme(strengthHuhTheme())
			if err := form.RunWithContext(ctx); err != nil {
				return err
			}

			if _, err := app.Assessments.SaveAnswers(ctx, sess.ID, service.AnswersRequest{Positional: values}); err != nil {
				return err
			}

			var rep *report.Report
			err = runWithSpinner(ctx, cmd.ErrOrStderr(), app.Config.LLM.Enabled, "Writing the interpretation...",
				func(ctx context.Context) error {
					var err error
					rep, err = app.Assessments.GenerateReport(ctx, sess.ID)
					return err
				})
			if err != nil {
				return err
			}
			return dest.write(cmd.OutOrStdout(), app, rep)
		},
	}

	f := cmd.Flags()
	f.StringVar(&subject, "subject", "", "name shown on the report")
	f.Uint64Var(&seed, "seed", 0, "shuffle seed (random when omitted)")
	f.StringVarP(&out.Format, "format", "f", formatText, "output: text, md, html, json or pdf")
	f.StringVarP(&out.Path, "out", "o", "", "write the document to this file")
	return cmd
}
