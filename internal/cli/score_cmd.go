package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/strengthscope/internal/importer"
	"github.com/alexanderramin/strengthscope/internal/report"
	"github.com/alexanderramin/strengthscope/internal/service"
)

func newScoreCmd(st *rootState) *cobra.Command {
	var (
		answersPath  string
		subject      string
		fillDefaults bool
		noNarrative  bool
		out          reportOutput
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answer file and print or save the report",
		Long: `Score a completed answer file (YAML or JSON, see "questions --template")
and print the ranked report. With --format md|html|json|pdf the report is
rendered as a document, written to --out or, for PDF, to
<subject>_strength_report.pdf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.load(cmd)
			if err != nil {
				return err
			}
			dest, err := out.prepare(app)
			if err != nil {
				return err
			}
			af, err := importer.LoadFile(answersPath)
			if err != nil {
				return err
			}
			if errs := importer.ValidateAnswerFile(af, app.Catalog, app.Config.Edition); len(errs) > 0 {
				return fmt.Errorf("%s: %w", answersPath, errors.Join(errs...))
			}
			sess, err := importer.Convert(af, app.Catalog, importer.Options{
				DefaultEdition: app.Config.Edition,
				Subject:        subject,
				FillDefaults:   fillDefaults,
			})
			if err != nil {
				return err
			}

			opts := service.ReportOptions{SkipNarrative: noNarrative}
			var rep *report.Report
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), app.interactive() && !noNarrative && app.Config.LLM.Enabled,
				"Writing the interpretation...",
				func(ctx context.Context) error {
					var err error
					rep, err = app.Assessments.BuildReport(ctx, sess, opts)
					return err
				})
			if err != nil {
				return err
			}
			return dest.write(cmd.OutOrStdout(), app, rep)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&answersPath, "answers", "a", "", "answer file (YAML or JSON)")
	f.StringVar(&subject, "subject", "", "name shown on the report (overrides the answer file)")
	f.BoolVar(&fillDefaults, "fill-defaults", false, "answer missing statements with the neutral value")
	f.BoolVar(&noNarrative, "no-narrative", false, "skip the interpretation section")
	f.StringVarP(&out.Format, "format", "f", formatText, "output: text, md, html, json or pdf")
	f.StringVarP(&out.Path, "out", "o", "", "write the document to this file")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
