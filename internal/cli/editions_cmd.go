package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/strengthscope/internal/cli/formatter"
)

func newEditionsCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "editions",
		Short: "List questionnaire editions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.load(cmd)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEditions(app.Assessments.Editions(cmd.Context())))
			return nil
		},
	}
}
