package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/strengthscope/internal/mcptools"
)

func newMCPCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the questionnaire tools over MCP on stdin/stdout",
		Long: `Serve list_editions, start_questionnaire and score_answers to an MCP
client over stdio. Logs go to stderr so stdout stays a clean protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.load(cmd)
			if err != nil {
				return err
			}
			app.Logger.Info("mcp server starting", "version", app.Version)
			return mcptools.ServeStdio(mcptools.NewServer(app.Catalog, app.Assessments, app.Version))
		},
	}
}
