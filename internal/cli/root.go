package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/config"
	"github.com/alexanderramin/strengthscope/internal/metrics"
	"github.com/alexanderramin/strengthscope/internal/repository"
	"github.com/alexanderramin/strengthscope/internal/service"
)

// App holds references to everything CLI commands run against.
type App struct {
	Config      *config.Config
	Catalog     *catalog.Catalog
	Assessments service.AssessmentService

	// Narratives is the narrative cache, nil when caching is off.
	Narratives repository.NarrativeRepo

	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Logger   *slog.Logger
	Version  string

	// IsInteractive reports whether the process talks to a terminal.
	// Forms and spinners are only shown when it returns true.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// Wiring builds an App once flags, environment and config file are
// resolved. The returned cleanup releases whatever the App opened.
type Wiring func(ctx context.Context, cfg *config.Config) (*App, func(), error)

type rootState struct {
	wire       Wiring
	configPath string
	app        *App
	cleanup    func()
}

// load resolves configuration and wires the App on first use, so commands
// such as "catalog validate" never touch Redis or the narrative cache.
func (s *rootState) load(cmd *cobra.Command) (*App, error) {
	if s.app != nil {
		return s.app, nil
	}
	cfg, err := config.Load(s.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	app, cleanup, err := s.wire(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("starting strengthscope: %w", err)
	}
	if app.Config == nil {
		app.Config = cfg
	}
	s.app, s.cleanup = app, cleanup
	return app, nil
}

func (s *rootState) close() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// NewRootCmd creates the top-level "strengthscope" command and registers
// all subcommands against wire.
func NewRootCmd(version string, wire Wiring) *cobra.Command {
	st := &rootState{wire: wire}

	root := &cobra.Command{
		Use:           "strengthscope",
		Short:         "Likert strengths self-assessment with ranked reports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			st.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.configPath, "config", "", "config file (default ./strengthscope.yaml or ~/.strengthscope/strengthscope.yaml)")
	pf.String("catalog", "", "trait catalog file (YAML or JSON); built-in catalog when empty")
	pf.String("edition", "", "questionnaire edition (default full)")
	pf.String("font", "", "TrueType font used for PDF output")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("llm", false, "request the narrative interpretation from the configured LLM")
	pf.String("model", "", "LLM model name")

	root.AddCommand(
		newEditionsCmd(st),
		newCatalogCmd(st),
		newQuestionsCmd(st),
		newTakeCmd(st),
		newScoreCmd(st),
		newServeCmd(st),
		newMCPCmd(st),
	)

	return root
}
