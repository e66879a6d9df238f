package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agentscope/core/internal/config"
	"github.com/agentscope/core/internal/models"
	"github.com/agentscope/core/internal/parser"
)

// app carries the persistent flags and what PersistentPreRunE builds from them.
type app struct {
	configPath string
	pretty     bool
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	analyzer *parser.Analyzer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "agentscope",
		Short: "Inspect exported conversational agents",
		Long: `agentscope reads an agent record and its bot components as exported
from the platform web API and reports what the agent depends on and how its
topics call each other.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to the YAML configuration file")
	root.PersistentFlags().BoolVar(&a.pretty, "pretty", false, "Indent JSON output")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(a.analyzeCmd(), a.graphCmd(), a.classifyCmd())
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := config.NewLogger(level)
	if err != nil {
		return err
	}

	opts, err := cfg.AnalyzerOptions()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.analyzer = parser.NewAnalyzer(append(opts, parser.WithLogger(logger))...)
	return nil
}

func (a *app) writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if a.pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

func readComponents(path string) ([]models.RawComponent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read components: %w", err)
	}
	return parser.ParseComponents(data)
}

func readAgent(path string) (*models.AgentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent: %w", err)
	}
	return parser.ParseAgent(data)
}

// loadInputs reads the agent record and the component export concurrently.
func loadInputs(ctx context.Context, agentPath, componentsPath string) (*models.AgentRecord, []models.RawComponent, error) {
	var (
		agent      *models.AgentRecord
		components []models.RawComponent
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agent, err = readAgent(agentPath)
		return err
	})
	g.Go(func() error {
		var err error
		components, err = readComponents(componentsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return agent, components, nil
}

// runMaybeWatching runs fn once, or keeps re-running it on changes to paths
// when watch is set.
func (a *app) runMaybeWatching(ctx context.Context, watch bool, paths []string, fn func() error) error {
	if !watch {
		return fn()
	}
	a.logger.Info("Watching inputs", zap.Strings("paths", paths))
	return watchFiles(ctx, a.logger, paths, watchDebounce, fn)
}
