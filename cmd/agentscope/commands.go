package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentscope/core/internal/handlers"
)

func (a *app) analyzeCmd() *cobra.Command {
	var agentPath, componentsPath, environmentURL string
	var watch bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build the agent model and dialog graph",
		Long: `Classifies every component of the agent and prints the agent model
together with the dialog dependency graph.

Example:
  agentscope analyze --agent bot.json --components botcomponents.json --pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if environmentURL == "" {
				environmentURL = a.cfg.Server.EnvironmentURL
			}

			return a.runMaybeWatching(cmd.Context(), watch, []string{agentPath, componentsPath}, func() error {
				agent, components, err := loadInputs(cmd.Context(), agentPath, componentsPath)
				if err != nil {
					return err
				}

				model, graph := a.analyzer.Analyze(environmentURL, *agent, components)
				a.logger.Info("Analyzed agent",
					zap.String("agent", agent.ID),
					zap.Int("components", len(components)),
					zap.Int("topics", len(model.Topics)))

				return a.writeJSON(cmd.OutOrStdout(), handlers.AnalyzeResponse{Agent: model, Graph: graph})
			})
		},
	}

	cmd.Flags().StringVar(&agentPath, "agent", "", "Agent record JSON file")
	cmd.Flags().StringVar(&componentsPath, "components", "", "Bot components JSON file")
	cmd.Flags().StringVar(&environmentURL, "environment-url", "", "Environment URL reported on the agent model")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run whenever an input file changes")
	_ = cmd.MarkFlagRequired("agent")
	_ = cmd.MarkFlagRequired("components")
	return cmd
}

func (a *app) graphCmd() *cobra.Command {
	var componentsPath string
	var watch bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the dialog dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMaybeWatching(cmd.Context(), watch, []string{componentsPath}, func() error {
				components, err := readComponents(componentsPath)
				if err != nil {
					return err
				}
				return a.writeJSON(cmd.OutOrStdout(), a.analyzer.BuildDialogGraph(components))
			})
		},
	}

	cmd.Flags().StringVar(&componentsPath, "components", "", "Bot components JSON file")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run whenever the components file changes")
	_ = cmd.MarkFlagRequired("components")
	return cmd
}

func (a *app) classifyCmd() *cobra.Command {
	var componentsPath string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show the label and deciding rule for each component",
		Long: `Prints one row per component with the label the classifier assigns
and the rule that decided it. Useful when mapping environment-specific
component type codes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := readComponents(componentsPath)
			if err != nil {
				return err
			}

			classifier := a.analyzer.Classifier()
			rows := make([]handlers.ClassifyResult, 0, len(components))
			for _, c := range components {
				label, rule := classifier.Explain(c)
				rows = append(rows, handlers.ClassifyResult{ID: c.ID, Name: c.Name, Label: label, Rule: rule})
			}
			return a.writeJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&componentsPath, "components", "", "Bot components JSON file")
	_ = cmd.MarkFlagRequired("components")
	return cmd
}
