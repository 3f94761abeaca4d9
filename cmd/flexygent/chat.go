package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/flexygent/flexygent/agent"
	"github.com/flexygent/flexygent/consoleui"
	"github.com/flexygent/flexygent/orchestration"
)

func newChatCmd() *cobra.Command {
	var (
		flagModel   string
		flagConfirm bool
		flagTools   []string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Run one task through the tool-calling loop",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			policy := app.cfg.Policy
			if flagConfirm {
				policy.Autonomy = orchestration.AutonomyConfirm
			}
			model := app.cfg.LLM.Model
			if flagModel != "" {
				model = flagModel
			}

			ui := consoleui.New(cmd.OutOrStdout())
			ui.Quiet = flagQuiet

			orch := orchestration.New(app.client, app.registry,
				orchestration.WithPolicy(policy),
				orchestration.WithUI(ui),
				orchestration.WithModel(model),
				orchestration.WithLogger(app.logger),
			)

			a := agent.New(agent.Config{
				Name:         "flexygent",
				ToolNames:    flagTools,
				SystemPrompt: app.cfg.SystemPrompt,
				Temperature:  app.cfg.LLM.Temperature,
				MaxTokens:    app.cfg.LLM.MaxTokens,
			}, orch, app.registry, app.memory, app.logger)

			result, err := a.Process(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout())
			color.New(color.Bold).Fprintln(cmd.OutOrStdout(), result.Final)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagModel, "model", "m", "", "model to use (overrides config)")
	cmd.Flags().BoolVar(&flagConfirm, "confirm", false, "require confirmation before each tool call")
	cmd.Flags().StringSliceVarP(&flagTools, "tools", "t", nil, "restrict to these tools (default: all)")
	return cmd
}
