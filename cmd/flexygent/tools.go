package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/flexygent/flexygent/orchestration"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			name := color.New(color.Bold)
			for _, spec := range app.registry.Specs() {
				name.Fprintf(cmd.OutOrStdout(), "%s\n", spec.Name)
				if spec.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", spec.Description)
				}
			}
			// The virtual clarification tool has no registry entry but is
			// available to every run.
			def := orchestration.AskUserDefinition()
			name.Fprintf(cmd.OutOrStdout(), "%s\n", def.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", def.Description)
			return nil
		},
	}
}
