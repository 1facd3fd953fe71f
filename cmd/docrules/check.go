package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [definitions-dir]",
		Short: "Load and check document type definitions",
		Long:  "Check parses every definition file and registers it alongside the built-in types, reporting unknown fields in predicates, derivation cycles and duplicate names.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				viper.Set("definitions", args[0])
			}
			eng, _, err := buildEngine()
			if err != nil {
				return err
			}
			for _, name := range eng.Registry().Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "ok  %s\n", name)
			}
			return nil
		},
	}
}
