package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered document types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, _, err := buildEngine()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, doc := range eng.Registry().List() {
				fmt.Fprintf(tw, "%s\t%s\t%d fields\n", doc.Name, doc.Title, len(doc.Fields))
			}
			return tw.Flush()
		},
	}
}
