package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docrules/pkg/openapi"
)

func newExportCmd() *cobra.Command {
	var (
		format      string
		out         string
		title       string
		version     string
		strictEnums bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export document types as OpenAPI component schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, _, err := buildEngine()
			if err != nil {
				return err
			}
			docs := eng.Registry().List()

			opts := []openapi.Option{openapi.WithTitle(title), openapi.WithVersion(version)}
			if strictEnums {
				opts = append(opts, openapi.WithStrictEnums())
			}
			spec, err := openapi.Export(cmd.Context(), docs, opts...)
			if err != nil {
				return err
			}
			data, err := openapi.Marshal(spec, format)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			log.Printf("exported %d schemas to %s", len(docs), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	cmd.Flags().StringVar(&out, "out", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "info title")
	cmd.Flags().StringVar(&version, "version", "", "info version")
	cmd.Flags().BoolVar(&strictEnums, "strict-enums", false, "export option lists as enums")
	return cmd
}
