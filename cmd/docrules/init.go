package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docrules/pkg/prompt"
	"github.com/goliatone/go-docrules/pkg/value"
)

func newInitCmd() *cobra.Command {
	var (
		typeName    string
		from        string
		out         string
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a document with its initial values",
		Long:  "Init applies initial values and generates one-off values such as private-link keys. The result is meant to be stored; generated values are not regenerated on later evaluations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, _, err := buildEngine()
			if err != nil {
				return err
			}

			snapshot := value.Snapshot{}
			if from != "" {
				snapshot, err = readSnapshot(from, cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			name := documentType(typeName, snapshot)
			prompter := prompt.New()
			if name == "" {
				if !interactive {
					return fmt.Errorf("pass --type or --interactive")
				}
				name, err = prompter.ChooseType(cmd.Context(), eng.Registry().Names())
				if err != nil {
					return err
				}
			}

			if interactive {
				doc, err := eng.Registry().Get(name)
				if err != nil {
					return err
				}
				snapshot, err = prompter.Fill(cmd.Context(), doc, snapshot)
				if err != nil {
					return err
				}
			}

			initialised, err := eng.Initialize(name, snapshot)
			if err != nil {
				return err
			}
			initialised = initialised.With(typeKey, value.String(name))

			if out == "" {
				return writeSnapshot(cmd.OutOrStdout(), initialised, ".json")
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := writeSnapshot(f, initialised, out); err != nil {
				return err
			}
			log.Printf("wrote %s", out)
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "document type")
	cmd.Flags().StringVar(&from, "from", "", "start from an existing JSON or YAML document")
	cmd.Flags().StringVar(&out, "out", "", "write the document to a file instead of stdout")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask for field values")
	return cmd
}
