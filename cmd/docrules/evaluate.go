package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docrules/pkg/prompt"
)

// errInvalid is returned by --strict when the document has blocking issues.
var errInvalid = errors.New("document has validation errors")

func newEvaluateCmd() *cobra.Command {
	var (
		typeName    string
		strict      bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate <document>",
		Short: "Evaluate a JSON or YAML document",
		Long:  "Evaluate reports field visibility, validation issues and the preview for a document. Pass - to read JSON from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cfg, err := buildEngine()
			if err != nil {
				return err
			}
			snapshot, err := readSnapshot(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			name := documentType(typeName, snapshot)
			if name == "" {
				if !interactive {
					return fmt.Errorf("document has no %s; pass --type", typeKey)
				}
				name, err = prompt.New().ChooseType(cmd.Context(), eng.Registry().Names())
				if err != nil {
					return err
				}
			}
			log.Printf("evaluating %s as %q", args[0], name)

			result, err := eng.Evaluate(name, snapshot)
			if err != nil {
				return err
			}
			if cfg.StripMarkup {
				result = plainPreviews(result)
			}
			if err := writeResult(cmd.OutOrStdout(), result, cfg.Output); err != nil {
				return err
			}
			if strict && !result.Valid() {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "document type (default: the document's _type)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the document has errors")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask for the document type when it cannot be inferred")
	return cmd
}
