package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-docrules"
	"github.com/goliatone/go-docrules/internal/config"
	"github.com/goliatone/go-docrules/pkg/contenttypes"
	"github.com/goliatone/go-docrules/pkg/engine"
	"github.com/goliatone/go-docrules/pkg/registry"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docrules",
		Short:         "Evaluate document visibility, validation and previews",
		Long:          "docrules evaluates content documents against their type definitions: which fields are visible, which are invalid, and how the document previews.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default .docrules.yaml)")
	flags.String("definitions", "", "directory of document type definitions")
	flags.Bool("skip-builtins", false, "do not register the built-in project and photo types")
	flags.StringP("output", "o", "text", "output format: text, json or yaml")
	flags.Bool("strip-markup", false, "remove HTML from preview text before printing")
	flags.String("token", "", "fixed private-link key for generated fields")
	flags.BoolP("verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("definitions", flags.Lookup("definitions"))
	_ = viper.BindPFlag("skip_builtins", flags.Lookup("skip-builtins"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("strip_markup", flags.Lookup("strip-markup"))
	_ = viper.BindPFlag("token", flags.Lookup("token"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	root.AddCommand(
		newTypesCmd(),
		newEvaluateCmd(),
		newInitCmd(),
		newCheckCmd(),
		newExportCmd(),
		newWatchCmd(),
	)
	return root
}

func initConfig(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".docrules")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("DOCRULES")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Verbose {
		log.SetOutput(cmd.ErrOrStderr())
		if used := viper.ConfigFileUsed(); used != "" {
			log.Printf("using config %s", used)
		}
	} else {
		log.SetOutput(io.Discard)
	}
	return nil
}

func tokenSource(cfg config.Config) contenttypes.TokenSource {
	if cfg.Token != "" {
		return contenttypes.StaticTokens(cfg.Token)
	}
	return contenttypes.RandomTokens()
}

// buildRegistry registers the built-in content model and any definitions in
// cfg.Definitions.
func buildRegistry(cfg config.Config) (*registry.Registry, error) {
	reg := registry.New(registry.WithGenerators(contenttypes.Generators(tokenSource(cfg))))
	if !cfg.SkipBuiltins {
		if err := contenttypes.Register(reg); err != nil {
			return nil, err
		}
	}
	if cfg.Definitions == "" {
		return reg, nil
	}

	docs, err := docrules.NewLoader().LoadFS(os.DirFS(cfg.Definitions))
	if err != nil {
		return nil, err
	}
	if err := reg.RegisterAll(docs...); err != nil {
		return nil, err
	}
	log.Printf("registered %d definitions from %s", len(docs), cfg.Definitions)
	return reg, nil
}

func buildEngine() (*engine.Engine, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	return engine.New(engine.WithRegistry(reg)), cfg, nil
}
