package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marildoC/runroom/internal/config"
	"github.com/marildoC/runroom/internal/lang"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the configured languages",
	RunE:  runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	langs := lang.Builtin()
	if cfg.Runner.LanguagesFile != "" {
		if err := langs.LoadFile(cfg.Runner.LanguagesFile); err != nil {
			return fmt.Errorf("loading languages: %w", err)
		}
	}

	for _, key := range langs.Keys() {
		spec, _ := langs.Lookup(key)
		fmt.Printf("%-8s .%-5s %s\n", spec.Key, spec.Extension, spec.Command)
	}
	return nil
}
