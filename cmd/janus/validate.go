package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/routing"
	"janus-llm/janus/pkg/taxonomy"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and taxonomy without starting the server",
	Long: `Validate the configuration file, the routing chains it declares, and the
taxonomy rule directory, then exit.

Exit status is non-zero when anything fails to validate, which makes the
command suitable for CI checks on configuration changes.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	fmt.Printf("✓ Configuration valid (%d providers)\n", len(cfg.Providers))

	var index routing.PatternIndex
	if cfg.Taxonomy.Path != "" {
		ix, err := taxonomy.CompileDir(cfg.Taxonomy.Path)
		if err != nil {
			return fmt.Errorf("taxonomy invalid: %w", err)
		}
		index = ix
		fmt.Printf("✓ Taxonomy valid (%d rules, %d phrases)\n", ix.RuleCount(), ix.PhraseCount())
	}

	if _, err := routing.BuildSnapshot(&cfg.Router, index); err != nil {
		return fmt.Errorf("routing configuration invalid: %w", err)
	}
	fmt.Println("✓ Routing chains valid")

	return nil
}
