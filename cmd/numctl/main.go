// Command numctl administers the numbering engine: schema migrations,
// format previews and number generation from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"numbering/internal/app"
	appctx "numbering/internal/core/context"
	"numbering/internal/infrastructure/config"
	"numbering/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "numctl",
	Short: "numctl - customer/management number administration",
	Long: `numctl manages the numbering engine outside the HTTP API.

Examples:
  # Apply the schema
  numctl migrate up

  # Preview an unsaved format definition, no database needed
  numctl preview --file draft.yaml --date 2025-03-10 --memory

  # Issue the next customer number for an organization
  numctl generate --target CUSTOMER_NO --org 0190c7a4-...`,
	SilenceUsage: true,
}

var (
	configFile string
	useMemory  bool
	output     string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./config.toml)")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "Use in-memory storage instead of PostgreSQL")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format: json|yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(newMigrateCmd(), newPreviewCmd(), newGenerateCmd(), newFormatsCmd(), newOrgsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env bundles what every subcommand needs.
type env struct {
	ctx context.Context
	cfg *config.Config
	log *logger.Logger
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	log := logger.NewNop()
	if verbose {
		log, err = logger.New(logger.Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}})
		if err != nil {
			return nil, err
		}
	}

	ctx := logger.WithLogger(cmd.Context(), log)
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext(appctx.OriginCLI))
	return &env{ctx: ctx, cfg: cfg, log: log}, nil
}

// open wires the service against PostgreSQL, or memory with --memory.
func (e *env) open() (*app.App, *app.Memory, error) {
	if useMemory {
		a, m := app.NewMemory(e.cfg)
		return a, m, nil
	}
	a, err := app.NewPostgres(e.ctx, e.cfg, e.log)
	return a, nil, err
}

func printResult(w io.Writer, v any) error {
	switch output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toPlain(v)); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output format %q", output)
}

// toPlain round-trips v through JSON so YAML output uses the JSON field names.
func toPlain(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
