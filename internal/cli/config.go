package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/truthlens/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage TruthLens configuration",
	Long: `Manage TruthLens configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (TRUTHLENS_*, plus GOOGLE_FACT_CHECK_API_KEY, SERPAPI_KEY,
   NEWSAPI_KEY, OPENAI_API_KEY, GROQ_API_KEY, ANTHROPIC_API_KEY, OLLAMA_BASE_URL)
3. Config file (~/.truthlens/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		if used := settings.ConfigFileUsed(); used != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", used)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults and environment)\n\n")
		}
		return writeConfig(cmd.OutOrStdout(), maskedConfig(cfg))
	},
}

var forceInit bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long:  `Create a default configuration file (default ~/.truthlens/config.yaml) with every option set to its built-in value.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initPath(args)
		if err != nil {
			return err
		}
		if err := initConfigFile(path, forceInit); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", path)
		fmt.Fprintf(out, "\nTo view the effective configuration:\n  truthlens config show\n")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func maskedConfig(c model.Config) model.Config {
	c.Credentials = c.Credentials.Masked()
	if c.Cache.RedisURL != "" {
		c.Cache.RedisURL = "****"
	}
	return c
}

func writeConfig(w io.Writer, c model.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func initPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

const configHeader = `# TruthLens configuration
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (TRUTHLENS_<SECTION>_<KEY>)
#   3. This config file
#   4. Built-in defaults
#
# Provider credentials are better supplied through the environment:
#   export GOOGLE_FACT_CHECK_API_KEY=...
#   export SERPAPI_KEY=...
#   export NEWSAPI_KEY=...
#   export GROQ_API_KEY=...
#   export OPENAI_API_KEY=sk-...
#   export ANTHROPIC_API_KEY=sk-ant-...
#   export OLLAMA_BASE_URL=http://localhost:11434
#
# A capability without its credential runs with a neutral default.

`

// initConfigFile writes the defaults to path, refusing to overwrite unless force is set
func initConfigFile(path string, force bool) (err error) {
	if _, statErr := os.Stat(path); statErr == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	if _, err := io.WriteString(f, configHeader); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return writeConfig(f, model.DefaultConfig())
}
