package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/truthlens/internal/logging"
	"github.com/ppiankov/truthlens/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string

	settings *viper.Viper
	cfg      model.Config
	logger   *slog.Logger
)

// keyDelim separates nested config keys. Credibility overrides are keyed by
// domain names, so the default "." cannot be used.
const keyDelim = "::"

// credentialEnv maps credential keys to the provider variables read without prefix
var credentialEnv = map[string]string{
	"google_fact_check_api_key": "GOOGLE_FACT_CHECK_API_KEY",
	"serpapi_key":               "SERPAPI_KEY",
	"newsapi_key":               "NEWSAPI_KEY",
	"openai_api_key":            "OPENAI_API_KEY",
	"groq_api_key":              "GROQ_API_KEY",
	"anthropic_api_key":         "ANTHROPIC_API_KEY",
	"ollama_base_url":           "OLLAMA_BASE_URL",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "truthlens",
	Short: "TruthLens - evidence-based claim credibility assessment",
	Long: `TruthLens assesses how credible a factual claim is, using published
fact-checks, web and news evidence, bias analysis and an evidence-constrained
language model.

It assesses credibility based on available evidence and does not assert
absolute truth.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "truthlens v%s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.truthlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")

	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	v, err := newViper(cfgFile)
	if err != nil {
		return err
	}

	loaded, err := loadConfig(v)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if logFormat != "" {
		loaded.Log.Format = logFormat
	}
	if verbose {
		loaded.Log.Level = "debug"
	}

	l, err := logging.New(loaded.Log.Level, loaded.Log.Format)
	if err != nil {
		return err
	}

	settings, cfg, logger = v, loaded, l
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return nil
}

// newViper builds a viper instance reading the given file (or the default
// location when empty) and the environment. A missing default file is not an error.
func newViper(path string) (*viper.Viper, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))
	if err := setDefaults(v, model.DefaultConfig()); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TRUTHLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_"))
	v.AutomaticEnv()
	for name, env := range credentialEnv {
		key := "credentials" + keyDelim + name
		if err := v.BindEnv(key, "TRUTHLENS_CREDENTIALS_"+strings.ToUpper(name), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// loadConfig decodes the merged settings over the defaults
func loadConfig(v *viper.Viper) (model.Config, error) {
	c := model.DefaultConfig()
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// setDefaults registers every default key so the environment can override
// keys that appear in no config file
func setDefaults(v *viper.Viper, defaults model.Config) error {
	raw, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	walkDefaults(v, "", tree)
	return nil
}

func walkDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + keyDelim + k
		}
		if sub, ok := val.(map[string]any); ok {
			walkDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".truthlens"), nil
}
