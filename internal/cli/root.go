package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/cardrisk/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cardrisk",
	Short: "cardrisk - Hugging Face model card summaries with risk scorecards",
	Long: `cardrisk fetches a model's metadata and card text from the Hugging Face
Hub, renders a Markdown summary, and evaluates a transparent risk scorecard
against a configurable policy.

Scoring is deterministic and explainable: six dimensions (license, data
transparency, security provenance, maturity/support, compliance alignment,
technical feasibility) each return a green/yellow/red score with the rule
that fired, aggregated into a weighted percentage and an overall verdict.

The policy is yours to edit: weights, license buckets, trusted owners,
keyword lists, and size thresholds live in risk_policy.json.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for cardrisk.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cardrisk v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.cardrisk/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".cardrisk"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CARDRISK_*
	viper.SetEnvPrefix("CARDRISK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configDir returns ~/.cardrisk, or "." when the home dir is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".cardrisk")
}

// loadConfig builds the effective configuration: defaults, then config
// file values, then environment. The hub token only ever comes from the
// environment.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if dir := viper.GetString("cache.dir"); dir != "" {
		cfg.Cache.Dir = dir
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(configDir(), "cache")
	}

	if dir := viper.GetString("policy.dir"); dir != "" {
		cfg.Policy.Dir = dir
	}
	if cfg.Policy.Dir == "" {
		cfg.Policy.Dir = configDir()
	}

	if endpoint := viper.GetString("hub.endpoint"); endpoint != "" {
		cfg.Hub.Endpoint = endpoint
	}

	// Same env vars the hub's own tooling honors.
	if token := os.Getenv("HF_TOKEN"); token != "" {
		cfg.Hub.Token = token
	} else if token := os.Getenv("HUGGINGFACE_HUB_TOKEN"); token != "" {
		cfg.Hub.Token = token
	}

	cfg.Output.Verbose = verbose
	return cfg
}
