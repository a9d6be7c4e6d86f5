package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/matchmaker/internal/scoring"
)

const (
	app = "matchmaker"
)

type Config struct {
	Input       string           `mapstructure:"input"`
	ExcludeFile string           `mapstructure:"exclude-file"`
	HistoryDB   string           `mapstructure:"history-db"`
	MetricsFile string           `mapstructure:"metrics-file"`
	Workers     int              `mapstructure:"workers"`
	Matching    *MatchingConfig  `mapstructure:"matching"`
	Weights     *scoring.Weights `mapstructure:"weights"`
	AI          *AIConfig        `mapstructure:"ai"`
}

type MatchingConfig struct {
	Proposers    string  `mapstructure:"proposers"`
	MinimumScore float64 `mapstructure:"minimum-score"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "matchmaker scores survey participants and pairs them with stable deferred acceptance matching",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"input":                  "MATCHMAKER_INPUT",
		"history-db":             "MATCHMAKER_HISTORY_DB",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	defaults := scoring.DefaultWeights()
	viper.SetDefault("weights.cosine", defaults.Cosine)
	viper.SetDefault("weights.overlap", defaults.Overlap)
	viper.SetDefault("weights.year", defaults.Year)
	viper.SetDefault("weights.mutual", defaults.Mutual)
	viper.SetDefault("matching.proposers", "first-half")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is matchmaker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("input", "i", "", "participants dataset (JSON)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("input", rootCmd.PersistentFlags().Lookup("input"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The default config file is optional since everything can come from flags and env.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
