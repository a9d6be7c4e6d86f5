package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/logger"
	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/report"
	"github.com/spigell/matchmaker/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the compatibility score of every pair of participants",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntP("top", "n", 0, "print only the best N pairs. Default prints all pairs.")
	scoreCmd.Flags().Bool("explain", false, "print every signal that makes up the score")
}

func score(cmd *cobra.Command) {
	appLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		appLogger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Input == "" {
		appLogger.Fatal("input dataset is required")
	}

	dataset, err := participant.LoadFile(config.Input)
	if err != nil {
		appLogger.Fatal("loading participants", zap.Error(err), zap.String("input", config.Input))
	}

	if err := dataset.Validate(); err != nil {
		appLogger.Fatal("validating participants", zap.Error(err))
	}

	weights := scoring.DefaultWeights()
	if config.Weights != nil {
		weights = *config.Weights
	}

	scorer, err := scoring.NewScorer(weights, dataset.Distribution)
	if err != nil {
		appLogger.Fatal("creating scorer", zap.Error(err))
	}

	matrix, err := scoring.BuildMatrix(context.Background(), scorer, dataset.Participants, config.Workers)
	if err != nil {
		appLogger.Fatal("scoring participants", zap.Error(err))
	}

	top, _ := cmd.Flags().GetInt("top")
	explain, _ := cmd.Flags().GetBool("explain")

	for i, pair := range report.Scores(dataset, matrix) {
		if top > 0 && i >= top {
			break
		}
		fmt.Printf("%s - %s: %.4f\n", pair.A, pair.B, pair.Score)
		if explain {
			b := scorer.Explain(dataset.FindByName(pair.A), dataset.FindByName(pair.B))
			fmt.Printf("  cosine %.4f, overlap %.4f, year %.4f, mutual %t\n", b.Cosine, b.Overlap, b.Year, b.Mutual)
		}
	}
}
