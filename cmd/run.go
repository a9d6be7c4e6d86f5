package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/ai"
	"github.com/spigell/matchmaker/internal/ai/gemini"
	"github.com/spigell/matchmaker/internal/filtering"
	"github.com/spigell/matchmaker/internal/history"
	"github.com/spigell/matchmaker/internal/logger"
	"github.com/spigell/matchmaker/internal/matching"
	"github.com/spigell/matchmaker/internal/metrics"
	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/pipeline"
	"github.com/spigell/matchmaker/internal/report"
	"github.com/spigell/matchmaker/internal/secrets"
)

const (
	PromptYes                 = "Yes, save matches"
	PromptNo                  = "No"
	PromptReportByParticipant = "Report by participants"
	PromptMatchesToFile       = "Dump matches to file"
	PromptAppendToExcludeFile = "Append all matches to exclude file"
	PromptIntroductions       = "Write introductions"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score participants, match them and verify the matching is stable",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("do-not-exclude-matched", "f", false, "allow pairs that were matched in earlier runs")
	runCmd.Flags().BoolP("auto-approve", "y", false, "save matches without asking for confirmation")
	runCmd.Flags().StringP("exclude-file", "e", "", "file with pairs that must never be matched. Default is unset.")
	runCmd.Flags().String("history-db", "", "SQLite database with earlier runs. Default is unset.")
	runCmd.Flags().String("metrics-file", "", "write run metrics in Prometheus text format to this file")
	runCmd.Flags().StringP("proposers", "p", "", "which half proposes: first-half or second-half")
	runCmd.Flags().Float64("minimum-score", 0, "drop candidates scoring below this value")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("history-db", runCmd.Flags().Lookup("history-db"))
	viper.BindPFlag("metrics-file", runCmd.Flags().Lookup("metrics-file"))
	viper.BindPFlag("matching.proposers", runCmd.Flags().Lookup("proposers"))
	viper.BindPFlag("matching.minimum-score", runCmd.Flags().Lookup("minimum-score"))
}

// session holds what the interactive menu acts upon.
type session struct {
	config  *Config
	logger  *zap.Logger
	dataset *participant.Dataset
	outcome *pipeline.Outcome
	report  *report.Report
	history *history.Store
	saved   bool
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	appLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		appLogger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || strings.TrimSpace(config.Input) == "" {
		appLogger.Fatal("input dataset is required",
			zap.String("hint", "use --input, MATCHMAKER_INPUT or the 'input' key in the configuration file"),
		)
	}

	appLogger.Info("starting the matchmaker", zap.String("version", resolveVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	appLogger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	dataset, err := participant.LoadFile(config.Input)
	if err != nil {
		appLogger.Fatal("loading participants", zap.Error(err), zap.String("input", config.Input))
	}

	appLogger.Info("participants loaded", zap.Int("count", dataset.Len()), zap.Int("questions", dataset.Questions()))

	opts, err := pipelineOptions(cmd, config)
	if err != nil {
		appLogger.Fatal("preparing the run", zap.Error(err))
	}

	runLogger := appLogger.With(logger.RunFields(config.Input, opts.Matching.Proposers.String())...)

	deps := pipeline.Deps{Logger: runLogger, Metrics: metrics.New()}

	var store *history.Store
	if config.HistoryDB != "" {
		store, err = history.Open(config.HistoryDB)
		if err != nil {
			appLogger.Fatal("opening match history", zap.Error(err))
		}
		defer store.Close()
		deps.History = store
	}

	outcome, err := pipeline.Run(ctx, dataset, opts, deps)
	writeMetrics(deps.Metrics, config.MetricsFile, appLogger)
	if err != nil {
		appLogger.Fatal("matching failed", zap.Error(err))
	}

	rep, err := report.Build(dataset, outcome)
	if err != nil {
		appLogger.Fatal("building report", zap.Error(err))
	}

	if !rep.Stable {
		appLogger.Warn("blocking pairs found", zap.Any("pairs", rep.BlockingPairs))
	}

	if len(rep.Matches) == 0 {
		appLogger.Info("exiting", zap.String("reason", "no pairs could be formed"), zap.Strings("unmatched", rep.Unmatched))
		return
	}

	s := &session{
		config:  config,
		logger:  runLogger,
		dataset: dataset,
		outcome: outcome,
		report:  rep,
		history: store,
	}

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	action := PromptYes
	for {
		var err error
		if !autoApprove {
			_, action, err = menu(s).Run()
			if err != nil {
				appLogger.Fatal("exiting", zap.Error(err))
			}
		}

		appLogger.Info("current matching",
			zap.Int("pairs", len(rep.Matches)),
			zap.Int("unmatched", len(rep.Unmatched)),
			zap.Bool("stable", rep.Stable),
		)

		if err := handleAction(ctx, action, s); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			appLogger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove {
			return
		}
	}
}

func menu(s *session) *promptui.Select {
	items := []string{PromptYes, PromptNo, PromptReportByParticipant, PromptMatchesToFile}
	if s.saved {
		items = items[1:]
	}
	if s.config.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	if s.config.AI != nil && s.config.AI.Enabled {
		items = append(items, PromptIntroductions)
	}
	return &promptui.Select{
		Label: "Proceed?",
		Items: items,
	}
}

func handleAction(ctx context.Context, action string, s *session) error {
	switch action {
	case PromptYes:
		return saveMatches(ctx, s)
	case PromptNo:
		s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByParticipant:
		pretty, _ := json.MarshalIndent(s.report.ByParticipant(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("participants", s.dataset.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := s.report.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(s)
	case PromptIntroductions:
		return writeIntroductions(ctx, s)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func saveMatches(ctx context.Context, s *session) error {
	if s.saved {
		return nil
	}
	if s.history == nil {
		s.logger.Info("match history is not configured, nothing to save",
			zap.String("hint", "set history-db to keep pairs from being matched again"),
		)
		s.saved = true
		return nil
	}

	pairs := make([]history.Pair, 0, len(s.report.Matches))
	for _, m := range s.report.Matches {
		pairs = append(pairs, history.Pair{A: m.A, B: m.B, Score: m.Score})
	}

	id, err := s.history.RecordRun(ctx, history.Run{
		Input:        s.config.Input,
		Proposers:    s.report.Proposers,
		Participants: s.dataset.Len(),
		Stable:       s.report.Stable,
		Pairs:        pairs,
	})
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	s.saved = true
	s.logger.Info("matches saved to history", zap.Int64("run_id", id), zap.Int("pairs", len(pairs)))
	return nil
}

func appendToExcludeFile(s *session) error {
	excludeFile := s.config.ExcludeFile

	excluded, err := filtering.GetExcludedPairsFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(filtering.NewExcludedPairs(s.report.NamePairs(), filtering.ExcludeActorMatcher, "matched"))

	if err = excluded.ToFile(excludeFile); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("pairs", excluded.Len()))
	return nil
}

func writeIntroductions(ctx context.Context, s *session) error {
	introducer, err := newIntroducer(ctx, s.config.AI, s.logger)
	if err != nil {
		return fmt.Errorf("building ai introducer: %w", err)
	}

	for _, m := range s.report.Matches {
		a := s.dataset.Participants[m.IndexA]
		b := s.dataset.Participants[m.IndexB]

		intro, err := introducer.Introduce(ctx, a, b, m.Score)
		if err != nil {
			s.logger.Warn("skipping introduction", zap.String("a", m.A), zap.String("b", m.B), zap.Error(err))
			continue
		}

		s.logger.Info(intro.Message,
			zap.String("a", intro.A),
			zap.String("b", intro.B),
			zap.Strings("topics", intro.Topics),
			zap.Float64("confidence", intro.Confidence),
		)
	}
	return nil
}

func newIntroducer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Introducer, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:     apiKey,
		Model:      cfg.Gemini.Model,
		MaxRetries: cfg.Gemini.MaxRetries,
	}, log)
	if err != nil {
		return nil, err
	}

	return gemini.NewIntroducer(generator, logger.WithCommonFields(log, "gemini", generator.Model()), cfg.Gemini.MaxLogLength), nil
}

func pipelineOptions(cmd *cobra.Command, config *Config) (pipeline.Options, error) {
	opts := pipeline.Options{
		Workers:     config.Workers,
		ExcludeFile: config.ExcludeFile,
	}

	if config.Weights != nil {
		opts.Weights = *config.Weights
	}

	if config.Matching != nil {
		side, err := matching.ParseSide(strings.ToLower(strings.TrimSpace(config.Matching.Proposers)))
		if err != nil {
			return opts, err
		}
		opts.Matching.Proposers = side
		opts.MinimumScore = config.Matching.MinimumScore
	}

	if cmd != nil {
		flag := cmd.Flag("do-not-exclude-matched")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			opts.IgnoreHistory = true
		}
	}

	return opts, nil
}

func writeMetrics(m *metrics.Metrics, path string, log *zap.Logger) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		log.Warn("writing metrics", zap.Error(err))
		return
	}
	log.Debug("metrics written", zap.String("path", path))
}
