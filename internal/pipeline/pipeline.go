// Package pipeline runs one matching round: raw attributes in, verified matching out.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/filtering"
	"github.com/spigell/matchmaker/internal/logger"
	"github.com/spigell/matchmaker/internal/matching"
	"github.com/spigell/matchmaker/internal/metrics"
	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/scoring"
)

// Options configures a run. The zero value uses the default weights and lets every
// participant be matched with first-half proposers.
type Options struct {
	Weights      scoring.Weights
	Workers      int
	Matching     matching.Options
	MinimumScore float64
	ExcludeFile  string

	// IgnoreHistory keeps previously matched pairs eligible.
	IgnoreHistory bool
}

// Deps holds the collaborators of a run. Every field is optional.
type Deps struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	History filtering.PairSource
}

// Outcome is everything a run produced. Raw is kept alongside Adjusted so both can be
// inspected after masking.
type Outcome struct {
	Raw      *scoring.Matrix
	Adjusted *scoring.Matrix
	Lists    *matching.PreferenceLists
	Result   *matching.Result
	Verdict  matching.Verdict
	Steps    []filtering.Step
}

// Run validates the dataset, scores every pair, masks the matrix, builds preference
// lists, runs deferred acceptance and verifies stability.
func Run(ctx context.Context, ds *participant.Dataset, opts Options, deps Deps) (out *Outcome, err error) {
	log := logger.WithFields(deps.Logger)
	defer func() {
		deps.Metrics.RecordRunResult(err == nil)
	}()

	stage := func(name string, start time.Time) {
		d := time.Since(start)
		deps.Metrics.ObserveStage(name, d)
		log.Debug("stage finished", zap.String("stage", name), zap.Duration("took", d))
	}

	start := time.Now()
	if ds != nil && ds.Distribution == nil && !slices.Contains(ds.Participants, nil) {
		ds.Distribution = participant.BuildDistribution(ds.Participants)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("validate dataset: %w", err)
	}
	stage("validate", start)

	weights := opts.Weights
	if weights == (scoring.Weights{}) {
		weights = scoring.DefaultWeights()
	}
	scorer, err := scoring.NewScorer(weights, ds.Distribution)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	raw, err := scoring.BuildMatrix(ctx, scorer, ds.Participants, opts.Workers)
	if err != nil {
		return nil, err
	}
	for i := 0; i < raw.Size(); i++ {
		for j := i + 1; j < raw.Size(); j++ {
			deps.Metrics.ObserveScore(raw.At(i, j))
		}
	}
	stage("score", start)

	log.Info("compatibility matrix built",
		zap.Int("participants", raw.Size()),
		zap.Int("questions", ds.Questions()),
		zap.Int("candidate_pairs", raw.NonZero()),
		zap.Any("weights", scorer.Weights()),
	)

	filters := Filters(ds, opts, deps)
	for _, st := range filters.Describe() {
		log.Debug("filter configured",
			zap.String("name", st.Name),
			zap.Bool("enabled", st.Enabled),
			zap.String("reason", st.Reason),
			zap.Any("details", st.Details),
		)
	}

	start = time.Now()
	adjusted, steps, err := filters.RunFilters(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("adjust preferences: %w", err)
	}
	for _, s := range steps {
		deps.Metrics.AddFilterDropped(s.Name, s.Dropped)
	}
	stage("filter", start)

	start = time.Now()
	lists := matching.BuildPreferenceLists(adjusted)
	stage("preferences", start)

	start = time.Now()
	result, err := matching.Match(lists, opts.Matching)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	deps.Metrics.RecordMatching(result.Proposals, result.Rejections, result.Displacements,
		len(result.Pairs), len(result.UnmatchedProposers), len(result.UnmatchedReceivers))
	stage("match", start)

	log.Info("matching finished",
		zap.String("proposers", result.Proposers.String()),
		zap.Int("pairs", len(result.Pairs)),
		zap.Int("unmatched", len(result.UnmatchedProposers)+len(result.UnmatchedReceivers)),
		zap.Int("proposals", result.Proposals),
		zap.Int("rejections", result.Rejections),
		zap.Int("displacements", result.Displacements),
	)

	start = time.Now()
	verdict := matching.Verify(result, lists)
	deps.Metrics.RecordVerdict(len(verdict.BlockingPairs))
	stage("verify", start)

	if !verdict.Stable {
		log.Warn("matching is not stable", zap.Int("blocking_pairs", len(verdict.BlockingPairs)))
	}

	return &Outcome{
		Raw:      raw,
		Adjusted: adjusted,
		Lists:    lists,
		Result:   result,
		Verdict:  verdict,
		Steps:    steps,
	}, nil
}

// Filters assembles the masking steps of a run in the order they apply.
func Filters(ds *participant.Dataset, opts Options, deps Deps) *filtering.Filtering {
	log := logger.WithFields(deps.Logger)
	names := ds.Names()

	steps := []filtering.Filter{
		filtering.NewPreference(ds.Participants),
		filtering.NewMinimumScore(opts.MinimumScore),
	}
	if opts.ExcludeFile != "" {
		steps = append(steps, filtering.NewExcludeFile(opts.ExcludeFile, names, log))
	}
	if deps.History != nil {
		steps = append(steps, filtering.NewMatchHistory(
			&filtering.MatchHistoryConfig{Ignore: opts.IgnoreHistory},
			&filtering.MatchHistoryDeps{History: deps.History, Names: names, Logger: log},
		))
	}

	return filtering.New(steps, log)
}
