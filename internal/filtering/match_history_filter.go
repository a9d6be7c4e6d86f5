package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/scoring"
)

const forceFlagSetMsg = "force flag is set"

// PairSource lists pairs matched in earlier runs.
type PairSource interface {
	MatchedPairs(ctx context.Context) ([]participant.NamePair, error)
}

type matchHistoryFilter struct {
	deps   *MatchHistoryDeps
	ignore bool
}

type MatchHistoryDeps struct {
	History PairSource
	Names   []string
	Logger  *zap.Logger
}

type MatchHistoryConfig struct {
	Ignore bool
}

// NewMatchHistory creates a filter that removes pairs already matched in previous runs.
func NewMatchHistory(cfg *MatchHistoryConfig, deps *MatchHistoryDeps) Filter {
	ignore := false
	if cfg != nil {
		ignore = cfg.Ignore
	}

	return &matchHistoryFilter{
		deps:   deps,
		ignore: ignore,
	}
}

func (f *matchHistoryFilter) Name() string { return "match_history" }

func (f *matchHistoryFilter) Disable(string) {}

func (f *matchHistoryFilter) IsEnabled() bool { return true }

func (f *matchHistoryFilter) Validate() error {
	if f.deps == nil || f.deps.History == nil {
		return fmt.Errorf("history store is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *matchHistoryFilter) Apply(ctx context.Context, m *scoring.Matrix) (*scoring.Matrix, Step, error) {
	initial := m.NonZero()
	if f.ignore {
		f.deps.Logger.Info("ignoring previously matched pairs", zap.String("reason", forceFlagSetMsg))
		return m, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	pairs, err := f.deps.History.MatchedPairs(ctx)
	if err != nil {
		return m, Step{}, fmt.Errorf("get matched pairs: %w", err)
	}

	removed := zeroNamedPairs(m, indexByName(f.deps.Names), pairs, f.deps.Logger)
	if removed > 0 {
		f.deps.Logger.Info("excluding pairs based on match history",
			zap.Int("excluded_pairs", removed),
		)
	}

	return m, stepOf(initial, m), nil
}

func (f *matchHistoryFilter) Status() Status {
	details := map[string]string{
		"exclude_matched": strconv.FormatBool(!f.ignore),
	}
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}
