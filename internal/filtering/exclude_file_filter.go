package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/logger"
	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/scoring"
)

type excludeFileFilter struct {
	path    string
	indexes map[string]int
	logger  *zap.Logger
}

// NewExcludeFile creates a filter that removes pairs listed in an exclude file.
func NewExcludeFile(path string, names []string, log *zap.Logger) Filter {
	return &excludeFileFilter{
		path:    path,
		indexes: indexByName(names),
		logger:  logger.WithFields(log),
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, m *scoring.Matrix) (*scoring.Matrix, Step, error) {
	initial := m.NonZero()
	if f.path == "" {
		return m, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded, err := GetExcludedPairsFromFile(f.path)
	if err != nil {
		return m, Step{}, fmt.Errorf("getting excluded pairs from file: %w", err)
	}

	removed := zeroNamedPairs(m, f.indexes, excluded.Pairs(), f.logger)
	if removed > 0 {
		f.logger.Info("excluding pairs based on exclude file",
			zap.String("path", f.path),
			zap.Int("excluded_pairs", removed),
		)
	}

	return m, stepOf(initial, m), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

func indexByName(names []string) map[string]int {
	indexes := make(map[string]int, len(names))
	for i, name := range names {
		indexes[name] = i
	}
	return indexes
}

// zeroNamedPairs clears both directions of every pair whose names are both known and
// returns how many pairs were applied.
func zeroNamedPairs(m *scoring.Matrix, indexes map[string]int, pairs []participant.NamePair, log *zap.Logger) int {
	applied := 0
	for _, p := range pairs {
		i, okA := indexes[p.A]
		j, okB := indexes[p.B]
		if !okA || !okB || i == j {
			log.Debug("skipping pair with unknown participant",
				zap.String("a", p.A),
				zap.String("b", p.B),
			)
			continue
		}
		zeroPair(m, i, j)
		applied++
	}
	return applied
}
