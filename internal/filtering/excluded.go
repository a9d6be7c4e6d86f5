package filtering

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/spigell/matchmaker/internal/participant"
)

const (
	ExcludeActorOperator = "operator"
	ExcludeActorMatcher  = "matchmaker"
)

// ExcludedPairs is the content of an exclude file: pairs that must never be matched.
type ExcludedPairs struct {
	Items []*ExcludedPair
}

type ExcludedPair struct {
	A          string
	B          string
	Actor      string
	Reason     string
	ExcludedAt time.Time
}

// NewExcludedPairs converts name pairs into exclude file entries.
func NewExcludedPairs(pairs []participant.NamePair, actor, reason string) *ExcludedPairs {
	excluded := &ExcludedPairs{}
	now := time.Now().UTC()
	for _, p := range pairs {
		excluded.Items = append(excluded.Items, &ExcludedPair{
			A:          p.A,
			B:          p.B,
			Actor:      actor,
			Reason:     reason,
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedPairsFromFile reads an exclude file. A missing or empty file yields no pairs.
func GetExcludedPairsFromFile(path string) (*ExcludedPairs, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedPairs{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPairs{}, nil
	}

	var excluded ExcludedPairs
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedPairs) Append(s *ExcludedPairs) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedPairs) Len() int {
	return len(e.Items)
}

func (e *ExcludedPairs) Pairs() []participant.NamePair {
	pairs := make([]participant.NamePair, 0, len(e.Items))
	for _, item := range e.Items {
		pairs = append(pairs, participant.NamePair{A: item.A, B: item.B})
	}
	return pairs
}

func (e *ExcludedPairs) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
