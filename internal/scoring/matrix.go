package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/matchmaker/internal/participant"
)

// ErrEmptyMatrix is returned when a matrix is requested for zero participants.
var ErrEmptyMatrix = errors.New("scoring: matrix needs at least one participant")

// Matrix is a square, row-major score matrix over participant indices.
// Entries are in [0,1]; the diagonal is always 0.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix returns an n×n zero matrix.
func NewMatrix(n int) (*Matrix, error) {
	if n <= 0 {
		return nil, ErrEmptyMatrix
	}
	return &Matrix{n: n, data: make([]float64, n*n)}, nil
}

// MatrixFromRows copies rows into a Matrix. Rows must form a square.
func MatrixFromRows(rows [][]float64) (*Matrix, error) {
	m, err := NewMatrix(len(rows))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.n {
			return nil, fmt.Errorf("scoring: row %d has %d columns, expected %d", i, len(row), m.n)
		}
		copy(m.data[i*m.n:(i+1)*m.n], row)
	}
	return m, nil
}

func (m *Matrix) Size() int {
	return m.n
}

func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.n+j] = v
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.n)
	copy(row, m.data[i*m.n:(i+1)*m.n])
	return row
}

// Rows returns a copy of the matrix as nested slices.
func (m *Matrix) Rows() [][]float64 {
	rows := make([][]float64, m.n)
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows
}

func (m *Matrix) Clone() *Matrix {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Matrix{n: m.n, data: data}
}

// IsSymmetric reports whether |m[i][j]-m[j][i]| <= eps for every pair.
func (m *Matrix) IsSymmetric(eps float64) bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > eps {
				return false
			}
		}
	}
	return true
}

// NonZero counts off-diagonal entries greater than zero.
func (m *Matrix) NonZero() int {
	count := 0
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i != j && m.At(i, j) > 0 {
				count++
			}
		}
	}
	return count
}

// BuildMatrix scores every pair of participants. Each row task fills the upper
// triangle of its row and mirrors it, so no two tasks write the same cell.
// workers <= 0 uses GOMAXPROCS. Nil participants and unknown categories fail with an
// *participant.InputError before any score is computed.
func BuildMatrix(ctx context.Context, scorer *Scorer, participants []*participant.Participant, workers int) (*Matrix, error) {
	if err := checkParticipants(participants); err != nil {
		return nil, fmt.Errorf("build score matrix: %w", err)
	}

	m, err := NewMatrix(len(participants))
	if err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range participants {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for j := i + 1; j < len(participants); j++ {
				score := scorer.Score(participants[i], participants[j])
				m.Set(i, j, score)
				m.Set(j, i, score)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build score matrix: %w", err)
	}

	return m, nil
}

func checkParticipants(participants []*participant.Participant) error {
	for i, p := range participants {
		switch {
		case p == nil:
			return &participant.InputError{Index: i, Field: "record", Err: participant.ErrMalformedInput, Msg: "participant is nil"}
		case !p.Gender.Valid():
			return &participant.InputError{Index: i, Field: "gender", Err: participant.ErrUnknownCategory, Msg: p.Gender.String()}
		case !p.Preference.Valid():
			return &participant.InputError{Index: i, Field: "preference", Err: participant.ErrUnknownCategory, Msg: p.Preference.String()}
		}
	}
	return nil
}
