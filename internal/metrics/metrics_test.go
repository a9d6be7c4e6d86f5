package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMatching(t *testing.T) {
	m := New()

	m.RecordMatching(6, 1, 2, 3, 0, 1)
	m.RecordMatching(4, 0, 0, 2, 0, 0)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.Proposals))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Displacements))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Pairs))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Unmatched.WithLabelValues("receiver")))
}

func TestFilterDroppedSkipsZero(t *testing.T) {
	m := New()

	m.AddFilterDropped("preference", 0)
	m.AddFilterDropped("preference", 4)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.FilterDropped.WithLabelValues("preference")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FilterDropped))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()

	a.RecordVerdict(3)
	b.RecordVerdict(0)

	assert.Equal(t, 3.0, testutil.ToFloat64(a.BlockingPairs))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.BlockingPairs))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	m.ObserveStage("score", time.Second)
	m.ObserveScore(0.5)
	m.AddFilterDropped("preference", 1)
	m.RecordMatching(1, 1, 1, 1, 1, 1)
	m.RecordVerdict(1)
	m.RecordRunResult(true)

	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile("ignored"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveStage("match", 5*time.Millisecond)
	m.RecordRunResult(true)

	path := filepath.Join(t.TempDir(), "matchmaker.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "matchmaker_last_run_success 1")
	assert.Contains(t, string(data), `matchmaker_stage_duration_seconds_count{stage="match"} 1`)

	assert.Error(t, m.WriteTextfile(" "))
}
