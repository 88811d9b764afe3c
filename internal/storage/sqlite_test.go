package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/models"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()

	recorder, err := New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = recorder.Close() })

	return recorder
}

func TestRecordCycleAndPeak(t *testing.T) {
	recorder := newTestRecorder(t)

	require.NoError(t, recorder.RecordCycle([]models.BoardItem{
		{Key: "10.0.0.1:2302", DisplayName: "Alpha", Players: 12, MaxPlayers: 60},
		{Key: "10.0.0.2:2302", DisplayName: "Bravo", Players: 3, MaxPlayers: 60},
	}))
	require.NoError(t, recorder.RecordCycle([]models.BoardItem{
		{Key: "10.0.0.1:2302", DisplayName: "Alpha", Players: 27, MaxPlayers: 60},
	}))

	peak, err := recorder.Peak("10.0.0.1:2302", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 27, peak)

	peak, err = recorder.Peak("10.0.0.9:2302", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, peak)
}

func TestRecordCycleEmpty(t *testing.T) {
	recorder := newTestRecorder(t)
	assert.NoError(t, recorder.RecordCycle(nil))
}

func TestPruneBefore(t *testing.T) {
	recorder := newTestRecorder(t)

	require.NoError(t, recorder.RecordCycle([]models.BoardItem{
		{Key: "10.0.0.1:2302", DisplayName: "Alpha", Players: 12, MaxPlayers: 60},
	}))

	// nothing is old enough yet
	deleted, err := recorder.PruneBefore(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	// an instant cutoff removes everything recorded so far
	time.Sleep(10 * time.Millisecond)
	deleted, err = recorder.PruneBefore(time.Nanosecond)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}
