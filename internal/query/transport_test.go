package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/a2s/pkg/a2s"
)

func TestSessionsConvertDurationToSeconds(t *testing.T) {
	got := sessions([]a2s.Player{
		{Name: "alice", Duration: 10 * time.Minute},
		{Name: "bob", Duration: 90 * time.Second},
		{Name: "", Duration: 0},
	})

	require.Len(t, got, 3)
	assert.Equal(t, 600.0, got[0].Duration)
	assert.Equal(t, 90.0, got[1].Duration)
	assert.Equal(t, 0.0, got[2].Duration)
	assert.Equal(t, "alice", got[0].Name)
}

func TestSessionsEmpty(t *testing.T) {
	assert.Empty(t, sessions(nil))
}
