package snapshot

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"herald/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{-5, "0:00"},
		{math.NaN(), "0:00"},
		{0, "0:00"},
		{59, "0:00"},
		{125, "0:02"},
		{3725, "1:02"},
		{37230, "10:20"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%v", tt.seconds)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Alpha Base", NormalizeName("  Alpha \t  Base  "))
	assert.Equal(t, "play.​example.​com", NormalizeName("play.example.com"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestPlayerBlockDropsBlankNames(t *testing.T) {
	block := PlayerBlock([]models.PlayerSession{
		{Name: "alice", Duration: 125},
		{Name: "", Duration: 10},
		{Name: "bob", Duration: 3725},
	}, 40)

	assert.Equal(t, "alice (0:02)\nbob (1:02)", block)
}

func TestPlayerBlockEmptyAfterFiltering(t *testing.T) {
	block := PlayerBlock([]models.PlayerSession{{Name: ""}, {Name: ""}}, 40)
	assert.Equal(t, "", block)
}

func TestPlayerBlockCapUsesListLength(t *testing.T) {
	players := make([]models.PlayerSession, 41)
	for i := range players {
		players[i] = models.PlayerSession{Name: fmt.Sprintf("player%d", i)}
	}

	assert.Equal(t, listDisabledBlock, PlayerBlock(players, 40))

	// exactly at the cap the full list still renders
	atCap := PlayerBlock(players[:40], 40)
	assert.Equal(t, 40, len(strings.Split(atCap, "\n")))
}
