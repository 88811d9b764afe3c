package snapshot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"herald/internal/models"
	"herald/internal/query"
)

// fakeTransport serves canned results per server key.
type fakeTransport struct {
	infos      map[string]models.ServerInfo
	players    map[string][]models.PlayerSession
	infoErr    map[string]bool
	playersErr map[string]bool
}

var errDown = errors.New("connection refused")

func (f *fakeTransport) Info(ref models.ServerRef) (models.ServerInfo, error) {
	if f.infoErr[ref.Key()] {
		return models.ServerInfo{}, errDown
	}
	return f.infos[ref.Key()], nil
}

func (f *fakeTransport) Players(ref models.ServerRef) ([]models.PlayerSession, error) {
	if f.playersErr[ref.Key()] {
		return nil, errDown
	}
	return f.players[ref.Key()], nil
}

func newTestBuilder(transport *fakeTransport, cache *query.Cache, opts Options) *Builder {
	if opts.MaxPlayers == 0 {
		opts.MaxPlayers = 40
	}
	if opts.PlayerListCap == 0 {
		opts.PlayerListCap = 40
	}

	client := query.NewClient(transport, cache, 0, 0)
	return New(client, cache, rate.NewLimiter(rate.Inf, 0), nil, opts)
}

func refs(n int) []models.ServerRef {
	out := make([]models.ServerRef, n)
	for i := range out {
		out[i] = models.ServerRef{Address: fmt.Sprintf("10.0.0.%d", i+1), Port: 2302}
	}
	return out
}

func TestBuildFiltersPopulationBounds(t *testing.T) {
	servers := refs(5)
	transport := &fakeTransport{infos: map[string]models.ServerInfo{}, players: map[string][]models.PlayerSession{}}
	for i, pop := range []int{0, 5, 41, 40, 40} {
		transport.infos[servers[i].Key()] = models.ServerInfo{
			Name:       fmt.Sprintf("Server %d", i),
			Players:    pop,
			MaxPlayers: 60,
		}
	}

	items := newTestBuilder(transport, query.NewCache(), Options{}).Build(context.Background(), servers)

	require.Len(t, items, 3)
	// sorted by population descending, ties in discovery order
	assert.Equal(t, []int{40, 40, 5}, []int{items[0].Players, items[1].Players, items[2].Players})
	assert.Equal(t, "Server 3", items[0].DisplayName)
	assert.Equal(t, "Server 4", items[1].DisplayName)
	assert.Equal(t, "Server 1", items[2].DisplayName)
}

func TestBuildDedupesByDisplayName(t *testing.T) {
	servers := refs(2)
	transport := &fakeTransport{
		infos: map[string]models.ServerInfo{
			servers[0].Key(): {Name: "Alpha Base", Players: 10, MaxPlayers: 60},
			servers[1].Key(): {Name: "Alpha   Base", Players: 30, MaxPlayers: 60},
		},
		players: map[string][]models.PlayerSession{},
	}

	items := newTestBuilder(transport, query.NewCache(), Options{}).Build(context.Background(), servers)

	// normalization makes the names collide; the higher-population
	// server sorts first and wins
	require.Len(t, items, 1)
	assert.Equal(t, 30, items[0].Players)
	assert.Equal(t, "Alpha Base", items[0].DisplayName)
}

func TestBuildAppliesDefaults(t *testing.T) {
	servers := refs(1)
	transport := &fakeTransport{
		infos: map[string]models.ServerInfo{
			servers[0].Key(): {Name: "", Players: 3, MaxPlayers: 0},
		},
		players: map[string][]models.PlayerSession{},
	}

	items := newTestBuilder(transport, query.NewCache(), Options{}).Build(context.Background(), servers)

	require.Len(t, items, 1)
	assert.Equal(t, "Unknown Server", items[0].DisplayName)
	assert.Equal(t, 100, items[0].MaxPlayers)
	assert.Contains(t, items[0].Content, "3/100 online")
}

func TestBuildRewritesPromotionalTag(t *testing.T) {
	servers := refs(1)
	transport := &fakeTransport{
		infos: map[string]models.ServerInfo{
			servers[0].Key(): {Name: "Alpha Base Hosted by GTXGaming.co.uk", Players: 3, MaxPlayers: 60},
		},
		players: map[string][]models.PlayerSession{},
	}

	opts := Options{TagLong: "Hosted by GTXGaming.co.uk", TagShort: "GTX"}
	items := newTestBuilder(transport, query.NewCache(), opts).Build(context.Background(), servers)

	require.Len(t, items, 1)
	assert.Equal(t, "Alpha Base GTX", items[0].DisplayName)
}

func TestBuildCachesMixedPair(t *testing.T) {
	servers := refs(1)
	key := servers[0].Key()

	cache := query.NewCache()
	oldPlayers := []models.PlayerSession{{Name: "alice", Duration: 600}}
	cache.Put(key, models.ServerInfo{Name: "Alpha", Players: 8, MaxPlayers: 60}, oldPlayers)

	transport := &fakeTransport{
		infos: map[string]models.ServerInfo{
			key: {Name: "Alpha", Players: 12, MaxPlayers: 60},
		},
		players:    map[string][]models.PlayerSession{},
		playersErr: map[string]bool{key: true},
	}

	newTestBuilder(transport, cache, Options{}).Build(context.Background(), servers)

	// fresh info paired with the fallback player list is written back as
	// one atomic entry
	entry, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, 12, entry.Info.Players)
	assert.Equal(t, oldPlayers, entry.Players)
}

func TestBuildFailureWithoutCacheYieldsNoItem(t *testing.T) {
	servers := refs(1)
	transport := &fakeTransport{
		infos:      map[string]models.ServerInfo{},
		players:    map[string][]models.PlayerSession{},
		infoErr:    map[string]bool{servers[0].Key(): true},
		playersErr: map[string]bool{servers[0].Key(): true},
	}

	items := newTestBuilder(transport, query.NewCache(), Options{}).Build(context.Background(), servers)

	// zero-value info has zero players, which the population filter drops
	assert.Empty(t, items)
}
