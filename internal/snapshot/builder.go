// Package snapshot runs one query pass over the current server set and turns
// the results into an ordered, de-duplicated list of board items.
package snapshot

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"herald/internal/geoip"
	"herald/internal/models"
	"herald/internal/query"
)

// Options holds the display filtering and rewrite configuration.
type Options struct {
	// MinPlayers is the exclusive lower population bound.
	MinPlayers int

	// MaxPlayers is the inclusive upper population bound; readings above
	// it are treated as glitched and excluded.
	MaxPlayers int

	// PlayerListCap is the list length above which the player block is
	// replaced with a placeholder.
	PlayerListCap int

	// TagLong, when non-empty, is rewritten to TagShort in display names
	// before deduplication.
	TagLong  string
	TagShort string
}

// Builder produces one board snapshot per cycle.
type Builder struct {
	client  *query.Client
	cache   *query.Cache
	limiter *rate.Limiter
	geo     *geoip.Provider
	opts    Options
}

// New creates a snapshot builder. The limiter spaces out query pairs to
// distinct servers; geo may be nil to disable country annotation.
func New(client *query.Client, cache *query.Cache, limiter *rate.Limiter, geo *geoip.Provider, opts Options) *Builder {
	return &Builder{
		client:  client,
		cache:   cache,
		limiter: limiter,
		geo:     geo,
		opts:    opts,
	}
}

// result is one server's resolved query pair, in discovery order.
type result struct {
	ref     models.ServerRef
	info    models.ServerInfo
	players []models.PlayerSession
	ok      bool
}

// Build queries every server concurrently, waits for all results, stores the
// info/players pairs in the cache and returns the filtered, sorted and
// de-duplicated board items in final display order.
func (b *Builder) Build(ctx context.Context, servers []models.ServerRef) []models.BoardItem {
	results := make([]result, len(servers))

	var wg sync.WaitGroup
	for i, ref := range servers {
		results[i].ref = ref

		wg.Add(1)
		go func(i int, ref models.ServerRef) {
			defer wg.Done()

			if err := b.limiter.Wait(ctx); err != nil {
				return
			}

			results[i].info = b.client.FetchInfo(ref)
			results[i].players = b.client.FetchPlayers(ref)
			results[i].ok = true
		}(i, ref)
	}
	wg.Wait()

	// Single cache-write path: pairs are stored together, only after the
	// barrier, so readers never observe a half-written entry.
	for _, r := range results {
		if r.ok {
			b.cache.Put(r.ref.Key(), r.info, r.players)
		}
	}

	return b.assemble(results)
}

// assemble applies the filter, sort, rewrite and dedupe steps.
func (b *Builder) assemble(results []result) []models.BoardItem {
	kept := results[:0]
	for _, r := range results {
		if !r.ok {
			continue
		}
		if r.info.Players <= b.opts.MinPlayers || r.info.Players > b.opts.MaxPlayers {
			continue
		}
		kept = append(kept, r)
	}

	// Ties keep discovery order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].info.Players > kept[j].info.Players
	})

	seen := make(map[uint64]struct{}, len(kept))
	items := make([]models.BoardItem, 0, len(kept))

	for _, r := range kept {
		name := r.info.Name
		if name == "" {
			name = defaultName
		}
		display := b.rewriteTag(NormalizeName(name))

		hash := xxhash.Sum64String(display)
		if _, dup := seen[hash]; dup {
			log.Warn().
				Str("server", r.ref.Key()).
				Str("name", display).
				Msg("Duplicate display name, dropping server")
			continue
		}
		seen[hash] = struct{}{}

		maxPlayers := r.info.MaxPlayers
		if maxPlayers == 0 {
			maxPlayers = defaultMaxPlayers
		}

		item := models.BoardItem{
			Key:         r.ref.Key(),
			DisplayName: display,
			CountryCode: b.country(r.ref.Address),
			Players:     r.info.Players,
			MaxPlayers:  maxPlayers,
		}
		item.Content = renderContent(&item, PlayerBlock(r.players, b.opts.PlayerListCap))

		items = append(items, item)
	}

	return items
}

// rewriteTag collapses the configured promotional tag to its short form.
func (b *Builder) rewriteTag(name string) string {
	if b.opts.TagLong == "" {
		return name
	}

	// The tag may carry periods already defanged by NormalizeName.
	long := NormalizeName(b.opts.TagLong)
	return strings.ReplaceAll(name, long, b.opts.TagShort)
}

func (b *Builder) country(address string) string {
	if b.geo == nil {
		return ""
	}

	return b.geo.Country(address)
}
