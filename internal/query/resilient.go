package query

import (
	"time"

	"github.com/rs/zerolog/log"

	"herald/internal/models"
)

// Client wraps a Querier with a bounded retry budget and fallback to the
// last cached value. Neither fetch operation ever returns an error: after
// exhausting retries the cached value for that field is returned if one
// exists, otherwise the zero value.
type Client struct {
	transport  Querier
	cache      *Cache
	retries    int
	retryDelay time.Duration
}

// NewClient creates a resilient query client over the given transport.
func NewClient(transport Querier, cache *Cache, retries int, retryDelay time.Duration) *Client {
	return &Client{
		transport:  transport,
		cache:      cache,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// FetchInfo queries basic server status, falling back to the cached info
// when all attempts fail.
func (c *Client) FetchInfo(ref models.ServerRef) models.ServerInfo {
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.retryDelay)
		}

		info, err := c.transport.Info(ref)
		if err == nil {
			return info
		}

		log.Debug().
			Err(err).
			Str("server", ref.Key()).
			Int("attempt", attempt+1).
			Msg("Info query failed")
	}

	if entry, ok := c.cache.Get(ref.Key()); ok {
		log.Warn().Str("server", ref.Key()).Msg("Info query exhausted retries, using cached value")
		return entry.Info
	}

	return models.ServerInfo{}
}

// FetchPlayers queries the connected player list, falling back to the
// cached list when all attempts fail.
func (c *Client) FetchPlayers(ref models.ServerRef) []models.PlayerSession {
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.retryDelay)
		}

		players, err := c.transport.Players(ref)
		if err == nil {
			return players
		}

		log.Debug().
			Err(err).
			Str("server", ref.Key()).
			Int("attempt", attempt+1).
			Msg("Player query failed")
	}

	if entry, ok := c.cache.Get(ref.Key()); ok {
		log.Warn().Str("server", ref.Key()).Msg("Player query exhausted retries, using cached value")
		return entry.Players
	}

	return nil
}
