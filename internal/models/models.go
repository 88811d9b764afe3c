// Package models defines the data structures shared between discovery, querying and publishing.
package models

import "fmt"

// ServerRef identifies one game server within a discovery cycle.
// The full server set is replaced wholesale on rediscovery, never patched.
type ServerRef struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// Key returns the cache identity of the server in "address:port" form.
func (r ServerRef) Key() string {
	return fmt.Sprintf("%s:%d", r.Address, r.Port)
}

// ServerInfo holds the basic status returned by an info query.
// It may be the zero value when a query failed with no cached fallback.
type ServerInfo struct {
	Name       string `json:"name"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
}

// PlayerSession is one connected player as reported by a player query.
type PlayerSession struct {
	// Name may be blank for connecting players; blank entries are
	// dropped at render time.
	Name string `json:"name"`

	// Duration is the session length in seconds. Negative or NaN
	// values render as 0:00.
	Duration float64 `json:"duration"`
}

// BoardItem is one rendered server entry in final display order.
// Recomputed every cycle, never persisted beyond the history samples.
type BoardItem struct {
	// Key is the ServerRef identity the item was rendered from.
	Key string `json:"key"`

	// DisplayName is the normalized, rewritten server name used for
	// deduplication and for the message header.
	DisplayName string `json:"display_name"`

	CountryCode string `json:"country_code,omitempty"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"max_players"`

	// Content is the complete message body published to a surface.
	Content string `json:"content"`
}
