// Package query provides resilient game server querying over the Source
// Engine Query (A2S) protocol, with a last-known-good result cache.
package query

import (
	"time"

	"github.com/woozymasta/a2s/pkg/a2s"

	"herald/internal/models"
)

// Querier is the wire-level transport for a single request/response pair.
// Both operations are fallible; resilience lives in Client, not here.
type Querier interface {
	Info(ref models.ServerRef) (models.ServerInfo, error)
	Players(ref models.ServerRef) ([]models.PlayerSession, error)
}

// A2S queries game servers over UDP using the Source Query protocol.
type A2S struct {
	Timeout    time.Duration
	BufferSize uint16
}

// Info requests A2S_INFO and returns the basic server status.
func (q *A2S) Info(ref models.ServerRef) (models.ServerInfo, error) {
	client, err := q.dial(ref)
	if err != nil {
		return models.ServerInfo{}, err
	}
	defer func() { _ = client.Close() }()

	info, err := client.GetInfo()
	if err != nil {
		return models.ServerInfo{}, err
	}

	return models.ServerInfo{
		Name:       info.Name,
		Players:    int(info.Players),
		MaxPlayers: int(info.MaxPlayers),
	}, nil
}

// Players requests A2S_PLAYER and returns the connected player sessions.
func (q *A2S) Players(ref models.ServerRef) ([]models.PlayerSession, error) {
	client, err := q.dial(ref)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	players, err := client.GetPlayers()
	if err != nil {
		return nil, err
	}
	if players == nil {
		return nil, nil
	}

	return sessions(*players), nil
}

// sessions converts the wire player list to model sessions. The transport
// reports session length as a time.Duration; everything downstream works in
// seconds.
func sessions(players []a2s.Player) []models.PlayerSession {
	out := make([]models.PlayerSession, 0, len(players))
	for _, p := range players {
		out = append(out, models.PlayerSession{
			Name:     p.Name,
			Duration: p.Duration.Seconds(),
		})
	}

	return out
}

func (q *A2S) dial(ref models.ServerRef) (*a2s.Client, error) {
	client, err := a2s.New(ref.Address, ref.Port)
	if err != nil {
		return nil, err
	}

	client.Timeout = q.Timeout
	client.BufferSize = q.BufferSize

	return client, nil
}
