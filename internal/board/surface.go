// Package board maps rendered snapshot items onto the ordered message slots
// of one or more display surfaces with minimal create/edit/delete churn.
package board

import "github.com/rs/zerolog/log"

// Surface is one ordered-message display target. Message identifiers are
// opaque; positions are what the reconciler cares about.
type Surface interface {
	// ID names the surface in logs and slot bookkeeping.
	ID() string

	// Recent returns the identifiers of up to limit recent messages.
	Recent(limit int) ([]string, error)

	// Send publishes a new message and returns its identifier.
	Send(content string) (string, error)

	// Fetch probes whether the message still exists; content is unused.
	Fetch(id string) error

	// Edit replaces the content of an existing message.
	Edit(id, content string) error

	// Delete removes a message.
	Delete(id string) error
}

// ClearRecent deletes up to limit recent messages from the surface,
// best-effort. Failures are logged and otherwise ignored; a stale message
// will be overwritten or deleted by a later cycle anyway.
func ClearRecent(s Surface, limit int) {
	ids, err := s.Recent(limit)
	if err != nil {
		log.Warn().Err(err).Str("surface", s.ID()).Msg("Failed to fetch recent messages for cleanup")
		return
	}

	for _, id := range ids {
		if err := s.Delete(id); err != nil {
			log.Warn().Err(err).Str("surface", s.ID()).Str("message", id).Msg("Failed to delete message during cleanup")
		}
	}
}
