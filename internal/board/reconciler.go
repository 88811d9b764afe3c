package board

import "github.com/rs/zerolog/log"

// Reconcile aligns the rendered contents of one cycle onto the slot list
// published in the previous cycle, position by position: existing slots are
// edited in place, missing positions get new messages, leftover slots from a
// longer previous cycle are deleted. It returns the slot list to remember
// for the next cycle.
//
// Alignment is positional rather than content-diffed because items carry no
// stable cross-cycle identity beyond their sort position, and editing in
// place avoids the visible flicker of delete-and-recreate.
func Reconcile(s Surface, contents []string, prev []string) []string {
	next := make([]string, 0, len(contents))

	for i, content := range contents {
		if i < len(prev) {
			if err := editSlot(s, prev[i], content); err == nil {
				next = append(next, prev[i])
				continue
			}

			log.Warn().
				Str("surface", s.ID()).
				Str("message", prev[i]).
				Int("position", i).
				Msg("Slot unusable, publishing a fresh message")
		}

		id, err := s.Send(content)
		if err != nil {
			log.Error().Err(err).Str("surface", s.ID()).Int("position", i).Msg("Failed to publish message")
			continue
		}
		next = append(next, id)
	}

	for i := len(contents); i < len(prev); i++ {
		if err := deleteSlot(s, prev[i]); err != nil {
			// The stale slot lingers until cleared manually or
			// reclaimed by a future growth cycle.
			log.Warn().Err(err).Str("surface", s.ID()).Str("message", prev[i]).Msg("Failed to delete leftover message")
		}
	}

	return next
}

// editSlot probes a slot and rewrites its content. Either step failing
// (message deleted externally, transient error) disqualifies the slot.
func editSlot(s Surface, id, content string) error {
	if err := s.Fetch(id); err != nil {
		return err
	}

	return s.Edit(id, content)
}

func deleteSlot(s Surface, id string) error {
	if err := s.Fetch(id); err != nil {
		return err
	}

	return s.Delete(id)
}
