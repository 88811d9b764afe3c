package snapshot

import (
	"fmt"
	"math"
	"strings"

	"herald/internal/models"
)

const (
	// defaultName replaces a blank server name.
	defaultName = "Unknown Server"

	// defaultMaxPlayers replaces a missing capacity reading.
	defaultMaxPlayers = 100

	// listDisabledBlock replaces the player list when it exceeds the cap.
	listDisabledBlock = "*Player list disabled: too many entries.*"

	// zeroWidthSpace breaks Discord auto-link detection in server names.
	zeroWidthSpace = "​"
)

// NormalizeName collapses runs of whitespace, trims the result and inserts
// a zero-width space after every period so hostnames in server names do not
// turn into links on the display surface.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return strings.ReplaceAll(name, ".", "."+zeroWidthSpace)
}

// FormatDuration renders a session length in seconds as "H:MM" using floor
// division. Negative or NaN durations render as "0:00".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/3600, total%3600/60)
}

// PlayerBlock renders the per-player lines of a board message. Players with
// blank names are dropped. When the remaining list is longer than cap the
// whole block collapses to a placeholder; the check runs against the actual
// list length, not the server's advertised population, since the two can
// disagree.
func PlayerBlock(players []models.PlayerSession, limit int) string {
	lines := make([]string, 0, len(players))
	for _, p := range players {
		if p.Name == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", p.Name, FormatDuration(p.Duration)))
	}

	if len(lines) == 0 {
		return ""
	}
	if len(lines) > limit {
		return listDisabledBlock
	}

	return strings.Join(lines, "\n")
}

// renderContent produces the complete message body for one board item.
func renderContent(item *models.BoardItem, block string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s** — %d/%d online", item.DisplayName, item.Players, item.MaxPlayers)
	if item.CountryCode != "" {
		fmt.Fprintf(&b, " [%s]", item.CountryCode)
	}
	if block != "" {
		b.WriteString("\n")
		b.WriteString(block)
	}

	return b.String()
}
