// Package derive computes presentation values from the latest snapshot
// plus wall-clock time. Everything here is a pure function: nothing is
// cached, so a degenerate or replayed snapshot can never leave a stale
// derived value behind.
package derive

import (
	"time"

	"github.com/ayumu-k/sudoku-battle-client/pkg/types"
)

// CellCooldown returns the whole seconds remaining on a cell's cooldown,
// rounded up, and zero once the deadline has passed. Zero means the cell
// is unrestricted.
func CellCooldown(c types.Cell, now time.Time) int {
	return remaining(c.CooldownUntil, now)
}

// CellOnCooldown reports whether the cell still rejects edits.
func CellOnCooldown(c types.Cell, now time.Time) bool {
	return c.CooldownUntil > now.UnixMilli()
}

// RemoveCooldown returns the whole seconds before the session may use the
// opponent-cell removal power-up again. Falls back to the legacy
// single-value field when the per-session map is absent.
func RemoveCooldown(s types.RoomSnapshot, sessionID string, now time.Time) int {
	if until, ok := s.RemoveCooldownUntilMap[sessionID]; ok {
		return remaining(until, now)
	}
	if s.RemoveCooldownUntil != nil {
		return remaining(*s.RemoveCooldownUntil, now)
	}
	return 0
}

// CanRemoveOpponentCell reports the server-asserted removal eligibility
// for a session. Unknown sessions, or a snapshot without eligibility
// data, are never eligible.
func CanRemoveOpponentCell(s types.RoomSnapshot, sessionID string) bool {
	if v, ok := s.CanRemoveOpponentCellMap[sessionID]; ok {
		return v
	}
	if s.CanRemoveOpponentCell != nil {
		return *s.CanRemoveOpponentCell
	}
	return false
}

// StepsAheadDiff compares another session's progress against the local
// one: positive means the other session is ahead, negative means the
// local session is, zero is a tie. Display-only; it never gates actions.
func StepsAheadDiff(s types.RoomSnapshot, otherID, localID string) int {
	return s.StepsAhead[otherID] - s.StepsAhead[localID]
}

// FilledCount is the number of correctly filled cells the server
// attributes to a session, zero when the session is unknown.
func FilledCount(s types.RoomSnapshot, sessionID string) int {
	return s.FilledCounts[sessionID]
}

// GameStarted reports whether any board in the snapshot has real
// dimensions. An initial snapshot often carries empty boards while
// players gather; those do not count as a started game.
func GameStarted(s types.RoomSnapshot) bool {
	for _, b := range s.Boards {
		if len(b) > 0 && len(b[0]) > 0 {
			return true
		}
	}
	return false
}

func remaining(untilMillis int64, now time.Time) int {
	ms := untilMillis - now.UnixMilli()
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}
