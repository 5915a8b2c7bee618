// Package interact is the local interaction state machine for the board
// view: cell selection, keyboard navigation, and the removal-mode toggle.
// Apply is a pure transition: it mutates only the machine's own selection
// state and returns the effects (actions to publish, text to copy) for
// the caller to execute. All guards here are UX-side; the server remains
// the authority on every action it receives.
package interact

import (
	"strconv"
	"time"

	"github.com/ayumu-k/sudoku-battle-client/internal/derive"
	"github.com/ayumu-k/sudoku-battle-client/pkg/types"
)

type Dir int

const (
	Up Dir = iota
	Down
	Left
	Right
)

// Gesture is a tagged variant over local user input.
type Gesture interface{ isGesture() }

// Tap is a pointer gesture on a cell of any rendered board.
type Tap struct {
	Owner string // session id owning the tapped board
	Row   int
	Col   int
}

// Move is arrow-key navigation of the selection cursor.
type Move struct{ Dir Dir }

// Digit is a numeric key press on the focused cell.
type Digit struct{ N int }

// Clear is an empty/delete entry on the focused cell.
type Clear struct{}

// Copy is the platform copy shortcut on the focused cell.
type Copy struct{}

// ToggleRemoval arms or disarms removal mode.
type ToggleRemoval struct{}

func (Tap) isGesture()           {}
func (Move) isGesture()          {}
func (Digit) isGesture()         {}
func (Clear) isGesture()         {}
func (Copy) isGesture()          {}
func (ToggleRemoval) isGesture() {}

// Effect is what a gesture resolved to.
type Effect interface{ isEffect() }

// EmitAction asks the dispatcher to publish a validated action.
type EmitAction struct{ Action types.GameAction }

// CopyText asks the host to place text on the clipboard.
type CopyText struct{ Text string }

func (EmitAction) isEffect() {}
func (CopyText) isEffect()   {}

type Coord struct{ Row, Col int }

// Machine holds the per-view interaction state. One writer: the client
// actor's goroutine.
type Machine struct {
	localSession string
	selected     *Coord
	removalArmed bool
}

func NewMachine(localSession string) *Machine {
	return &Machine{localSession: localSession}
}

// Session returns the local session identity this machine validates
// against.
func (m *Machine) Session() string { return m.localSession }

func (m *Machine) Selected() (Coord, bool) {
	if m.selected == nil {
		return Coord{}, false
	}
	return *m.selected, true
}

func (m *Machine) RemovalArmed() bool { return m.removalArmed }

// Reset drops all local interaction state, used when leaving a room.
func (m *Machine) Reset() {
	m.selected = nil
	m.removalArmed = false
}

// Apply resolves one gesture against the current snapshot. A nil effect
// slice means the gesture was ignored or rejected locally; nothing is
// queued or retried.
func (m *Machine) Apply(g Gesture, snap types.RoomSnapshot, now time.Time) []Effect {
	switch g := g.(type) {
	case Tap:
		return m.tap(g, snap)
	case Move:
		m.move(g.Dir)
		return nil
	case Digit:
		return m.fill(g.N, snap, now)
	case Clear:
		return m.clear(snap, now)
	case Copy:
		return m.copyValue(snap)
	case ToggleRemoval:
		m.toggleRemoval(snap, now)
		return nil
	default:
		return nil
	}
}

func (m *Machine) tap(g Tap, snap types.RoomSnapshot) []Effect {
	board := snap.Board(g.Owner)
	if !board.InBounds(g.Row, g.Col) {
		return nil
	}

	if m.removalArmed {
		// Any board's non-empty cell is a removal target. Single shot:
		// one removal per arm, then disarm.
		if board.At(g.Row, g.Col).Value == 0 {
			return nil
		}
		a, err := types.NewOpponentRemove(g.Owner, g.Row, g.Col)
		if err != nil {
			return nil
		}
		m.removalArmed = false
		return []Effect{EmitAction{Action: a}}
	}

	// Plain selection only works on the player's own board.
	if g.Owner != m.localSession {
		return nil
	}
	m.selected = &Coord{Row: g.Row, Col: g.Col}
	return nil
}

// move shifts the selection one cell, wrapping at the board edges.
func (m *Machine) move(d Dir) {
	if m.selected == nil {
		m.selected = &Coord{}
		return
	}
	switch d {
	case Up:
		m.selected.Row = (m.selected.Row + types.BoardSize - 1) % types.BoardSize
	case Down:
		m.selected.Row = (m.selected.Row + 1) % types.BoardSize
	case Left:
		m.selected.Col = (m.selected.Col + types.BoardSize - 1) % types.BoardSize
	case Right:
		m.selected.Col = (m.selected.Col + 1) % types.BoardSize
	}
}

func (m *Machine) fill(n int, snap types.RoomSnapshot, now time.Time) []Effect {
	cell, ok := m.focusedCell(snap)
	if !ok || m.removalArmed {
		return nil
	}
	if !cell.Editable() || derive.CellOnCooldown(cell, now) {
		return nil
	}
	a, err := types.NewFill(m.selected.Row, m.selected.Col, n)
	if err != nil {
		return nil
	}
	return []Effect{EmitAction{Action: a}}
}

func (m *Machine) clear(snap types.RoomSnapshot, now time.Time) []Effect {
	cell, ok := m.focusedCell(snap)
	if !ok || m.removalArmed {
		return nil
	}
	if !cell.Editable() || derive.CellOnCooldown(cell, now) {
		return nil
	}
	a, err := types.NewSelfClear(m.selected.Row, m.selected.Col)
	if err != nil {
		return nil
	}
	return []Effect{EmitAction{Action: a}}
}

func (m *Machine) copyValue(snap types.RoomSnapshot) []Effect {
	cell, ok := m.focusedCell(snap)
	if !ok || cell.Value == 0 {
		return nil
	}
	return []Effect{CopyText{Text: strconv.Itoa(cell.Value)}}
}

// toggleRemoval arms only when the server currently grants the power-up
// and its cooldown has lapsed. Disarming is always allowed.
func (m *Machine) toggleRemoval(snap types.RoomSnapshot, now time.Time) {
	if m.removalArmed {
		m.removalArmed = false
		return
	}
	if !derive.CanRemoveOpponentCell(snap, m.localSession) {
		return
	}
	if derive.RemoveCooldown(snap, m.localSession, now) > 0 {
		return
	}
	m.removalArmed = true
}

func (m *Machine) focusedCell(snap types.RoomSnapshot) (types.Cell, bool) {
	if m.selected == nil {
		return types.Cell{}, false
	}
	board := snap.Board(m.localSession)
	if !board.InBounds(m.selected.Row, m.selected.Col) {
		return types.Cell{}, false
	}
	return board.At(m.selected.Row, m.selected.Col), true
}
