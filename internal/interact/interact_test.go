package interact

import (
	"testing"
	"time"

	"github.com/ayumu-k/sudoku-battle-client/pkg/types"
)

var now = time.UnixMilli(1_757_000_000_000)

const local = "me"
const opponent = "B2F9"

func fullBoard(status types.CellStatus, value int) types.Board {
	b := make(types.Board, types.BoardSize)
	for r := range b {
		b[r] = make([]types.Cell, types.BoardSize)
		for c := range b[r] {
			b[r][c] = types.Cell{Value: value, Status: status}
		}
	}
	return b
}

func twoPlayerSnapshot() types.RoomSnapshot {
	return types.RoomSnapshot{
		Boards: map[string]types.Board{
			local:    fullBoard(types.StatusToGuess, 0),
			opponent: fullBoard(types.StatusToGuess, 4),
		},
		PlayerCount:              2,
		CanRemoveOpponentCellMap: map[string]bool{local: true},
	}
}

func emittedAction(t *testing.T, effects []Effect) types.GameAction {
	t.Helper()
	if len(effects) != 1 {
		t.Fatalf("want exactly one effect, got %d: %+v", len(effects), effects)
	}
	emit, ok := effects[0].(EmitAction)
	if !ok {
		t.Fatalf("want EmitAction, got %T", effects[0])
	}
	return emit.Action
}

func TestTapSelectsOwnEditableCell(t *testing.T) {
	m := NewMachine(local)
	snap := twoPlayerSnapshot()

	if effects := m.Apply(Tap{Owner: local, Row: 2, Col: 7}, snap, now); effects != nil {
		t.Fatalf("plain selection should emit nothing, got %+v", effects)
	}
	sel, ok := m.Selected()
	if !ok || sel != (Coord{Row: 2, Col: 7}) {
		t.Fatalf("selected=%+v ok=%v", sel, ok)
	}

	// Tapping an opponent board outside removal mode is inert.
	m.Apply(Tap{Owner: opponent, Row: 0, Col: 0}, snap, now)
	if sel, _ := m.Selected(); sel != (Coord{Row: 2, Col: 7}) {
		t.Fatalf("opponent tap moved selection to %+v", sel)
	}
}

func TestArrowNavigationWraps(t *testing.T) {
	cases := []struct {
		name  string
		start Coord
		dir   Dir
		want  Coord
	}{
		{name: "up from row 0 wraps", start: Coord{0, 4}, dir: Up, want: Coord{8, 4}},
		{name: "down from row 8 wraps", start: Coord{8, 4}, dir: Down, want: Coord{0, 4}},
		{name: "left from col 0 wraps", start: Coord{4, 0}, dir: Left, want: Coord{4, 8}},
		{name: "right from col 8 wraps", start: Coord{4, 8}, dir: Right, want: Coord{4, 0}},
		{name: "plain move", start: Coord{3, 3}, dir: Down, want: Coord{4, 3}},
	}

	snap := twoPlayerSnapshot()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine(local)
			m.Apply(Tap{Owner: local, Row: tc.start.Row, Col: tc.start.Col}, snap, now)
			m.Apply(Move{Dir: tc.dir}, snap, now)
			if sel, _ := m.Selected(); sel != tc.want {
				t.Fatalf("moved to %+v, want %+v", sel, tc.want)
			}
		})
	}
}

func TestDigitEmitsFill(t *testing.T) {
	m := NewMachine(local)
	snap := twoPlayerSnapshot()
	m.Apply(Tap{Owner: local, Row: 1, Col: 2}, snap, now)

	a := emittedAction(t, m.Apply(Digit{N: 5}, snap, now))
	if a.Type != types.ActionFill || *a.Row != 1 || *a.Col != 2 || *a.Value != 5 {
		t.Fatalf("unexpected fill action: %+v", a)
	}
	if a.SessionID != "" {
		t.Fatalf("fill should be stamped by the dispatcher, not here")
	}
}

func TestGivenAndConfirmedCellsRejectAllEdits(t *testing.T) {
	for _, status := range []types.CellStatus{types.StatusGiven, types.StatusCorrectGuess} {
		snap := twoPlayerSnapshot()
		snap.Boards[local] = fullBoard(status, 6)

		m := NewMachine(local)
		m.Apply(Tap{Owner: local, Row: 0, Col: 0}, snap, now)
		for n := 0; n <= 9; n++ {
			if effects := m.Apply(Digit{N: n}, snap, now); effects != nil {
				t.Fatalf("%s cell accepted fill %d: %+v", status, n, effects)
			}
		}
		if effects := m.Apply(Clear{}, snap, now); effects != nil {
			t.Fatalf("%s cell accepted clear: %+v", status, effects)
		}
	}
}

func TestCooldownBlocksEdits(t *testing.T) {
	snap := twoPlayerSnapshot()
	b := snap.Boards[local]
	b[3][3] = types.Cell{Status: types.StatusWrongGuess, Value: 2,
		CooldownUntil: now.Add(4 * time.Second).UnixMilli()}

	m := NewMachine(local)
	m.Apply(Tap{Owner: local, Row: 3, Col: 3}, snap, now)

	if effects := m.Apply(Digit{N: 7}, snap, now); effects != nil {
		t.Fatalf("cooldown cell accepted fill: %+v", effects)
	}
	if effects := m.Apply(Clear{}, snap, now); effects != nil {
		t.Fatalf("cooldown cell accepted clear: %+v", effects)
	}

	// Same gesture after expiry goes through.
	later := now.Add(5 * time.Second)
	a := emittedAction(t, m.Apply(Digit{N: 7}, snap, later))
	if a.Type != types.ActionFill {
		t.Fatalf("expected fill after cooldown expiry, got %+v", a)
	}
}

func TestDigitOutOfRangeRejected(t *testing.T) {
	m := NewMachine(local)
	snap := twoPlayerSnapshot()
	m.Apply(Tap{Owner: local, Row: 0, Col: 0}, snap, now)

	for _, n := range []int{0, 10, -3} {
		if effects := m.Apply(Digit{N: n}, snap, now); effects != nil {
			t.Fatalf("digit %d should be rejected, got %+v", n, effects)
		}
	}
}

func TestClearEmitsSelfRemove(t *testing.T) {
	m := NewMachine(local)
	snap := twoPlayerSnapshot()
	snap.Boards[local][5][5] = types.Cell{Status: types.StatusWrongGuess, Value: 3}
	m.Apply(Tap{Owner: local, Row: 5, Col: 5}, snap, now)

	a := emittedAction(t, m.Apply(Clear{}, snap, now))
	if a.Type != types.ActionRemove || *a.Value != 0 || a.SessionID != "" {
		t.Fatalf("self clear should be REMOVE value 0 without a target: %+v", a)
	}
}

func TestRemovalModeSingleShot(t *testing.T) {
	m := NewMachine(local)
	snap := twoPlayerSnapshot()

	m.Apply(ToggleRemoval{}, snap, now)
	if !m.RemovalArmed() {
		t.Fatalf("eligible session should arm removal mode")
	}

	a := emittedAction(t, m.Apply(Tap{Owner: opponent, Row: 3, Col: 4}, snap, now))
	if a.Type != types.ActionRemove || a.SessionID != opponent || *a.Row != 3 || *a.Col != 4 {
		t.Fatalf("unexpected removal action: %+v", a)
	}
	if m.RemovalArmed() {
		t.Fatalf("removal mode must disarm after firing")
	}
	// A second tap is a plain (inert) opponent tap.
	if effects := m.Apply(Tap{Owner: opponent, Row: 3, Col: 5}, snap, now); effects != nil {
		t.Fatalf("disarmed tap emitted %+v", effects)
	}
}

func TestRemovalModeSkipsEmptyCells(t *testing.T) {
	m := NewMachine(local)
	snap := twoPlayerSnapshot()
	snap.Boards[opponent][2][2] = types.Cell{Status: types.StatusToGuess, Value: 0}

	m.Apply(ToggleRemoval{}, snap, now)
	if effects := m.Apply(Tap{Owner: opponent, Row: 2, Col: 2}, snap, now); effects != nil {
		t.Fatalf("empty cell is not removable, got %+v", effects)
	}
	if !m.RemovalArmed() {
		t.Fatalf("a miss must not consume the armed state")
	}
}

func TestRemovalArmGatedByEligibilityAndCooldown(t *testing.T) {
	m := NewMachine(local)

	snap := twoPlayerSnapshot()
	snap.CanRemoveOpponentCellMap = nil
	m.Apply(ToggleRemoval{}, snap, now)
	if m.RemovalArmed() {
		t.Fatalf("armed without eligibility")
	}

	snap = twoPlayerSnapshot()
	snap.RemoveCooldownUntilMap = map[string]int64{local: now.Add(10 * time.Second).UnixMilli()}
	m.Apply(ToggleRemoval{}, snap, now)
	if m.RemovalArmed() {
		t.Fatalf("armed during removal cooldown")
	}
}

func TestRemovalModeSuppressesFill(t *testing.T) {
	m := NewMachine(local)
	snap := twoPlayerSnapshot()
	m.Apply(Tap{Owner: local, Row: 0, Col: 0}, snap, now)
	m.Apply(ToggleRemoval{}, snap, now)

	if effects := m.Apply(Digit{N: 4}, snap, now); effects != nil {
		t.Fatalf("armed machine should not fill, got %+v", effects)
	}
}

func TestCopyFocusedValue(t *testing.T) {
	m := NewMachine(local)
	snap := twoPlayerSnapshot()
	snap.Boards[local][1][1] = types.Cell{Status: types.StatusCorrectGuess, Value: 8}

	m.Apply(Tap{Owner: local, Row: 1, Col: 1}, snap, now)
	effects := m.Apply(Copy{}, snap, now)
	if len(effects) != 1 {
		t.Fatalf("want one effect, got %+v", effects)
	}
	if cp, ok := effects[0].(CopyText); !ok || cp.Text != "8" {
		t.Fatalf("want CopyText 8, got %+v", effects[0])
	}

	// Empty cells copy nothing.
	m.Apply(Tap{Owner: local, Row: 0, Col: 0}, snap, now)
	if effects := m.Apply(Copy{}, snap, now); effects != nil {
		t.Fatalf("empty cell copied %+v", effects)
	}
}

func TestGesturesWithoutSnapshotAreInert(t *testing.T) {
	m := NewMachine(local)
	empty := types.RoomSnapshot{}

	if effects := m.Apply(Tap{Owner: local, Row: 0, Col: 0}, empty, now); effects != nil {
		t.Fatalf("tap on missing board emitted %+v", effects)
	}
	if effects := m.Apply(Digit{N: 5}, empty, now); effects != nil {
		t.Fatalf("fill with no selection emitted %+v", effects)
	}
}
