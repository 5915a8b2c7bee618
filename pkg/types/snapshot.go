package types

// BoardSize is fixed by the server; boards are always 9x9.
const BoardSize = 9

type CellStatus string

const (
	StatusGiven        CellStatus = "GIVEN"
	StatusToGuess      CellStatus = "TO_GUESS"
	StatusCorrectGuess CellStatus = "CORRECT_GUESS"
	StatusWrongGuess   CellStatus = "WRONG_GUESS"
)

// Cell is one square of a board. Value 0 means empty. CooldownUntil is a
// Unix-millisecond timestamp; zero means no cooldown.
type Cell struct {
	Value         int        `json:"value"`
	Status        CellStatus `json:"status"`
	CooldownUntil int64      `json:"cooldownUntil,omitempty"`
}

// Editable reports whether the cell can ever accept local input. GIVEN
// cells are immutable, and a confirmed correct guess stays locked.
func (c Cell) Editable() bool {
	return c.Status != StatusGiven && c.Status != StatusCorrectGuess
}

// Board is a row-major matrix of cells. The server always sends 9x9, but
// an initial or degenerate snapshot may carry empty boards, so bounds are
// checked against the actual slice lengths.
type Board [][]Cell

func (b Board) InBounds(row, col int) bool {
	return row >= 0 && row < len(b) && col >= 0 && col < len(b[row])
}

// At returns the cell at row/col, or a zero Cell if out of bounds.
func (b Board) At(row, col int) Cell {
	if !b.InBounds(row, col) {
		return Cell{}
	}
	return b[row][col]
}

// RoomSnapshot is the full server-asserted state of a room. Each inbound
// snapshot replaces the previous one wholesale; absent keys mean unknown,
// not unchanged.
//
// CanRemoveOpponentCell and RemoveCooldownUntil are legacy single-value
// fields that older server builds send instead of the per-session maps;
// they apply to the local session only.
type RoomSnapshot struct {
	Boards       map[string]Board `json:"boards"`
	PlayerCount  int              `json:"playerCount"`
	FilledCounts map[string]int   `json:"filledCounts"`
	StepsAhead   map[string]int   `json:"stepsAhead"`

	CanRemoveOpponentCell    *bool            `json:"canRemoveOpponentCell,omitempty"`
	RemoveCooldownUntil      *int64           `json:"removeCooldownUntil,omitempty"`
	CanRemoveOpponentCellMap map[string]bool  `json:"canRemoveOpponentCellMap,omitempty"`
	RemoveCooldownUntilMap   map[string]int64 `json:"removeCooldownUntilMap,omitempty"`

	MaxStepGap      int    `json:"maxStepGap,omitempty"`
	CooldownSeconds int    `json:"cooldownSeconds,omitempty"`
	Difficulty      string `json:"difficulty,omitempty"`
}

// Board returns the board owned by the given session, or nil.
func (s RoomSnapshot) Board(sessionID string) Board {
	return s.Boards[sessionID]
}

// WinAnnouncement is a one-shot signal: it never merges into the room
// snapshot and is consumed once.
type WinAnnouncement struct {
	SessionID string `json:"sessionId"`
}
