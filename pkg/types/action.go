package types

import "errors"

var ErrValueOutOfRange = errors.New("fill value must be between 1 and 9")
var ErrCellOutOfBounds = errors.New("cell index out of bounds")

type ActionType string

const (
	ActionFill      ActionType = "FILL"
	ActionRemove    ActionType = "REMOVE"
	ActionJoin      ActionType = "JOIN"
	ActionLeave     ActionType = "LEAVE"
	ActionWin       ActionType = "WIN"
	ActionHeartbeat ActionType = "HEARTBEAT"
)

// GameAction is the outbound wire message published to the room's action
// destination. It is a tagged variant: which optional fields are set
// depends on Type, and the constructors below are the only way per-variant
// requirements are enforced. Row, Col and Value are pointers so that a
// legitimate zero (row 0, value 0) survives omitempty.
type GameAction struct {
	Type      ActionType `json:"type"`
	SessionID string     `json:"sessionId,omitempty"`
	Row       *int       `json:"row,omitempty"`
	Col       *int       `json:"col,omitempty"`
	Value     *int       `json:"value,omitempty"`
	Room      string     `json:"room,omitempty"`
}

// NewFill builds a FILL for one of the acting player's own cells. The
// session id is left blank here; the dispatcher stamps the local identity
// on every FILL just before publish.
func NewFill(row, col, value int) (GameAction, error) {
	if value < 1 || value > 9 {
		return GameAction{}, ErrValueOutOfRange
	}
	if !inBoard(row, col) {
		return GameAction{}, ErrCellOutOfBounds
	}
	return GameAction{Type: ActionFill, Row: &row, Col: &col, Value: &value}, nil
}

// NewSelfClear builds a REMOVE that clears one of the acting player's own
// cells (value 0, no target session).
func NewSelfClear(row, col int) (GameAction, error) {
	if !inBoard(row, col) {
		return GameAction{}, ErrCellOutOfBounds
	}
	zero := 0
	return GameAction{Type: ActionRemove, Row: &row, Col: &col, Value: &zero}, nil
}

// NewOpponentRemove builds the removal-mode power-up: a REMOVE stamped
// with the session id of the board being targeted, not the acting
// player's. The server validates that the acting connection actually
// holds the removal privilege.
func NewOpponentRemove(targetSession string, row, col int) (GameAction, error) {
	if !inBoard(row, col) {
		return GameAction{}, ErrCellOutOfBounds
	}
	return GameAction{Type: ActionRemove, SessionID: targetSession, Row: &row, Col: &col}, nil
}

func NewJoin(room string) GameAction {
	return GameAction{Type: ActionJoin, Room: room}
}

func NewLeave(room string) GameAction {
	return GameAction{Type: ActionLeave, Room: room}
}

func NewHeartbeat() GameAction {
	return GameAction{Type: ActionHeartbeat}
}

func inBoard(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}
