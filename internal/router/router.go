// Package router classifies inbound room frames. A frame is either a
// durable room snapshot, which replaces all prior state, or an ephemeral
// win announcement, which is a side signal and leaves the store alone.
package router

import (
	"encoding/json"

	"github.com/ayumu-k/sudoku-battle-client/pkg/types"
)

type Kind int

const (
	KindSnapshot Kind = iota
	KindWin
)

type Inbound struct {
	Kind     Kind
	Snapshot types.RoomSnapshot
	Win      types.WinAnnouncement
}

// probe decodes just enough to spot the WIN marker.
type probe struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// Classify decodes one frame body. Malformed frames degrade to a
// best-effort snapshot decode instead of being dropped: the server is
// trusted to send causally-ordered frames and a partial board beats a
// stalled view. Frames are applied strictly in arrival order; there is no
// reordering buffer.
func Classify(body []byte) Inbound {
	var p probe
	if err := json.Unmarshal(body, &p); err == nil && p.Type == string(types.ActionWin) && p.SessionID != "" {
		return Inbound{Kind: KindWin, Win: types.WinAnnouncement{SessionID: p.SessionID}}
	}

	var snap types.RoomSnapshot
	// Best effort: whatever fields decoded before an error still land.
	_ = json.Unmarshal(body, &snap)
	return Inbound{Kind: KindSnapshot, Snapshot: snap}
}
