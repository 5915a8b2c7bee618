// Package client ties the engine together: one goroutine owns the board
// state store and the interaction machine, consumes inbound frames, timer
// ticks and local gestures from a single ordered inbox, and broadcasts
// derived views to subscribers.
package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ayumu-k/sudoku-battle-client/internal/interact"
	"github.com/ayumu-k/sudoku-battle-client/internal/router"
	"github.com/ayumu-k/sudoku-battle-client/internal/store"
	"github.com/ayumu-k/sudoku-battle-client/pkg/types"
)

// TickInterval is how often derived state is re-broadcast while the
// client runs; cooldowns must visibly count down, so this stays well
// under a second.
const TickInterval = 200 * time.Millisecond

// Sender is the outbound half of the connection: the action dispatcher.
type Sender interface {
	Send(a types.GameAction) bool
	SessionID() (string, bool)
}

type Msg interface{ isClientMsg() }

// Frame is one inbound room frame body, in arrival order.
type Frame struct{ Body []byte }

// Gesture is local user input forwarded to the interaction machine.
type Gesture struct{ G interact.Gesture }

// Subscribe registers a view outbox. The current view is delivered
// immediately.
type Subscribe struct {
	ID     string
	Outbox chan View
}

type Unsubscribe struct{ ID string }

// Leave tears the room state down: the store is cleared and interaction
// state reset.
type Leave struct{}

type Shutdown struct{}

func (Frame) isClientMsg()       {}
func (Gesture) isClientMsg()     {}
func (Subscribe) isClientMsg()   {}
func (Unsubscribe) isClientMsg() {}
func (Leave) isClientMsg()       {}
func (Shutdown) isClientMsg()    {}

// View is one derived presentation of the engine state. Winner is a
// one-shot: it rides exactly one view and is discarded after broadcast.
type View struct {
	SessionID    string
	Snapshot     types.RoomSnapshot
	HasSnapshot  bool
	Selected     interact.Coord
	HasSelection bool
	RemovalArmed bool
	Winner       string
	Now          time.Time
}

type Client struct {
	inbox   chan Msg
	sender  Sender
	store   *store.Store
	machine *interact.Machine
	clients map[string]chan View
	onCopy  func(text string)
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	now     func() time.Time
}

type Option func(*Client)

// WithClipboard sets the function that executes copy effects.
func WithClipboard(fn func(text string)) Option {
	return func(c *Client) { c.onCopy = fn }
}

// WithClock overrides wall-clock time, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(parent context.Context, sender Sender, log *zap.Logger, opts ...Option) *Client {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		inbox:   make(chan Msg, 64),
		sender:  sender,
		store:   store.New(),
		machine: interact.NewMachine(""),
		clients: make(map[string]chan View),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.loop()
	return c
}

func (c *Client) Inbox() chan<- Msg { return c.inbox }

// OnFrame is the connection manager's frame handler; it feeds the inbox
// so frames interleave with ticks and gestures in one ordered stream.
func (c *Client) OnFrame(body []byte) {
	select {
	case c.inbox <- Frame{Body: body}:
	case <-c.ctx.Done():
	}
}

func (c *Client) loop() {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case <-ticker.C:
			c.broadcast(c.view(""))

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Frame:
				c.handleFrame(msg.Body)

			case Gesture:
				c.handleGesture(msg.G)

			case Subscribe:
				c.clients[msg.ID] = msg.Outbox
				msg.Outbox <- c.view("")

			case Unsubscribe:
				delete(c.clients, msg.ID)

			case Leave:
				c.store.Clear()
				c.machine.Reset()
				c.broadcast(c.view(""))

			case Shutdown:
				c.shutdown()
				return
			}
		}
	}
}

func (c *Client) handleFrame(body []byte) {
	in := router.Classify(body)
	switch in.Kind {
	case router.KindWin:
		c.log.Info("win announced", zap.String("session", in.Win.SessionID))
		// Side signal only: the store keeps its prior snapshot.
		c.broadcast(c.view(in.Win.SessionID))
	case router.KindSnapshot:
		c.store.Replace(in.Snapshot)
		c.broadcast(c.view(""))
	}
}

func (c *Client) handleGesture(g interact.Gesture) {
	c.syncIdentity()
	snap, _ := c.store.Snapshot()
	for _, effect := range c.machine.Apply(g, snap, c.now()) {
		switch e := effect.(type) {
		case interact.EmitAction:
			if !c.sender.Send(e.Action) {
				c.log.Debug("action dropped",
					zap.String("type", string(e.Action.Type)))
			}
		case interact.CopyText:
			if c.onCopy != nil {
				c.onCopy(e.Text)
			}
		}
	}
	c.broadcast(c.view(""))
}

// syncIdentity rebuilds the interaction machine when the resolved session
// changes, which happens once per (re)connection.
func (c *Client) syncIdentity() {
	sid, _ := c.sender.SessionID()
	if c.machine.Session() != sid {
		c.machine = interact.NewMachine(sid)
	}
}

func (c *Client) view(winner string) View {
	snap, has := c.store.Snapshot()
	sel, hasSel := c.machine.Selected()
	sid, _ := c.sender.SessionID()
	return View{
		SessionID:    sid,
		Snapshot:     snap,
		HasSnapshot:  has,
		Selected:     sel,
		HasSelection: hasSel,
		RemovalArmed: c.machine.RemovalArmed(),
		Winner:       winner,
		Now:          c.now(),
	}
}

func (c *Client) broadcast(v View) {
	for id, ch := range c.clients {
		select {
		case ch <- v:
		default:
			// Slow subscriber: drop it rather than block the loop.
			close(ch)
			delete(c.clients, id)
		}
	}
}

func (c *Client) shutdown() {
	for id, ch := range c.clients {
		close(ch)
		delete(c.clients, id)
	}
	c.store.Clear()
	c.cancel()
}
