// Package conn owns the lifecycle of one logical connection to a room:
// dial, STOMP handshake, identity resolution, room subscription, JOIN and
// LEAVE framing, and the egress queue outbound actions travel through.
package conn

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayumu-k/sudoku-battle-client/internal/session"
	"github.com/ayumu-k/sudoku-battle-client/internal/sockjs"
	"github.com/ayumu-k/sudoku-battle-client/internal/stomp"
	"github.com/ayumu-k/sudoku-battle-client/pkg/types"
)

type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusJoined
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "Disconnected"
	case StatusConnecting:
		return "Connecting"
	case StatusJoined:
		return "Joined"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Transport is what a dial attempt yields: a STOMP-capable pipe plus the
// negotiated endpoint path the session identity hides in.
type Transport interface {
	stomp.Transport
	Path() string
	Close() error
}

// Dialer opens a fresh transport. Each connection attempt dials anew;
// nothing survives from earlier attempts.
type Dialer func(ctx context.Context) (Transport, error)

// SockJSDialer dials the server's SockJS websocket endpoint.
func SockJSDialer(baseURL string) Dialer {
	return func(ctx context.Context) (Transport, error) {
		return sockjs.Dial(ctx, baseURL, "/ws")
	}
}

type Config struct {
	Room    string
	Dial    Dialer
	OnFrame func(body []byte) // ordered delivery of room frames
	Log     *zap.Logger

	// ReconnectDelay is the fixed pause between attempts; the manager
	// itself never retries mid-attempt. Defaults to 5s.
	ReconnectDelay time.Duration
	// HeartbeatEvery is the idle interval between HEARTBEAT actions.
	// Defaults to 25s.
	HeartbeatEvery time.Duration
}

type outbound struct {
	start  bool
	action types.GameAction
}

// Conn is safe for concurrent use: Send may be called from any goroutine
// while Run owns the socket.
type Conn struct {
	cfg Config

	mu        sync.Mutex
	status    Status
	sessionID string

	egress chan outbound
}

func New(cfg Config) *Conn {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = 25 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Conn{
		cfg:    cfg,
		egress: make(chan outbound, 16),
	}
}

func (c *Conn) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SessionID returns the resolved identity for the current connection, if
// any. It stays unset until the transport handshake yields one.
func (c *Conn) SessionID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID, c.sessionID != ""
}

// Send publishes a game action if and only if the connection is joined
// and an identity is resolved; otherwise the action is dropped, not
// queued. FILL is stamped with the acting session's identity here; REMOVE
// keeps whatever target the interaction layer set.
func (c *Conn) Send(a types.GameAction) bool {
	c.mu.Lock()
	status, sid := c.status, c.sessionID
	c.mu.Unlock()
	if status != StatusJoined || sid == "" {
		return false
	}
	if a.Type == types.ActionFill {
		a.SessionID = sid
	}
	select {
	case c.egress <- outbound{action: a}:
		return true
	default:
		return false // egress full: fire-and-forget means drop
	}
}

// StartGame publishes the empty start trigger for the room.
func (c *Conn) StartGame() bool {
	if c.Status() != StatusJoined {
		return false
	}
	select {
	case c.egress <- outbound{start: true}:
		return true
	default:
		return false
	}
}

// Run drives connection attempts until the context is canceled. Every
// successful (re)connect re-establishes the room subscription from
// scratch and publishes a fresh JOIN; a failed attempt surfaces as
// StatusError and Run redials after the fixed delay.
func (c *Conn) Run(ctx context.Context) {
	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			c.setState(StatusDisconnected, "")
			return
		}
		if err != nil {
			c.setState(StatusError, "")
			c.cfg.Log.Warn("connection lost",
				zap.String("room", c.cfg.Room), zap.Error(err))
		} else {
			c.setState(StatusDisconnected, "")
		}

		select {
		case <-time.After(c.cfg.ReconnectDelay):
		case <-ctx.Done():
			c.setState(StatusDisconnected, "")
			return
		}
	}
}

func (c *Conn) runOnce(ctx context.Context) error {
	c.setState(StatusConnecting, "")
	defer c.drainEgress()

	t, err := c.cfg.Dial(ctx)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer t.Close()

	// The vhost header is ignored by the servers this speaks to.
	sc, err := stomp.Connect(ctx, t, "/")
	if err != nil {
		return err
	}

	sid, ok := session.Resolve(t.Path())
	if !ok {
		// Not fatal: the dispatcher simply keeps dropping actions.
		c.cfg.Log.Warn("no session identity in transport path",
			zap.String("path", t.Path()))
	}

	actionDest := fmt.Sprintf("/app/room/%s/action", c.cfg.Room)
	startDest := fmt.Sprintf("/app/room/%s/start", c.cfg.Room)

	if _, err := sc.Subscribe(ctx, fmt.Sprintf("/topic/room/%s", c.cfg.Room)); err != nil {
		return err
	}
	c.setState(StatusJoined, sid)
	c.cfg.Log.Info("joined room",
		zap.String("room", c.cfg.Room), zap.String("session", sid))

	if err := c.publish(ctx, sc, actionDest, types.NewJoin(c.cfg.Room)); err != nil {
		return err
	}

	// Writer: drains the egress queue and keeps the heartbeat alive.
	wctx, cancelWriter := context.WithCancel(ctx)
	defer cancelWriter()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		hb := time.NewTicker(c.cfg.HeartbeatEvery)
		defer hb.Stop()
		for {
			select {
			case <-wctx.Done():
				return
			case out := <-c.egress:
				wtx, cancel := context.WithTimeout(wctx, 3*time.Second)
				if out.start {
					_ = sc.Send(wtx, startDest, nil)
				} else {
					_ = c.publish(wtx, sc, actionDest, out.action)
				}
				cancel()
			case <-hb.C:
				wtx, cancel := context.WithTimeout(wctx, 3*time.Second)
				_ = c.publish(wtx, sc, actionDest, types.NewHeartbeat())
				cancel()
			}
		}
	}()

	// Reader: the single ordered source of inbound room frames.
	readErr := c.readLoop(ctx, sc)

	// The writer must be parked before anything else touches the socket.
	cancelWriter()
	<-writerDone

	// Best-effort LEAVE with its own short deadline; the transport may
	// already be gone and that is fine.
	if sid != "" {
		lctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = c.publish(lctx, sc, actionDest, types.NewLeave(c.cfg.Room))
		cancel()
	}
	return readErr
}

func (c *Conn) readLoop(ctx context.Context, sc *stomp.Client) error {
	for {
		f, err := sc.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || err == sockjs.ErrClosed {
				return nil
			}
			return err
		}
		switch f.Command {
		case "MESSAGE":
			if c.cfg.OnFrame != nil {
				c.cfg.OnFrame(f.Body)
			}
		case "ERROR":
			return fmt.Errorf("broker error: %s", f.Headers["message"])
		default:
			// RECEIPT and friends: nothing subscribes to them.
		}
	}
}

func (c *Conn) publish(ctx context.Context, sc *stomp.Client, dest string, a types.GameAction) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return sc.Send(ctx, dest, body)
}

func (c *Conn) setState(status Status, sessionID string) {
	c.mu.Lock()
	c.status = status
	c.sessionID = sessionID
	c.mu.Unlock()
}

// drainEgress empties the queue between attempts: actions accepted during
// one connection are never replayed onto the next.
func (c *Conn) drainEgress() {
	for {
		select {
		case <-c.egress:
		default:
			return
		}
	}
}
