// Package sockjs implements the client side of the SockJS websocket
// transport: it dials the /ws/{server}/{session}/websocket endpoint and
// unwraps the o/a/h/c framing so callers see plain message payloads.
package sockjs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

var ErrClosed = errors.New("sockjs: transport closed by server")

// Conn is one SockJS websocket transport. Not safe for concurrent reads;
// the connection manager owns a single reader goroutine.
type Conn struct {
	ws      *websocket.Conn
	path    string
	pending [][]byte
}

// Dial opens the transport against a server base URL such as
// http://localhost:8080. The session path segment is generated client
// side, SockJS style, and becomes the identity the server assigns to this
// connection. Dial consumes the server's open frame before returning.
func Dial(ctx context.Context, baseURL, endpoint string) (*Conn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("sockjs: bad base url: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	u.Path = fmt.Sprintf("%s/%03d/%s/websocket",
		strings.TrimSuffix(endpoint, "/"), rand.Intn(1000), token)

	ws, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("sockjs: dial %s: %w", u.String(), err)
	}

	c := &Conn{ws: ws, path: u.Path}

	// The server greets with "o" before anything else.
	_, data, err := ws.Read(ctx)
	if err != nil {
		ws.Close(websocket.StatusProtocolError, "no open frame")
		return nil, fmt.Errorf("sockjs: waiting for open frame: %w", err)
	}
	if len(data) == 0 || data[0] != 'o' {
		ws.Close(websocket.StatusProtocolError, "bad open frame")
		return nil, fmt.Errorf("sockjs: unexpected open frame %q", data)
	}
	return c, nil
}

// Path is the negotiated endpoint path, including the session segment.
func (c *Conn) Path() string { return c.path }

// ReadMessage returns the next application payload, skipping heartbeats.
// A close frame or transport error ends the stream.
func (c *Conn) ReadMessage(ctx context.Context) ([]byte, error) {
	for {
		if len(c.pending) > 0 {
			msg := c.pending[0]
			c.pending = c.pending[1:]
			return msg, nil
		}

		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}
		switch data[0] {
		case 'h':
			continue
		case 'c':
			return nil, ErrClosed
		case 'a':
			var msgs []string
			if err := json.Unmarshal(data[1:], &msgs); err != nil {
				return nil, fmt.Errorf("sockjs: bad array frame: %w", err)
			}
			for _, m := range msgs {
				c.pending = append(c.pending, []byte(m))
			}
		default:
			// Unknown frame type: skip rather than kill the stream.
			continue
		}
	}
}

// WriteMessage sends one payload. Client-to-server frames are a bare JSON
// array of strings.
func (c *Conn) WriteMessage(ctx context.Context, msg []byte) error {
	frame, err := json.Marshal([]string{string(msg)})
	if err != nil {
		return err
	}
	return c.ws.Write(ctx, websocket.MessageText, frame)
}

func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "bye")
}
