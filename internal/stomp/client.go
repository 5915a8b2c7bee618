package stomp

import (
	"context"
	"fmt"
)

// Transport is the message-oriented pipe STOMP frames travel over. The
// SockJS connection satisfies it.
type Transport interface {
	ReadMessage(ctx context.Context) ([]byte, error)
	WriteMessage(ctx context.Context, msg []byte) error
}

// Client speaks STOMP over an established transport. It performs no
// reconnection of its own: when the transport dies the client is done,
// and the connection manager starts over with a fresh one.
type Client struct {
	t      Transport
	nextID int
}

// Connect sends the CONNECT frame and waits for CONNECTED. Any other
// frame in response is a protocol error.
func Connect(ctx context.Context, t Transport, host string) (*Client, error) {
	c := &Client{t: t}
	connect := NewFrame("CONNECT", map[string]string{
		"accept-version": "1.2",
		"host":           host,
		"heart-beat":     "0,0",
	}, nil)
	if err := t.WriteMessage(ctx, connect.Marshal()); err != nil {
		return nil, fmt.Errorf("stomp: connect: %w", err)
	}

	f, err := c.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("stomp: handshake: %w", err)
	}
	if f.Command != "CONNECTED" {
		return nil, fmt.Errorf("stomp: handshake: got %s, want CONNECTED", f.Command)
	}
	return c, nil
}

// Subscribe registers interest in a destination and returns the
// subscription id.
func (c *Client) Subscribe(ctx context.Context, destination string) (string, error) {
	id := fmt.Sprintf("sub-%d", c.nextID)
	c.nextID++
	f := NewFrame("SUBSCRIBE", map[string]string{
		"id":          id,
		"destination": destination,
	}, nil)
	if err := c.t.WriteMessage(ctx, f.Marshal()); err != nil {
		return "", fmt.Errorf("stomp: subscribe %s: %w", destination, err)
	}
	return id, nil
}

// Send publishes a body to a destination, fire and forget.
func (c *Client) Send(ctx context.Context, destination string, body []byte) error {
	headers := map[string]string{"destination": destination}
	if len(body) > 0 {
		headers["content-type"] = "application/json"
	}
	f := NewFrame("SEND", headers, body)
	if err := c.t.WriteMessage(ctx, f.Marshal()); err != nil {
		return fmt.Errorf("stomp: send %s: %w", destination, err)
	}
	return nil
}

// Read returns the next non-heartbeat frame from the server.
func (c *Client) Read(ctx context.Context) (Frame, error) {
	for {
		data, err := c.t.ReadMessage(ctx)
		if err != nil {
			return Frame{}, err
		}
		f, err := Parse(data)
		if err != nil {
			return Frame{}, err
		}
		if f.Command == "" {
			continue // heartbeat
		}
		return f, nil
	}
}
