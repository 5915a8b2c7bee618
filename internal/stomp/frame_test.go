package stomp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMessageFrame(t *testing.T) {
	wire := "MESSAGE\ndestination:/topic/room/AB12\nmessage-id:7\nsubscription:sub-0\n\n{\"playerCount\":2}\x00"

	f, err := Parse([]byte(wire))
	require.NoError(t, err)
	require.Equal(t, "MESSAGE", f.Command)
	require.Equal(t, "/topic/room/AB12", f.Headers["destination"])
	require.Equal(t, `{"playerCount":2}`, string(f.Body))
}

func TestParseEdgeCases(t *testing.T) {
	cases := []struct {
		name    string
		wire    string
		wantCmd string
		wantErr bool
	}{
		{name: "heartbeat", wire: "\n", wantCmd: ""},
		{name: "crlf line endings", wire: "CONNECTED\r\nversion:1.2\r\n\r\n\x00", wantCmd: "CONNECTED"},
		{name: "missing blank line", wire: "SEND\ndestination:/x\x00", wantErr: true},
		{name: "header without colon", wire: "SEND\nbogus\n\n\x00", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse([]byte(tc.wire))
			if tc.wantErr {
				require.ErrorIs(t, err, ErrMalformedFrame)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, f.Command)
		})
	}
}

func TestParseRepeatedHeaderKeepsFirst(t *testing.T) {
	f, err := Parse([]byte("MESSAGE\nfoo:one\nfoo:two\n\n\x00"))
	require.NoError(t, err)
	require.Equal(t, "one", f.Headers["foo"])
}

func TestMarshalRoundTrip(t *testing.T) {
	in := NewFrame("SEND", map[string]string{"destination": "/app/room/AB12/action"}, []byte(`{"type":"JOIN","room":"AB12"}`))
	out, err := Parse(in.Marshal())
	require.NoError(t, err)
	require.Equal(t, in.Command, out.Command)
	require.Equal(t, in.Headers, out.Headers)
	require.Equal(t, in.Body, out.Body)
}

// scripted transport for client tests
type fakeTransport struct {
	in  chan []byte
	out [][]byte
}

func newFakeTransport(frames ...Frame) *fakeTransport {
	ft := &fakeTransport{in: make(chan []byte, len(frames))}
	for _, f := range frames {
		ft.in <- f.Marshal()
	}
	return ft
}

func (f *fakeTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-f.in:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) WriteMessage(ctx context.Context, msg []byte) error {
	f.out = append(f.out, msg)
	return nil
}

func TestConnectHandshake(t *testing.T) {
	ft := newFakeTransport(NewFrame("CONNECTED", map[string]string{"version": "1.2"}, nil))

	c, err := Connect(context.Background(), ft, "example.com")
	require.NoError(t, err)
	require.NotNil(t, c)

	sent, err := Parse(ft.out[0])
	require.NoError(t, err)
	require.Equal(t, "CONNECT", sent.Command)
	require.Equal(t, "1.2", sent.Headers["accept-version"])
}

func TestConnectRejectsNonConnected(t *testing.T) {
	ft := newFakeTransport(NewFrame("ERROR", map[string]string{"message": "nope"}, nil))

	_, err := Connect(context.Background(), ft, "example.com")
	require.Error(t, err)
}

func TestSubscribeAndSend(t *testing.T) {
	ft := newFakeTransport()
	c := &Client{t: ft}

	id, err := c.Subscribe(context.Background(), "/topic/room/AB12")
	require.NoError(t, err)
	require.Equal(t, "sub-0", id)

	require.NoError(t, c.Send(context.Background(), "/app/room/AB12/action", []byte(`{"type":"JOIN"}`)))
	require.NoError(t, c.Send(context.Background(), "/app/room/AB12/start", nil))

	sub, _ := Parse(ft.out[0])
	require.Equal(t, "SUBSCRIBE", sub.Command)
	require.Equal(t, "/topic/room/AB12", sub.Headers["destination"])

	send, _ := Parse(ft.out[1])
	require.Equal(t, "application/json", send.Headers["content-type"])

	start, _ := Parse(ft.out[2])
	require.Equal(t, "/app/room/AB12/start", start.Headers["destination"])
	require.Empty(t, start.Body)
	_, hasCT := start.Headers["content-type"]
	require.False(t, hasCT, "empty start trigger carries no content-type")
}

func TestReadSkipsHeartbeats(t *testing.T) {
	ft := newFakeTransport()
	ft.in = make(chan []byte, 2)
	ft.in <- []byte("\n")
	ft.in <- NewFrame("MESSAGE", map[string]string{"destination": "/topic/room/AB12"}, []byte("{}")).Marshal()

	c := &Client{t: ft}
	f, err := c.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, "MESSAGE", f.Command)
}
