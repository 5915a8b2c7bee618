// Package stomp implements the small slice of STOMP 1.2 this client
// needs: CONNECT/CONNECTED, SUBSCRIBE, SEND and inbound MESSAGE/ERROR
// frames, carried over a SockJS transport.
package stomp

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedFrame = errors.New("stomp: malformed frame")

type Frame struct {
	Command string
	Headers map[string]string
	Body    []byte
}

func NewFrame(command string, headers map[string]string, body []byte) Frame {
	if headers == nil {
		headers = map[string]string{}
	}
	return Frame{Command: command, Headers: headers, Body: body}
}

// Marshal renders the frame in wire form: command line, header lines, a
// blank line, the body, and a NUL terminator.
func (f Frame) Marshal() []byte {
	var b bytes.Buffer
	b.WriteString(f.Command)
	b.WriteByte('\n')
	for k, v := range f.Headers {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(v)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.Write(f.Body)
	b.WriteByte(0)
	return b.Bytes()
}

// Parse decodes one wire frame. Heartbeat frames (a bare newline) come
// back with an empty command; callers skip them.
func Parse(data []byte) (Frame, error) {
	data = bytes.TrimSuffix(data, []byte{0})
	if len(data) == 0 || bytes.Equal(data, []byte("\n")) {
		return Frame{}, nil
	}

	head, body, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		return Frame{}, fmt.Errorf("%w: missing header terminator", ErrMalformedFrame)
	}

	lines := strings.Split(string(head), "\n")
	f := Frame{Command: strings.TrimSuffix(lines[0], "\r"), Headers: map[string]string{}, Body: body}
	if f.Command == "" {
		return Frame{}, fmt.Errorf("%w: empty command", ErrMalformedFrame)
	}
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return Frame{}, fmt.Errorf("%w: header %q", ErrMalformedFrame, line)
		}
		// First writer wins, per the STOMP spec's repeated-header rule.
		if _, seen := f.Headers[k]; !seen {
			f.Headers[k] = v
		}
	}
	return f, nil
}
