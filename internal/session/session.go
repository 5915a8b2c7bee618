// Package session resolves the server-assigned session identity from the
// negotiated transport endpoint path. The SockJS endpoint looks like
// /ws/492/5vq1hq3k/websocket, and the second-to-last segment is what the
// server keys all per-participant state on.
package session

import "regexp"

var pathPattern = regexp.MustCompile(`/([^/]+)/websocket$`)

// Resolve extracts the session token from a transport path. It returns
// false when the path does not match; callers treat a missing identity as
// "not yet ready" and must not publish actions until one resolves. There
// are no retries: identity is resolved once per connection attempt.
func Resolve(path string) (string, bool) {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}
