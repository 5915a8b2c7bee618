// Package roomapi is the thin HTTP client for room creation. The engine
// only ever consumes the returned room code; the three settings surface
// again passively inside later snapshots.
package roomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{4}$`)

// ValidCode reports whether a string has the shape of a room code: four
// alphanumeric characters.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

type CreateRoomRequest struct {
	MaxStepGap      int    `json:"maxStepGap"`
	CooldownSeconds int    `json:"cooldownSeconds"`
	Difficulty      string `json:"difficulty"`
}

type createRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateRoom asks the server for a fresh room and returns its join code.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (string, error) {
	if req.Difficulty == "" {
		req.Difficulty = "EASY"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/room", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("roomapi: create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("roomapi: create room: status %s", resp.Status)
	}

	var out createRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("roomapi: decode response: %w", err)
	}
	if !ValidCode(out.RoomCode) {
		return "", fmt.Errorf("roomapi: server returned bad room code %q", out.RoomCode)
	}
	return out.RoomCode, nil
}
