package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

// WebSocket message types.
const (
	msgAuthRequired = "auth_required"
	msgAuth         = "auth"
	msgAuthOK       = "auth_ok"
	msgAuthInvalid  = "auth_invalid"
	msgResult       = "result"
	msgEvent        = "event"
)

// wsMessage is the envelope for every message received from the server.
type wsMessage struct {
	ID      int             `json:"id"`
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Event   json.RawMessage `json:"event"`
	Error   *wsError        `json:"error"`
	Message string          `json:"message"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// command sends cmd and decodes the result into out.
// cmd must not contain "id"; it is assigned here.
func (c *Client) command(ctx context.Context, cmd map[string]any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, err := c.roundTripLocked(ctx, cmd, false)
	if err != nil {
		return err
	}
	if out == nil || len(msg.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", cmd["type"], err)
	}
	return nil
}

// subscribeFirst sends a subscription command and returns the first event.
// The subscription is left running server side; later messages for it are
// skipped by id.
func (c *Client) subscribeFirst(ctx context.Context, cmd map[string]any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, err := c.roundTripLocked(ctx, cmd, true)
	if err != nil {
		return nil, err
	}
	return msg.Event, nil
}

func (c *Client) roundTripLocked(ctx context.Context, cmd map[string]any, wantEvent bool) (*wsMessage, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}

	c.nextID++
	id := c.nextID
	payload := make(map[string]any, len(cmd)+1)
	for k, v := range cmd {
		payload[k] = v
	}
	payload["id"] = id

	deadline := c.deadline(ctx)
	_ = c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteJSON(payload); err != nil {
		_ = c.dropLocked()
		return nil, fmt.Errorf("%w: sending %s: %w", host.ErrUnavailable, cmd["type"], err)
	}

	_ = c.ws.SetReadDeadline(deadline)
	for {
		var msg wsMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			_ = c.dropLocked()
			return nil, fmt.Errorf("%w: reading %s: %w", host.ErrUnavailable, cmd["type"], err)
		}
		if msg.ID != id {
			continue
		}

		switch msg.Type {
		case msgResult:
			if !msg.Success {
				return nil, commandError(cmd, msg.Error)
			}
			if !wantEvent {
				return &msg, nil
			}
		case msgEvent:
			if wantEvent {
				return &msg, nil
			}
		}
	}
}

func commandError(cmd map[string]any, e *wsError) error {
	if e == nil {
		return fmt.Errorf("%w: %s", ErrCommandFailed, cmd["type"])
	}
	if e.Code == "not_found" {
		return fmt.Errorf("%w: %s: %s", host.ErrNotFound, cmd["type"], e.Message)
	}
	return fmt.Errorf("%w: %s: %s: %s", ErrCommandFailed, cmd["type"], e.Code, e.Message)
}

// connectLocked dials and authenticates if there is no live connection.
func (c *Client) connectLocked(ctx context.Context) error {
	if c.ws != nil {
		return nil
	}

	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/websocket"

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, resp, err := c.dialer.DialContext(dialCtx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("%w: dialing websocket: %w", host.ErrUnavailable, err)
	}

	if err := c.authenticate(conn, c.deadline(ctx)); err != nil {
		conn.Close()
		return err
	}

	c.ws = conn
	c.nextID = 0
	c.logger.Debug("websocket connected", "url", u.Redacted())
	return nil
}

func (c *Client) authenticate(conn *websocket.Conn, deadline time.Time) error {
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)

	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("%w: reading auth prompt: %w", host.ErrUnavailable, err)
	}
	if msg.Type != msgAuthRequired {
		return fmt.Errorf("%w: unexpected message %q before auth", ErrAuthFailed, msg.Type)
	}

	if err := conn.WriteJSON(map[string]string{"type": msgAuth, "access_token": c.token}); err != nil {
		return fmt.Errorf("%w: sending auth: %w", host.ErrUnavailable, err)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("%w: reading auth reply: %w", host.ErrUnavailable, err)
	}
	switch msg.Type {
	case msgAuthOK:
		return nil
	case msgAuthInvalid:
		return fmt.Errorf("%w: %s", ErrAuthFailed, msg.Message)
	default:
		return fmt.Errorf("%w: unexpected message %q", ErrAuthFailed, msg.Type)
	}
}

func (c *Client) dropLocked() error {
	if c.ws == nil {
		return nil
	}
	err := c.ws.Close()
	c.ws = nil
	return err
}

// deadline is the earlier of the context deadline and now+timeout.
func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}
