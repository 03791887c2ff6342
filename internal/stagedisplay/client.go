package stagedisplay

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/peschuster/propresenter-srt/internal/logging"
)

// connection settings for a stage display endpoint
type Options struct {
	Host             string
	Port             int
	Password         string
	HandshakeTimeout time.Duration
	// receipt clock, defaults to time.Now
	Now              func() time.Time
}

func (o Options) URL() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
		Path:   "/stagedisplay",
	}
	return u.String()
}

// called for every current-slide text, with the instant the frame arrived
type TextHandler func(text string, receivedAt time.Time)

type authRequest struct {
	Password string `json:"pwd"`
	Protocol int    `json:"ptl"`
	Action   Action `json:"acn"`
}

// Client is a connected, authenticating stage display session.
type Client struct {
	conn   *websocket.Conn
	opts   Options
	logger *logging.Logger
}

// Dial opens the WebSocket and sends the password handshake.
func Dial(ctx context.Context, opts Options, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}

	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: opts.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, opts.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.URL(), err)
	}

	logger.Infow("Opened connection",
		"host", opts.Host,
		"port", opts.Port,
	)

	c := &Client{conn: conn, opts: opts, logger: logger}
	if err := c.authenticate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) authenticate() error {
	payload, err := json.Marshal(authRequest{
		Password: c.opts.Password,
		Protocol: ProtocolVersion,
		Action:   ActionAuth,
	})
	if err != nil {
		return fmt.Errorf("failed to encode auth request: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to send auth request: %w", err)
	}
	return nil
}

// Run reads notifications until ctx is cancelled or the server closes the
// connection, passing current-slide text to onText. Malformed payloads are
// logged and skipped. A cancelled context or a normal close returns nil.
func (c *Client) Run(ctx context.Context, onText TextHandler) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				deadline,
			)
			_ = c.conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Infow("Connection closed")
				return nil
			}
			return fmt.Errorf("failed to read from stage display: %w", err)
		}
		receivedAt := c.opts.Now()

		msg, err := Decode(data)
		if err != nil {
			c.logger.Warnw("Dropping message",
				"error", err,
				"bytes", len(data),
			)
			continue
		}

		c.dispatch(msg, receivedAt, onText)
	}
}

func (c *Client) dispatch(msg Message, receivedAt time.Time, onText TextHandler) {
	switch m := msg.(type) {
	case AuthResult:
		if m.OK {
			c.logger.Infow("Auth ok", "protocol", m.Protocol)
		} else {
			c.logger.Errorw("Auth error", "error", m.Err)
		}
	case FrameValues:
		if m.HasCurrent {
			onText(m.CurrentText, receivedAt)
		}
	case Unknown:
		c.logger.Debugw("Ignoring message", "action", m.Tag)
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}
