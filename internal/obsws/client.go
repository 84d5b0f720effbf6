package obsws

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
)

const (
	// DefaultCallTimeout bounds a single request when no option overrides it.
	DefaultCallTimeout = 5 * time.Second

	// readLimit raises the library default so large source lists fit in one frame.
	readLimit = 1 << 20

	statusOK = "ok"
)

var (
	// ErrAddressRequired is returned when Dial is given an empty address.
	ErrAddressRequired = errors.New("obs-websocket address must be provided")
	// ErrAuthFailed is returned when the server rejects the password or requires one that was not given.
	ErrAuthFailed = errors.New("obs-websocket authentication failed")
	// ErrRequestFailed is returned when the server answers a request with status "error".
	ErrRequestFailed = errors.New("obs-websocket request failed")
	// ErrClosed is returned for calls on a closed client.
	ErrClosed = errors.New("obs-websocket client closed")
)

// Client is an obs-websocket 4.x connection. Requests are sent one at a time.
type Client struct {
	// conn is the underlying websocket connection.
	conn *websocket.Conn
	// callTimeout is the default timeout for individual requests.
	callTimeout time.Duration
	// newID generates request message ids.
	newID func() string

	// mu serialises request/response exchanges on conn.
	mu     sync.Mutex
	closed bool
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for requests.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// Dial connects to obs-websocket at address (host:port) and authenticates when the server asks for it.
func Dial(ctx context.Context, address, password string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, ErrAddressRequired
	}

	client := &Client{
		callTimeout: DefaultCallTimeout,
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialCtx, cancel := context.WithTimeout(ctx, client.callTimeout)
	defer cancel()

	//nolint:bodyclose // The library owns the handshake response body.
	conn, _, err := websocket.Dial(dialCtx, "ws://"+address, nil)
	if err != nil {
		return nil, fmt.Errorf("dial obs-websocket %s: %w", address, err)
	}

	conn.SetReadLimit(readLimit)
	client.conn = conn

	if err := client.authenticate(ctx, password); err != nil {
		_ = client.Close()

		return nil, err
	}

	return client, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	return c.conn.Close(websocket.StatusNormalClosure, "")
}

type authRequiredResponse struct {
	AuthRequired bool   `json:"authRequired"`
	Challenge    string `json:"challenge"`
	Salt         string `json:"salt"`
}

func (c *Client) authenticate(ctx context.Context, password string) error {
	var info authRequiredResponse
	if err := c.call(ctx, "GetAuthRequired", nil, &info); err != nil {
		return err
	}

	if !info.AuthRequired {
		return nil
	}

	if password == "" {
		return fmt.Errorf("server requires a password: %w", ErrAuthFailed)
	}

	err := c.call(ctx, "Authenticate", map[string]any{"auth": authResponse(password, info.Salt, info.Challenge)}, nil)
	if errors.Is(err, ErrRequestFailed) {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	return err
}

// authResponse computes the 4.x challenge answer:
// base64(sha256(base64(sha256(password+salt)) + challenge)).
func authResponse(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])
	answer := sha256.Sum256([]byte(secretB64 + challenge))

	return base64.StdEncoding.EncodeToString(answer[:])
}

// envelope is the part of every server message the client routes on.
type envelope struct {
	MessageID  string `json:"message-id"`
	Status     string `json:"status"`
	Error      string `json:"error"`
	UpdateType string `json:"update-type"`
}

// call sends one request and decodes the matching response into out.
// Events and responses to other ids received meanwhile are dropped.
func (c *Client) call(ctx context.Context, requestType string, fields map[string]any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	id := c.newID()

	request := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		request[k] = v
	}

	request["request-type"] = requestType
	request["message-id"] = id

	if err := wsjson.Write(callCtx, c.conn, request); err != nil {
		return fmt.Errorf("%s: send: %w", requestType, err)
	}

	for {
		_, data, err := c.conn.Read(callCtx)
		if err != nil {
			return fmt.Errorf("%s: receive: %w", requestType, err)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("%s: decode response: %w", requestType, err)
		}

		if env.UpdateType != "" || env.MessageID != id {
			continue
		}

		if env.Status != statusOK {
			return fmt.Errorf("%s: %s: %w", requestType, env.Error, ErrRequestFailed)
		}

		if out == nil {
			return nil
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", requestType, err)
		}

		return nil
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
