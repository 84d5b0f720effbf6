package chat

import (
	"errors"
	"strings"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
)

// Capabilities requested by safety sessions. ROOMSTATE flags only arrive with tags.
//
//nolint:gochecknoglobals // Read-only list mirrored from the library constants.
var Capabilities = []string{
	twitch.MembershipCapability,
	twitch.TagsCapability,
	twitch.CommandsCapability,
}

const (
	// DefaultDrain is how long Disconnect waits for queued messages to be written.
	DefaultDrain = time.Second

	oauthPrefix = "oauth:"
)

// Client adapts go-twitch-irc to the narrow connection the safety session drives.
type Client struct {
	irc   *twitch.Client
	drain time.Duration
}

// Option configures the chat client.
type Option func(*Client)

// WithDrain overrides the delay Disconnect leaves for queued messages.
func WithDrain(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.drain = d
		}
	}
}

// WithAddress points the client at another IRC endpoint, e.g. a local relay.
func WithAddress(address string, tls bool) Option {
	return func(c *Client) {
		c.irc.IrcAddress = address
		c.irc.TLS = tls
	}
}

// New creates a client logging in as the channel owner.
func New(channel, token string, opts ...Option) *Client {
	c := &Client{
		irc:   twitch.NewClient(strings.ToLower(channel), OAuthPassword(token)),
		drain: DefaultDrain,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// OAuthPassword returns the token in the "oauth:<token>" form chat expects as password.
func OAuthPassword(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, oauthPrefix) {
		return token
	}

	return oauthPrefix + token
}

// RequestCapabilities sets the capabilities negotiated during the connection handshake.
// It must be called before Connect.
func (c *Client) RequestCapabilities(caps ...string) {
	c.irc.Capabilities = append([]string(nil), caps...)
}

// OnConnect registers the callback run once the server accepted the login.
func (c *Client) OnConnect(fn func()) {
	c.irc.OnConnect(fn)
}

// OnRoomState registers the ROOMSTATE callback.
func (c *Client) OnRoomState(fn func(channel string, tags map[string]string)) {
	c.irc.OnRoomStateMessage(func(message twitch.RoomStateMessage) {
		fn(message.Channel, message.Tags)
	})
}

// Join joins a channel.
func (c *Client) Join(channel string) {
	c.irc.Join(strings.ToLower(channel))
}

// Say queues a chat message for the channel.
func (c *Client) Say(channel, message string) {
	c.irc.Say(strings.ToLower(channel), message)
}

// Connect blocks until the connection ends. A requested disconnect is not an error.
func (c *Client) Connect() error {
	err := c.irc.Connect()
	if errors.Is(err, twitch.ErrClientDisconnected) {
		return nil
	}

	return err
}

// Disconnect waits for queued messages, then closes the connection.
// Say only queues, so closing immediately could drop the last commands.
func (c *Client) Disconnect() error {
	if c.drain > 0 {
		time.Sleep(c.drain)
	}

	err := c.irc.Disconnect()
	if errors.Is(err, twitch.ErrConnectionIsNotOpen) {
		return nil
	}

	return err
}
