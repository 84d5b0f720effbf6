package integration

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeIRC is a minimal chat server: it welcomes any login, answers JOIN with
// the configured ROOMSTATE and records every line it receives.
type fakeIRC struct {
	listener net.Listener

	mu    sync.Mutex
	lines []string
	tags  string
}

func startIRC(t *testing.T, tags string) *fakeIRC {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeIRC{listener: l, tags: tags}
	t.Cleanup(func() { _ = l.Close() })

	go f.accept()

	return f
}

func (f *fakeIRC) addr() string {
	return f.listener.Addr().String()
}

func (f *fakeIRC) setTags(tags string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tags = tags
}

func (f *fakeIRC) accept() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}

		go f.serve(conn)
	}
}

func (f *fakeIRC) serve(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		f.mu.Lock()
		f.lines = append(f.lines, line)
		tags := f.tags
		f.mu.Unlock()

		var reply string

		switch {
		case strings.HasPrefix(line, "NICK "):
			nick := strings.TrimPrefix(line, "NICK ")
			reply = fmt.Sprintf(":tmi.twitch.tv 001 %s :Welcome, GLHF!", nick)
		case strings.HasPrefix(line, "JOIN #"):
			channel := strings.TrimPrefix(line, "JOIN ")
			reply = fmt.Sprintf("@%s :tmi.twitch.tv ROOMSTATE %s", tags, channel)
		case strings.HasPrefix(line, "PING"):
			reply = "PONG :tmi.twitch.tv"
		}

		if reply == "" {
			continue
		}

		if _, err := conn.Write([]byte(reply + "\r\n")); err != nil {
			return
		}
	}
}

// received returns the recorded lines starting with prefix.
func (f *fakeIRC) received(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string

	for _, line := range f.lines {
		if strings.HasPrefix(line, prefix) {
			out = append(out, line)
		}
	}

	return out
}

// index returns the position of the first line starting with prefix, or -1.
func (f *fakeIRC) index(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, line := range f.lines {
		if strings.HasPrefix(line, prefix) {
			return i
		}
	}

	return -1
}

// reset forgets recorded lines.
func (f *fakeIRC) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lines = nil
}

// roomTags renders ROOMSTATE tags.
func roomTags(emoteOnly, followersOnly, subsOnly string) string {
	return fmt.Sprintf("emote-only=%s;followers-only=%s;r9k=0;room-id=12345;slow=0;subs-only=%s",
		emoteOnly, followersOnly, subsOnly)
}
