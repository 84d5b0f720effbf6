// Package obswstest provides an in-process obs-websocket 4.x server for tests.
package obswstest

import (
	"crypto/sha256"
	"encoding/base64"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	salt      = "c2FsdA=="
	challenge = "Y2hhbGxlbmdl"
)

// Server answers the requests the control buttons use, keeping the compositor state in memory.
// Every response is preceded by a Heartbeat event so clients must skip events.
type Server struct {
	password string
	addr     string

	mu        sync.Mutex
	sources   map[string]map[string]any
	order     []string
	muted     map[string]bool
	scenes    []string
	current   string
	streaming bool
	requests  []string
}

// NewServer starts a server shut down with the test. An empty password disables authentication.
func NewServer(t *testing.T, password string) *Server {
	t.Helper()

	s := &Server{
		password: password,
		sources:  make(map[string]map[string]any),
		muted:    make(map[string]bool),
		scenes:   []string{"Starting", "Live", "BRB"},
		current:  "Starting",
	}

	srv := httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(srv.Close)

	s.addr = strings.TrimPrefix(srv.URL, "http://")

	return s
}

// Address returns the host:port to dial.
func (s *Server) Address() string {
	return s.addr
}

// AddBrowserSource registers a browser source showing url.
func (s *Server) AddBrowserSource(name, url string, rerouteAudio bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sources[name]; !ok {
		s.order = append(s.order, name)
	}

	s.sources[name] = map[string]any{
		"url":           url,
		"reroute_audio": rerouteAudio,
		"width":         1920.0,
		"height":        1080.0,
	}
}

// Settings returns a copy of a source's settings, nil for unknown sources.
func (s *Server) Settings(name string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.sources[name])
}

// Muted reports whether a source is muted.
func (s *Server) Muted(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.muted[name]
}

// SetScenes replaces the scene list; the first scene becomes current.
func (s *Server) SetScenes(scenes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scenes = append([]string(nil), scenes...)
	s.current = ""

	if len(scenes) > 0 {
		s.current = scenes[0]
	}
}

// CurrentScene returns the program scene.
func (s *Server) CurrentScene() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// SetStreaming sets the streaming state.
func (s *Server) SetStreaming(streaming bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.streaming = streaming
}

// Streaming reports the streaming state.
func (s *Server) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.streaming
}

// Requests returns the request types received so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.requests)
}

// AuthResponse computes the answer to the server's challenge for password.
func AuthResponse(password string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])
	answer := sha256.Sum256([]byte(secretB64 + challenge))

	return base64.StdEncoding.EncodeToString(answer[:])
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	defer func() { _ = conn.CloseNow() }()

	ctx := r.Context()
	authed := s.password == ""

	for {
		var req map[string]any
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			return
		}

		if err := wsjson.Write(ctx, conn, map[string]any{"update-type": "Heartbeat"}); err != nil {
			return
		}

		kind, _ := req["request-type"].(string)
		resp := map[string]any{"message-id": req["message-id"], "status": "ok"}

		s.mu.Lock()
		s.requests = append(s.requests, kind)

		switch {
		case kind == "GetAuthRequired":
			resp["authRequired"] = s.password != ""
			if s.password != "" {
				resp["salt"] = salt
				resp["challenge"] = challenge
			}
		case kind == "Authenticate":
			if req["auth"] == AuthResponse(s.password) {
				authed = true
			} else {
				fail(resp, "Authentication Failed.")
			}
		case !authed:
			fail(resp, "Not Authenticated")
		default:
			s.handle(kind, req, resp)
		}
		s.mu.Unlock()

		if err := wsjson.Write(ctx, conn, resp); err != nil {
			return
		}
	}
}

//nolint:cyclop // One case per request type.
func (s *Server) handle(kind string, req, resp map[string]any) {
	switch kind {
	case "GetSourceSettings":
		name, _ := req["sourceName"].(string)

		settings, ok := s.sources[name]
		if !ok {
			fail(resp, "specified source doesn't exist")
			return
		}

		resp["sourceName"] = name
		resp["sourceType"] = "browser_source"
		resp["sourceSettings"] = settings
	case "SetSourceSettings":
		name, _ := req["sourceName"].(string)
		if _, ok := s.sources[name]; !ok {
			fail(resp, "specified source doesn't exist")
			return
		}

		settings, _ := req["sourceSettings"].(map[string]any)
		s.sources[name] = settings
	case "ToggleMute":
		name, _ := req["source"].(string)
		s.muted[name] = !s.muted[name]
	case "GetSourcesList":
		list := make([]map[string]any, 0, len(s.order))
		for _, name := range s.order {
			list = append(list, map[string]any{"name": name, "typeId": "browser_source", "type": "input"})
		}

		resp["sources"] = list
	case "GetSceneList":
		scenes := make([]map[string]any, 0, len(s.scenes))
		for _, name := range s.scenes {
			scenes = append(scenes, map[string]any{"name": name, "sources": []any{}})
		}

		resp["current-scene"] = s.current
		resp["scenes"] = scenes
	case "SetCurrentScene":
		name, _ := req["scene-name"].(string)
		if !slices.Contains(s.scenes, name) {
			fail(resp, "requested scene does not exist")
			return
		}

		s.current = name
	case "StartStopStreaming":
		s.streaming = !s.streaming
	case "GetStreamingStatus":
		resp["streaming"] = s.streaming
		resp["recording"] = false
	default:
		fail(resp, "invalid request type")
	}
}

func fail(resp map[string]any, message string) {
	resp["status"] = "error"
	resp["error"] = message
}
