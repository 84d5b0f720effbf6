package obsws

import (
	"context"
	"errors"
)

// Browser source settings keys the overlay toggle reads and writes.
const (
	SettingURL          = "url"
	SettingRerouteAudio = "reroute_audio"
)

// errNoScenes is returned when a scene index is used against an empty list.
var errNoScenes = errors.New("scene list is empty")

// SourceSettings is the GetSourceSettings response.
type SourceSettings struct {
	Name     string         `json:"sourceName"`
	Type     string         `json:"sourceType"`
	Settings map[string]any `json:"sourceSettings"`
}

// URL returns the browser source URL, empty for other source kinds.
func (s *SourceSettings) URL() string {
	u, _ := s.Settings[SettingURL].(string)

	return u
}

// RerouteAudio reports whether the browser source's audio is routed through the compositor.
func (s *SourceSettings) RerouteAudio() bool {
	v, _ := s.Settings[SettingRerouteAudio].(bool)

	return v
}

// WithBrowser returns a copy of the settings with url and reroute_audio replaced,
// every other key kept as the compositor reported it.
func (s *SourceSettings) WithBrowser(url string, rerouteAudio bool) map[string]any {
	out := make(map[string]any, len(s.Settings)+2)
	for k, v := range s.Settings {
		out[k] = v
	}

	out[SettingURL] = url
	out[SettingRerouteAudio] = rerouteAudio

	return out
}

// SourceInfo is one entry of GetSourcesList.
type SourceInfo struct {
	Name   string `json:"name"`
	TypeID string `json:"typeId"`
	Type   string `json:"type"`
}

// Scene is one entry of GetSceneList.
type Scene struct {
	Name string `json:"name"`
}

// SceneList is the GetSceneList response.
type SceneList struct {
	CurrentScene string  `json:"current-scene"`
	Scenes       []Scene `json:"scenes"`
}

// StreamingStatus is the GetStreamingStatus response.
type StreamingStatus struct {
	Streaming bool `json:"streaming"`
	Recording bool `json:"recording"`
}

// GetSourceSettings returns the current settings of a source.
func (c *Client) GetSourceSettings(ctx context.Context, source string) (*SourceSettings, error) {
	var out SourceSettings
	if err := c.call(ctx, "GetSourceSettings", map[string]any{"sourceName": source}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// SetSourceSettings replaces the settings of a source.
func (c *Client) SetSourceSettings(ctx context.Context, source string, settings map[string]any) error {
	return c.call(ctx, "SetSourceSettings", map[string]any{
		"sourceName":     source,
		"sourceSettings": settings,
	}, nil)
}

// ToggleMute flips the mute state of an audio-capable source.
func (c *Client) ToggleMute(ctx context.Context, source string) error {
	return c.call(ctx, "ToggleMute", map[string]any{"source": source}, nil)
}

// GetSourcesList lists every source known to the compositor.
func (c *Client) GetSourcesList(ctx context.Context) ([]SourceInfo, error) {
	var out struct {
		Sources []SourceInfo `json:"sources"`
	}

	if err := c.call(ctx, "GetSourcesList", nil, &out); err != nil {
		return nil, err
	}

	return out.Sources, nil
}

// GetSceneList returns the scenes in the order shown in the compositor.
func (c *Client) GetSceneList(ctx context.Context) (*SceneList, error) {
	var out SceneList
	if err := c.call(ctx, "GetSceneList", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// SetCurrentScene switches the program output to the named scene.
func (c *Client) SetCurrentScene(ctx context.Context, scene string) error {
	return c.call(ctx, "SetCurrentScene", map[string]any{"scene-name": scene}, nil)
}

// StartStopStreaming toggles streaming.
func (c *Client) StartStopStreaming(ctx context.Context) error {
	return c.call(ctx, "StartStopStreaming", nil, nil)
}

// GetStreamingStatus reports whether the compositor is streaming.
func (c *Client) GetStreamingStatus(ctx context.Context) (*StreamingStatus, error) {
	var out StreamingStatus
	if err := c.call(ctx, "GetStreamingStatus", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// SceneAt returns the scene at a 1-based position, counted from the top of the list.
func (l *SceneList) SceneAt(position int) (Scene, error) {
	if len(l.Scenes) == 0 {
		return Scene{}, errNoScenes
	}

	if position < 1 || position > len(l.Scenes) {
		return Scene{}, &SceneRangeError{Position: position, Count: len(l.Scenes)}
	}

	return l.Scenes[position-1], nil
}
