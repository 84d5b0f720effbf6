package control

import (
	"context"
	"sync"

	"github.com/oshokin/obs-streamdeck-ctl/internal/config"
	domlockdown "github.com/oshokin/obs-streamdeck-ctl/internal/domain/lockdown"
	domain "github.com/oshokin/obs-streamdeck-ctl/internal/domain/overlay"
	"github.com/oshokin/obs-streamdeck-ctl/internal/obsws"
	repo "github.com/oshokin/obs-streamdeck-ctl/internal/repository/state"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/common"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/lockdown"
)

// fakeCompositor is an in-memory compositor.
type fakeCompositor struct {
	mu        sync.Mutex
	settings  map[string]map[string]any
	muted     map[string]bool
	scenes    obsws.SceneList
	sources   []obsws.SourceInfo
	streaming bool
	closed    int
}

func newFakeCompositor() *fakeCompositor {
	return &fakeCompositor{
		settings: make(map[string]map[string]any),
		muted:    make(map[string]bool),
	}
}

func (f *fakeCompositor) GetSourceSettings(_ context.Context, source string) (*obsws.SourceSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	settings, ok := f.settings[source]
	if !ok {
		return nil, obsws.ErrRequestFailed
	}

	return &obsws.SourceSettings{Name: source, Settings: settings}, nil
}

func (f *fakeCompositor) SetSourceSettings(_ context.Context, source string, settings map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.settings[source] = settings

	return nil
}

func (f *fakeCompositor) ToggleMute(_ context.Context, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.muted[source] = !f.muted[source]

	return nil
}

func (f *fakeCompositor) GetSourcesList(context.Context) ([]obsws.SourceInfo, error) {
	return f.sources, nil
}

func (f *fakeCompositor) GetSceneList(context.Context) (*obsws.SceneList, error) {
	list := f.scenes

	return &list, nil
}

func (f *fakeCompositor) SetCurrentScene(_ context.Context, scene string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scenes.CurrentScene = scene

	return nil
}

func (f *fakeCompositor) StartStopStreaming(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.streaming = !f.streaming

	return nil
}

func (f *fakeCompositor) GetStreamingStatus(context.Context) (*obsws.StreamingStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &obsws.StreamingStatus{Streaming: f.streaming}, nil
}

func (f *fakeCompositor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed++

	return nil
}

// fakeChat answers JOIN with one room state and records messages.
type fakeChat struct {
	tags map[string]string

	mu        sync.Mutex
	said      []string
	onConnect func()
	onRoom    func(string, map[string]string)
	closed    chan struct{}
	once      sync.Once
}

func (f *fakeChat) RequestCapabilities(...string) {}

func (f *fakeChat) OnConnect(fn func()) { f.onConnect = fn }

func (f *fakeChat) OnRoomState(fn func(string, map[string]string)) { f.onRoom = fn }

func (f *fakeChat) Join(channel string) { f.onRoom(channel, f.tags) }

func (f *fakeChat) Say(_, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.said = append(f.said, message)
}

func (f *fakeChat) Connect() error {
	f.onConnect()
	<-f.closed

	return nil
}

func (f *fakeChat) Disconnect() error {
	f.once.Do(func() { close(f.closed) })

	return nil
}

func (f *fakeChat) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.said...)
}

// memoryRepository is an in-memory state store.
type memoryRepository struct {
	mu   sync.Mutex
	urls map[string]string
}

func (m *memoryRepository) Load(context.Context) (*domain.Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.urls == nil {
		return nil, repo.ErrNotFound
	}

	return domain.NewRegistry(m.urls), nil
}

func (m *memoryRepository) Save(_ context.Context, registry *domain.Registry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.urls = registry.URLs()

	return nil
}

// harness bundles an Env with its fakes.
type harness struct {
	env        *Env
	compositor *fakeCompositor
	chats      []*fakeChat
	roomTags   map[string]string
}

func newHarness(cfg *config.Config) *harness {
	h := &harness{
		compositor: newFakeCompositor(),
		roomTags: map[string]string{
			domlockdown.TagEmoteOnly:     "0",
			domlockdown.TagFollowersOnly: "-1",
			domlockdown.TagSubsOnly:      "0",
		},
	}

	if err := config.Validate(cfg); err != nil {
		panic(err)
	}

	h.env = &Env{
		Config: cfg,
		Dial: func(context.Context) (common.Compositor, error) {
			return h.compositor, nil
		},
		Repo: &memoryRepository{},
		Chat: func(config.Twitch) lockdown.Conn {
			c := &fakeChat{tags: h.roomTags, closed: make(chan struct{})}
			h.chats = append(h.chats, c)

			return c
		},
	}

	return h
}

func (h *harness) lastChat() *fakeChat {
	if len(h.chats) == 0 {
		return nil
	}

	return h.chats[len(h.chats)-1]
}
