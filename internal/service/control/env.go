package control

import (
	"github.com/oshokin/obs-streamdeck-ctl/internal/chat"
	"github.com/oshokin/obs-streamdeck-ctl/internal/config"
	repo "github.com/oshokin/obs-streamdeck-ctl/internal/repository/state"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/common"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/lockdown"
)

// ChatFactory creates a chat connection for one safety session.
type ChatFactory func(settings config.Twitch) lockdown.Conn

// Env carries the loaded settings and the collaborators every button uses.
type Env struct {
	// Config is the validated configuration.
	Config *config.Config
	// Dial opens compositor connections.
	Dial common.Dialer
	// Repo stores captured overlay URLs.
	Repo repo.Repository
	// Chat creates chat connections.
	Chat ChatFactory
}

var _ lockdown.Conn = (*chat.Client)(nil)

// NewEnv wires the real compositor, state file and chat implementations.
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		Config: cfg,
		Dial:   common.NewDialer(cfg.OBS),
		Repo:   repo.NewFileRepository(cfg.StateFile),
		Chat: func(settings config.Twitch) lockdown.Conn {
			return chat.New(settings.Channel, settings.OAuthToken)
		},
	}
}
