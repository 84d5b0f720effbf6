package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/obs-streamdeck-ctl/internal/domain/lockdown"
)

// Config holds everything the control commands need, as written by the user.
type Config struct {
	// OBS describes the compositor connection and the sources the buttons act on.
	OBS OBS `yaml:"obs"`
	// Twitch holds chat credentials.
	Twitch Twitch `yaml:"twitch"`
	// StateFile is where captured overlay URLs are remembered between runs.
	StateFile string `yaml:"state_file"`
	// StartStopSafety is applied to chat when the stream is started or stopped.
	// Nil disables the chat step of start-stop.
	StartStopSafety *SafetyPolicy `yaml:"start_stop_safety,omitempty"`
	// LiveSafety is applied to chat by the live safety button.
	// Nil disables the chat step of live-safety.
	LiveSafety *SafetyPolicy `yaml:"live_safety,omitempty"`
	// Additional are the live safety one-shot actions.
	Additional LiveExtras `yaml:"additional"`
}

// OBS holds obs-websocket connection settings and source names.
type OBS struct {
	// Address is the obs-websocket host:port.
	Address string `yaml:"address"`
	// Password is the obs-websocket password, empty when authentication is off.
	Password string `yaml:"password,omitempty"`
	// MicSource is the microphone audio source name.
	MicSource string `yaml:"mic_source"`
	// DesktopSource is the desktop audio source name.
	DesktopSource string `yaml:"desktop_source"`
	// AlertSources are the alert and chat overlay browser sources, toggled in this order.
	AlertSources []string `yaml:"alert_sources"`
	// Timeout bounds connecting and every single request.
	Timeout time.Duration `yaml:"timeout"`
}

// Twitch holds chat settings.
type Twitch struct {
	// Channel is the streamer's login, also used as the chat nickname.
	Channel string `yaml:"channel"`
	// OAuthToken is the chat token, with or without the "oauth:" prefix.
	//nolint:gosec // Field name, not a credential.
	OAuthToken string `yaml:"oauth_token,omitempty"`
	// ObservationTimeout bounds the wait for the first room state after joining.
	ObservationTimeout time.Duration `yaml:"observation_timeout"`
}

// SafetyPolicy is the persisted form of lockdown.Policy.
type SafetyPolicy struct {
	Enabled        bool            `yaml:"enabled"`
	Method         lockdown.Method `yaml:"method"`
	EmoteMode      bool            `yaml:"emote_mode"`
	FollowDuration string          `yaml:"follow_duration,omitempty"`
}

// Policy converts the persisted section to the domain policy.
func (p *SafetyPolicy) Policy() lockdown.Policy {
	if p == nil {
		return lockdown.Policy{}
	}

	method := p.Method
	if method == "" {
		method = lockdown.MethodNone
	}

	return lockdown.Policy{
		Enabled:        p.Enabled,
		Method:         method,
		EmoteMode:      p.EmoteMode,
		FollowDuration: p.FollowDuration,
	}
}

// LiveExtras is the persisted form of lockdown.Extras.
type LiveExtras struct {
	Advert    bool `yaml:"advert"`
	ClearChat bool `yaml:"clear_chat"`
}

// Extras converts the persisted section to the domain extras.
func (e LiveExtras) Extras() lockdown.Extras {
	return lockdown.Extras{Advert: e.Advert, ClearChat: e.ClearChat}
}

const (
	// DefaultConfigFilename is the default filename of the settings file.
	DefaultConfigFilename = "obs-streamdeck.yaml"

	// DefaultStateFilename is the default filename for captured overlay URLs.
	DefaultStateFilename = "obs-streamdeck-state.yaml"

	// DefaultEnvFilename is the optional dotenv file holding secrets.
	DefaultEnvFilename = ".env"

	// DefaultAddress is where obs-websocket listens out of the box.
	DefaultAddress = "127.0.0.1:4444"

	// DefaultTimeout is the default duration for compositor operations.
	DefaultTimeout = 5 * time.Second

	// DefaultObservationTimeout is how long a chat session waits for room state.
	DefaultObservationTimeout = 15 * time.Second

	// DefaultMicSource and DefaultDesktopSource are the compositor's stock audio source names.
	DefaultMicSource     = "Mic/Aux"
	DefaultDesktopSource = "Desktop Audio"

	// DefaultFilePermissions is used for every file written by the tool; they may hold tokens.
	DefaultFilePermissions = 0o600
)

// Environment variables overriding secrets from the settings file.
const (
	EnvOBSPassword = "OBS_WS_PASSWORD"
	EnvChannel     = "TWITCH_CHANNEL"
	EnvOAuthToken  = "TWITCH_OAUTH_TOKEN"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errDuplicateSource is returned when an alert source is listed twice.
	errDuplicateSource = errors.New("duplicate alert source")
	// errEmptySource is returned for blank alert source names.
	errEmptySource = errors.New("alert source name must not be empty")

	// ErrChatNotConfigured is returned when a chat session is requested without credentials.
	ErrChatNotConfigured = errors.New("twitch channel and oauth token must be provided")
)

// Load reads configuration from the provided path, applies secrets from the
// environment and the optional dotenv file, then validates it.
func Load(path, envPath string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	dotenv, err := readDotenv(envPath)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := dotenv[key]

		return v, ok
	})

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readDotenv reads the dotenv file. A missing file is not an error.
func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	values, err := godotenv.Read(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read env file: %w", err)
	}

	return values, nil
}

// applyEnv overrides secrets with values found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvOBSPassword); ok {
		c.OBS.Password = v
	}

	if v, ok := lookup(EnvChannel); ok && v != "" {
		c.Twitch.Channel = v
	}

	if v, ok := lookup(EnvOAuthToken); ok && v != "" {
		c.Twitch.OAuthToken = v
	}
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.OBS.Address == "" {
		cfg.OBS.Address = DefaultAddress
	}

	if _, _, err := net.SplitHostPort(cfg.OBS.Address); err != nil {
		return fmt.Errorf("invalid obs address: %w", err)
	}

	if cfg.OBS.Timeout <= 0 {
		cfg.OBS.Timeout = DefaultTimeout
	}

	if cfg.OBS.MicSource == "" {
		cfg.OBS.MicSource = DefaultMicSource
	}

	if cfg.OBS.DesktopSource == "" {
		cfg.OBS.DesktopSource = DefaultDesktopSource
	}

	seen := make(map[string]struct{}, len(cfg.OBS.AlertSources))
	for _, name := range cfg.OBS.AlertSources {
		if strings.TrimSpace(name) == "" {
			return errEmptySource
		}

		if _, dup := seen[name]; dup {
			return fmt.Errorf("%q: %w", name, errDuplicateSource)
		}

		seen[name] = struct{}{}
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.Twitch.ObservationTimeout <= 0 {
		cfg.Twitch.ObservationTimeout = DefaultObservationTimeout
	}

	if cfg.StartStopSafety != nil {
		if err := cfg.StartStopSafety.Policy().Validate(); err != nil {
			return fmt.Errorf("start_stop_safety: %w", err)
		}
	}

	if cfg.LiveSafety != nil {
		if err := cfg.LiveSafety.Policy().Validate(); err != nil {
			return fmt.Errorf("live_safety: %w", err)
		}
	}

	return nil
}

// ValidateChat checks that a chat session can be started.
func (c *Config) ValidateChat() error {
	if c.Twitch.Channel == "" || c.Twitch.OAuthToken == "" {
		return ErrChatNotConfigured
	}

	return nil
}
