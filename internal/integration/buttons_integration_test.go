package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/obs-streamdeck-ctl/internal/chat"
	"github.com/oshokin/obs-streamdeck-ctl/internal/config"
	"github.com/oshokin/obs-streamdeck-ctl/internal/domain/lockdown"
	"github.com/oshokin/obs-streamdeck-ctl/internal/domain/overlay"
	"github.com/oshokin/obs-streamdeck-ctl/internal/obsws/obswstest"
	"github.com/oshokin/obs-streamdeck-ctl/internal/repository/state"
	svclockdown "github.com/oshokin/obs-streamdeck-ctl/internal/service/lockdown"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/control"
)

const (
	alertsURL = "https://alerts.example/x"
	chatURL   = "https://chat.example/overlay"
)

// setup writes settings and a dotenv file to a temp dir, loads them back and
// points the chat factory at the fake IRC server.
func setup(t *testing.T, obs *obswstest.Server, obsPassword string, irc *fakeIRC) *control.Env {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	envPath := filepath.Join(dir, config.DefaultEnvFilename)

	require.NoError(t, config.Save(cfgPath, &config.Config{
		OBS: config.OBS{
			Address:      obs.Address(),
			AlertSources: []string{"Alerts", "Chat Overlay"},
			Timeout:      2 * time.Second,
		},
		StateFile: filepath.Join(dir, config.DefaultStateFilename),
		Twitch: config.Twitch{
			Channel:            "Streamer",
			ObservationTimeout: 2 * time.Second,
		},
		StartStopSafety: &config.SafetyPolicy{
			Enabled:        true,
			Method:         lockdown.MethodFollower,
			FollowDuration: "1d",
		},
		LiveSafety: &config.SafetyPolicy{
			Enabled:   true,
			Method:    lockdown.MethodSubscriber,
			EmoteMode: true,
		},
		Additional: config.LiveExtras{Advert: true, ClearChat: true},
	}))

	secrets := "TWITCH_OAUTH_TOKEN=abc123\nOBS_WS_PASSWORD=" + obsPassword + "\n"
	require.NoError(t, os.WriteFile(envPath, []byte(secrets), config.DefaultFilePermissions))

	cfg, err := config.Load(cfgPath, envPath)
	require.NoError(t, err)
	require.Equal(t, "abc123", cfg.Twitch.OAuthToken)

	env := control.NewEnv(cfg)
	env.Chat = func(settings config.Twitch) svclockdown.Conn {
		return chat.New(settings.Channel, settings.OAuthToken,
			chat.WithAddress(irc.addr(), false),
			chat.WithDrain(300*time.Millisecond))
	}

	return env
}

// TestLiveSafety_EndToEnd disables alerts and locks chat down, then restores both.
func TestLiveSafety_EndToEnd(t *testing.T) {
	t.Parallel()

	obs := obswstest.NewServer(t, "")
	obs.AddBrowserSource("Alerts", alertsURL, false)
	obs.AddBrowserSource("Chat Overlay", chatURL, true)

	irc := startIRC(t, roomTags("0", "-1", "0"))
	env := setup(t, obs, "", irc)
	ctx := context.Background()

	result, err := control.LiveSafety(ctx, env, &control.LiveSafetyOptions{})
	require.NoError(t, err)
	require.Len(t, result.Alerts.Succeeded, 2)
	require.Equal(t, overlay.SentinelURL, obs.Settings("Alerts")["url"])
	require.Equal(t, overlay.SentinelURL, obs.Settings("Chat Overlay")["url"])
	require.Equal(t, false, obs.Settings("Chat Overlay")["reroute_audio"])
	require.True(t, obs.Muted("Alerts"))

	// Capabilities go out before JOIN, the login uses the owner token.
	require.GreaterOrEqual(t, irc.index("CAP REQ"), 0)
	require.Greater(t, irc.index("JOIN #streamer"), irc.index("CAP REQ"))
	require.Equal(t, []string{"PASS oauth:abc123"}, irc.received("PASS"))
	require.Equal(t, []string{
		"PRIVMSG #streamer :/commercial 60",
		"PRIVMSG #streamer :/clear",
		"PRIVMSG #streamer :/emoteonly",
		"PRIVMSG #streamer :/subscribers",
	}, irc.received("PRIVMSG"))

	registry, err := state.NewFileRepository(env.Config.StateFile).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Alerts": alertsURL, "Chat Overlay": chatURL}, registry.URLs())

	irc.reset()
	irc.setTags(roomTags("1", "-1", "1"))

	_, err = control.LiveSafety(ctx, env, &control.LiveSafetyOptions{})
	require.NoError(t, err)
	require.Equal(t, alertsURL, obs.Settings("Alerts")["url"])
	require.Equal(t, chatURL, obs.Settings("Chat Overlay")["url"])
	require.False(t, obs.Muted("Alerts"))
	require.Equal(t, []string{
		"PRIVMSG #streamer :/emoteonlyoff",
		"PRIVMSG #streamer :/subscribersoff",
	}, irc.received("PRIVMSG"))
}

// TestStartStop_EndToEnd stops an authenticated stream and applies the follower lockdown.
func TestStartStop_EndToEnd(t *testing.T) {
	t.Parallel()

	obs := obswstest.NewServer(t, "hunter2")
	obs.SetStreaming(true)

	irc := startIRC(t, roomTags("0", "-1", "0"))
	env := setup(t, obs, "hunter2", irc)

	result, err := control.StartStop(context.Background(), env)
	require.NoError(t, err)
	require.True(t, result.WasStreaming)
	require.False(t, obs.Streaming())
	require.Equal(t, []string{"PRIVMSG #streamer :/followers 1d"}, irc.received("PRIVMSG"))
}

// TestStartStop_AlreadyLockedDown sends nothing when the room already matches.
func TestStartStop_AlreadyLockedDown(t *testing.T) {
	t.Parallel()

	obs := obswstest.NewServer(t, "")
	obs.SetStreaming(true)

	irc := startIRC(t, roomTags("0", "1440", "0"))
	env := setup(t, obs, "", irc)

	result, err := control.StartStop(context.Background(), env)
	require.NoError(t, err)
	require.Empty(t, result.Safety.Decision.Commands)
	require.Empty(t, irc.received("PRIVMSG"))
}

// TestPanic_RetryFailedSource toggles the remaining source with --only after fixing it.
func TestPanic_RetryFailedSource(t *testing.T) {
	t.Parallel()

	obs := obswstest.NewServer(t, "")
	obs.AddBrowserSource("Alerts", alertsURL, false)

	env := setup(t, obs, "", startIRC(t, roomTags("0", "-1", "0")))
	ctx := context.Background()

	report, err := control.Panic(ctx, env, &control.PanicOptions{})
	require.Error(t, err)
	require.Equal(t, []string{"Chat Overlay"}, report.FailedNames())

	obs.AddBrowserSource("Chat Overlay", chatURL, false)

	report, err = control.Panic(ctx, env, &control.PanicOptions{Only: report.FailedNames()})
	require.NoError(t, err)
	require.Len(t, report.Succeeded, 1)
	require.Equal(t, overlay.SentinelURL, obs.Settings("Chat Overlay")["url"])
	require.Equal(t, overlay.SentinelURL, obs.Settings("Alerts")["url"])
}

// TestSceneAndMute_EndToEnd switches scenes by position and toggles both audio sources.
func TestSceneAndMute_EndToEnd(t *testing.T) {
	t.Parallel()

	obs := obswstest.NewServer(t, "")
	obs.SetScenes("Starting", "Gameplay", "BRB")

	env := setup(t, obs, "", startIRC(t, ""))
	ctx := context.Background()

	name, err := control.Scene(ctx, env, 3)
	require.NoError(t, err)
	require.Equal(t, "BRB", name)
	require.Equal(t, "BRB", obs.CurrentScene())

	require.NoError(t, control.Mute(ctx, env, control.MuteAll))
	require.True(t, obs.Muted(config.DefaultMicSource))
	require.True(t, obs.Muted(config.DefaultDesktopSource))
}
