package lockdown

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestParseFollowDuration checks the accepted units and limits.
func TestParseFollowDuration(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"0":          0,
		"30":         30,
		"30m":        30,
		"10 minutes": 10,
		"3h":         180,
		"1d":         minutesPerDay,
		"2 days":     2 * minutesPerDay,
		"1w":         minutesPerWeek,
		"3mo":        maxFollowMinutes,
	}
	for in, want := range cases {
		got, err := ParseFollowDuration(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, bad := range []string{
		"", "d", "1y", "-1d", "4mo", "1.5h",
		"129601", "91d",
		"300000000000000mo", "9223372036854775807h", "99999999999999999999",
	} {
		_, err := ParseFollowDuration(bad)
		require.ErrorIs(t, err, ErrInvalidFollowDuration, bad)
	}
}

// TestPolicyValidate_HugeFollowDuration rejects counts that would overflow when converted to minutes.
func TestPolicyValidate_HugeFollowDuration(t *testing.T) {
	t.Parallel()

	policy := Policy{Enabled: true, Method: MethodFollower, FollowDuration: "300000000000000mo"}
	require.ErrorIs(t, policy.Validate(), ErrInvalidFollowDuration)

	decision := Converge(RoomState{
		EmoteOnly:     Seen(false),
		FollowersOnly: Seen(FollowersOff),
		SubsOnly:      Seen(false),
	}, policy, Extras{})
	require.Empty(t, decision.Commands)
	require.Len(t, decision.Skipped, 1)
	require.Equal(t, DimensionFollower, decision.Skipped[0].Dimension)
}

// TestParseMethod accepts case-insensitive names and treats empty as NONE.
func TestParseMethod(t *testing.T) {
	t.Parallel()

	m, err := ParseMethod("follower")
	require.NoError(t, err)
	require.Equal(t, MethodFollower, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	require.Equal(t, MethodNone, m)

	_, err = ParseMethod("VIP")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

// TestMethod_YAML decodes and encodes the method through its text form.
func TestMethod_YAML(t *testing.T) {
	t.Parallel()

	var doc struct {
		Method Method `yaml:"method"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("method: subscriber\n"), &doc))
	require.Equal(t, MethodSubscriber, doc.Method)

	require.Error(t, yaml.Unmarshal([]byte("method: everyone\n"), &doc))

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	require.Equal(t, "method: SUBSCRIBER\n", string(out))
}

// TestPolicy_Validate requires a usable duration only for follower mode.
func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Policy{Method: MethodSubscriber}.Validate())
	require.NoError(t, Policy{Method: MethodFollower, FollowDuration: "1d"}.Validate())
	require.ErrorIs(t, Policy{Method: MethodFollower}.Validate(), ErrInvalidFollowDuration)
	require.ErrorIs(t, Policy{Method: "ALL"}.Validate(), ErrUnknownMethod)
}
