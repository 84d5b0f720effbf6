package overlay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRegistry_RememberNeverOverwrites keeps the first captured URL.
func TestRegistry_RememberNeverOverwrites(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	_, ok := r.Lookup("Alerts")
	require.False(t, ok)

	require.True(t, r.Remember(Source{Name: "Alerts", StoredURL: alertsURL}))
	require.False(t, r.Remember(Source{Name: "Alerts", StoredURL: "https://other.example/y"}))

	src, ok := r.Lookup("Alerts")
	require.True(t, ok)
	require.Equal(t, alertsURL, src.StoredURL)
}

// TestRegistry_CopiesInput shields the registry from callers mutating their maps.
func TestRegistry_CopiesInput(t *testing.T) {
	t.Parallel()

	in := map[string]string{"Alerts": alertsURL}
	r := NewRegistry(in)
	in["Alerts"] = "changed"

	out := r.URLs()
	require.Equal(t, alertsURL, out["Alerts"])

	out["Alerts"] = "changed"

	src, _ := r.Lookup("Alerts")
	require.Equal(t, alertsURL, src.StoredURL)
}
