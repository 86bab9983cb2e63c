package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predictarena/pushkit/pkg/catalog"
)

func validEntry(key string) catalog.Entry {
	return catalog.Entry{
		Key:      key,
		Owner:    "notifications",
		Status:   catalog.StatusActive,
		Channels: []string{"push"},
		Dedupe:   catalog.Dedupe{Scope: catalog.ScopePerUserPerEvent},
		Rollout:  catalog.Rollout{Enabled: true, Percentage: 100},
	}
}

func TestCatalog_Lookup(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New([]catalog.Entry{validEntry("chat_message")})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		entry, err := cat.Lookup("chat_message")
		require.NoError(t, err)
		assert.Equal(t, "chat_message", entry.Key)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		_, err := cat.Lookup("nope")
		assert.ErrorIs(t, err, catalog.ErrEntryNotFound)
	})
}

func TestCatalog_IsEnabled(t *testing.T) {
	t.Parallel()

	active := validEntry("active_key")

	deprecated := validEntry("deprecated_key")
	deprecated.Status = catalog.StatusDeprecated

	disabled := validEntry("disabled_key")
	disabled.Status = catalog.StatusDisabled

	rolloutOff := validEntry("rollout_off_key")
	rolloutOff.Rollout.Enabled = false

	cat, err := catalog.New([]catalog.Entry{active, deprecated, disabled, rolloutOff})
	require.NoError(t, err)

	assert.True(t, cat.IsEnabled("active_key"))
	assert.False(t, cat.IsEnabled("deprecated_key"))
	assert.False(t, cat.IsEnabled("disabled_key"))
	assert.False(t, cat.IsEnabled("rollout_off_key"))
	assert.False(t, cat.IsEnabled("unknown_key"))
}

func TestCatalog_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*catalog.Entry)
	}{
		{"empty key", func(e *catalog.Entry) { e.Key = "" }},
		{"unknown status", func(e *catalog.Entry) { e.Status = "sort_of_active" }},
		{"unknown dedupe scope", func(e *catalog.Entry) { e.Dedupe.Scope = "per_galaxy" }},
		{"rollout percentage above 100", func(e *catalog.Entry) { e.Rollout.Percentage = 101 }},
		{"negative rollout percentage", func(e *catalog.Entry) { e.Rollout.Percentage = -1 }},
		{"negative cooldown", func(e *catalog.Entry) { e.Cooldown.PerUserSeconds = -30 }},
		{"half-open quiet hours", func(e *catalog.Entry) { e.QuietHours = catalog.QuietHours{Start: "23:00"} }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entry := validEntry("some_key")
			tt.mutate(&entry)
			_, err := catalog.New([]catalog.Entry{entry})
			assert.ErrorIs(t, err, catalog.ErrInvalidEntry)
		})
	}

	t.Run("duplicate keys rejected", func(t *testing.T) {
		t.Parallel()
		_, err := catalog.New([]catalog.Entry{validEntry("dup"), validEntry("dup")})
		assert.ErrorIs(t, err, catalog.ErrInvalidEntry)
	})
}
