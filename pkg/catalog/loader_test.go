package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predictarena/pushkit/pkg/catalog"
)

const sampleYAML = `
notifications:
  - key: chat_message
    owner: social
    status: active
    channels: [push]
    audience: "league members except the sender"
    trigger:
      name: chat.message.created
      event_id_format: "league:{league_id}:msg:{message_id}"
    dedupe:
      scope: per_user_per_event
      ttl_seconds: 86400
    cooldown:
      per_user_seconds: 30
    quiet_hours:
      start: "23:00"
      end: "07:00"
    preferences:
      preference_key: chat_messages
      default: true
    rollout:
      enabled: true
      percentage: 100
    collapse_id_format: "chat-{league_id}"
    thread_id_format: "league-{league_id}"
    android_group_format: "league-{league_id}"
    deep_link_url_format: "app://league/{league_id}/chat"
  - key: gameweek_published
    owner: core
    status: active
    channels: [push]
    trigger:
      name: gameweek.published
      event_id_format: "gw:{gw_id}:published"
    dedupe:
      scope: global
    rollout:
      enabled: true
      percentage: 25
`

func TestFromYAML(t *testing.T) {
	t.Parallel()

	cat, err := catalog.FromYAML([]byte(sampleYAML))
	require.NoError(t, err)

	chat, err := cat.Lookup("chat_message")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusActive, chat.Status)
	assert.Equal(t, catalog.ScopePerUserPerEvent, chat.Dedupe.Scope)
	assert.Equal(t, 30, chat.Cooldown.PerUserSeconds)
	assert.Equal(t, "23:00", chat.QuietHours.Start)
	assert.Equal(t, "07:00", chat.QuietHours.End)
	assert.Equal(t, "chat_messages", chat.Preferences.PreferenceKey)
	assert.True(t, chat.Preferences.Default)
	assert.Equal(t, "chat-{league_id}", chat.CollapseIDFormat)

	gw, err := cat.Lookup("gameweek_published")
	require.NoError(t, err)
	assert.Equal(t, 25, gw.Rollout.Percentage)
	assert.Len(t, cat.Keys(), 2)
}

func TestFromYAML_Invalid(t *testing.T) {
	t.Parallel()

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		_, err := catalog.FromYAML([]byte("notifications: ["))
		assert.ErrorIs(t, err, catalog.ErrInvalidSource)
	})

	t.Run("invalid entry", func(t *testing.T) {
		t.Parallel()
		_, err := catalog.FromYAML([]byte(`
notifications:
  - key: bad_status
    status: weird
    dedupe: {scope: global}
`))
		assert.ErrorIs(t, err, catalog.ErrInvalidEntry)
	})
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := catalog.LoadFile("testdata/does-not-exist.yaml")
	assert.ErrorIs(t, err, catalog.ErrInvalidSource)
}
