package onesignal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predictarena/pushkit/pkg/catalog"
	"github.com/predictarena/pushkit/pkg/device"
	"github.com/predictarena/pushkit/pkg/onesignal"
)

func testClient(t *testing.T, baseURL string) *onesignal.Client {
	t.Helper()
	client, err := onesignal.NewClient(onesignal.Config{
		AppID:                "app-1",
		APIKey:               "key-1",
		BaseURL:              baseURL,
		MaxTargetsPerRequest: 3,
		RequestsPerSecond:    1000,
	})
	require.NoError(t, err)
	return client
}

func groupedEntry() catalog.Entry {
	return catalog.Entry{
		Key:                "chat_message",
		Status:             catalog.StatusActive,
		Dedupe:             catalog.Dedupe{Scope: catalog.ScopePerUserPerEvent},
		Rollout:            catalog.Rollout{Enabled: true, Percentage: 100},
		CollapseIDFormat:   "chat-{league_id}",
		ThreadIDFormat:     "league-{league_id}",
		AndroidGroupFormat: "league-{league_id}",
		DeepLinkURLFormat:  "app://league/{league_id}/chat",
	}
}

func TestClient_BuildPayload(t *testing.T) {
	t.Parallel()
	client := testClient(t, "http://unused")

	t.Run("grouping fields populated from catalog templates", func(t *testing.T) {
		t.Parallel()
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{
			Title:          "New message",
			Body:           "hello",
			Targets:        []device.Target{{Type: device.TargetExternalID, Value: "u1"}},
			GroupingParams: map[string]string{"league_id": "42"},
		})

		assert.Equal(t, "app-1", n.AppID)
		assert.Equal(t, map[string]string{"en": "New message"}, n.Headings)
		assert.Equal(t, map[string]string{"en": "hello"}, n.Contents)
		assert.Equal(t, "chat-42", n.CollapseID)
		assert.Equal(t, "league-42", n.ThreadID)
		assert.Equal(t, "league-42", n.AndroidGroup)
		assert.Equal(t, "app://league/42/chat", n.URL)
		assert.Equal(t, []string{"u1"}, n.IncludeExternalUserIDs)
		assert.Empty(t, n.IncludePlayerIDs)
	})

	t.Run("explicit url wins over deep link template", func(t *testing.T) {
		t.Parallel()
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{
			URL:            "app://settings",
			Targets:        []device.Target{{Type: device.TargetPushToken, Value: "tok-1"}},
			GroupingParams: map[string]string{"league_id": "42"},
		})
		assert.Equal(t, "app://settings", n.URL)
		assert.Equal(t, []string{"tok-1"}, n.IncludePlayerIDs)
	})

	t.Run("no grouping templates leaves fields empty", func(t *testing.T) {
		t.Parallel()
		entry := groupedEntry()
		entry.CollapseIDFormat = ""
		entry.ThreadIDFormat = ""
		entry.AndroidGroupFormat = ""
		entry.DeepLinkURLFormat = ""

		n := client.BuildPayload(entry, onesignal.SendOptions{
			Targets: []device.Target{{Type: device.TargetPushToken, Value: "tok-1"}},
		})
		assert.Empty(t, n.CollapseID)
		assert.Empty(t, n.ThreadID)
		assert.Empty(t, n.AndroidGroup)
		assert.Empty(t, n.URL)
	})

	t.Run("external ids win over tokens in a mixed list", func(t *testing.T) {
		t.Parallel()
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{
			Targets: []device.Target{
				{Type: device.TargetPushToken, Value: "tok-1"},
				{Type: device.TargetExternalID, Value: "u1"},
			},
		})
		assert.Equal(t, []string{"u1"}, n.IncludeExternalUserIDs)
		assert.Empty(t, n.IncludePlayerIDs)
	})
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	valid := onesignal.Config{
		AppID: "app", APIKey: "key", BaseURL: "http://x",
		MaxTargetsPerRequest: 10, RequestsPerSecond: 1,
	}

	tests := []struct {
		name   string
		mutate func(*onesignal.Config)
	}{
		{"missing app id", func(c *onesignal.Config) { c.AppID = "" }},
		{"missing api key", func(c *onesignal.Config) { c.APIKey = "" }},
		{"missing base url", func(c *onesignal.Config) { c.BaseURL = "" }},
		{"zero chunk size", func(c *onesignal.Config) { c.MaxTargetsPerRequest = 0 }},
		{"zero rate", func(c *onesignal.Config) { c.RequestsPerSecond = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			_, err := onesignal.NewClient(cfg)
			assert.ErrorIs(t, err, onesignal.ErrInvalidConfig)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		_, err := onesignal.NewClient(valid)
		assert.NoError(t, err)
	})
}
