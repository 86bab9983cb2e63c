package onesignal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predictarena/pushkit/pkg/device"
	"github.com/predictarena/pushkit/pkg/onesignal"
)

// recordingServer captures every create-notification request body and serves
// canned responses per call.
type recordingServer struct {
	mu        sync.Mutex
	bodies    []map[string]any
	responses []response
}

type response struct {
	status int
	body   string
}

func (s *recordingServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.bodies = append(s.bodies, body)

		resp := response{status: http.StatusOK, body: `{"id":"n-1","recipients":1}`}
		if len(s.responses) > 0 {
			resp = s.responses[0]
			s.responses = s.responses[1:]
		}
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}
}

func (s *recordingServer) requests() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.bodies...)
}

func TestClient_Send(t *testing.T) {
	t.Parallel()

	t.Run("successful send returns provider id", func(t *testing.T) {
		t.Parallel()
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/notifications", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"abc123","recipients":2}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{
			Body:    "hi",
			Targets: []device.Target{{Type: device.TargetExternalID, Value: "u1"}},
		})

		got, err := client.Send(context.Background(), n)
		require.NoError(t, err)
		assert.Equal(t, "abc123", got.ProviderID)
		assert.Equal(t, 2, got.Recipients)
		assert.Equal(t, "Basic key-1", gotAuth)
	})

	t.Run("no targets fails before the wire", func(t *testing.T) {
		t.Parallel()
		client := testClient(t, "http://127.0.0.1:1")
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{Body: "hi"})

		_, err := client.Send(context.Background(), n)
		assert.ErrorIs(t, err, onesignal.ErrNoTargets)
	})

	t.Run("error array maps to send failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":["Message contents must not be empty"]}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{
			Targets: []device.Target{{Type: device.TargetExternalID, Value: "u1"}},
		})

		_, err := client.Send(context.Background(), n)
		assert.ErrorIs(t, err, onesignal.ErrSendFailed)
		assert.ErrorContains(t, err, "Message contents must not be empty")
	})

	t.Run("error object maps to send failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"","errors":{"invalid_aliases":{"external_id":["bad"]}}}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{
			Targets: []device.Target{{Type: device.TargetExternalID, Value: "u1"}},
		})

		_, err := client.Send(context.Background(), n)
		assert.ErrorIs(t, err, onesignal.ErrSendFailed)
	})

	t.Run("all recipients unsubscribed maps to ErrNotSubscribed", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"","recipients":0,"errors":["All included players are not subscribed"]}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{
			Body:    "hi",
			Targets: []device.Target{{Type: device.TargetPushToken, Value: "tok-1"}},
		})

		_, err := client.Send(context.Background(), n)
		assert.ErrorIs(t, err, onesignal.ErrNotSubscribed)
	})

	t.Run("non-2xx without errors field still fails", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		n := client.BuildPayload(groupedEntry(), onesignal.SendOptions{
			Body:    "hi",
			Targets: []device.Target{{Type: device.TargetExternalID, Value: "u1"}},
		})

		_, err := client.Send(context.Background(), n)
		assert.ErrorIs(t, err, onesignal.ErrSendFailed)
	})
}

func TestClient_SendBatched(t *testing.T) {
	t.Parallel()

	manyTargets := func(typ device.TargetType, prefix string, n int) []device.Target {
		out := make([]device.Target, n)
		for i := range out {
			out[i] = device.Target{Type: typ, Value: prefix + string(rune('a'+i))}
		}
		return out
	}

	t.Run("chunks by provider limit", func(t *testing.T) {
		t.Parallel()
		rec := &recordingServer{}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		client := testClient(t, srv.URL) // MaxTargetsPerRequest is 3
		got := client.SendBatched(context.Background(), groupedEntry(), onesignal.SendOptions{
			Body:    "hi",
			Targets: manyTargets(device.TargetExternalID, "u-", 7),
		})

		assert.True(t, got.Success)
		assert.Len(t, got.ProviderIDs, 3)
		assert.Equal(t, 3, got.Recipients)

		reqs := rec.requests()
		require.Len(t, reqs, 3)
		sizes := make([]int, 0, 3)
		for _, body := range reqs {
			ids, ok := body["include_external_user_ids"].([]any)
			require.True(t, ok)
			sizes = append(sizes, len(ids))
		}
		assert.ElementsMatch(t, []int{3, 3, 1}, sizes)
	})

	t.Run("never mixes external ids and tokens in one request", func(t *testing.T) {
		t.Parallel()
		rec := &recordingServer{}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		client := testClient(t, srv.URL)
		targets := append(
			manyTargets(device.TargetExternalID, "u-", 2),
			manyTargets(device.TargetPushToken, "tok-", 2)...,
		)
		got := client.SendBatched(context.Background(), groupedEntry(), onesignal.SendOptions{
			Body: "hi", Targets: targets,
		})

		assert.True(t, got.Success)
		reqs := rec.requests()
		require.Len(t, reqs, 2)
		for _, body := range reqs {
			_, hasExternal := body["include_external_user_ids"]
			_, hasTokens := body["include_player_ids"]
			assert.False(t, hasExternal && hasTokens)
			assert.True(t, hasExternal || hasTokens)
		}
	})

	t.Run("failed chunk does not abort the rest", func(t *testing.T) {
		t.Parallel()
		rec := &recordingServer{responses: []response{
			{status: http.StatusBadRequest, body: `{"errors":["boom"]}`},
			{status: http.StatusOK, body: `{"id":"n-2","recipients":3}`},
		}}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		client := testClient(t, srv.URL)
		got := client.SendBatched(context.Background(), groupedEntry(), onesignal.SendOptions{
			Body:    "hi",
			Targets: manyTargets(device.TargetExternalID, "u-", 6),
		})

		assert.False(t, got.Success)
		assert.Equal(t, []string{"n-2"}, got.ProviderIDs)
		assert.Equal(t, 3, got.Recipients)
		require.Len(t, got.Errors, 1)
		assert.ErrorIs(t, got.Errors[0], onesignal.ErrSendFailed)
	})

	t.Run("empty target list reports ErrNoTargets", func(t *testing.T) {
		t.Parallel()
		client := testClient(t, "http://127.0.0.1:1")
		got := client.SendBatched(context.Background(), groupedEntry(), onesignal.SendOptions{Body: "hi"})

		assert.False(t, got.Success)
		require.Len(t, got.Errors, 1)
		assert.ErrorIs(t, got.Errors[0], onesignal.ErrNoTargets)
	})
}

func TestClient_VerifySubscription(t *testing.T) {
	t.Parallel()

	t.Run("subscribed token device", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/players/tok-1", r.URL.Path)
			assert.Equal(t, "app-1", r.URL.Query().Get("app_id"))
			_, _ = w.Write([]byte(`{"id":"tok-1","notification_types":1}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		ok, err := client.VerifySubscription(context.Background(), device.Target{Type: device.TargetPushToken, Value: "tok-1"})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("external id lookup path", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/apps/app-1/users/by/external_id/u1", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"u1","notification_types":1}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		ok, err := client.VerifySubscription(context.Background(), device.Target{Type: device.TargetExternalID, Value: "u1"})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("opted-out device is not subscribed", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"tok-1","notification_types":-2}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		ok, err := client.VerifySubscription(context.Background(), device.Target{Type: device.TargetPushToken, Value: "tok-1"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown device is not subscribed", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		ok, err := client.VerifySubscription(context.Background(), device.Target{Type: device.TargetPushToken, Value: "gone"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid identifier is not subscribed", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"tok-1","invalid_identifier":true,"notification_types":1}`))
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		ok, err := client.VerifySubscription(context.Background(), device.Target{Type: device.TargetPushToken, Value: "tok-1"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("server error wraps ErrVerifyFailed", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := testClient(t, srv.URL)
		_, err := client.VerifySubscription(context.Background(), device.Target{Type: device.TargetPushToken, Value: "tok-1"})
		assert.ErrorIs(t, err, onesignal.ErrVerifyFailed)
	})
}
