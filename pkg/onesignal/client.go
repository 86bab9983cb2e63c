package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/predictarena/pushkit/pkg/catalog"
	"github.com/predictarena/pushkit/pkg/device"
)

// Client is a OneSignal REST API client. All outbound calls pass through a
// shared rate limiter sized from Config.RequestsPerSecond.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, primarily for tests.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient validates the configuration and creates a client. Missing
// credentials fail here, at startup, rather than per-send.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.AppID == "" {
		return nil, fmt.Errorf("%w: AppID is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: APIKey is required", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	}
	if cfg.MaxTargetsPerRequest <= 0 {
		return nil, fmt.Errorf("%w: MaxTargetsPerRequest must be positive", ErrInvalidConfig)
	}
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("%w: RequestsPerSecond must be positive", ErrInvalidConfig)
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SendResult is the provider's answer to one create-notification request.
type SendResult struct {
	ProviderID string
	Recipients int
}

// sendResponse is the provider's raw response shape. Errors may be an array
// of strings or an object keyed by error class.
type sendResponse struct {
	ID         string          `json:"id"`
	Recipients int             `json:"recipients"`
	Errors     json.RawMessage `json:"errors"`
}

// Send posts one payload. A provider answer indicating that no included
// recipient is subscribed maps to ErrNotSubscribed so the dispatcher can
// record it as a suppression rather than a failure.
func (c *Client) Send(ctx context.Context, n *Notification) (*SendResult, error) {
	if n.recipientCount() == 0 {
		return nil, ErrNoTargets
	}

	body, err := json.Marshal(n)
	if err != nil {
		return nil, errors.Join(ErrSendFailed, err)
	}

	respBody, status, err := c.do(ctx, http.MethodPost, "/notifications", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Join(ErrSendFailed, err)
	}

	var resp sendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, errors.Join(ErrSendFailed, fmt.Errorf("decode response (status %d): %w", status, err))
	}

	if providerErrs := flattenErrors(resp.Errors); len(providerErrs) > 0 {
		if isNotSubscribed(providerErrs) {
			return nil, ErrNotSubscribed
		}
		return nil, errors.Join(ErrSendFailed,
			fmt.Errorf("provider status %d: %s", status, strings.Join(providerErrs, "; ")))
	}
	if status < 200 || status >= 300 {
		return nil, errors.Join(ErrSendFailed, fmt.Errorf("provider status %d", status))
	}

	return &SendResult{ProviderID: resp.ID, Recipients: resp.Recipients}, nil
}

// BatchSendResult aggregates the chunked requests for one logical send.
// Success is false when any chunk failed, while ProviderIDs and Recipients
// still reflect the chunks that went through.
type BatchSendResult struct {
	Success     bool
	ProviderIDs []string
	Recipients  int
	Errors      []error
}

// SendBatched splits the recipients into provider-limit-sized chunks and
// issues independent requests. Chunks are grouped by addressing mode first
// since the API cannot mix external ids and device tokens. A failed chunk
// never aborts the others; partial success is reported accurately.
func (c *Client) SendBatched(ctx context.Context, entry catalog.Entry, opts SendOptions) *BatchSendResult {
	result := &BatchSendResult{Success: true}

	byType := map[device.TargetType][]device.Target{}
	for _, t := range opts.Targets {
		byType[t.Type] = append(byType[t.Type], t)
	}
	if len(byType) == 0 {
		result.Success = false
		result.Errors = append(result.Errors, ErrNoTargets)
		return result
	}

	for _, targets := range byType {
		for start := 0; start < len(targets); start += c.cfg.MaxTargetsPerRequest {
			end := min(start+c.cfg.MaxTargetsPerRequest, len(targets))

			chunkOpts := opts
			chunkOpts.Targets = targets[start:end]
			payload := c.BuildPayload(entry, chunkOpts)

			sent, err := c.Send(ctx, payload)
			if err != nil {
				result.Success = false
				result.Errors = append(result.Errors, err)
				continue
			}
			result.ProviderIDs = append(result.ProviderIDs, sent.ProviderID)
			result.Recipients += sent.Recipients
		}
	}

	return result
}

// playerResponse is the subset of the view-device answer the verifier needs.
// Negative notification_types means the device opted out.
type playerResponse struct {
	ID                string `json:"id"`
	InvalidIdentifier bool   `json:"invalid_identifier"`
	NotificationTypes int    `json:"notification_types"`
}

// VerifySubscription queries the provider for the target's live
// subscription state. "Not found", an invalid identifier, or an opted-out
// device all count as not subscribed. Transport errors are wrapped in
// ErrVerifyFailed; callers fail open on them.
func (c *Client) VerifySubscription(ctx context.Context, target device.Target) (bool, error) {
	var path string
	switch target.Type {
	case device.TargetPushToken:
		path = "/players/" + url.PathEscape(target.Value) + "?app_id=" + url.QueryEscape(c.cfg.AppID)
	case device.TargetExternalID:
		path = "/apps/" + url.PathEscape(c.cfg.AppID) + "/users/by/external_id/" + url.PathEscape(target.Value)
	default:
		return false, fmt.Errorf("%w: unknown target type %q", ErrVerifyFailed, target.Type)
	}

	respBody, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, errors.Join(ErrVerifyFailed, err)
	}
	if status == http.StatusNotFound || status == http.StatusBadRequest {
		return false, nil
	}
	if status < 200 || status >= 300 {
		return false, errors.Join(ErrVerifyFailed, fmt.Errorf("provider status %d", status))
	}

	var player playerResponse
	if err := json.Unmarshal(respBody, &player); err != nil {
		return false, errors.Join(ErrVerifyFailed, err)
	}
	if player.InvalidIdentifier || player.NotificationTypes < 0 {
		return false, nil
	}
	return true, nil
}

// do performs one rate-limited, authenticated request and returns the raw
// body and status code.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

// flattenErrors normalizes the provider's errors field, which may be a
// string array or an object keyed by error class.
func flattenErrors(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		out := make([]string, 0, len(obj))
		for k, v := range obj {
			out = append(out, fmt.Sprintf("%s: %s", k, string(v)))
		}
		return out
	}

	return []string{string(raw)}
}

// isNotSubscribed matches the provider's phrasing for "every included
// recipient is unsubscribed or unknown".
func isNotSubscribed(errs []string) bool {
	for _, e := range errs {
		lower := strings.ToLower(e)
		if strings.Contains(lower, "not subscribed") ||
			strings.Contains(lower, "invalid_external_user_ids") ||
			strings.Contains(lower, "invalid_player_ids") {
			return true
		}
	}
	return false
}
