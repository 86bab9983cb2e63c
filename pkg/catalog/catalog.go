package catalog

// Status is the lifecycle state of a notification type.
type Status string

const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
	StatusDisabled   Status = "disabled"
)

// DedupeScope describes the granularity of the idempotency key for a
// notification type. Enforcement lives in the send-log uniqueness
// constraint; the scope is carried for caller documentation and tooling.
type DedupeScope string

const (
	ScopePerUserPerEvent DedupeScope = "per_user_per_event"
	ScopePerLeaguePerGW  DedupeScope = "per_league_per_gw"
	ScopeGlobal          DedupeScope = "global"
)

// Trigger names the upstream event source and the template used by callers
// to derive a deterministic event id.
type Trigger struct {
	Name          string `yaml:"name"`
	EventIDFormat string `yaml:"event_id_format"`
}

// Dedupe carries the declared idempotency scope. TTLSeconds is informational
// only; rows are never expired or reclaimed.
type Dedupe struct {
	Scope      DedupeScope `yaml:"scope"`
	TTLSeconds int         `yaml:"ttl_seconds"`
}

// Cooldown limits how often a single user may receive this notification
// type, independent of event ids. Zero disables the check.
type Cooldown struct {
	PerUserSeconds int `yaml:"per_user_seconds"`
}

// QuietHours is a daily suppression window in HH:MM on the server clock.
// Empty Start/End disables the window. Start > End means an overnight
// window (e.g. 23:00-07:00).
type QuietHours struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Preferences binds a notification type to a user preference toggle.
// An empty PreferenceKey means the type cannot be opted out of.
type Preferences struct {
	PreferenceKey string `yaml:"preference_key"`
	Default       bool   `yaml:"default"`
}

// Rollout controls staged enablement. Percentage buckets users
// deterministically into [0,100).
type Rollout struct {
	Enabled    bool `yaml:"enabled"`
	Percentage int  `yaml:"percentage"`
}

// Entry is the immutable per-notification-type configuration. Entries are
// produced by a build step from source documents and are read-only at
// runtime.
type Entry struct {
	Key      string   `yaml:"key"`
	Owner    string   `yaml:"owner"`
	Status   Status   `yaml:"status"`
	Channels []string `yaml:"channels"`
	Audience string   `yaml:"audience"`

	Trigger     Trigger     `yaml:"trigger"`
	Dedupe      Dedupe      `yaml:"dedupe"`
	Cooldown    Cooldown    `yaml:"cooldown"`
	QuietHours  QuietHours  `yaml:"quiet_hours"`
	Preferences Preferences `yaml:"preferences"`
	Rollout     Rollout     `yaml:"rollout"`

	CollapseIDFormat   string `yaml:"collapse_id_format"`
	ThreadIDFormat     string `yaml:"thread_id_format"`
	AndroidGroupFormat string `yaml:"android_group_format"`
	DeepLinkURLFormat  string `yaml:"deep_link_url_format"`
}

// Catalog is an immutable lookup table of notification type entries,
// loaded once at process start.
type Catalog struct {
	entries map[string]Entry
}

// New builds a catalog from a list of entries. Duplicate keys are rejected
// so a bad build artifact fails at startup rather than shadowing entries
// silently.
func New(entries []Entry) (*Catalog, error) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, exists := m[e.Key]; exists {
			return nil, duplicateKeyError(e.Key)
		}
		m[e.Key] = e
	}
	return &Catalog{entries: m}, nil
}

// Lookup returns the entry for key, or ErrEntryNotFound.
func (c *Catalog) Lookup(key string) (Entry, error) {
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, notFoundError(key)
	}
	return e, nil
}

// IsEnabled reports whether a notification type may be dispatched at all:
// the entry must exist, be active, and have rollout enabled. Percentage
// bucketing is a per-user concern handled by the policy chain.
func (c *Catalog) IsEnabled(key string) bool {
	e, ok := c.entries[key]
	return ok && e.Status == StatusActive && e.Rollout.Enabled
}

// Keys returns all catalog keys, primarily for diagnostics and tests.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
