package onesignal

import (
	"github.com/predictarena/pushkit/pkg/catalog"
	"github.com/predictarena/pushkit/pkg/device"
)

// Notification is the JSON body posted to the provider's create-notification
// endpoint. Exactly one of IncludeExternalUserIDs / IncludePlayerIDs is set
// per request; mixing addressing modes is not supported by the API.
type Notification struct {
	AppID    string            `json:"app_id"`
	Headings map[string]string `json:"headings,omitempty"`
	Contents map[string]string `json:"contents,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
	URL      string            `json:"url,omitempty"`

	IncludeExternalUserIDs []string `json:"include_external_user_ids,omitempty"`
	IncludePlayerIDs       []string `json:"include_player_ids,omitempty"`

	// Grouping keys prevent the provider from displaying duplicate
	// notifications for the same logical event. Populated whenever the
	// catalog defines the corresponding template.
	CollapseID   string `json:"collapse_id,omitempty"`
	ThreadID     string `json:"thread_id,omitempty"`
	AndroidGroup string `json:"android_group,omitempty"`
}

// SendOptions carries the message content and recipients for one logical
// send. GroupingParams feed the catalog's grouping and deep-link templates.
type SendOptions struct {
	Title          string
	Body           string
	Targets        []device.Target
	Data           map[string]string
	URL            string
	GroupingParams map[string]string
}

// BuildPayload assembles the provider payload for one chunk of targets.
// Addressing prefers external user ids over raw device tokens when targets
// carry both kinds; the caller is expected to pass a homogeneous chunk (see
// SendBatched).
func (c *Client) BuildPayload(entry catalog.Entry, opts SendOptions) *Notification {
	n := &Notification{
		AppID: c.cfg.AppID,
		Data:  opts.Data,
		URL:   opts.URL,
	}

	if opts.Title != "" {
		n.Headings = map[string]string{"en": opts.Title}
	}
	if opts.Body != "" {
		n.Contents = map[string]string{"en": opts.Body}
	}

	if n.URL == "" && entry.DeepLinkURLFormat != "" {
		n.URL = catalog.FormatTemplate(entry.DeepLinkURLFormat, opts.GroupingParams)
	}

	if entry.CollapseIDFormat != "" {
		n.CollapseID = catalog.FormatTemplate(entry.CollapseIDFormat, opts.GroupingParams)
	}
	if entry.ThreadIDFormat != "" {
		n.ThreadID = catalog.FormatTemplate(entry.ThreadIDFormat, opts.GroupingParams)
	}
	if entry.AndroidGroupFormat != "" {
		n.AndroidGroup = catalog.FormatTemplate(entry.AndroidGroupFormat, opts.GroupingParams)
	}

	for _, t := range opts.Targets {
		switch t.Type {
		case device.TargetExternalID:
			n.IncludeExternalUserIDs = append(n.IncludeExternalUserIDs, t.Value)
		case device.TargetPushToken:
			n.IncludePlayerIDs = append(n.IncludePlayerIDs, t.Value)
		}
	}
	// External ids win when a mixed target list slips through: they are
	// resilient to device churn, tokens are not.
	if len(n.IncludeExternalUserIDs) > 0 {
		n.IncludePlayerIDs = nil
	}

	return n
}

// recipientCount returns how many targets the payload addresses.
func (n *Notification) recipientCount() int {
	if len(n.IncludeExternalUserIDs) > 0 {
		return len(n.IncludeExternalUserIDs)
	}
	return len(n.IncludePlayerIDs)
}
