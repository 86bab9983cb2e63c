package device

import (
	"time"

	"github.com/google/uuid"
)

// TargetType distinguishes how a push is addressed at the provider.
type TargetType string

const (
	// TargetExternalID addresses the provider-side alias bound to our user
	// id. Preferred: resilient to device churn.
	TargetExternalID TargetType = "external_id"

	// TargetPushToken addresses one concrete device registration.
	TargetPushToken TargetType = "push_token"
)

// Target is a concrete deliverable push destination for one user.
type Target struct {
	Type  TargetType
	Value string
}

// Device is one push registration owned by a user. ExternalID is the
// provider-side alias (when linked); Token is the provider's device-level
// subscription id.
type Device struct {
	ID         uuid.UUID
	UserID     string
	Platform   string
	Token      string
	ExternalID string
	Active     bool
	Subscribed bool
	UpdatedAt  time.Time
}

// Target returns the preferred addressing for the device: the external-id
// alias when present, the raw token otherwise.
func (d Device) Target() Target {
	if d.ExternalID != "" {
		return Target{Type: TargetExternalID, Value: d.ExternalID}
	}
	return Target{Type: TargetPushToken, Value: d.Token}
}
