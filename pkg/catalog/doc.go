// Package catalog holds the static per-notification-type configuration for
// the push dispatch engine: policy parameters (rollout, cooldown, quiet
// hours, preference binding) and provider message-template formats.
//
// The catalog is a pure lookup table with no I/O after load. It is built
// once at process start from a YAML source document and is read-only at
// runtime:
//
//	cat, err := catalog.LoadFile("notifications.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	entry, err := cat.Lookup("chat_message")
//	if errors.Is(err, catalog.ErrEntryNotFound) {
//	    // unknown notification type
//	}
//
// Template strings use literal {name} placeholders. FormatTemplate is total:
// placeholders without a matching parameter pass through unchanged rather
// than erroring.
package catalog
