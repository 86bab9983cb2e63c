// Package dispatch orchestrates push notification delivery: for each user
// of an intent it claims the idempotency lock, runs the policy chain,
// resolves a deliverable device, submits the payload to the provider, and
// records exactly one terminal outcome in the send log.
//
//	dispatcher, err := dispatch.New(cfg, cat, ledger, chain, resolver, client)
//	if err != nil { ... }
//
//	batch, err := dispatcher.Dispatch(ctx, dispatch.Intent{
//	    NotificationKey: "chat_message",
//	    EventID:         "league:42:msg:9001",
//	    UserIDs:         members,
//	    Title:           "New message in Premier Punters",
//	    Body:            preview,
//	    LeagueID:        "42",
//	})
//
// Guarantees:
//
//   - At most one delivered push per (notification type, event, user),
//     enforced by the send-log claim; duplicate invocations resolve to
//     suppressed_duplicate without touching the provider.
//   - A complete BatchResult for every non-configuration error; per-user
//     failures (including panics) never abort the remaining users.
//   - Bounded concurrency per intent; no cancellation once started, since
//     partial sends must be reconciled through the ledger.
package dispatch
