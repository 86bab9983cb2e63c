// Package sendlog is the idempotency ledger and audit trail of the push
// dispatch engine. Every attempted notification send is gatekept by a claim
// on the natural key (environment, notification_key, event_id, user_id):
// an unconditional insert of a pending row under a uniqueness constraint.
// Whoever wins the insert owns the tuple and writes exactly one terminal
// result; everyone else observes a duplicate and does no further work.
//
//	outcome, err := store.Claim(ctx, sendlog.ClaimKey{
//	    Environment:     "production",
//	    NotificationKey: "chat_message",
//	    EventID:         "league:42:msg:9001",
//	    UserID:          "user-123",
//	})
//	if err != nil {
//	    // storage failure: fail closed, count the user as failed
//	}
//	if !outcome.Claimed {
//	    // already handled by a concurrent or earlier invocation
//	}
//
// This insert-first design is intentionally the engine's only coordination
// primitive. It survives process crashes without a lock service: a crashed
// dispatch leaves a pending row that permanently blocks re-delivery of that
// exact event+user, trading "always eventually send" for "never double
// send". Stuck pending rows require out-of-band remediation; there is no
// built-in reclaim.
package sendlog
