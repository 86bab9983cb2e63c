// Package policy evaluates the ordered suppression chain that decides
// whether a claimed notification may actually be sent to a user: rollout
// bucket, user preference, quiet hours, cooldown, league mute. The order is
// fixed and evaluation short-circuits at the first failing check, returning
// a named suppression reason that the dispatcher records in the send log.
//
//	chain := policy.NewChain("production", prefStore, ledger,
//	    policy.WithMuteStore(muteStore),
//	    policy.WithCooldownMarker(marker),
//	)
//
//	decision := chain.Evaluate(ctx, userID, entry, policy.Options{LeagueID: "42"})
//	if !decision.Allowed {
//	    // decision.Reason is one of the suppressed_* results
//	}
//
// Two intentional asymmetries worth knowing about:
//
//   - Cooldown, preference and mute lookups fail open: a transient store
//     outage allows the send rather than silently dropping it. The
//     idempotency claim upstream is the fail-closed step.
//   - Quiet hours run on the server's UTC clock, not the user's time zone.
//     This mirrors the original behavior and is a documented limitation,
//     not an oversight to fix here.
package policy
