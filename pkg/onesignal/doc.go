// Package onesignal is the push provider client: it builds create-notification
// payloads (including the collapse/thread/group keys that stop the provider
// from displaying duplicates for one logical event), submits them with
// rate limiting, and chunks recipient lists that exceed the provider's
// per-request limit.
//
//	client, err := onesignal.NewClient(cfg)
//	if err != nil {
//	    // configuration error: fatal at startup
//	}
//
//	res := client.SendBatched(ctx, entry, onesignal.SendOptions{
//	    Title:   "Goal!",
//	    Body:    "Kane scores for Bayern",
//	    Targets: targets,
//	})
//
// ErrNotSubscribed is the one provider error callers must branch on: it is
// a suppression outcome, not a failure, and triggers the local unsubscribed
// write-back in the dispatcher.
package onesignal
