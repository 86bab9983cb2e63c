// Package device resolves a user id to a concrete deliverable push target.
// When a user has several registrations the most recently updated one wins,
// with a stable tiebreak so repeated resolutions agree.
//
// An optional Verifier (the OneSignal client) confirms live deliverability
// before the send. A confirmed unsubscribe is written back to the local
// store so the provider is not re-queried for a dead device; a verifier
// transport failure fails open and the send proceeds.
package device
