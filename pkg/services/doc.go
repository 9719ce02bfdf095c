// Package services implements the process-wide publish/subscribe registry
// backing hierarchical services.
//
// The registry maps a service ID to one entry holding two node sets,
// publishers and subscribers. An entry exists if and only if at least one
// node participates; it is removed the instant both sets empty. When
// publication info for an ID changes, every current subscriber is notified
// through the narrow Node contract — the registry never learns a node's
// full type.
//
// All four operations are O(1) amortized plus O(subscribers) for the
// notification fan-out. Fan-out iterates over a snapshot of the subscriber
// set, so subscribers may unsubscribe (or publishers unpublish) from
// within a notification without corrupting the loop.
package services
