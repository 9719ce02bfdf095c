// Package scheduler provides the tick-based update scheduler that drains
// node update requests and deferred calls from package vtree.
//
// A Scheduler collects work between ticks: node updates requested through
// VN.RequestUpdate and function calls queued for the before- or
// after-update phase. ProcessTick runs one complete pass — before-calls,
// node updates in ascending depth order, after-calls — and advances the
// global tick counter. A node whose LastUpdateTick already matches the
// current tick is skipped, so an ancestor that re-rendered a subtree
// during the same pass never causes a second render of its descendants.
//
// Execution is cooperative and single-threaded: queue mutation is safe
// from any goroutine, but ProcessTick is expected to run on one logical
// thread, typically a session event loop.
package scheduler
