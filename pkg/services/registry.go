package services

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Node is the narrow contract the registry uses to call back into
// subscriber nodes when publication info changes.
type Node interface {
	NotifyServiceChanged(id string)
}

// entry tracks the participants of one service ID. A node may appear in
// both sets simultaneously (self-subscription with chaining); removal from
// one set does not affect membership in the other.
type entry struct {
	publishers  mapset.Set[Node]
	subscribers mapset.Set[Node]
}

func newEntry() *entry {
	return &entry{
		publishers:  mapset.NewSet[Node](),
		subscribers: mapset.NewSet[Node](),
	}
}

func (e *entry) empty() bool {
	return e.publishers.Cardinality() == 0 && e.subscribers.Cardinality() == 0
}

// Registry is the index from service ID to participating nodes.
// All mutation goes through one mutex; notification fan-out happens
// outside it over a snapshot of the subscriber set.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Default is the process-wide registry. Embedders hosting several
// independent trees in one process can create isolated instances with New.
var Default = New()

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// NotifyPublished records node as a publisher of id, creating the entry on
// first participation, and notifies every current subscriber.
func (r *Registry) NotifyPublished(id string, node Node) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = newEntry()
		r.entries[id] = e
	}
	e.publishers.Add(node)
	subs := e.subscribers.ToSlice()
	r.mu.Unlock()

	for _, sub := range subs {
		sub.NotifyServiceChanged(id)
	}
}

// NotifyUnpublished removes node from the publishers of id. If both sets
// are now empty the entry is deleted; otherwise the remaining subscribers
// are notified, since resolution may now land on a different publisher or
// on "not found".
func (r *Registry) NotifyUnpublished(id string, node Node) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.publishers.Remove(node)
	if e.empty() {
		delete(r.entries, id)
		r.mu.Unlock()
		return
	}
	subs := e.subscribers.ToSlice()
	r.mu.Unlock()

	for _, sub := range subs {
		sub.NotifyServiceChanged(id)
	}
}

// NotifySubscribed records node as a subscriber of id, creating the entry
// on first participation. It does not push a value: the subscribing node
// performs its own initial resolution.
func (r *Registry) NotifySubscribed(id string, node Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = newEntry()
		r.entries[id] = e
	}
	e.subscribers.Add(node)
}

// NotifyUnsubscribed removes node from the subscribers of id, deleting the
// entry when both sets are empty.
func (r *Registry) NotifyUnsubscribed(id string, node Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.subscribers.Remove(node)
	if e.empty() {
		delete(r.entries, id)
	}
}

// HasPublisher reports whether node currently publishes id.
func (r *Registry) HasPublisher(id string, node Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	return ok && e.publishers.Contains(node)
}

// HasSubscriber reports whether node currently subscribes to id.
func (r *Registry) HasSubscriber(id string, node Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	return ok && e.subscribers.Contains(node)
}

// RegistryStats is a point-in-time snapshot of registry occupancy.
type RegistryStats struct {
	// Entries is the number of live service IDs.
	Entries int
	// Publishers and Subscribers count participations, not distinct nodes.
	Publishers  int
	Subscribers int

	CollectedAt time.Time
}

// Stats collects and returns registry occupancy counts.
func (r *Registry) Stats() RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := RegistryStats{
		Entries:     len(r.entries),
		CollectedAt: time.Now(),
	}
	for _, e := range r.entries {
		stats.Publishers += e.publishers.Cardinality()
		stats.Subscribers += e.subscribers.Cardinality()
	}
	return stats
}
