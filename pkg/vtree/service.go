package vtree

import (
	"reflect"

	"github.com/vtree-ui/vtree/pkg/services"
)

// SubscriptionRecord pairs a subscriber's output slot with the default
// value used when no ancestor publishes the service and the UseSelf flag
// that lets a node resolve its own publication of the same ID. The latter
// enables a component to chain to an ancestor's implementation of a
// service it also publishes.
type SubscriptionRecord struct {
	Ref          *Ref[any]
	DefaultValue any
	UseSelf      bool
}

// serviceRegistry is the registry all nodes report to. Process-wide by
// default; swappable for tests and embedders hosting several trees.
var serviceRegistry = services.Default

// SetRegistry replaces the registry used by all nodes and returns the
// previous one. Swap only while no tree is live.
func SetRegistry(r *services.Registry) *services.Registry {
	prev := serviceRegistry
	serviceRegistry = r
	return prev
}

func registry() *services.Registry {
	return serviceRegistry
}

// PublishService makes value available under id to this node and its
// descendants. Re-publishing the identical value is a no-op; otherwise the
// registry is notified and every current subscriber re-resolves.
func (vn *VN) PublishService(id string, value any) {
	if vn.publishedServices == nil {
		vn.publishedServices = make(map[string]any)
	} else if existing, ok := vn.publishedServices[id]; ok && sameValue(existing, value) {
		return
	}

	vn.publishedServices[id] = value
	registry().NotifyPublished(id, vn)
}

// UnpublishService withdraws this node's publication of id. The local map
// is dropped when it becomes empty so idle nodes carry no service state.
func (vn *VN) UnpublishService(id string) {
	if vn.publishedServices == nil {
		return
	}
	if _, ok := vn.publishedServices[id]; !ok {
		return
	}

	delete(vn.publishedServices, id)
	if len(vn.publishedServices) == 0 {
		vn.publishedServices = nil
	}
	registry().NotifyUnpublished(id, vn)
}

// SubscribeService registers ref as the output slot for id. The current
// value is resolved and written immediately, so a new subscriber sees the
// correct value without waiting for the next change. defaultValue is
// written whenever no publisher is found anywhere on the parent chain.
func (vn *VN) SubscribeService(id string, ref *Ref[any], defaultValue any, useSelf bool) {
	if vn.subscribedServices == nil {
		vn.subscribedServices = make(map[string]*SubscriptionRecord)
	}

	vn.subscribedServices[id] = &SubscriptionRecord{
		Ref:          ref,
		DefaultValue: defaultValue,
		UseSelf:      useSelf,
	}
	registry().NotifySubscribed(id, vn)

	if ref != nil {
		ref.Set(vn.GetService(id, defaultValue, useSelf))
	}
}

// UnsubscribeService withdraws the subscription for id and clears its
// output slot back to "no value".
func (vn *VN) UnsubscribeService(id string) {
	if vn.subscribedServices == nil {
		return
	}
	rec, ok := vn.subscribedServices[id]
	if !ok {
		return
	}

	if rec.Ref != nil {
		rec.Ref.Clear()
	}
	delete(vn.subscribedServices, id)
	if len(vn.subscribedServices) == 0 {
		vn.subscribedServices = nil
	}
	registry().NotifyUnsubscribed(id, vn)
}

// GetService resolves id without creating a subscription, returning
// defaultValue when no publisher exists anywhere on the parent chain.
// A published nil is a valid service value and is returned as such.
func (vn *VN) GetService(id string, defaultValue any, useSelf bool) any {
	if v, ok := vn.FindService(id, useSelf); ok {
		return v
	}
	return defaultValue
}

// FindService walks the parent chain looking for the nearest publisher of
// id, reporting whether one was found. useSelf gates only this node's own
// publication: once the walk moves to an ancestor, self-publication is
// always considered regardless of the originating caller's flag.
func (vn *VN) FindService(id string, useSelf bool) (any, bool) {
	if useSelf {
		if v, ok := vn.publishedServices[id]; ok {
			return v, true
		}
	}
	if vn.Parent != nil {
		return vn.Parent.FindService(id, true)
	}
	return nil, false
}

// NotifyServiceChanged is invoked by the registry whenever publication
// info for id changes anywhere in the tree. If this node subscribes to id,
// the value is re-resolved with the subscription's stored default and
// UseSelf flag and written into the output slot.
func (vn *VN) NotifyServiceChanged(id string) {
	rec, ok := vn.subscribedServices[id]
	if !ok {
		return
	}
	if rec.Ref != nil {
		rec.Ref.Set(vn.GetService(id, rec.DefaultValue, rec.UseSelf))
	}
}

// sameValue reports whether a and b are the identical service value.
// Values of uncomparable kinds are always treated as changed.
func sameValue(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		// Both untyped nil.
		return true
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}
