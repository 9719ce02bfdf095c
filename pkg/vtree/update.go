package vtree

// UpdateScheduler accepts update requests and deferred function calls from
// nodes. The concrete implementation lives outside this package (package
// scheduler ships one); the reconciler that drains it must clear
// UpdateRequested and stamp LastUpdateTick when a queued update executes.
type UpdateScheduler interface {
	// RequestNodeUpdate queues vn for re-rendering on the next tick.
	RequestNodeUpdate(vn *VN)

	// ScheduleFuncCall queues fn to run either before or after the batch
	// of pending node updates on the next tick, associated with vn for
	// error routing and diagnostics.
	ScheduleFuncCall(fn func(), beforeUpdate bool, vn *VN)
}

// updateScheduler is the scheduler all nodes forward to.
var updateScheduler UpdateScheduler

// SetScheduler installs the scheduler used by all nodes and returns the
// previous one. Install once at startup, before any tree is mounted.
func SetScheduler(s UpdateScheduler) UpdateScheduler {
	prev := updateScheduler
	updateScheduler = s
	return prev
}

// RequestUpdate queues this node for re-rendering. Repeated requests while
// one is already pending collapse into a single scheduled pass: the
// UpdateRequested latch guarantees at most one enqueue per dirty period.
func (vn *VN) RequestUpdate() {
	if vn.UpdateRequested {
		return
	}
	if updateScheduler == nil {
		return
	}

	updateScheduler.RequestNodeUpdate(vn)
	vn.UpdateRequested = true
}

// ScheduleCallBeforeUpdate queues fn to run before the next batch of node
// updates. Calls scheduled for the same phase run in insertion order; no
// further ordering is guaranteed.
func (vn *VN) ScheduleCallBeforeUpdate(fn func()) {
	if updateScheduler != nil {
		updateScheduler.ScheduleFuncCall(fn, true, vn)
	}
}

// ScheduleCallAfterUpdate queues fn to run after the next batch of node
// updates.
func (vn *VN) ScheduleCallAfterUpdate(fn func()) {
	if updateScheduler != nil {
		updateScheduler.ScheduleFuncCall(fn, false, vn)
	}
}
