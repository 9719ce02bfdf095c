package vtree

import "testing"

// recordingScheduler captures everything forwarded to it.
type recordingScheduler struct {
	requests []*VN
	before   []func()
	after    []func()
}

func (s *recordingScheduler) RequestNodeUpdate(vn *VN) {
	s.requests = append(s.requests, vn)
}

func (s *recordingScheduler) ScheduleFuncCall(fn func(), beforeUpdate bool, vn *VN) {
	if beforeUpdate {
		s.before = append(s.before, fn)
	} else {
		s.after = append(s.after, fn)
	}
}

func useTestScheduler(t *testing.T) *recordingScheduler {
	t.Helper()
	s := &recordingScheduler{}
	prev := SetScheduler(s)
	t.Cleanup(func() { SetScheduler(prev) })
	return s
}

func TestRequestUpdateEnqueuesOnce(t *testing.T) {
	sched := useTestScheduler(t)
	vn := &VN{Kind: KindComponent}
	vn.Init(nil)

	vn.RequestUpdate()
	if len(sched.requests) != 1 {
		t.Fatalf("expected 1 enqueue, got %d", len(sched.requests))
	}
	if !vn.UpdateRequested {
		t.Error("UpdateRequested should latch after first request")
	}

	// Repeated requests before the scheduler drains collapse.
	vn.RequestUpdate()
	vn.RequestUpdate()
	if len(sched.requests) != 1 {
		t.Errorf("repeated requests must not enqueue again, got %d", len(sched.requests))
	}
	if !vn.UpdateRequested {
		t.Error("flag must stay latched")
	}
}

func TestRequestUpdateAfterDrain(t *testing.T) {
	sched := useTestScheduler(t)
	vn := &VN{Kind: KindComponent}
	vn.Init(nil)

	vn.RequestUpdate()

	// The reconciler clears the latch when the scheduled update runs.
	vn.UpdateRequested = false

	vn.RequestUpdate()
	if len(sched.requests) != 2 {
		t.Errorf("a new dirty period should enqueue again, got %d", len(sched.requests))
	}
}

func TestRequestUpdateWithoutScheduler(t *testing.T) {
	prev := SetScheduler(nil)
	defer SetScheduler(prev)

	vn := &VN{Kind: KindComponent}
	vn.Init(nil)

	// Must not panic and must not latch a request nothing will drain.
	vn.RequestUpdate()
	if vn.UpdateRequested {
		t.Error("no scheduler installed: flag should stay clear")
	}
}

func TestScheduleCallPhases(t *testing.T) {
	sched := useTestScheduler(t)
	vn := &VN{Kind: KindComponent}
	vn.Init(nil)

	vn.ScheduleCallBeforeUpdate(func() {})
	vn.ScheduleCallAfterUpdate(func() {})
	vn.ScheduleCallAfterUpdate(func() {})

	if len(sched.before) != 1 {
		t.Errorf("expected 1 before-call, got %d", len(sched.before))
	}
	if len(sched.after) != 2 {
		t.Errorf("expected 2 after-calls, got %d", len(sched.after))
	}
}
