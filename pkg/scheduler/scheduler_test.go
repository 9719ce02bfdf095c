package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/vtree-ui/vtree/pkg/services"
	"github.com/vtree-ui/vtree/pkg/vtree"
)

// newTree builds a root with one child per name, wired like a reconciler
// would wire them.
func newTree(names ...string) (*vtree.VN, []*vtree.VN) {
	root := &vtree.VN{Kind: vtree.KindComponent, Name: "root"}
	root.Init(nil)

	var children []*vtree.VN
	var prev *vtree.VN
	for _, name := range names {
		child := &vtree.VN{Kind: vtree.KindElement, Name: name}
		child.Init(root)
		if prev != nil {
			prev.Next = child
			child.Prev = prev
		}
		root.SubNodes = append(root.SubNodes, child)
		prev = child
		children = append(children, child)
	}
	return root, children
}

func TestProcessTickRendersQueuedNodes(t *testing.T) {
	var rendered []string
	s := New(NodeUpdaterFunc(func(vn *vtree.VN) {
		rendered = append(rendered, vn.Name)
	}))

	_, children := newTree("a", "b")
	for _, c := range children {
		s.RequestNodeUpdate(c)
	}

	if !s.HasPendingWork() {
		t.Fatal("queued nodes should count as pending work")
	}

	s.ProcessTick()

	if len(rendered) != 2 {
		t.Fatalf("expected 2 renders, got %v", rendered)
	}
	if s.HasPendingWork() {
		t.Error("queue should drain after the tick")
	}
	for _, c := range children {
		if c.LastUpdateTick != s.CurrentTick() {
			t.Errorf("node %s should be stamped with the current tick", c.Name)
		}
	}
}

func TestRequestNodeUpdateDeduplicates(t *testing.T) {
	count := 0
	s := New(NodeUpdaterFunc(func(vn *vtree.VN) { count++ }))

	_, children := newTree("a")
	s.RequestNodeUpdate(children[0])
	s.RequestNodeUpdate(children[0])
	s.RequestNodeUpdate(children[0])

	s.ProcessTick()
	if count != 1 {
		t.Errorf("duplicate requests should render once, got %d", count)
	}
}

func TestProcessTickClearsUpdateRequested(t *testing.T) {
	s := New(NodeUpdaterFunc(func(vn *vtree.VN) {}))
	prev := vtree.SetScheduler(s)
	defer vtree.SetScheduler(prev)

	_, children := newTree("a")
	children[0].RequestUpdate()
	if !children[0].UpdateRequested {
		t.Fatal("latch should be set")
	}

	s.ProcessTick()
	if children[0].UpdateRequested {
		t.Error("latch must clear when the update executes")
	}

	// The node can go dirty again.
	children[0].RequestUpdate()
	if !children[0].UpdateRequested {
		t.Error("a new dirty period should latch again")
	}
}

func TestDepthOrdering(t *testing.T) {
	var order []int
	s := New(NodeUpdaterFunc(func(vn *vtree.VN) {
		order = append(order, vn.Depth)
	}))

	root, children := newTree("mid")
	leaf := &vtree.VN{Kind: vtree.KindText, Name: "leaf"}
	leaf.Init(children[0])
	children[0].SubNodes = []*vtree.VN{leaf}

	// Queue deepest first; the tick must still run ancestors first.
	s.RequestNodeUpdate(leaf)
	s.RequestNodeUpdate(children[0])
	s.RequestNodeUpdate(root)

	s.ProcessTick()

	want := []int{0, 1, 2}
	for i, d := range want {
		if order[i] != d {
			t.Fatalf("expected depth order %v, got %v", want, order)
		}
	}
}

// A node already rendered this tick (an ancestor re-rendered the subtree
// and stamped it) is skipped even though it sits in the queue.
func TestTickSkipsAlreadyUpdatedNodes(t *testing.T) {
	var s *Scheduler
	var rendered []string

	s = New(NodeUpdaterFunc(func(vn *vtree.VN) {
		rendered = append(rendered, vn.Name)
		// The reconciler renders the whole subtree and stamps children.
		for _, child := range vn.SubNodes {
			child.LastUpdateTick = s.CurrentTick()
		}
	}))

	root, children := newTree("child")
	s.RequestNodeUpdate(root)
	s.RequestNodeUpdate(children[0])

	s.ProcessTick()

	if len(rendered) != 1 || rendered[0] != "root" {
		t.Errorf("child should be skipped after ancestor render, got %v", rendered)
	}
	if children[0].UpdateRequested {
		t.Error("skipped node's latch must still clear")
	}
}

func TestCallPhaseOrdering(t *testing.T) {
	var events []string
	s := New(NodeUpdaterFunc(func(vn *vtree.VN) {
		events = append(events, "update:"+vn.Name)
	}))

	_, children := newTree("a")
	s.ScheduleFuncCall(func() { events = append(events, "before1") }, true, children[0])
	s.ScheduleFuncCall(func() { events = append(events, "before2") }, true, children[0])
	s.ScheduleFuncCall(func() { events = append(events, "after") }, false, children[0])
	s.RequestNodeUpdate(children[0])

	s.ProcessTick()

	want := []string{"before1", "before2", "update:a", "after"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

// After-calls scheduled while updates run still execute in the same tick;
// before-calls scheduled then wait for the next one.
func TestCallsScheduledDuringTick(t *testing.T) {
	var events []string
	var s *Scheduler

	_, children := newTree("a")
	s = New(NodeUpdaterFunc(func(vn *vtree.VN) {
		events = append(events, "update")
		s.ScheduleFuncCall(func() { events = append(events, "late-after") }, false, vn)
		s.ScheduleFuncCall(func() { events = append(events, "late-before") }, true, vn)
	}))

	s.RequestNodeUpdate(children[0])
	s.ProcessTick()

	want := []string{"update", "late-after"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, events)
	}

	s.ProcessTick()
	if events[len(events)-1] != "late-before" {
		t.Errorf("before-call should run on the next tick, got %v", events)
	}
}

func TestPanicRoutedToErrorService(t *testing.T) {
	reg := services.New()
	prev := vtree.SetRegistry(reg)
	defer vtree.SetRegistry(prev)

	handler := &recordingHandler{}
	root, children := newTree("fragile")
	root.PublishService(vtree.ErrorHandlingServiceID, handler)

	s := New(NodeUpdaterFunc(func(vn *vtree.VN) {
		panic("render failed")
	}))

	s.RequestNodeUpdate(children[0])
	s.ProcessTick() // must not panic

	if len(handler.errs) != 1 || handler.errs[0] != "render failed" {
		t.Errorf("expected panic routed to handler, got %v", handler.errs)
	}
}

func TestPanicWithoutHandlerIsContained(t *testing.T) {
	reg := services.New()
	prev := vtree.SetRegistry(reg)
	defer vtree.SetRegistry(prev)

	var rendered []string
	s := New(NodeUpdaterFunc(func(vn *vtree.VN) {
		if vn.Name == "fragile" {
			panic("boom")
		}
		rendered = append(rendered, vn.Name)
	}))

	_, children := newTree("fragile", "steady")
	for _, c := range children {
		s.RequestNodeUpdate(c)
	}

	s.ProcessTick() // tick must survive

	if len(rendered) != 1 || rendered[0] != "steady" {
		t.Errorf("remaining nodes should still render, got %v", rendered)
	}
}

func TestObserverCallbacks(t *testing.T) {
	ob := &countingObserver{}
	s := New(NodeUpdaterFunc(func(vn *vtree.VN) {
		if vn.Name == "fragile" {
			panic("boom")
		}
	}), WithObserver(ob))

	_, children := newTree("a", "fragile")
	for _, c := range children {
		s.RequestNodeUpdate(c)
	}
	s.ScheduleFuncCall(func() {}, true, children[0])
	s.ScheduleFuncCall(func() {}, false, children[0])

	s.ProcessTick()

	if ob.ticksStarted != 1 || ob.ticksCompleted != 1 {
		t.Errorf("tick callbacks: started=%d completed=%d", ob.ticksStarted, ob.ticksCompleted)
	}
	if ob.nodesUpdated != 1 {
		t.Errorf("expected 1 successful node update, got %d", ob.nodesUpdated)
	}
	if ob.failures != 1 {
		t.Errorf("expected 1 failure, got %d", ob.failures)
	}
	if ob.calls != 2 {
		t.Errorf("expected 2 call notifications, got %d", ob.calls)
	}
}

func TestCurrentTickAdvances(t *testing.T) {
	s := New(NodeUpdaterFunc(func(vn *vtree.VN) {}))

	if s.CurrentTick() != 0 {
		t.Fatalf("fresh scheduler should be at tick 0, got %d", s.CurrentTick())
	}
	s.ProcessTick()
	s.ProcessTick()
	if s.CurrentTick() != 2 {
		t.Errorf("expected tick 2, got %d", s.CurrentTick())
	}
}

type recordingHandler struct {
	errs []any
}

func (h *recordingHandler) ReportError(err any, path []string) {
	h.errs = append(h.errs, err)
}

type countingObserver struct {
	ticksStarted   int
	ticksCompleted int
	nodesUpdated   int
	failures       int
	calls          int
}

func (o *countingObserver) TickStarted(tick int64) { o.ticksStarted++ }

func (o *countingObserver) NodeUpdated(vn *vtree.VN, elapsed time.Duration) { o.nodesUpdated++ }

func (o *countingObserver) CallExecuted(beforeUpdate bool) { o.calls++ }

func (o *countingObserver) UpdateFailed(vn *vtree.VN, recovered any) { o.failures++ }

func (o *countingObserver) TickCompleted(tick int64, nodesUpdated int, elapsed time.Duration) {
	o.ticksCompleted++
}
