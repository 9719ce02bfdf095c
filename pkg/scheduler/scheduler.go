package scheduler

import (
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vtree-ui/vtree/pkg/vtree"
)

// NodeUpdater re-renders one virtual node. It is implemented by the
// reconciler; the scheduler only decides when and in what order nodes run.
type NodeUpdater interface {
	PerformUpdate(vn *vtree.VN)
}

// NodeUpdaterFunc adapts a function to the NodeUpdater interface.
type NodeUpdaterFunc func(vn *vtree.VN)

// PerformUpdate implements NodeUpdater.
func (f NodeUpdaterFunc) PerformUpdate(vn *vtree.VN) {
	f(vn)
}

// TickObserver receives scheduler lifecycle callbacks. Implementations
// must be fast and must not call back into the scheduler.
type TickObserver interface {
	// TickStarted is called at the beginning of ProcessTick.
	TickStarted(tick int64)

	// NodeUpdated is called after each node render.
	NodeUpdated(vn *vtree.VN, elapsed time.Duration)

	// CallExecuted is called after each scheduled function call.
	CallExecuted(beforeUpdate bool)

	// UpdateFailed is called when a node update or scheduled call panics.
	UpdateFailed(vn *vtree.VN, recovered any)

	// TickCompleted is called at the end of ProcessTick with the number
	// of nodes actually rendered.
	TickCompleted(tick int64, nodesUpdated int, elapsed time.Duration)
}

// funcCall is one queued deferred call, associated with the node that
// scheduled it for error routing.
type funcCall struct {
	fn func()
	vn *vtree.VN
}

// Scheduler implements vtree.UpdateScheduler. Zero work is performed until
// ProcessTick; requests arriving during a tick are held for the next one
// once their phase has drained.
type Scheduler struct {
	updater   NodeUpdater
	logger    *slog.Logger
	observers []TickObserver

	mu          sync.Mutex
	tick        int64
	beforeCalls []funcCall
	afterCalls  []funcCall
	queued      map[*vtree.VN]struct{}
	nodes       []*vtree.VN
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithObserver attaches a TickObserver. May be given multiple times.
func WithObserver(ob TickObserver) Option {
	return func(s *Scheduler) {
		s.observers = append(s.observers, ob)
	}
}

// New creates a Scheduler that renders nodes through updater.
func New(updater NodeUpdater, opts ...Option) *Scheduler {
	s := &Scheduler{
		updater: updater,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		queued:  make(map[*vtree.VN]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentTick returns the tick of the pass currently executing, or of the
// last completed pass when called between ticks.
func (s *Scheduler) CurrentTick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// RequestNodeUpdate implements vtree.UpdateScheduler. Requests for a node
// already queued are dropped.
func (s *Scheduler) RequestNodeUpdate(vn *vtree.VN) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queued[vn]; ok {
		return
	}
	s.queued[vn] = struct{}{}
	s.nodes = append(s.nodes, vn)
}

// ScheduleFuncCall implements vtree.UpdateScheduler. Calls queued for the
// same phase run in insertion order.
func (s *Scheduler) ScheduleFuncCall(fn func(), beforeUpdate bool, vn *vtree.VN) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := funcCall{fn: fn, vn: vn}
	if beforeUpdate {
		s.beforeCalls = append(s.beforeCalls, c)
	} else {
		s.afterCalls = append(s.afterCalls, c)
	}
}

// HasPendingWork reports whether any node update or deferred call is
// queued for the next tick.
func (s *Scheduler) HasPendingWork() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes) > 0 || len(s.beforeCalls) > 0 || len(s.afterCalls) > 0
}

// ProcessTick runs one complete update pass: before-calls, queued node
// updates in ascending depth order, then after-calls. After-calls
// scheduled while updates run still execute in the same pass. Each node's
// UpdateRequested latch is cleared and its LastUpdateTick stamped as its
// update executes; nodes already stamped with the current tick are skipped.
func (s *Scheduler) ProcessTick() {
	s.mu.Lock()
	s.tick++
	tick := s.tick
	before := s.beforeCalls
	s.beforeCalls = nil
	s.mu.Unlock()

	start := time.Now()
	for _, ob := range s.observers {
		ob.TickStarted(tick)
	}

	for _, c := range before {
		s.runCall(c, true)
	}

	s.mu.Lock()
	nodes := s.nodes
	s.nodes = nil
	s.queued = make(map[*vtree.VN]struct{})
	s.mu.Unlock()

	// Ancestors first, so a parent that re-renders its subtree stamps the
	// children before their own queue slot comes up.
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Depth < nodes[j].Depth
	})

	updated := 0
	for _, vn := range nodes {
		vn.UpdateRequested = false
		if vn.LastUpdateTick == tick {
			continue
		}
		s.updateNode(vn, tick)
		updated++
	}

	s.mu.Lock()
	after := s.afterCalls
	s.afterCalls = nil
	s.mu.Unlock()

	for _, c := range after {
		s.runCall(c, false)
	}

	elapsed := time.Since(start)
	for _, ob := range s.observers {
		ob.TickCompleted(tick, updated, elapsed)
	}
}

// updateNode renders one node, stamping its tick on success. A panic from
// the updater is recovered and routed to the node's nearest error-handling
// service; with no handler published the tick must survive, so the panic
// is logged and dropped.
func (s *Scheduler) updateNode(vn *vtree.VN, tick int64) {
	nodeStart := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.reportPanic(vn, r)
		}
	}()

	s.updater.PerformUpdate(vn)
	vn.LastUpdateTick = tick

	elapsed := time.Since(nodeStart)
	for _, ob := range s.observers {
		ob.NodeUpdated(vn, elapsed)
	}
}

// runCall executes one deferred call under the same recovery policy as
// node updates.
func (s *Scheduler) runCall(c funcCall, beforeUpdate bool) {
	defer func() {
		if r := recover(); r != nil {
			s.reportPanic(c.vn, r)
		}
	}()

	c.fn()
	for _, ob := range s.observers {
		ob.CallExecuted(beforeUpdate)
	}
}

func (s *Scheduler) reportPanic(vn *vtree.VN, recovered any) {
	for _, ob := range s.observers {
		ob.UpdateFailed(vn, recovered)
	}

	if vn != nil {
		if h, ok := vtree.FindErrorHandler(vn); ok {
			h.ReportError(recovered, vn.Path())
			return
		}
	}

	if vn != nil {
		s.logger.Error("recovered panic with no error handler",
			"node", vn.DisplayName(), "depth", vn.Depth, "panic", recovered)
	} else {
		s.logger.Error("recovered panic with no error handler", "panic", recovered)
	}
}
