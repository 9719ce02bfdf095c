package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vtree-ui/vtree/pkg/scheduler"
	"github.com/vtree-ui/vtree/pkg/services"
	"github.com/vtree-ui/vtree/pkg/vtree"
)

type benchOptions struct {
	depth        int
	fanout       int
	ticks        int
	publishEvery int
	verbose      bool
}

func benchCmd() *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic deep-tree update and service-storm benchmark",
		Long: `Builds a complete tree of the given depth and fanout, subscribes every
leaf to a service published at the root, then drives the scheduler: each
tick requests an update on every leaf, and the root republishes the
service at the configured interval so every change fans out to all
subscribers. Reports tick throughput and latency percentiles.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts)
		},
	}

	cmd.Flags().IntVar(&opts.depth, "depth", 6, "tree depth")
	cmd.Flags().IntVar(&opts.fanout, "fanout", 4, "children per node")
	cmd.Flags().IntVar(&opts.ticks, "ticks", 1000, "ticks to process")
	cmd.Flags().IntVar(&opts.publishEvery, "publish-every", 10, "republish the root service every N ticks")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "log scheduler activity")

	return cmd
}

const benchServiceID = "bench.theme"

func runBench(opts *benchOptions) error {
	if opts.depth < 1 || opts.fanout < 1 || opts.ticks < 1 {
		return fmt.Errorf("depth, fanout and ticks must all be positive")
	}

	// Isolate from any default process-wide state.
	prevReg := vtree.SetRegistry(services.New())
	defer vtree.SetRegistry(prevReg)

	var updated int64
	sched := scheduler.New(scheduler.NodeUpdaterFunc(func(vn *vtree.VN) {
		updated++
		for range vn.SubNodes {
			// Simulated render: walk the child list the way a
			// reconciler would.
		}
	}), schedulerOptions(opts)...)
	prevSched := vtree.SetScheduler(sched)
	defer vtree.SetScheduler(prevSched)

	root := &vtree.VN{Kind: vtree.KindComponent, Name: "root"}
	root.Init(nil)
	leaves := buildSubtree(root, opts.depth-1, opts.fanout)

	refs := make([]*vtree.Ref[any], len(leaves))
	for i, leaf := range leaves {
		refs[i] = vtree.NewRef[any](nil)
		leaf.SubscribeService(benchServiceID, refs[i], "default", false)
	}

	fmt.Printf("tree: depth=%d fanout=%d nodes=%d leaves=%d\n",
		opts.depth, opts.fanout, countNodes(root), len(leaves))

	durations := make([]time.Duration, 0, opts.ticks)
	start := time.Now()

	for tick := 0; tick < opts.ticks; tick++ {
		if opts.publishEvery > 0 && tick%opts.publishEvery == 0 {
			root.PublishService(benchServiceID, fmt.Sprintf("theme-%d", tick))
		}
		for _, leaf := range leaves {
			leaf.RequestUpdate()
		}

		tickStart := time.Now()
		sched.ProcessTick()
		durations = append(durations, time.Since(tickStart))
	}

	total := time.Since(start)

	for _, leaf := range leaves {
		leaf.Term()
	}
	root.Term()

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	fmt.Printf("ticks: %d in %s (%.0f ticks/s)\n",
		opts.ticks, total.Round(time.Millisecond), float64(opts.ticks)/total.Seconds())
	fmt.Printf("node updates: %d (%.0f updates/s)\n",
		updated, float64(updated)/total.Seconds())
	fmt.Printf("tick latency: p50=%s p90=%s p99=%s max=%s\n",
		percentile(durations, 0.50), percentile(durations, 0.90),
		percentile(durations, 0.99), durations[len(durations)-1])

	return nil
}

func schedulerOptions(opts *benchOptions) []scheduler.Option {
	if !opts.verbose {
		return nil
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return []scheduler.Option{scheduler.WithLogger(logger)}
}

// buildSubtree attaches a complete subtree below parent and returns the
// leaves, wiring sibling links the way a reconciler would.
func buildSubtree(parent *vtree.VN, levels, fanout int) []*vtree.VN {
	if levels == 0 {
		return []*vtree.VN{parent}
	}

	var leaves []*vtree.VN
	var prev *vtree.VN
	for i := 0; i < fanout; i++ {
		child := &vtree.VN{Kind: vtree.KindElement, Name: fmt.Sprintf("%s.%d", parent.Name, i)}
		child.Init(parent)
		if prev != nil {
			prev.Next = child
			child.Prev = prev
		}
		parent.SubNodes = append(parent.SubNodes, child)
		prev = child

		leaves = append(leaves, buildSubtree(child, levels-1, fanout)...)
	}
	return leaves
}

func countNodes(vn *vtree.VN) int {
	n := 1
	for _, child := range vn.SubNodes {
		n += countNodes(child)
	}
	return n
}

// percentile returns the p-quantile of sorted durations.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
