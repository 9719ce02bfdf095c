// Package middleware provides observability attachments for the update
// scheduler and the service registry.
//
// Prometheus returns a TickObserver exporting counters and histograms for
// ticks, node updates, scheduled calls, and recovered panics;
// RegisterServiceStats adds gauges over a registry's occupancy. OTel
// returns a TickObserver emitting one span per update tick.
//
// Attach observers when constructing the scheduler:
//
//	sched := scheduler.New(updater,
//	    scheduler.WithObserver(middleware.Prometheus()),
//	    scheduler.WithObserver(middleware.OTel()),
//	)
package middleware
