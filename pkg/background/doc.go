// Package background implements a lightweight fire-and-forget store for
// deferred async work: cache sweeps, batched flushes, cleanup chores.
//
// Tasks are started eagerly when added; the store only tracks their
// completion. A periodic Sweep pass drains everything that has finished,
// collecting failures into a single joined error, and puts still-running
// tasks back on the queue. Sweep never blocks on an incomplete task, so a
// stuck chore cannot stall the sweeper.
//
// Recurring work is expressed with WithReschedule: once the task completes
// and its completion is observed by a sweep, the same function is started
// again. Run drives Sweep on a fixed interval until the context is
// canceled.
//
//	store := background.New(background.WithLogger(log))
//	store.Add(func(ctx context.Context) error {
//	    sessions.Sweep()
//	    return nil
//	}, background.WithReschedule())
//
//	go store.Run(ctx, 5*time.Second)
package background
