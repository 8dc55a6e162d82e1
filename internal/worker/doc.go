// Package worker provides a goroutine pool for concurrent job execution.
//
// The sweep uses it to generate independent populations in parallel. Each job
// receives the pool context so that long jobs can stop early when the pool
// is stopped.
//
// # Basic Usage
//
//	pool := worker.NewPool(4)
//	pool.Start(ctx)
//
//	for _, p := range probabilities {
//	    pool.Submit(func(ctx context.Context) {
//	        // generate one population
//	    })
//	}
//
//	pool.Close() // wait for every queued job
//
// # Shutdown
//
// Close stops accepting jobs and waits until the queue is drained. Stop
// cancels the pool context and returns once running jobs have observed it;
// jobs still queued are discarded.
package worker
