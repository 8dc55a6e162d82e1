// Package metrics collects simulation throughput statistics.
//
// Metrics counts completed and failed runs, generated systems, random draws
// and surviving draws, and samples the time spent generating each system
// for average and P99 figures.
//
// # Basic Usage
//
//	m := metrics.New()
//
//	start := time.Now()
//	run, _ := simulation.RunSimulation(src, length, p)
//	m.RecordSystem(run.Draws(), run.Successes(), time.Since(start))
//	m.RecordRun()
//
//	snap := m.Snapshot()
//
// All operations are safe for concurrent use, so one Metrics can be shared by
// the scenario engines of a sweep or of the API server.
package metrics
