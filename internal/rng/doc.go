// Package rng provides the pseudo-random source handle used by the simulator.
//
// The simulator never reaches for process-wide random state. Every engine is
// handed a Source explicitly, which keeps seeded runs reproducible and lets
// tests substitute a scripted sequence of draws.
//
// # Basic Usage
//
//	src := rng.New(42)
//	v, err := rng.Uniform(src, 0, 1)
//
// A Source is not safe for concurrent use; give each goroutine its own.
package rng
