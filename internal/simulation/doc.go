// Package simulation generates attack-survival trials and their statistics.
//
// A Run is one system exposed to a sequence of attacks. Each attack is a
// biased coin flip: +1 when the system survives, -1 when the attacker wins.
// Index 0 of every series is a neutral baseline, so a Run of length n holds
// n-1 actual draws. From the outcomes four series are derived in a single
// forward pass:
//
//   - CumulativeScore: running sum of outcomes
//   - CumulativeSuccessCount: running count of +1 outcomes
//   - RelativeFrequency: count / (i+1)
//   - NormalizedRatio: count / sqrt(i+1)
//
// A Population is a set of independent Runs sharing one length and one
// probability, generated sequentially from a single Source. BuildHistogram
// turns integer values into dense value/count buckets.
//
// # Basic Usage
//
//	src := rng.New(42)
//	pop, err := simulation.RunPopulation(src, 50, 200, 0.5)
//	if err != nil {
//	    return err
//	}
//	buckets := simulation.BuildHistogram(pop.TerminalScores())
//
// Nothing in this package is mutated after construction, and nothing here is
// aware of how the numbers are presented.
package simulation
