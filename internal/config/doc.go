// Package config loads simulator settings from files and the environment.
//
// Scenario files may be YAML (.yaml, .yml) or JSON (.json):
//
//	scenario:
//	  preset: fair        # optional starting point
//	  systems: 50
//	  attacks: 200
//	  probability: 0.5
//	  report_index: 100
//	  seed: 42
//	sweep:
//	  from: 0.1
//	  to: 0.9
//	  steps: 9
//	  workers: 4
//	log_level: info
//
// Environment variables prefixed with SURVIVAL_SIM_ override file values;
// command-line flags override both.
package config
