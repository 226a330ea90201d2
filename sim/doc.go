// Package sim provides the promotion ladder simulation engine for ladder-sim.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - config.go: SimConfig, the capacity ladder, and validation
//   - simulator.go: seeding and the per-cycle attrition / promotion loop
//   - promotion.go: the biased promotion rule and gender-blind attrition
//
// # Model
//
// A ladder is an ordered list of level capacities, entry level first. Each
// cycle removes a fixed share of every level at random without regard to
// gender, then refills vacancies from the top down. Level k draws each
// replacement independently from the post-attrition composition of level k-1,
// with the favored gender's weight raised by the promotion bias. Level 0 is
// refilled by external hiring. Every level holds exactly its capacity after
// every cycle.
//
// Randomness is explicit: each Simulator receives its own *rand.Rand, and
// PartitionedRNG derives independent, reproducible streams for a batch.
//
// Batches of simulations and their aggregation live in sim/controller.
package sim
