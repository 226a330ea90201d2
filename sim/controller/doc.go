// Package controller runs batches of independent promotion ladder simulations
// and reduces their final ladders to per-level gender percentages.
//
// A batch fans out one sim.Simulator per run on a bounded errgroup and joins
// before aggregation. Each simulator draws from its own stream derived from the
// batch seed, so batches are reproducible for a fixed seed regardless of the
// worker count.
package controller
