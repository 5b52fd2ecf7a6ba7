// Package testutil provides testing utilities for the memory engine.
//
// This package is intended for use in tests only. It provides helpers for
// generating seeded random vectors, computing exact nearest neighbors, and
// measuring search recall.
//
//	rng := testutil.NewRNG(seed)
//	data := rng.UnitVectors(500, 32)
//	truth := testutil.ExactTopK(data[0], data, 10)
//	recall := testutil.Recall(truth, approx)
package testutil
