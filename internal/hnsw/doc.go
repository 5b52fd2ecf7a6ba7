// Package hnsw implements Hierarchical Navigable Small World graphs.
//
// The graph is a derived search structure over vectors owned by the caller:
// it stores references, not copies, and is rebuilt from scratch when the
// underlying set changes. Construction is deterministic for a given seed
// and insertion order.
//
// # Parameters
//
//   - M: max connections per node on upper layers (default: 16)
//   - M0: max connections per node on layer 0 (2*M)
//   - EFConstruction: construction queue size (default: 100)
//   - ef: search queue size, passed per query
//
// # Reference
//
// Malkov & Yashunin, "Efficient and robust approximate nearest neighbor search
// using Hierarchical Navigable Small World graphs", IEEE TPAMI 2018.
package hnsw
