// Package vecmem is a tiered vector memory engine for agents.
//
// A Store holds the memories of one agent namespace. Each memory is a
// segment.MemorySegment with an optional embedding; embeddings are indexed
// for similarity recall by index.Index, and every mutation is recorded in a
// tamper-evident witness.Chain. Flush persists the segments and the chain in
// a single segment file; Open reads that file back, verifies the chain and
// rebuilds the index.
//
// # Quick Start
//
//	ctx := context.Background()
//	st, _ := vecmem.Open(ctx, "./memory", "agent-1", "notes")
//	defer st.Close()
//
//	id, _ := st.Remember(ctx, "the sky is blue", embedding, nil, []string{"facts"})
//	hits, _ := st.Recall(ctx, query, 5)
//	_ = st.Forget(ctx, id)
//	_ = st.Flush(ctx)
//
// # Packages
//
// The building blocks can be used on their own:
//
//   - index: approximate nearest-neighbour index with brute-force fallback
//   - microindex: capacity-bounded index with a message protocol
//   - quantization: Hot / Warm / Cold vector compression and access tracking
//   - tiering: a store that moves vectors between tiers
//   - witness: SHA-256 hash-chained audit log
//   - segment: the segment file format
//
// # Concurrency
//
// Store methods are safe for concurrent use; they are serialised by a
// per-store mutex. The packages underneath are single-writer and leave
// locking to the caller.
package vecmem
