// Package index implements the full-size similarity index of the memory
// engine.
//
// Entries are kept in insertion order. Collections smaller than
// SmallThreshold are ranked by brute force. Larger collections are searched
// through an HNSW graph that is treated as a cache over the entry list: any
// mutation invalidates it, and the next query rebuilds it once. Graph
// candidates are always re-ranked by exact cosine similarity, so the graph
// only decides which entries are considered.
//
// An Index is not safe for concurrent use; callers serialize access.
package index
