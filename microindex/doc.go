// Package microindex implements a capacity-bounded similarity index for
// constrained hosts such as sandboxes and WASM runtimes.
//
// The index holds at most MaxNodes vectors of a fixed dimension in a
// single-layer graph with at most MaxNeighbors links per node. Its public
// surface is a small message protocol (Request / Response) so it can sit
// behind a byte boundary; EncodeRequest, DecodeResponse and Serve provide
// the newline-delimited JSON wire form.
//
// Nodes live in stable slots of a free-list arena. Deleting a node frees its
// slot and unlinks it from its neighbors; no other slot moves.
package microindex
