// Package witness implements a SHA-256 hash-chained, append-only audit log
// of memory mutations.
//
// Every segment commits to the hash of the mutation payload and to the hash
// of the previous segment. The first segment links to Genesis, 32 zero
// bytes. The segment hash is
//
//	SHA256(segment_id || RFC3339 timestamp || operation || data_hash || previous_hash)
//
// so any retroactive edit of a persisted chain breaks either the segment's
// own hash or the link from its successor. Chains expose no mutation API for
// existing segments; tampering can only be observed by decoding modified
// bytes with Unmarshal or Load.
package witness
