// Package segment implements the persisted memory file format.
//
// A segment file holds a header, an ordered list of memory segments and an
// optional embedded witness chain:
//
//	{
//	  "header":        {"version": 1, "agent_id": ..., "namespace": ..., ...},
//	  "segments":      [{"id": ..., "segment_type": "vector", ...}, ...],
//	  "witness_chain": [...]
//	}
//
// Files are written whole through a temp file and rename and read whole.
// Readers reject files whose header version is newer than FormatVersion.
// Plain JSON is the default encoding; see WithCodec and WithCompression for
// the enveloped forms.
package segment
