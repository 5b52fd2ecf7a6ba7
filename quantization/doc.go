// Package quantization implements the temperature-tier storage
// representations of embedding vectors.
//
// A vector is stored in one of three tiers:
//
//   - Hot:  full-precision float32 (4 bytes per dimension)
//   - Warm: binary16 half precision (2 bytes per dimension)
//   - Cold: product-quantized codes (1 byte per subvector, at most 8)
//
// The Cold codebook is built by uniform binning: each dimension's observed
// [min, max] range is split into 256 evenly spaced centroids. It is not a
// learned (k-means) clustering, so reconstruction quality depends on how
// uniformly the sample set covers each dimension.
//
// AccessTracker turns access statistics into a tier recommendation. The
// recommendation is advisory; the tiering package acts on it.
//
// Indexes always operate on full-precision vectors. Compression is applied
// at the storage boundary only.
package quantization
