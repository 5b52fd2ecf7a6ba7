// Package distance provides the vector similarity functions shared by the
// memory indexes and the quantizer.
//
// Both indexes rank by cosine similarity. Graph construction works on the
// derived distance 1 - cosine, so identical directions have distance 0.
//
//	sim := distance.CosineSimilarity(a, b)
//	d := distance.CosineDistance(a, b)
package distance
