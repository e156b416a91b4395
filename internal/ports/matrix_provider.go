package ports

import "context"

// MatrixProvider retrieves a full pairwise travel-distance matrix, in
// kilometers, for an ordered list of location strings. The returned matrix
// may be asymmetric.
//
// Acquisition is atomic: if any location cannot be resolved or any cell
// cannot be computed, the whole call fails. Implementations must never
// substitute zero or stale values for a failed lookup.
type MatrixProvider interface {
	Matrix(ctx context.Context, locations []string) ([][]float64, error)
}
