package util

// Map applies a transformation function to each element of a slice and
// returns a new slice with the transformed values. The mapper also receives
// the element's index.
func Map[A any, B any](coll []A, mapper func(i A, index uint64) B) []B {
	out := make([]B, len(coll))
	for i, item := range coll {
		out[i] = mapper(item, uint64(i))
	}
	return out
}
