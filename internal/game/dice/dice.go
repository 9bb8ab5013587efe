// Package dice provides the randomness abstraction used for every draw the
// engine makes.
package dice

// Source is the randomness provider for card draws.
//
// Postcondition: Intn(n) returns a value in [0, n) for all n > 0.
type Source interface {
	Intn(n int) int
}

// Pick returns a uniformly chosen element of items.
//
// Precondition: len(items) > 0.
func Pick[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}
