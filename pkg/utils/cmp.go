package utils

// CompareFn defines a three-way comparison for keys of type T.
// It must return a negative value if x < y, 0 if x == y, and a positive value if x > y.
// The comparison must be a total order over T; the ordered structures in this
// repository silently corrupt if it is not (documented caller precondition).
type CompareFn[T any] func(x, y T) int
