//go:build !race

package hrauth

// passwordHashCost keeps hashing deliberately slow in regular builds; the
// per-call salt lives inside the generated digest.
func passwordHashCost() int {
	return 14
}
