// Package convo owns the canonical conversation key for 1:1 threads.
// Every component that writes or queries messages must derive the key here;
// inlining the sort+join at call sites is how conversations get split.
package convo

const Separator = ":"

// Key returns the conversation identifier for the pair (a, b). The two user
// IDs are ordered lexicographically first, so Key(a, b) == Key(b, a).
func Key(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + Separator + b
}
