package strip

// Center is the first index of the upper half of an n pixel strip. Patterns
// that grow from the middle paint upward from here and then Mirror.
func Center(n int) int { return n / 2 }

// Mirror reflects the upper half of b onto the lower half so that position i
// takes the value at len(b)-1-i. On odd lengths the center pixel is the one
// position that maps onto itself and is left as is.
//
// Mirror is idempotent: a mirrored buffer is already symmetric.
func Mirror(b Buffer) {
	n := len(b)
	for i := 0; i < n/2; i++ {
		b[i] = b[n-1-i]
	}
}

// Symmetric reports whether b reads the same from both ends.
func Symmetric(b Buffer) bool {
	n := len(b)
	for i := 0; i < n/2; i++ {
		if b[i] != b[n-1-i] {
			return false
		}
	}
	return true
}
