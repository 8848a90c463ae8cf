package arq

// Relative is the circular distance of x ahead of base, in [0, SeqSpace).
func Relative(base, x int) int {
	return ((x-base)%SeqSpace + SeqSpace) % SeqSpace
}

// InWindow reports whether x lies in the circular range [base, base+size),
// including when the range straddles the modulus boundary. Both the sender
// and the receiver use this single definition for window containment.
func InWindow(base, size, x int) bool {
	return Relative(base, x) < size
}

func nextSeq(x int) int {
	return (x + 1) % SeqSpace
}
