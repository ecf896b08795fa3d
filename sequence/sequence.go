// Package sequence provides small DNA sequence kernels: one-hot encoding,
// base composition and reverse complementation. Bases are compared
// case-insensitively; anything outside ACGT counts as N.
package sequence

// Channel order of the one-hot encoding.
const Channels = 4

var baseIndex [256]int8

func init() {
	for i := range baseIndex {
		baseIndex[i] = -1
	}
	baseIndex['A'], baseIndex['a'] = 0, 0
	baseIndex['C'], baseIndex['c'] = 1, 1
	baseIndex['G'], baseIndex['g'] = 2, 2
	baseIndex['T'], baseIndex['t'] = 3, 3
}

// OneHot writes the (Channels x len(seq)) row-major encoding of seq into
// dst and returns it. dst must have length Channels*len(seq); pass nil to
// allocate. N bases leave their column all zero.
func OneHot(seq []byte, dst []float32) []float32 {
	n := len(seq)
	if dst == nil {
		dst = make([]float32, Channels*n)
	}
	for i, b := range seq {
		if c := baseIndex[b]; c >= 0 {
			dst[int(c)*n+i] = 1
		}
	}
	return dst
}

// GCFraction returns the fraction of ACGT bases that are G or C. A
// sequence without any ACGT base has GC fraction 0.
func GCFraction(seq []byte) float64 {
	var gc, acgt int
	for _, b := range seq {
		switch baseIndex[b] {
		case 1, 2:
			gc++
			acgt++
		case 0, 3:
			acgt++
		}
	}
	if acgt == 0 {
		return 0
	}
	return float64(gc) / float64(acgt)
}

// NFraction returns the fraction of bases outside ACGT.
func NFraction(seq []byte) float64 {
	if len(seq) == 0 {
		return 0
	}
	var n int
	for _, b := range seq {
		if baseIndex[b] < 0 {
			n++
		}
	}
	return float64(n) / float64(len(seq))
}

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	complement['A'], complement['a'] = 'T', 'T'
	complement['C'], complement['c'] = 'G', 'G'
	complement['G'], complement['g'] = 'C', 'C'
	complement['T'], complement['t'] = 'A', 'A'
}

// ReverseComplement reverse-complements seq in place.
func ReverseComplement(seq []byte) {
	for i, j := 0, len(seq)-1; i <= j; i, j = i+1, j-1 {
		seq[i], seq[j] = complement[seq[j]], complement[seq[i]]
	}
}
