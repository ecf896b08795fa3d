package sequence_test

import (
	"testing"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/sequence"
	"github.com/grailbio/testutil/expect"
)

func TestOneHot(t *testing.T) {
	got := sequence.OneHot([]byte("ACgTN"), nil)
	want := []float32{
		1, 0, 0, 0, 0, // A
		0, 1, 0, 0, 0, // C
		0, 0, 1, 0, 0, // G
		0, 0, 0, 1, 0, // T
	}
	expect.EQ(t, got, want)
}

func TestOneHotColumnSums(t *testing.T) {
	seq := []byte("ACGTACGTNNACGT")
	enc := sequence.OneHot(seq, nil)
	n := len(seq)
	for i, b := range seq {
		var sum float32
		for c := 0; c < sequence.Channels; c++ {
			sum += enc[c*n+i]
		}
		if b == 'N' {
			expect.EQ(t, sum, float32(0), "position %d", i)
		} else {
			expect.EQ(t, sum, float32(1), "position %d", i)
		}
	}
}

func TestGCFraction(t *testing.T) {
	expect.EQ(t, sequence.GCFraction([]byte("GCGC")), 1.0)
	expect.EQ(t, sequence.GCFraction([]byte("ATAT")), 0.0)
	expect.EQ(t, sequence.GCFraction([]byte("ACGT")), 0.5)
	// N bases are excluded from the denominator.
	expect.EQ(t, sequence.GCFraction([]byte("GCNN")), 1.0)
	expect.EQ(t, sequence.GCFraction([]byte("NNNN")), 0.0)
}

func TestNFraction(t *testing.T) {
	expect.EQ(t, sequence.NFraction([]byte("ACGT")), 0.0)
	expect.EQ(t, sequence.NFraction([]byte("ANGN")), 0.5)
	expect.EQ(t, sequence.NFraction(nil), 0.0)
}

func TestReverseComplement(t *testing.T) {
	seq := []byte("AACGTN")
	sequence.ReverseComplement(seq)
	expect.EQ(t, string(seq), "NACGTT")

	odd := []byte("ACA")
	sequence.ReverseComplement(odd)
	expect.EQ(t, string(odd), "TGT")
}
