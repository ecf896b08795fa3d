// Package npz reads and writes numpy array archives. Arrays are float32
// and little-endian; that is the hand-off contract for the one-hot,
// attribution and profile artifacts, which downstream python tooling
// (modisco in particular) opens with numpy.load.
package npz

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Array is a dense float32 tensor in row-major order.
type Array struct {
	Shape []int
	Data  []float32
}

// NewArray allocates a zero-filled array of the given shape.
func NewArray(shape ...int) *Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Array{Shape: shape, Data: make([]float32, n)}
}

// Len returns the number of elements.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

var npyMagic = []byte("\x93NUMPY\x01\x00")

// WriteNPY writes a in npy format version 1.0.
func WriteNPY(w io.Writer, a *Array) error {
	if len(a.Data) != a.Len() {
		return errors.E(fmt.Sprintf("array data length %d does not match shape %v", len(a.Data), a.Shape))
	}
	dims := make([]string, len(a.Shape))
	for i, d := range a.Shape {
		dims[i] = strconv.Itoa(d)
	}
	shape := strings.Join(dims, ", ")
	if len(a.Shape) == 1 {
		shape += ","
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%s), }", shape)
	// Total header size (magic + length word + dict) is padded to a
	// multiple of 64 and terminated with a newline, per the npy spec.
	total := len(npyMagic) + 2 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	if _, err := w.Write(npyMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, a.Data)
}

// ReadNPY reads one npy-encoded float32 array.
func ReadNPY(r io.Reader) (*Array, error) {
	magic := make([]byte, len(npyMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, errors.E(err, "read npy magic")
	}
	if string(magic) != string(npyMagic) {
		return nil, errors.E("not an npy v1.0 file")
	}
	var headerLen uint16
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, errors.E(err, "read npy header length")
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.E(err, "read npy header")
	}
	shape, err := parseHeader(string(header))
	if err != nil {
		return nil, err
	}
	a := NewArray(shape...)
	if err := binary.Read(r, binary.LittleEndian, a.Data); err != nil {
		return nil, errors.E(err, "read npy data")
	}
	return a, nil
}

func parseHeader(header string) ([]int, error) {
	if !strings.Contains(header, "'descr': '<f4'") {
		return nil, errors.E("unsupported npy dtype, want little-endian float32:", header)
	}
	if !strings.Contains(header, "'fortran_order': False") {
		return nil, errors.E("fortran-order npy arrays are not supported")
	}
	open := strings.Index(header, "(")
	end := strings.Index(header, ")")
	if open < 0 || end < open {
		return nil, errors.E("malformed npy shape:", header)
	}
	var shape []int
	for _, tok := range strings.Split(header[open+1:end], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		d, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.E(err, "malformed npy shape:", header)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
