package npz

import (
	"os"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/klauspost/compress/zip"
)

// WriteNPZ writes the named arrays as a compressed npz archive. Entries
// are written in sorted name order so the archive bytes are
// deterministic.
func WriteNPZ(path string, arrays map[string]*Array) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.E(err, "create archive:", path)
	}
	zw := zip.NewWriter(f)
	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name + ".npy")
		if err != nil {
			zw.Close()
			f.Close()
			return errors.E(err, "create archive entry:", name)
		}
		if err := WriteNPY(w, arrays[name]); err != nil {
			zw.Close()
			f.Close()
			return errors.E(err, "write archive entry:", name)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return errors.E(err, "finish archive:", path)
	}
	return f.Close()
}

// ReadNPZ reads every array of an npz archive, keyed by entry name
// without the .npy suffix.
func ReadNPZ(path string) (map[string]*Array, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.E(err, "open archive:", path)
	}
	defer zr.Close()
	arrays := make(map[string]*Array, len(zr.File))
	for _, entry := range zr.File {
		rc, err := entry.Open()
		if err != nil {
			return nil, errors.E(err, "open archive entry:", entry.Name)
		}
		a, err := ReadNPY(rc)
		rc.Close()
		if err != nil {
			return nil, errors.E(err, "decode archive entry:", entry.Name)
		}
		name := entry.Name
		if n := len(name); n > 4 && name[n-4:] == ".npy" {
			name = name[:n-4]
		}
		arrays[name] = a
	}
	return arrays, nil
}
