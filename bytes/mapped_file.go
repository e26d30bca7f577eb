package bytes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/talostrading/histotail/histoerrors"
)

// MappedFile is a read-only memory mapping of a file that another process may
// keep extending.
//
// The mapping always covers the whole file as of the last call to Map or
// Refresh. Offsets into the file are absolute, so they stay valid across
// remaps: a remap only ever makes more of the file addressable.
//
// A MappedFile must not be used concurrently.
type MappedFile struct {
	f        *os.File
	fd       int
	name     string
	slice    []byte
	prefault bool
	closed   bool
}

// Map opens the file at path read-only and maps its current length.
//
// If prefault is true, the pages of the mapping are read into memory at map
// time. This is only honoured on linux.
func Map(path string, prefault bool) (m *MappedFile, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", histoerrors.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: could not open %s: %w", histoerrors.ErrIOFailure, path, err)
	}

	m = &MappedFile{
		f:        f,
		fd:       int(f.Fd()),
		name:     path,
		prefault: prefault,
	}

	size, err := m.size()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := m.remap(size); err != nil {
		_ = f.Close()
		return nil, err
	}
	return m, nil
}

func (m *MappedFile) size() (int, error) {
	var st unix.Stat_t
	if err := unix.Fstat(m.fd, &st); err != nil {
		return 0, fmt.Errorf("%w: could not stat %s: %w", histoerrors.ErrIOFailure, m.name, err)
	}
	return int(st.Size), nil
}

// remap replaces the current mapping with one covering size bytes. The new
// mapping is established before the old one is released, so a failure leaves
// the previous mapping intact.
func (m *MappedFile) remap(size int) error {
	var slice []byte
	if size > 0 {
		var err error
		slice, err = mmapFile(m.fd, size, m.prefault)
		if err != nil {
			return fmt.Errorf(
				"%w: could not mmap %s size=%d: %w",
				histoerrors.ErrIOFailure, m.name, size, err)
		}
	}

	if m.slice != nil {
		if err := unix.Munmap(m.slice); err != nil {
			if slice != nil {
				_ = unix.Munmap(slice)
			}
			return fmt.Errorf("%w: could not munmap %s: %w", histoerrors.ErrIOFailure, m.name, err)
		}
	}
	m.slice = slice
	return nil
}

// Refresh compares the live file length with the mapped length and remaps if
// they differ. It reports whether the addressable region grew.
//
// A file that became shorter than the current mapping has been truncated by
// its writer, which an append-only log never does.
func (m *MappedFile) Refresh() (grown bool, err error) {
	if m.closed {
		return false, histoerrors.ErrClosed
	}

	size, err := m.size()
	if err != nil {
		return false, err
	}

	switch {
	case size == len(m.slice):
		return false, nil
	case size < len(m.slice):
		return false, fmt.Errorf(
			"%w: %s shrank from %d to %d bytes",
			histoerrors.ErrCorruptLog, m.name, len(m.slice), size)
	}

	if err := m.remap(size); err != nil {
		return false, err
	}
	return true, nil
}

// Bytes returns the mapped region. The returned slice is only valid until the
// next Refresh or Close.
func (m *MappedFile) Bytes() []byte {
	return m.slice
}

func (m *MappedFile) Len() int {
	return len(m.slice)
}

func (m *MappedFile) Name() string {
	return m.name
}

func (m *MappedFile) Closed() bool {
	return m.closed
}

// Close releases the mapping and the file handle. Calling Close more than
// once returns ErrClosed.
func (m *MappedFile) Close() (err error) {
	if m.closed {
		return histoerrors.ErrClosed
	}
	m.closed = true

	if m.slice != nil {
		err = multierr.Append(err, unix.Munmap(m.slice))
		m.slice = nil
	}
	return multierr.Append(err, m.f.Close())
}
