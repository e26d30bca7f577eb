//go:build linux

package bytes

import "golang.org/x/sys/unix"

func mmapFile(fd int, size int, prefault bool) ([]byte, error) {
	// MAP_SHARED: writes through other descriptors show up in the mapping.
	flags := unix.MAP_SHARED

	if prefault {
		// Read the file into the page cache and map it now instead of taking
		// a fault on first access.
		flags |= unix.MAP_POPULATE
	}

	b, err := unix.Mmap(fd, 0, size, unix.PROT_READ, flags)
	if err != nil {
		return nil, err
	}

	// The log is read front to back.
	_ = unix.Madvise(b, unix.MADV_SEQUENTIAL)

	return b, nil
}
