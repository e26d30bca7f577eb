//go:build darwin || netbsd || freebsd || openbsd || dragonfly

package bytes

import "golang.org/x/sys/unix"

func mmapFile(fd int, size int, prefault bool /* noop on bsd */) ([]byte, error) {
	b, err := unix.Mmap(fd, 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	_ = unix.Madvise(b, unix.MADV_SEQUENTIAL)

	return b, nil
}
