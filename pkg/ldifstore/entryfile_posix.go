//go:build !windows

package ldifstore

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// readFullRetryingEINTR reads the entirety of file, retrying on EINTR, and
// reports an error if more than expectedSize bytes are available (the file
// grew under us between the stat and the read completing).
func readFullRetryingEINTR(file *os.File, expectedSize int64) ([]byte, error) {
	fd := int(file.Fd())
	buf := make([]byte, 0, expectedSize+1)
	chunk := make([]byte, 64*1024)
	for {
		n, err := unix.Read(fd, chunk)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "read failed")
		}
		if n == 0 {
			break
		}
		buf = append(buf, chunk[:n]...)
		if int64(len(buf)) > expectedSize {
			return nil, errors.New("entry file grew while being read")
		}
	}
	return buf, nil
}

// writeFullRetryingEINTR writes the entirety of data to file, retrying on
// both EINTR and short writes.
func writeFullRetryingEINTR(file *os.File, data []byte) error {
	fd := int(file.Fd())
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "write failed")
		}
		data = data[n:]
	}
	return nil
}

// restrictToOwner is a no-op on POSIX: os.OpenFile's mode argument already
// set the owner-only permission bits when the temporary file was created.
func restrictToOwner(path string) error {
	return nil
}
