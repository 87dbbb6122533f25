//go:build windows

package ldifstore

import (
	"io"
	"os"

	"github.com/hectane/go-acl"
	"github.com/pkg/errors"
)

// readFullRetryingEINTR reads the entirety of file. Windows has no EINTR
// concept; the retry loop here only guards against short reads, and still
// reports an error if more than expectedSize bytes are available.
func readFullRetryingEINTR(file *os.File, expectedSize int64) ([]byte, error) {
	buf := make([]byte, 0, expectedSize+1)
	chunk := make([]byte, 64*1024)
	for {
		n, err := file.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if int64(len(buf)) > expectedSize {
				return nil, errors.New("entry file grew while being read")
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read failed")
		}
	}
	return buf, nil
}

// writeFullRetryingEINTR writes the entirety of data to file, retrying on
// short writes.
func writeFullRetryingEINTR(file *os.File, data []byte) error {
	for len(data) > 0 {
		n, err := file.Write(data)
		if err != nil {
			return errors.Wrap(err, "write failed")
		}
		data = data[n:]
	}
	return nil
}

// restrictToOwner applies an owner-only ACL to a freshly created entry file,
// mirroring the permission bits write_entry_file would set via chmod on
// POSIX. go-acl's Chmod is the Windows-appropriate equivalent, since
// os.Chmod's POSIX permission bits are largely ignored by the Windows ACL
// model.
func restrictToOwner(path string) error {
	return acl.Chmod(path, 0o600)
}
