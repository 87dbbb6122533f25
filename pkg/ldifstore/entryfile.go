package ldifstore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/mutagen-io/extstat"
	"github.com/pkg/errors"

	"github.com/Eldar88/openldap/pkg/ldif"
	"github.com/Eldar88/openldap/pkg/logging"
	"github.com/Eldar88/openldap/pkg/must"
)

// entryFileLogger receives the warnings must.Close/must.OSRemove log when a
// best-effort cleanup in WriteEntryFile's error paths itself fails.
var entryFileLogger = logging.RootLogger.Sublogger("ldifstore/entryfile")

// ReadOutcome classifies the result of ReadEntryFile, mirroring the abstract
// result taxonomy so callers can translate directly into an ldif.Code.
type ReadOutcome int

const (
	// ReadSuccess indicates the bytes were read completely and consistently.
	ReadSuccess ReadOutcome = iota
	// ReadNotFound indicates the entry file does not exist.
	ReadNotFound
	// ReadOther indicates an unexpected I/O error, including a file that grew
	// while being read.
	ReadOther
)

// serializerMu guards every Serialize call into the host-provided Codec;
// Parse calls are not made under it. The serializer is modeled as a shared
// resource with scoped acquisition per write, matching the design note that a reimplementation with a
// reentrant serializer may drop this mutex; LineCodec happens to be
// reentrant already, but the mutex is kept so a host swapping in a
// stateful Codec is still safe.
var serializerMu sync.Mutex

// ReadEntryFile reads the complete contents of an entry file at path. It
// detects a file that grows between the initial stat and the read loop
// finishing and reports that as ReadOther, since such a read cannot be
// trusted to be a complete, consistent image of the file.
func ReadEntryFile(path string) ([]byte, ReadOutcome, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ReadNotFound, nil
		}
		return nil, ReadOther, errors.Wrap(err, "unable to open entry file")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, ReadOther, errors.Wrap(err, "unable to stat entry file")
	}

	data, err := readFullRetryingEINTR(file, info.Size())
	if err != nil {
		return nil, ReadOther, err
	}
	return data, ReadSuccess, nil
}

// EntryFileExists performs a stat-like existence check without reading the
// file's contents.
func EntryFileExists(path string) (bool, error) {
	if _, err := extstat.NewFromFileName(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "unable to stat entry file")
	}
	return true, nil
}

// WriteEntryFile atomically replaces the entry file at path with the
// serialized form of entry, as produced by codec. The entry's DN is
// temporarily shortened to its leaf RDN for the duration of serialization
// (per the on-disk contract that a stored entry's DN is leaf-only) and
// always restored afterward, regardless of outcome.
func WriteEntryFile(path string, codec ldif.Codec, entry *ldif.Entry) error {
	dir := filepath.Dir(path)
	tempPath := filepath.Join(dir, ".tmp-"+uuid.NewString()+entryFileSuffix)

	temp, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsNotExist(err) {
			return errNoSuchObject
		}
		return errors.Wrap(err, "unable to create temporary entry file")
	}

	if err := restrictToOwner(tempPath); err != nil {
		must.Close(temp, entryFileLogger)
		must.OSRemove(tempPath, entryFileLogger)
		return errors.Wrap(err, "unable to set temporary entry file permissions")
	}

	data, serializeErr := serializeLeafOnly(codec, entry)
	if serializeErr != nil {
		must.Close(temp, entryFileLogger)
		must.OSRemove(tempPath, entryFileLogger)
		return errors.Wrap(serializeErr, "unable to serialize entry")
	}

	if writeErr := writeFullRetryingEINTR(temp, data); writeErr != nil {
		must.Close(temp, entryFileLogger)
		must.OSRemove(tempPath, entryFileLogger)
		return errors.Wrap(writeErr, "unable to write temporary entry file")
	}

	if closeErr := temp.Close(); closeErr != nil {
		must.OSRemove(tempPath, entryFileLogger)
		return errors.Wrap(closeErr, "unable to close temporary entry file")
	}

	if err := os.Rename(tempPath, path); err != nil {
		must.OSRemove(tempPath, entryFileLogger)
		return errors.Wrap(err, "unable to replace entry file")
	}
	return nil
}

// serializeLeafOnly serializes entry under the process-wide serializer
// mutex, with its DN swapped to leaf-only for the duration of the call and
// restored before returning, whether or not serialization succeeded.
func serializeLeafOnly(codec ldif.Codec, entry *ldif.Entry) ([]byte, error) {
	serializerMu.Lock()
	defer serializerMu.Unlock()

	fullDN := entry.DN
	entry.DN = ldif.DN{RDNs: []ldif.RDN{fullDN.Leaf()}}
	defer func() { entry.DN = fullDN }()

	return codec.Serialize(entry)
}

// errNoSuchObject is returned by WriteEntryFile when the parent directory of
// path does not exist.
var errNoSuchObject = errors.New("parent directory does not exist")

// IsNoSuchObject reports whether err is the sentinel WriteEntryFile returns
// when a write's parent directory is missing.
func IsNoSuchObject(err error) bool {
	return errors.Is(err, errNoSuchObject)
}
