package ldifstore

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/Eldar88/openldap/pkg/ldif"
	"github.com/Eldar88/openldap/pkg/logging"
)

// toolModeInitialCapacity is the starting size of the tool-mode buffer; once
// it fills, the buffer grows as Go's append grows a slice.
const toolModeInitialCapacity = 500

// ToolMode drives offline batch import/export against a backend, bypassing
// both the reader-writer lock and the result-sink hooks (schema/ACL checks
// are the importer's own responsibility in this mode).
type ToolMode struct {
	backend *Backend
	buffer  []*ldif.Entry
	cursor  int
	opened  bool
	logger  *logging.Logger
}

// NewToolMode creates a tool-mode session over backend.
func NewToolMode(backend *Backend) *ToolMode {
	logger := backend.Logger
	if logger == nil {
		logger = logging.RootLogger.Sublogger("ldifstore/tool")
	}
	return &ToolMode{backend: backend, logger: logger}
}

// Put writes an entry using the same path-and-file logic as Add, but without
// schema or access-control checks.
func (t *ToolMode) Put(entry *ldif.Entry) error {
	ndn := entry.DN.Normalize()
	if !ndn.HasSuffix(t.backend.suffix) {
		return errors.Errorf("entry %q is not under the configured suffix", entry.DN.String())
	}

	path := t.backend.pathCodec.EntryPath(ndn)
	if _, ok := ndn.Parent(); ok {
		parentDir := filepath.Dir(path)
		if _, err := os.Stat(parentDir); os.IsNotExist(err) {
			if mkErr := os.MkdirAll(parentDir, 0o755); mkErr != nil {
				return errors.Wrap(mkErr, "unable to create parent subtree directory")
			}
		}
	}
	return WriteEntryFile(path, t.backend.Codec, entry)
}

// First loads the buffer (on first call only, by enumerating the whole
// subtree rooted at the suffix) and returns the first entry. The entry
// remains owned by the buffer; use Get to take ownership.
func (t *ToolMode) First() (*ldif.Entry, error) {
	if !t.opened {
		if err := t.fill(); err != nil {
			return nil, err
		}
	}
	t.cursor = 0
	return t.peek(), nil
}

// Next advances the cursor and returns the next buffered entry, or nil when
// exhausted.
func (t *ToolMode) Next() (*ldif.Entry, error) {
	if !t.opened {
		if err := t.fill(); err != nil {
			return nil, err
		}
	}
	t.cursor++
	return t.peek(), nil
}

// Get returns the entry at the current cursor position and transfers
// ownership to the caller by nulling its buffer slot.
func (t *ToolMode) Get() *ldif.Entry {
	if t.cursor < 0 || t.cursor >= len(t.buffer) {
		return nil
	}
	entry := t.buffer[t.cursor]
	t.buffer[t.cursor] = nil
	return entry
}

func (t *ToolMode) peek() *ldif.Entry {
	if t.cursor < 0 || t.cursor >= len(t.buffer) {
		return nil
	}
	return t.buffer[t.cursor]
}

// fill runs a single sub-tree enumeration rooted at the suffix into a buffer
// that starts at toolModeInitialCapacity and grows by append.
func (t *ToolMode) fill() error {
	t.buffer = make([]*ldif.Entry, 0, toolModeInitialCapacity)
	cookie := &Cookie{
		Request: ldif.SearchRequest{
			Base:        t.backend.suffix,
			Scope:       ldif.ScopeSubtree,
			Filter:      ldif.MatchAll,
			ManageDSAit: true,
		},
		Buffer: &t.buffer,
		Codec:  t.backend.Codec,
	}
	suffixParentDN, _ := t.backend.suffix.Parent()
	result := Enumerate(cookie, t.backend.suffixEntryPath(), false, suffixParentDN, suffixParentDN)
	t.opened = true
	if before, after := toolModeInitialCapacity, cap(t.buffer); after > before {
		t.logger.Debugf("tool-mode buffer grew from %s to %s entries",
			humanize.Comma(int64(before)), humanize.Comma(int64(after)))
	}
	if !result.OK() && result.Code != ldif.NoSuchObject {
		return result
	}
	return nil
}
