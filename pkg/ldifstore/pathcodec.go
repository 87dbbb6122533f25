// Package ldifstore implements the directory-service storage backend core:
// it maps distinguished names onto a mirrored filesystem tree, enumerates
// that tree for scoped search, and sequences reads and writes under a
// single-writer/many-reader discipline.
package ldifstore

import (
	"fmt"
	"strings"

	"github.com/Eldar88/openldap/pkg/ldif"
)

// entryFileSuffix is the filename suffix applied to every entry file. A
// user RDN that happens to end in this sequence cannot collide with it,
// because "." is always hex-escaped in encoded RDNs (see encodeRDN).
const entryFileSuffix = ".ldif"

// PathCodec derives filesystem paths from normalized DNs under a configured
// suffix and base directory. It is a total, deterministic function of its
// inputs: the same (suffix, base, DN) always yields the same path, and
// distinct DNs under the suffix always yield distinct paths (see
// pathcodec_test.go for the injectivity and safety property checks).
type PathCodec struct {
	// Suffix is the normalized DN of the root served by this backend.
	Suffix ldif.DN
	// Base is the base directory under which the mirrored tree lives.
	Base string
}

// NewPathCodec creates a codec for the given suffix and base directory. The
// suffix is normalized once up front so that every subsequent DN comparison
// is a plain normalized-RDN comparison.
func NewPathCodec(suffix ldif.DN, base string) PathCodec {
	return PathCodec{Suffix: suffix.Normalize(), Base: base}
}

// EntryPath computes the filesystem path of the entry file for a normalized
// DN. The DN must already satisfy HasSuffix(codec.Suffix); callers are
// expected to have checked this (e.g. via the operation handlers) before
// calling down into path derivation.
func (c PathCodec) EntryPath(normalizedDN ldif.DN) string {
	above := normalizedDN.StripSuffix(c.Suffix)

	// Walk root to leaf: the suffix's RDNs, root-most first, are the
	// outermost directory components below base (one component per RDN; the
	// suffix is not written as a single component), and each RDN above the
	// suffix nests one level deeper still.
	components := make([]string, 0, len(c.Suffix.RDNs)+len(above))
	for i := len(c.Suffix.RDNs) - 1; i >= 0; i-- {
		components = append(components, encodeRDN(c.Suffix.RDNs[i]))
	}
	for i := len(above) - 1; i >= 0; i-- {
		components = append(components, encodeRDN(above[i]))
	}

	path := c.Base
	for _, component := range components {
		path += "/" + component
	}
	return path + entryFileSuffix
}

// encodeRDN encodes a single normalized RDN into a filename-safe component,
// applying the per-character decision ladder described by the backend's
// DN-to-path encoding:
//
//  1. platform-unsafe bytes are hex-escaped;
//  2. the DN escape byte is replaced by the platform's filename escape byte;
//  3. the ordering braces are replaced by their file-scope equivalents;
//  4. the filename-suffix separator "." is always hex-escaped;
//  5. the platform escape byte and file-scope braces are hex-escaped when
//     they appear literally (i.e. were not already produced by rule 2/3);
//  6. the hex-escape marker byte itself is always hex-escaped, so a literal
//     occurrence can never be mistaken for the start of an escape sequence
//     produced by one of the rules above;
//  7. everything else passes through unchanged.
func encodeRDN(rdn ldif.RDN) string {
	return encodeComponent(rdn.String())
}

func encodeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			// The DN escape byte is remapped before the general unsafe
			// check: on platforms where '\\' is itself reserved (Windows),
			// rule 2 must still win so the substitute, not a hex escape,
			// is what lands in the path component.
			b.WriteByte(platformEscapeByte)
		case isPlatformUnsafe(c):
			hexEscape(&b, c)
		case c == '{':
			b.WriteString(fileScopeLeftBrace)
		case c == '}':
			b.WriteString(fileScopeRightBrace)
		case c == '.':
			hexEscape(&b, c)
		case c == platformEscapeByte && platformEscapeByte != '\\':
			hexEscape(&b, c)
		case c == escapeMarkerByte:
			hexEscape(&b, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hexEscape writes the escape byte followed by two uppercase hex digits of
// the byte's value.
func hexEscape(b *strings.Builder, c byte) {
	b.WriteByte(escapeMarkerByte)
	fmt.Fprintf(b, "%02X", c)
}

// escapeMarkerByte is the byte that introduces a hex escape sequence in an
// encoded path component. It is distinct from the DN escape byte and from
// the platform filename escape byte so that escape sequences are themselves
// unambiguous; "%" is filename-safe on every supported platform.
const escapeMarkerByte = '%'

func init() {
	// Refuse to build (in spirit: panic before any encoding takes place) if
	// the chosen substitutes would themselves require escaping, which would
	// make the encoding ambiguous between "literal brace" and "ordering
	// marker". This is the closest Go equivalent of a compile-time
	// assertion, since the unsafe sets are platform build-tag constants
	// rather than values a const expression can range over.
	assertNotUnsafe('-')
	assertNotUnsafe(platformEscapeByte)
	for _, s := range []string{fileScopeLeftBrace, fileScopeRightBrace} {
		for i := 0; i < len(s); i++ {
			assertNotUnsafe(s[i])
		}
	}
}

func assertNotUnsafe(c byte) {
	if isPlatformUnsafe(c) {
		panic(fmt.Sprintf("ldifstore: path codec misconfigured: byte %q is both a reserved substitute and platform-unsafe", c))
	}
}
