//go:build !windows

package ldifstore

import "testing"

// TestPathCodecEscapeMarkerByteColonCollision reproduces the same class of
// collision against the POSIX unsafe-byte table: ':' hex-escapes to "%3A",
// so without escaping a literal "%" byte, the RDNs `cn=a:b` and `cn=a%3Ab`
// would both encode to the path component "cn=a%3Ab".
func TestPathCodecEscapeMarkerByteColonCollision(t *testing.T) {
	suffix := mustDN(t, "dc=example,dc=com")
	codec := NewPathCodec(suffix, "/tmp/db")

	colon := mustDN(t, `cn=a\:b,dc=example,dc=com`)
	literalEscape := mustDN(t, `cn=a\%3Ab,dc=example,dc=com`)

	pathColon := codec.EntryPath(colon)
	pathLiteral := codec.EntryPath(literalEscape)
	if pathColon == pathLiteral {
		t.Fatalf("collision: cn=a:b and cn=a%%3Ab both encode to %q", pathColon)
	}
}
