package ldifstore

import "testing"

// TestDirOfAndLdifOfRoundTrip tests that DirOf and LdifOf are mutual
// inverses on a well-formed entry path.
func TestDirOfAndLdifOfRoundTrip(t *testing.T) {
	entryPath := "/base/dc=com/dc=example/cn=alice.ldif"
	dir := DirOf(entryPath)
	if want := "/base/dc=com/dc=example/cn=alice"; dir != want {
		t.Errorf("DirOf: got %q, want %q", dir, want)
	}
	if back := LdifOf(dir); back != entryPath {
		t.Errorf("LdifOf(DirOf(x)) = %q, want %q", back, entryPath)
	}
}
