package ldif

import "testing"

// TestParseDNAndString tests that ParseDN and DN.String round-trip a simple
// multi-component DN.
func TestParseDNAndString(t *testing.T) {
	dn, err := ParseDN("cn=Alice,ou=People,dc=example,dc=com")
	if err != nil {
		t.Fatal("ParseDN failed:", err)
	}
	if len(dn.RDNs) != 4 {
		t.Fatal("unexpected RDN count:", len(dn.RDNs))
	}
	if dn.Leaf() != (RDN{Attribute: "cn", Value: "Alice"}) {
		t.Error("unexpected leaf RDN:", dn.Leaf())
	}
	if got, want := dn.String(), "cn=Alice,ou=People,dc=example,dc=com"; got != want {
		t.Error("String mismatch:", got, "!=", want)
	}
}

// TestParseDNEscaping tests that ParseDN unescapes backslash-escaped commas
// within an RDN value, and that String re-escapes them on the way out.
func TestParseDNEscaping(t *testing.T) {
	dn, err := ParseDN(`cn=Smith\, John,dc=example,dc=com`)
	if err != nil {
		t.Fatal("ParseDN failed:", err)
	}
	if got, want := dn.Leaf().Value, "Smith, John"; got != want {
		t.Error("unescaped value mismatch:", got, "!=", want)
	}
	if got, want := dn.String(), `cn=Smith\, John,dc=example,dc=com`; got != want {
		t.Error("re-escaped String mismatch:", got, "!=", want)
	}
}

// TestParseDNEmpty tests that ParseDN accepts an empty string as the empty
// (root) DN.
func TestParseDNEmpty(t *testing.T) {
	dn, err := ParseDN("")
	if err != nil {
		t.Fatal("ParseDN failed:", err)
	}
	if !dn.IsEmpty() {
		t.Error("expected empty DN")
	}
}

// TestParseDNMissingEquals tests that a component with no "=" is rejected.
func TestParseDNMissingEquals(t *testing.T) {
	if _, err := ParseDN("cn"); err == nil {
		t.Error("expected error for RDN missing '='")
	}
}

// TestDNNormalize tests that Normalize case-folds and collapses whitespace.
func TestDNNormalize(t *testing.T) {
	dn, err := ParseDN("CN = Alice  Smith , DC=Example,DC=COM")
	if err != nil {
		t.Fatal("ParseDN failed:", err)
	}
	normalized := dn.Normalize()
	if got, want := normalized.RDNs[0].Attribute, "cn"; got != want {
		t.Error("attribute not folded:", got, "!=", want)
	}
	if got, want := normalized.RDNs[0].Value, "alice smith"; got != want {
		t.Error("value not canonicalized:", got, "!=", want)
	}
}

// TestDNHasSuffixAndStripSuffix tests suffix membership and stripping.
func TestDNHasSuffixAndStripSuffix(t *testing.T) {
	suffix, _ := ParseDN("dc=example,dc=com")
	suffix = suffix.Normalize()

	dn, _ := ParseDN("cn=Alice,ou=People,dc=example,dc=com")
	dn = dn.Normalize()

	if !dn.HasSuffix(suffix) {
		t.Fatal("expected dn to have suffix")
	}
	above := dn.StripSuffix(suffix)
	if len(above) != 2 {
		t.Fatal("unexpected above-suffix RDN count:", len(above))
	}
	if above[0].Attribute != "cn" || above[1].Attribute != "ou" {
		t.Error("unexpected above-suffix RDNs:", above)
	}

	other, _ := ParseDN("dc=other,dc=com")
	if other.Normalize().HasSuffix(suffix) {
		t.Error("expected unrelated DN to not have suffix")
	}
}

// TestDNParentAndBuildChildDN tests that Parent/BuildChildDN are inverses.
func TestDNParentAndBuildChildDN(t *testing.T) {
	dn, _ := ParseDN("cn=Alice,ou=People,dc=example,dc=com")
	parent, ok := dn.Parent()
	if !ok {
		t.Fatal("expected a parent")
	}
	rebuilt := BuildChildDN(dn.Leaf(), parent)
	if !rebuilt.Equal(dn) {
		t.Error("BuildChildDN(Leaf(), Parent()) did not reconstruct original DN")
	}

	single, _ := ParseDN("dc=com")
	if _, ok := single.Parent(); ok {
		t.Error("expected single-RDN DN to have no parent")
	}
}

// TestRDNOrdered tests the "{N}" ordering marker parser.
func TestRDNOrdered(t *testing.T) {
	cases := []struct {
		value     string
		wantIndex int
		wantOK    bool
	}{
		{"{0}frontend", 0, true},
		{"{12}bdb", 12, true},
		{"bdb", 0, false},
		{"{abc}bdb", 0, false},
		{"{-1}bdb", 0, false},
	}
	for _, c := range cases {
		rdn := RDN{Attribute: "olcDatabase", Value: c.value}
		index, ok := rdn.Ordered()
		if ok != c.wantOK || (ok && index != c.wantIndex) {
			t.Errorf("Ordered(%q) = (%d, %v), want (%d, %v)", c.value, index, ok, c.wantIndex, c.wantOK)
		}
	}
}
