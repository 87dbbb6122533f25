package ldif

import "testing"

// TestSHA256PasswordCheckerSalted tests the salted scheme HashPassword
// produces.
func TestSHA256PasswordCheckerSalted(t *testing.T) {
	hashed, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal("HashPassword failed:", err)
	}

	entry := &Entry{}
	entry.Set("userPassword", hashed)

	checker := SHA256PasswordChecker{}
	if !checker.CheckPassword(entry, "correct horse") {
		t.Error("expected correct password to verify")
	}
	if checker.CheckPassword(entry, "wrong password") {
		t.Error("expected incorrect password to be rejected")
	}
}

// TestSHA256PasswordCheckerLegacy tests the legacy unsalted "{SHA256}" form.
func TestSHA256PasswordCheckerLegacy(t *testing.T) {
	entry := &Entry{}
	// sha256("hunter2") hex-encoded.
	entry.Set("userPassword", "{SHA256}f52fbd32b2b3b86ff88ef6c490628285f482af15ddcb29541f94bcf526a3f6c7")

	checker := SHA256PasswordChecker{}
	if !checker.CheckPassword(entry, "hunter2") {
		t.Error("expected legacy SHA256 password to verify")
	}
}

// TestSHA256PasswordCheckerNoAttribute tests that a missing attribute fails
// closed.
func TestSHA256PasswordCheckerNoAttribute(t *testing.T) {
	checker := SHA256PasswordChecker{}
	if checker.CheckPassword(&Entry{}, "anything") {
		t.Error("expected entry with no userPassword to fail")
	}
}

// TestGlobFilterMatches tests GlobFilter against attribute values.
func TestGlobFilterMatches(t *testing.T) {
	entry := &Entry{}
	entry.Set("cn", "Alice Smith")

	filter := GlobFilter{Attribute: "cn", Pattern: "Alice*"}
	if !filter.Matches(entry) {
		t.Error("expected glob filter to match")
	}

	filter = GlobFilter{Attribute: "cn", Pattern: "Bob*"}
	if filter.Matches(entry) {
		t.Error("expected glob filter to not match")
	}

	filter = GlobFilter{Attribute: "sn", Pattern: "*"}
	if filter.Matches(entry) {
		t.Error("expected glob filter on missing attribute to not match")
	}
}
