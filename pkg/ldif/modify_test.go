package ldif

import "testing"

// TestApplyModificationsAdd tests that Add appends new values and rejects a
// duplicate.
func TestApplyModificationsAdd(t *testing.T) {
	entry := &Entry{}
	entry.Set("mail", "alice@example.com")

	_, err := entry.ApplyModifications([]Modification{
		{Kind: ModAdd, Attribute: "mail", Values: []string{"alice@other.com"}},
	})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	values, _ := entry.Get("mail")
	if len(values) != 2 {
		t.Fatal("unexpected values after add:", values)
	}

	_, err = entry.ApplyModifications([]Modification{
		{Kind: ModAdd, Attribute: "mail", Values: []string{"alice@other.com"}},
	})
	if err == nil {
		t.Fatal("expected error adding a duplicate value")
	}
	if result, ok := err.(Result); !ok || result.Code != AlreadyExists {
		t.Errorf("expected AlreadyExists Result, got %#v", err)
	}
}

// TestApplyModificationsSoftAdd tests that SoftAdd swallows the duplicate
// rather than erroring.
func TestApplyModificationsSoftAdd(t *testing.T) {
	entry := &Entry{}
	entry.Set("mail", "alice@example.com")

	_, err := entry.ApplyModifications([]Modification{
		{Kind: ModSoftAdd, Attribute: "mail", Values: []string{"alice@example.com", "alice@other.com"}},
	})
	if err != nil {
		t.Fatal("unexpected error from SoftAdd:", err)
	}
	values, _ := entry.Get("mail")
	if len(values) != 2 {
		t.Error("unexpected values after SoftAdd:", values)
	}
}

// TestApplyModificationsDelete tests that Delete removes only the named
// values, or the whole attribute when none are given.
func TestApplyModificationsDelete(t *testing.T) {
	entry := &Entry{}
	entry.Set("mail", "a@example.com", "b@example.com")

	_, err := entry.ApplyModifications([]Modification{
		{Kind: ModDelete, Attribute: "mail", Values: []string{"a@example.com"}},
	})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	values, _ := entry.Get("mail")
	if len(values) != 1 || values[0] != "b@example.com" {
		t.Fatal("unexpected values after partial delete:", values)
	}

	_, err = entry.ApplyModifications([]Modification{
		{Kind: ModDelete, Attribute: "mail"},
	})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if _, ok := entry.Get("mail"); ok {
		t.Error("expected attribute to be fully removed")
	}
}

// TestApplyModificationsReplace tests wholesale value replacement.
func TestApplyModificationsReplace(t *testing.T) {
	entry := &Entry{}
	entry.Set("description", "old")

	_, err := entry.ApplyModifications([]Modification{
		{Kind: ModReplace, Attribute: "description", Values: []string{"new"}},
	})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	values, _ := entry.Get("description")
	if len(values) != 1 || values[0] != "new" {
		t.Error("unexpected values after replace:", values)
	}
}

// TestApplyModificationsIncrement tests numeric increment and its error
// cases.
func TestApplyModificationsIncrement(t *testing.T) {
	entry := &Entry{}
	entry.Set("uidNumber", "10")

	_, err := entry.ApplyModifications([]Modification{
		{Kind: ModIncrement, Attribute: "uidNumber", Values: []string{"5"}},
	})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	values, _ := entry.Get("uidNumber")
	if len(values) != 1 || values[0] != "15" {
		t.Fatal("unexpected value after increment:", values)
	}

	entry.Set("notANumber", "x")
	_, err = entry.ApplyModifications([]Modification{
		{Kind: ModIncrement, Attribute: "notANumber", Values: []string{"1"}},
	})
	if err == nil {
		t.Error("expected error incrementing a non-numeric attribute")
	}
}

// TestApplyModificationsObjectClassChanged tests that the objectClass-change
// flag is reported only when objectClass itself is touched.
func TestApplyModificationsObjectClassChanged(t *testing.T) {
	entry := &Entry{}

	changed, err := entry.ApplyModifications([]Modification{
		{Kind: ModAdd, Attribute: "mail", Values: []string{"a@example.com"}},
	})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if changed {
		t.Error("expected objectClassChanged to be false")
	}

	changed, err = entry.ApplyModifications([]Modification{
		{Kind: ModAdd, Attribute: "objectClass", Values: []string{"top"}},
	})
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if !changed {
		t.Error("expected objectClassChanged to be true")
	}
}
