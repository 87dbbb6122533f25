package ldif

import "strings"

// Attribute is an attribute type paired with its ordered list of values.
type Attribute struct {
	// Type is the attribute type name, e.g. "objectClass".
	Type string
	// Values is the ordered list of values assigned to the attribute.
	Values []string
}

// Entry is an ordered set of attribute-value assertions identified by a DN.
// The DN carried on an Entry loaded from disk has its leaf RDN only; callers
// reconstruct the full DN by supplying the parent DN (see BuildChildDN).
type Entry struct {
	// DN is the entry's distinguished name in presentation form.
	DN DN
	// Attributes is the ordered list of attributes, in the order they should
	// be serialized.
	Attributes []Attribute
}

// Normalized returns the normalized form of the entry's DN.
func (e *Entry) Normalized() DN {
	return e.DN.Normalize()
}

// Get returns the values of the named attribute (case-insensitive type
// match) and whether it is present.
func (e *Entry) Get(attributeType string) ([]string, bool) {
	for _, a := range e.Attributes {
		if strings.EqualFold(a.Type, attributeType) {
			return a.Values, true
		}
	}
	return nil, false
}

// Set replaces (or adds, if absent) the named attribute with the given
// values. Passing no values removes the attribute entirely.
func (e *Entry) Set(attributeType string, values ...string) {
	for i, a := range e.Attributes {
		if strings.EqualFold(a.Type, attributeType) {
			if len(values) == 0 {
				e.Attributes = append(e.Attributes[:i], e.Attributes[i+1:]...)
			} else {
				e.Attributes[i].Values = values
			}
			return
		}
	}
	if len(values) > 0 {
		e.Attributes = append(e.Attributes, Attribute{Type: attributeType, Values: values})
	}
}

// ObjectClasses returns the entry's objectClass attribute values.
func (e *Entry) ObjectClasses() []string {
	values, _ := e.Get("objectClass")
	return values
}

// HasObjectClass reports whether the entry carries the named objectClass
// value (case-insensitive).
func (e *Entry) HasObjectClass(name string) bool {
	for _, oc := range e.ObjectClasses() {
		if strings.EqualFold(oc, name) {
			return true
		}
	}
	return false
}

// referralObjectClass is the objectClass value that marks an entry as a
// referral (a forwarding pointer to another directory).
const referralObjectClass = "referral"

// IsReferral reports whether the entry is marked as a referral object.
func (e *Entry) IsReferral() bool {
	return e.HasObjectClass(referralObjectClass)
}

// ReferralURLs returns the entry's "ref" attribute values, the URLs that a
// referral entry forwards to.
func (e *Entry) ReferralURLs() []string {
	values, _ := e.Get("ref")
	return values
}

// HasPassword reports whether the entry carries a userPassword attribute,
// used by bind to decide between InvalidCredentials and InappropriateAuth.
func (e *Entry) HasPassword() bool {
	values, ok := e.Get("userPassword")
	return ok && len(values) > 0
}

// WithLeafOnly returns a shallow copy of the entry whose DN has been
// shortened to just its leaf RDN, as required before invoking the
// serializer (see Codec).
func (e *Entry) WithLeafOnly() *Entry {
	clone := *e
	if !e.DN.IsEmpty() {
		clone.DN = DN{RDNs: []RDN{e.DN.Leaf()}}
	}
	return &clone
}
