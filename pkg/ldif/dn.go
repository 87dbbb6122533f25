// Package ldif defines the data model shared by the directory-service
// storage backend: distinguished names, entries, modifications, and the
// small set of host-provided collaborator contracts (schema checking, access
// control, password verification, referral rewriting, change-sequence-number
// allocation, and result delivery) that the backend invokes but does not
// implement itself.
package ldif

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
)

// foldCaser performs the Unicode case folding used to compute normalized DN
// components. A single shared caser is safe for concurrent use.
var foldCaser = cases.Fold()

// RDN is a single relative distinguished name component, e.g. "cn=Alice" or
// "olcDatabase={2}bdb".
type RDN struct {
	// Attribute is the attribute type of the RDN, e.g. "cn".
	Attribute string
	// Value is the attribute value of the RDN, e.g. "Alice" or "{2}bdb". It
	// retains any leading "{N}" ordering marker verbatim.
	Value string
}

// String renders the RDN in "attribute=value" form.
func (r RDN) String() string {
	return r.Attribute + "=" + r.Value
}

// collapseWhitespace canonicalizes runs of whitespace to a single space and
// trims leading/trailing whitespace, mirroring the whitespace canonicalization
// rule for normalized DNs.
func collapseWhitespace(s string) string {
	var builder strings.Builder
	inSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			if !inSpace {
				builder.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		builder.WriteRune(r)
	}
	return builder.String()
}

// Normalize returns the case-folded, whitespace-canonicalized form of the
// RDN used as the unique key for path derivation and comparison.
func (r RDN) Normalize() RDN {
	return RDN{
		Attribute: foldCaser.String(collapseWhitespace(r.Attribute)),
		Value:     foldCaser.String(collapseWhitespace(r.Value)),
	}
}

// orderingPrefix matches a leading "{N}" ordering marker in an RDN value.
// It returns the parsed index, the byte offset immediately after the closing
// brace, and whether a marker was found.
func (r RDN) orderingPrefix() (index int, rest int, ok bool) {
	if len(r.Value) < 3 || r.Value[0] != '{' {
		return 0, 0, false
	}
	close := strings.IndexByte(r.Value, '}')
	if close <= 1 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(r.Value[1:close])
	if err != nil || n < 0 {
		return 0, 0, false
	}
	return n, close + 1, true
}

// Ordered reports whether this RDN carries an explicit "{N}" sibling
// ordering marker, returning the parsed index when it does.
func (r RDN) Ordered() (index int, ok bool) {
	index, _, ok = r.orderingPrefix()
	return
}

// DN is a distinguished name: a sequence of RDNs ordered leaf-to-root.
// RDNs[0] is the leaf (leftmost-appearing in conventional "cn=x,dc=y"
// notation); the last element is the root-most RDN.
type DN struct {
	RDNs []RDN
}

// String renders the DN in canonical comma-separated leaf-to-root form.
func (d DN) String() string {
	parts := make([]string, len(d.RDNs))
	for i, r := range d.RDNs {
		parts[i] = escapeRDNForDN(r)
	}
	return strings.Join(parts, ",")
}

// escapeRDNForDN re-escapes commas and backslashes that appear literally in
// an RDN's attribute or value so that String produces a parseable DN.
func escapeRDNForDN(r RDN) string {
	escape := func(s string) string {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `,`, `\,`)
		s = strings.ReplaceAll(s, `+`, `\+`)
		return s
	}
	return escape(r.Attribute) + "=" + escape(r.Value)
}

// IsEmpty reports whether the DN has no RDNs (the notional root of the
// filesystem-mirrored tree, used only as a synthetic base for top-of-tree
// requests).
func (d DN) IsEmpty() bool {
	return len(d.RDNs) == 0
}

// Leaf returns the leaf (first) RDN of the DN. It panics if the DN is empty;
// callers must check IsEmpty first.
func (d DN) Leaf() RDN {
	return d.RDNs[0]
}

// Parent returns the DN formed by removing the leaf RDN, and a boolean
// indicating whether a parent exists (false if d is already a single-RDN DN
// or empty).
func (d DN) Parent() (DN, bool) {
	if len(d.RDNs) <= 1 {
		return DN{}, false
	}
	return DN{RDNs: d.RDNs[1:]}, true
}

// WithNewLeaf returns a copy of the DN with its leaf RDN replaced, used by
// modify-RDN to construct the renamed DN while preserving the ancestry.
func (d DN) WithNewLeaf(leaf RDN) DN {
	rdns := make([]RDN, len(d.RDNs))
	copy(rdns, d.RDNs)
	if len(rdns) == 0 {
		rdns = []RDN{leaf}
	} else {
		rdns[0] = leaf
	}
	return DN{RDNs: rdns}
}

// BuildChildDN prepends a leaf RDN onto a parent DN, the inverse operation
// used when reconstructing a full DN from a stored leaf RDN plus the caller-
// supplied parent DN.
func BuildChildDN(leaf RDN, parent DN) DN {
	rdns := make([]RDN, 0, len(parent.RDNs)+1)
	rdns = append(rdns, leaf)
	rdns = append(rdns, parent.RDNs...)
	return DN{RDNs: rdns}
}

// Normalize returns the normalized form of the DN: every RDN case-folded and
// whitespace-canonicalized. The normalized DN is the unique key used for
// path derivation and equality.
func (d DN) Normalize() DN {
	rdns := make([]RDN, len(d.RDNs))
	for i, r := range d.RDNs {
		rdns[i] = r.Normalize()
	}
	return DN{RDNs: rdns}
}

// Equal reports whether two (assumed already-normalized) DNs are identical.
func (d DN) Equal(other DN) bool {
	if len(d.RDNs) != len(other.RDNs) {
		return false
	}
	for i := range d.RDNs {
		if d.RDNs[i] != other.RDNs[i] {
			return false
		}
	}
	return true
}

// HasSuffix reports whether the (assumed already-normalized) DN is equal to
// or subordinate to the (assumed already-normalized) suffix DN.
func (d DN) HasSuffix(suffix DN) bool {
	if len(d.RDNs) < len(suffix.RDNs) {
		return false
	}
	offset := len(d.RDNs) - len(suffix.RDNs)
	for i, r := range suffix.RDNs {
		if d.RDNs[offset+i] != r {
			return false
		}
	}
	return true
}

// StripSuffix returns the RDNs of d that lie strictly above the suffix (i.e.
// excluding the suffix's own RDNs), in leaf-to-root order. The suffix RDN
// itself is not included; callers that need it can take it from the suffix
// DN directly. It requires that d.HasSuffix(suffix) holds.
func (d DN) StripSuffix(suffix DN) []RDN {
	if len(d.RDNs) <= len(suffix.RDNs) {
		return nil
	}
	return d.RDNs[:len(d.RDNs)-len(suffix.RDNs)]
}

// ParseDN parses a presentation-form DN of the form "attr=value,attr=value"
// into leaf-to-root RDNs. It understands backslash-escaping of ",", "+", and
// "\" within attribute values.
func ParseDN(raw string) (DN, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DN{}, nil
	}

	var rdns []RDN
	var current strings.Builder
	var pieces []string
	escaped := false
	for _, r := range raw {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			current.WriteRune(r)
			escaped = true
		case r == ',':
			pieces = append(pieces, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		return DN{}, errors.New("dangling escape character in DN")
	}
	pieces = append(pieces, current.String())

	for _, piece := range pieces {
		rdn, err := parseRDN(piece)
		if err != nil {
			return DN{}, errors.Wrapf(err, "invalid RDN %q", piece)
		}
		rdns = append(rdns, rdn)
	}
	return DN{RDNs: rdns}, nil
}

// parseRDN parses a single "attribute=value" component, unescaping any
// backslash-escaped characters in the value.
func parseRDN(piece string) (RDN, error) {
	piece = strings.TrimSpace(piece)
	var attribute strings.Builder
	var value strings.Builder
	escaped := false
	sawEquals := false
	for _, r := range piece {
		switch {
		case escaped:
			value.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '=' && !sawEquals:
			sawEquals = true
		default:
			if sawEquals {
				value.WriteRune(r)
			} else {
				attribute.WriteRune(r)
			}
		}
	}
	if !sawEquals {
		return RDN{}, errors.New("missing '=' in RDN")
	}
	attr := strings.TrimSpace(attribute.String())
	if attr == "" {
		return RDN{}, errors.New("empty attribute type in RDN")
	}
	return RDN{Attribute: attr, Value: strings.TrimSpace(value.String())}, nil
}
