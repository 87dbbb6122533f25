package ldif

import "context"

// SchemaChecker validates a candidate entry against the directory schema.
// It is a host-provided collaborator: the core invokes it but does not
// implement schema validation itself.
type SchemaChecker interface {
	CheckEntry(entry *Entry) error
}

// AccessController evaluates access-control rules for a modification
// against a requester identity. It is a host-provided collaborator.
type AccessController interface {
	CheckModify(ctx context.Context, requester DN, target *Entry, mods []Modification) error
}

// PasswordChecker verifies a presented password against an entry's stored
// credential. It is a host-provided collaborator (password hashing/
// comparison schemes are not this backend's concern).
type PasswordChecker interface {
	CheckPassword(entry *Entry, presented string) bool
}

// ReferralRewriter rewrites a set of referral URLs (e.g. substituting a
// requested DN into the referral target) before they are returned to the
// caller. It is a host-provided collaborator.
type ReferralRewriter interface {
	RewriteReferral(requested DN, urls []string) []string
}

// ChangeSequenceAllocator allocates a monotonically increasing change
// sequence number stamped onto successful mutations. It is a host-provided
// collaborator.
type ChangeSequenceAllocator interface {
	Next() string
}

// ResultSink receives the results of a search as they are produced,
// streaming them back toward the client. Returning a non-success Result
// aborts the in-flight enumeration; the enumerator propagates exactly that
// Result to its caller, which is how cooperative cancellation works.
type ResultSink interface {
	// SendEntry delivers a matched entry with its fully reconstructed DN.
	SendEntry(entry *Entry) Result
	// SendReferral delivers a synthesized referral result.
	SendReferral(result Result) Result
}

// Filter evaluates whether an entry matches a search filter. It is a
// host-provided collaborator; the backend only calls it, never interprets
// filter syntax itself.
type Filter interface {
	Matches(entry *Entry) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(entry *Entry) bool

// Matches implements Filter.
func (f FilterFunc) Matches(entry *Entry) bool {
	return f(entry)
}

// MatchAll is a Filter that matches every entry, useful for base/one-level
// listings with no filter applied.
var MatchAll Filter = FilterFunc(func(*Entry) bool { return true })
