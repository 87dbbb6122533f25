package ldifstore

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Eldar88/openldap/pkg/ldif"
)

// Cookie carries the state threaded through one recursive enumeration: the
// request being served, where results go, and (in tool mode) the buffer
// results accumulate into instead of being streamed.
type Cookie struct {
	Request  ldif.SearchRequest
	Sink     ldif.ResultSink // nil in tool mode
	Buffer   *[]*ldif.Entry  // non-nil in tool mode
	Codec    ldif.Codec
	Referral ldif.ReferralRewriter
}

// Enumerate walks the mirrored tree rooted at path, visiting the entry there
// (unless isSyntheticBase), then descending into its companion directory
// unless the request's scope is base-only. parentDN/parentNDN are the
// presentation and normalized DNs of path's parent, used to reconstruct the
// full DN of the entry stored at path (which records only its leaf RDN).
func Enumerate(cookie *Cookie, path string, isSyntheticBase bool, parentDN, parentNDN ldif.DN) ldif.Result {
	var entryDN, entryNDN ldif.DN

	if !isSyntheticBase {
		data, outcome, err := ReadEntryFile(path)
		if outcome == ReadNotFound {
			return ldif.Result{Code: ldif.NoSuchObject}
		}
		if outcome == ReadOther {
			return ldif.Err(err)
		}

		entry, err := cookie.Codec.Parse(data)
		if err != nil {
			return ldif.Err(err)
		}

		leaf := entry.DN.Leaf()
		entryDN = ldif.BuildChildDN(leaf, parentDN)
		entryNDN = ldif.BuildChildDN(leaf.Normalize(), parentNDN)
		entry.DN = entryDN

		if cookie.Request.Scope == ldif.ScopeBase || cookie.Request.Scope == ldif.ScopeSubtree {
			if entry.IsReferral() && cookie.Request.Scope != ldif.ScopeBase && !cookie.Request.ManageDSAit {
				result := synthesizeReferral(cookie, entryDN, entry)
				if sent := sendReferral(cookie, result); !sent.OK() {
					return sent
				}
			} else if cookie.Request.Filter.Matches(entry) {
				if result := deliver(cookie, entry); !result.OK() {
					return result
				}
			}
		}
	} else {
		entryDN, entryNDN = parentDN, parentNDN
	}

	if cookie.Request.Scope == ldif.ScopeBase {
		return ldif.Ok()
	}

	dir := DirOf(path)
	names, err := readChildLdifNames(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return ldif.Ok()
		}
		return ldif.Result{Code: ldif.Busy, Text: err.Error()}
	}

	ordered := sortDirEntries(names)
	childScope := cookie.Request.Scope.Descend()

	savedScope := cookie.Request.Scope
	cookie.Request.Scope = childScope
	defer func() { cookie.Request.Scope = savedScope }()

	for _, name := range ordered {
		childPath := dir + "/" + name
		if result := Enumerate(cookie, childPath, false, entryDN, entryNDN); !result.OK() {
			return result
		}
	}
	return ldif.Ok()
}

// deliver routes a matched entry either to the streaming sink or the tool-
// mode buffer.
func deliver(cookie *Cookie, entry *ldif.Entry) ldif.Result {
	if cookie.Buffer != nil {
		*cookie.Buffer = append(*cookie.Buffer, entry)
		return ldif.Ok()
	}
	return cookie.Sink.SendEntry(entry)
}

// sendReferral routes a synthesized referral result to the streaming sink;
// tool mode never encounters referrals (it is a raw offline walk), so a nil
// sink there is simply skipped.
func sendReferral(cookie *Cookie, result ldif.Result) ldif.Result {
	if cookie.Sink == nil {
		return ldif.Ok()
	}
	return cookie.Sink.SendReferral(result)
}

// synthesizeReferral builds the Referral result for an entry shadowed by
// referral semantics, rewriting its URLs through the configured
// ReferralRewriter.
func synthesizeReferral(cookie *Cookie, matchedDN ldif.DN, entry *ldif.Entry) ldif.Result {
	urls := entry.ReferralURLs()
	if cookie.Referral != nil {
		urls = cookie.Referral.RewriteReferral(matchedDN, urls)
	}
	return ldif.Result{Code: ldif.Referral, MatchedDN: matchedDN, ReferralURLs: urls}
}

// readChildLdifNames lists dir's entries, retaining only names that are
// valid entry filenames (end in the entry suffix with at least one
// character of stem before it).
func readChildLdifNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if len(name) > len(entryFileSuffix) && strings.HasSuffix(name, entryFileSuffix) {
			names = append(names, name)
		}
	}
	return names, nil
}

// sortKey is the (primary, secondary, ordered) comparison key derived from
// one encoded sibling filename.
type sortKey struct {
	name      string
	primary   string
	secondary int
	ordered   bool
}

// sortDirEntries orders sibling filenames so that any carrying an
// "{N}"-style ordering marker in their encoded RDN appear in strict numeric
// order of N, and all others sort lexicographically by their full encoded
// name. A name's ordering marker, if any, is blanked out of its primary sort
// key so that digit width never perturbs the comparison.
func sortDirEntries(names []string) []string {
	keys := make([]sortKey, len(names))
	for i, name := range names {
		keys[i] = buildSortKey(name)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ordered && b.ordered {
			if a.secondary != b.secondary {
				return a.secondary < b.secondary
			}
			return a.primary < b.primary
		}
		if a.primary != b.primary {
			return a.primary < b.primary
		}
		return a.name < b.name
	})
	ordered := make([]string, len(keys))
	for i, k := range keys {
		ordered[i] = k.name
	}
	return ordered
}

// buildSortKey locates a fileScopeLeftBrace...fileScopeRightBrace bracketed
// decimal integer in name and builds its sort key, blanking the bracketed
// digits out of the primary key so two ordering markers of different digit
// width ("{1}" vs "{12}") compare only on the parsed integer.
func buildSortKey(name string) sortKey {
	start := strings.Index(name, fileScopeLeftBrace)
	if start < 0 {
		return sortKey{name: name, primary: name}
	}
	digitsStart := start + len(fileScopeLeftBrace)
	end := strings.Index(name[digitsStart:], fileScopeRightBrace)
	if end < 0 {
		return sortKey{name: name, primary: name}
	}
	end += digitsStart
	digits := name[digitsStart:end]
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return sortKey{name: name, primary: name}
	}
	blanked := name[:start] + name[end+len(fileScopeRightBrace):]
	return sortKey{name: name, primary: blanked, secondary: n, ordered: true}
}
