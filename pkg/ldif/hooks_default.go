package ldif

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// NopSchemaChecker accepts every entry. It is a permissive stand-in for
// environments that perform schema validation upstream of the backend.
type NopSchemaChecker struct{}

// CheckEntry implements SchemaChecker.
func (NopSchemaChecker) CheckEntry(*Entry) error { return nil }

// NopAccessController permits every modification. It is a permissive
// stand-in for environments that enforce access control upstream.
type NopAccessController struct{}

// CheckModify implements AccessController.
func (NopAccessController) CheckModify(context.Context, DN, *Entry, []Modification) error {
	return nil
}

// IdentityReferralRewriter returns referral URLs unchanged.
type IdentityReferralRewriter struct{}

// RewriteReferral implements ReferralRewriter.
func (IdentityReferralRewriter) RewriteReferral(_ DN, urls []string) []string {
	return urls
}

// SHA256PasswordChecker checks a presented password against the values
// stored in the entry's userPassword attribute: salted SHA-256 values as
// produced by HashPassword, and legacy hex-encoded unsalted SHA-256 digests,
// compared in constant time. It is a minimal, self-contained default.
type SHA256PasswordChecker struct{}

// CheckPassword implements PasswordChecker. It accepts both the salted
// scheme produced by HashPassword and a legacy unsalted "{SHA256}" form, so
// that a deployment can gradually rehash old entries on next bind.
func (SHA256PasswordChecker) CheckPassword(entry *Entry, presented string) bool {
	stored, ok := entry.Get("userPassword")
	if !ok {
		return false
	}
	sum := sha256.Sum256([]byte(presented))
	presentedHex := hex.EncodeToString(sum[:])
	for _, candidate := range stored {
		if strings.HasPrefix(candidate, saltedSHA256Prefix) {
			if checkSaltedSHA256(candidate, presented) {
				return true
			}
			continue
		}
		legacy := strings.TrimPrefix(candidate, "{SHA256}")
		if subtle.ConstantTimeCompare([]byte(legacy), []byte(presentedHex)) == 1 {
			return true
		}
	}
	return false
}

// GlobFilter is a default Filter implementation that matches an entry when
// any value of the named attribute matches a doublestar glob pattern. It is
// meant for tests and simple deployments; a full directory-service front end
// will typically supply a proper filter-expression evaluator instead.
type GlobFilter struct {
	Attribute string
	Pattern   string
}

// Matches implements Filter.
func (f GlobFilter) Matches(entry *Entry) bool {
	values, ok := entry.Get(f.Attribute)
	if !ok {
		return false
	}
	for _, v := range values {
		if matched, err := doublestar.Match(f.Pattern, v); err == nil && matched {
			return true
		}
	}
	return false
}
