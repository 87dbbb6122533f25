package ldif

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"

	"github.com/Eldar88/openldap/pkg/random"
)

// saltedSHA256Prefix marks a userPassword value produced by HashPassword: a
// random salt and a SHA-256 digest of salt||password, both hex-encoded and
// separated by "$". It is checked ahead of the legacy unsalted "{SHA256}"
// form that SHA256PasswordChecker also still accepts.
const saltedSHA256Prefix = "{SALTED-SHA256}"

const saltLength = 16

// HashPassword produces a userPassword attribute value for password, suitable
// for storing on an entry and later verifying with SHA256PasswordChecker.
func HashPassword(password string) (string, error) {
	salt, err := random.New(saltLength)
	if err != nil {
		return "", errors.Wrap(err, "unable to generate password salt")
	}
	sum := sha256.Sum256(append(append([]byte{}, salt...), password...))
	return saltedSHA256Prefix + hex.EncodeToString(salt) + "$" + hex.EncodeToString(sum[:]), nil
}

// checkSaltedSHA256 verifies presented against a stored "{SALTED-SHA256}"
// value, returning false (rather than an error) if the value is malformed so
// that a corrupt stored password fails closed.
func checkSaltedSHA256(stored, presented string) bool {
	body := strings.TrimPrefix(stored, saltedSHA256Prefix)
	parts := strings.SplitN(body, "$", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	sum := sha256.Sum256(append(append([]byte{}, salt...), presented...))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(parts[1])) == 1
}
