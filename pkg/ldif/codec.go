package ldif

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// Codec serializes and parses the on-disk text form of an entry. It is the
// host-provided collaborator described in the design as "assumed available";
// LineCodec is this backend's bundled default implementation of it, modeled
// on the line-oriented attribute-value record format (RFC 2849-style LDIF,
// including ":: "-prefixed base64 values and single-space continuation
// lines).
type Codec interface {
	// Serialize renders an entry to its on-disk byte form. Implementations
	// must serialize exactly the DN as given on entry.DN; callers are
	// responsible for shortening it to the leaf RDN beforehand (see
	// Entry.WithLeafOnly) when writing entry files.
	Serialize(entry *Entry) ([]byte, error)
	// Parse decodes bytes previously produced by Serialize (or an externally
	// authored file in the same format) into an Entry.
	Parse(data []byte) (*Entry, error)
}

// LineCodec is the default Codec implementation. It is not safe to treat as
// holding any hidden shared state requiring external locking; mutual
// exclusion around the *use* of a Codec (see design note on the global
// serializer mutex) is the caller's responsibility and exists only because
// some serializer implementations keep internal scratch buffers, which this
// one does not.
type LineCodec struct{}

// Serialize implements Codec.
func (LineCodec) Serialize(entry *Entry) ([]byte, error) {
	var buf bytes.Buffer
	writeLine(&buf, "dn", entry.DN.String())
	for _, attr := range entry.Attributes {
		for _, value := range attr.Values {
			writeLine(&buf, attr.Type, value)
		}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// writeLine writes one "type: value" (or "type:: base64") record, wrapping
// continuation lines at 76 columns as classic LDIF does.
func writeLine(buf *bytes.Buffer, attrType, value string) {
	var rendered string
	if needsBase64(value) {
		rendered = attrType + ":: " + base64.StdEncoding.EncodeToString([]byte(value))
	} else {
		rendered = attrType + ": " + value
	}
	const wrapColumn = 76
	for len(rendered) > wrapColumn {
		buf.WriteString(rendered[:wrapColumn])
		buf.WriteByte('\n')
		rendered = " " + rendered[wrapColumn:]
	}
	buf.WriteString(rendered)
	buf.WriteByte('\n')
}

// needsBase64 reports whether a value must be base64-encoded to round-trip
// safely through the line format (non-UTF8-safe leading characters, or
// embedded control bytes).
func needsBase64(value string) bool {
	if value == "" {
		return false
	}
	switch value[0] {
	case ' ', ':', '<':
		return true
	}
	for i := 0; i < len(value); i++ {
		if value[i] == 0 || value[i] == '\n' || value[i] == '\r' {
			return true
		}
	}
	return false
}

// Parse implements Codec.
func (LineCodec) Parse(data []byte) (*Entry, error) {
	lines, err := unwrapContinuations(data)
	if err != nil {
		return nil, err
	}

	entry := &Entry{}
	sawDN := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		attrType, value, err := decodeLine(line)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(attrType, "dn") {
			if sawDN {
				return nil, errors.New("multiple dn lines in entry")
			}
			dn, err := ParseDN(value)
			if err != nil {
				return nil, errors.Wrap(err, "invalid dn line")
			}
			entry.DN = dn
			sawDN = true
			continue
		}
		entry.appendAttributeValue(attrType, value)
	}
	if !sawDN {
		return nil, errors.New("missing dn line in entry")
	}
	return entry, nil
}

// appendAttributeValue appends a value to an existing attribute or creates a
// new one, preserving first-seen attribute order.
func (e *Entry) appendAttributeValue(attrType, value string) {
	for i, a := range e.Attributes {
		if strings.EqualFold(a.Type, attrType) {
			e.Attributes[i].Values = append(e.Attributes[i].Values, value)
			return
		}
	}
	e.Attributes = append(e.Attributes, Attribute{Type: attrType, Values: []string{value}})
}

// decodeLine splits a "type: value" or "type:: base64value" line.
func decodeLine(line string) (attrType, value string, err error) {
	if idx := strings.Index(line, "::"); idx >= 0 && (idx+2 >= len(line) || line[idx+2] == ' ') {
		attrType = line[:idx]
		encoded := strings.TrimPrefix(line[idx+2:], " ")
		decoded, decodeErr := base64.StdEncoding.DecodeString(encoded)
		if decodeErr != nil {
			return "", "", errors.Wrapf(decodeErr, "invalid base64 value for attribute %q", attrType)
		}
		return attrType, string(decoded), nil
	}
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", errors.Errorf("malformed line (no ':'): %q", line)
	}
	attrType = line[:idx]
	value = strings.TrimPrefix(line[idx+1:], " ")
	return attrType, value, nil
}

// unwrapContinuations joins RFC 2849-style single-space continuation lines
// back onto their parent line and returns the logical lines.
func unwrapContinuations(data []byte) ([]string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, " ") && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to scan entry data")
	}
	return lines, nil
}
