// Package content fingerprints translatable source content. The digest is
// the pipeline's only staleness signal: a translation record whose stored
// hash no longer matches the source is due for retranslation.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// fieldSeparator joins the canonical name:value entries. A control
// character keeps ordinary field text from colliding with the frame.
const fieldSeparator = "\x1f"

// HashFields produces a stable digest of the given field values. Empty and
// absent fields are excluded, remaining entries are sorted by name, and the
// concatenation is hashed with SHA-256. Identical field sets hash
// identically regardless of input order.
func HashFields(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(fieldSeparator)
		}
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(fields[name])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
