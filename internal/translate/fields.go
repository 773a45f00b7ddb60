package translate

import (
	"fmt"
	"regexp"
	"strings"
)

// Field is one named piece of translatable text, in prompt order.
type Field struct {
	Name  string
	Value string
}

// EncodeFields serializes fields into the tagged block format the provider
// is asked to echo back:
//
//	[FIELD:name]
//	value
//	[/FIELD:name]
//
// Blocks are separated by a blank line.
func EncodeFields(fields []Field) string {
	blocks := make([]string, 0, len(fields))
	for _, f := range fields {
		blocks = append(blocks, fmt.Sprintf("[FIELD:%s]\n%s\n[/FIELD:%s]", f.Name, f.Value, f.Name))
	}
	return strings.Join(blocks, "\n\n")
}

// ParseFields extracts the tagged blocks for the requested field names from
// a raw provider response. Field names are regexp-escaped before the search
// pattern is built, since names like "meta.title" carry pattern
// metacharacters. A field whose markers are absent is omitted from the
// result; it is never substituted with anything else. Extracted values are
// trimmed of surrounding whitespace.
func ParseFields(raw string, names []string) map[string]string {
	out := make(map[string]string)
	for _, name := range names {
		quoted := regexp.QuoteMeta(name)
		pattern, err := regexp.Compile(`(?s)\[FIELD:` + quoted + `\](.*?)\[/FIELD:` + quoted + `\]`)
		if err != nil {
			continue
		}
		m := pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		out[name] = strings.TrimSpace(m[1])
	}
	return out
}
