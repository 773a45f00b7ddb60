package translate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	var testCases = []struct {
		testName string
		fields   []Field
	}{
		{
			"plain names",
			[]Field{
				{Name: "name", Value: "BPC-157 5mg"},
				{Name: "description", Value: "A research peptide.\nSecond line."},
			},
		},
		{
			"name with a dot",
			[]Field{{Name: "meta.title", Value: "BPC-157 | BioCycle Peptides"}},
		},
		{
			"name with regex metacharacters",
			[]Field{{Name: "x+y", Value: "value (with) [brackets]"}},
		},
		{
			"value containing marker-like text",
			[]Field{{Name: "content", Value: "see [FIELD:other] for details"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			encoded := EncodeFields(tc.fields)

			names := make([]string, 0, len(tc.fields))
			for _, f := range tc.fields {
				names = append(names, f.Name)
			}

			parsed := ParseFields(encoded, names)
			require.Len(t, parsed, len(tc.fields))
			for _, f := range tc.fields {
				require.Equal(t, f.Value, parsed[f.Name])
			}
		})
	}
}

func TestParseFieldsTrimsWhitespace(t *testing.T) {
	raw := "[FIELD:name]\n\n  Peptide de recherche  \n\n[/FIELD:name]"
	parsed := ParseFields(raw, []string{"name"})
	require.Equal(t, "Peptide de recherche", parsed["name"])
}

func TestParseFieldsOmitsMissingMarkers(t *testing.T) {
	raw := "[FIELD:name]\nNom traduit\n[/FIELD:name]"
	parsed := ParseFields(raw, []string{"name", "description"})

	require.Equal(t, "Nom traduit", parsed["name"])
	_, found := parsed["description"]
	require.False(t, found, "a field without markers must be omitted, not defaulted")
}

func TestParseFieldsIgnoresSurroundingChatter(t *testing.T) {
	raw := "Here is your translation:\n\n[FIELD:name]\nNom\n[/FIELD:name]\n\nLet me know if you need anything else."
	parsed := ParseFields(raw, []string{"name"})
	require.Equal(t, map[string]string{"name": "Nom"}, parsed)
}
