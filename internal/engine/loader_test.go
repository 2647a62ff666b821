package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const fixturePath = "../../testdata/firstnames.csv"

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "names.csv")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoad(t *testing.T) {
	csvContent := []byte(`name;gender;Great Britain;U.S.A.;Sweden
Erik;m;3;;8
Anna;f;5;6;
Kim;?;;1;4
`)

	table, err := Load(writeTemp(t, csvContent))
	require.NoError(t, err)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"name", "is_male", "is_female", "great_britain", "usa", "sweden"}, table.Columns())

	erik := table.Record(0)
	assert.Equal(t, "Erik", erik.Name)
	assert.True(t, erik.IsMale)
	assert.False(t, erik.IsFemale)
	assert.Equal(t, 0.04, erik.Weights["great_britain"])
	assert.Equal(t, 0.0, erik.Weights["usa"])
	assert.Equal(t, 1.28, erik.Weights["sweden"])

	anna := table.Record(1)
	assert.False(t, anna.IsMale)
	assert.True(t, anna.IsFemale)
	assert.Equal(t, 0.0, anna.Weights["sweden"])

	kim := table.Record(2)
	assert.True(t, kim.IsMale)
	assert.True(t, kim.IsFemale)
	assert.Equal(t, 0.01, kim.Weights["usa"])
}

func TestLoad_Fixture(t *testing.T) {
	table, err := Load(fixturePath)
	require.NoError(t, err)

	assert.Equal(t, 40, table.Len())
	for _, col := range table.Columns() {
		assert.Equal(t, strings.ToLower(col), col)
		assert.NotContainsf(t, col, " ", "column %q", col)
		assert.NotContainsf(t, col, ".", "column %q", col)
		assert.NotContainsf(t, col, ",", "column %q", col)
		assert.NotContainsf(t, col, "/", "column %q", col)
	}
	assert.NotContains(t, table.Columns(), "gender")

	// Every country has a weight for every record
	for i := 0; i < table.Len(); i++ {
		assert.Len(t, table.Record(i).Weights, len(table.Countries()))
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "missing name column", content: "first;gender;Sweden\nErik;m;3\n"},
		{name: "missing gender column", content: "name;sex;Sweden\nErik;m;3\n"},
		{name: "no country columns", content: "name;gender\nErik;m\n"},
		{name: "duplicate normalized columns", content: "name;gender;U.S.A.;usa\nErik;m;3;4\n"},
		{name: "reserved column", content: "name;gender;is_male\nErik;m;3\n"},
		{name: "non numeric rank", content: "name;gender;Sweden\nErik;m;often\n"},
		{name: "negative rank", content: "name;gender;Sweden\nErik;m;-2\n"},
		{name: "rank out of range", content: "name;gender;Sweden\nErik;m;4000\n"},
		{name: "empty name", content: "name;gender;Sweden\n;m;3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataLoad)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ShortRowsDefaultToZero(t *testing.T) {
	table, err := Parse(strings.NewReader("name;gender;Sweden;Norway\nErik;m;3\nAnna\n"))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, 0.0, table.Record(0).Weights["norway"])
	anna := table.Record(1)
	assert.False(t, anna.IsMale)
	assert.False(t, anna.IsFemale)
	assert.Equal(t, 0.0, anna.Weights["sweden"])
}

func TestLoad_UnnamedColumnsIgnored(t *testing.T) {
	table, err := Parse(strings.NewReader("name;gender;;Sweden;\nErik;m;9;3;\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sweden"}, table.Countries())
	assert.Equal(t, 0.04, table.Record(0).Weights["sweden"])
}

func TestLoad_UppercaseMarkersUngendered(t *testing.T) {
	table, err := Parse(strings.NewReader("name;gender;Sweden\nBob;M;3\nAnn;F;3\n"))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	for i := 0; i < table.Len(); i++ {
		rec := table.Record(i)
		assert.False(t, rec.IsMale, rec.Name)
		assert.False(t, rec.IsFemale, rec.Name)
	}

	// Still eligible for the unfiltered pool
	n, err := table.Eligible("sweden", GenderAny)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := table.Sample("sweden", 1, GenderMale)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLoad_DuplicateNamesPreserved(t *testing.T) {
	table, err := Parse(strings.NewReader("name;gender;Sweden\nKim;m;3\nKim;f;2\n"))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Kim", table.Record(0).Name)
	assert.Equal(t, "Kim", table.Record(1).Name)
}

func TestLoad_Latin1(t *testing.T) {
	src := "name;gender;Côte d'Ivoire\nJosé;m;3\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(src)
	require.NoError(t, err)

	table, err := Parse(bytes.NewReader([]byte(encoded)), WithEncoding(charmap.ISO8859_1))
	require.NoError(t, err)

	assert.Equal(t, []string{"côte_d'ivoire"}, table.Countries())
	assert.Equal(t, "José", table.Record(0).Name)
}

func TestLoad_UTF8BOM(t *testing.T) {
	table, err := Parse(strings.NewReader("\ufeffname;gender;Sweden\nErik;m;3\n"))
	require.NoError(t, err)
	assert.Equal(t, "name", table.Columns()[0])
}

func TestLoad_Checksum(t *testing.T) {
	a, err := Load(fixturePath)
	require.NoError(t, err)
	b, err := Load(fixturePath)
	require.NoError(t, err)
	assert.Equal(t, a.Checksum(), b.Checksum())

	c, err := Parse(strings.NewReader("name;gender;Sweden\nErik;m;3\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Checksum(), c.Checksum())
}

func TestEncodingByName(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF8", "latin1", "ISO-8859-1", "windows-1252"} {
		enc, err := EncodingByName(name)
		assert.NoErrorf(t, err, "encoding %q", name)
		assert.NotNilf(t, enc, "encoding %q", name)
	}

	_, err := EncodingByName("ebcdic")
	assert.Error(t, err)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 0.0, rankWeight(0))
	assert.Equal(t, 0.01, rankWeight(1))
	assert.Equal(t, 0.02, rankWeight(2))
	assert.Equal(t, 10.24, rankWeight(11))

	r, err := parseRank(" 3.0 ")
	require.NoError(t, err)
	assert.Equal(t, 3, r)

	r, err = parseRank("")
	require.NoError(t, err)
	assert.Equal(t, 0, r)

	male, female := parseGender("?M")
	assert.True(t, male)
	assert.True(t, female)

	male, female = parseGender("1f")
	assert.False(t, male)
	assert.True(t, female)

	male, female = parseGender("M")
	assert.False(t, male)
	assert.False(t, female)

	male, female = parseGender("1F")
	assert.False(t, male)
	assert.False(t, female)

	male, female = parseGender("x")
	assert.False(t, male)
	assert.False(t, female)
}
