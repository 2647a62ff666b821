package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

const (
	columnGender = "gender"

	// maxRank bounds the popularity rank so 2^(rank-1) stays finite when
	// summed over a whole country column.
	maxRank = 64
)

// --- 1. OPTIONS ---

type loadConfig struct {
	enc encoding.Encoding
}

// LoadOption configures Load and Parse.
type LoadOption func(*loadConfig)

// WithEncoding decodes the source with enc instead of UTF-8.
func WithEncoding(enc encoding.Encoding) LoadOption {
	return func(c *loadConfig) {
		if enc != nil {
			c.enc = enc
		}
	}
}

// EncodingByName maps a configured encoding name to a text encoding.
func EncodingByName(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// --- 2. CELL PARSERS ---

var columnReplacer = strings.NewReplacer(".", "", " ", "_", ",", "_", "/", "_")

// normalizeColumn turns "U.S.A." into "usa" and "Kazakhstan/Uzbekistan,etc."
// into "kazakhstan_uzbekistan_etc".
func normalizeColumn(caser cases.Caser, raw string) string {
	return columnReplacer.Replace(caser.String(strings.TrimSpace(raw)))
}

// parseRank parses a popularity rank cell. Blank cells are rank 0.
func parseRank(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Exported spreadsheets sometimes carry "3.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("invalid rank %q", s)
		}
		n = int(f)
	}
	if n < 0 || n > maxRank {
		return 0, fmt.Errorf("rank %q out of range [0, %d]", s, maxRank)
	}
	return n, nil
}

// rankWeight decodes a frequency class into a weight: 2^(rank-1) / 100.
func rankWeight(rank int) float64 {
	if rank == 0 {
		return 0
	}
	return math.Ldexp(1, rank-1) / 100
}

// parseGender reads a gender marker; "?" marks a unisex name. Markers are
// matched as written, so "M" or "F" set neither flag.
func parseGender(marker string) (male, female bool) {
	unisex := strings.Contains(marker, "?")
	return unisex || strings.Contains(marker, "m"), unisex || strings.Contains(marker, "f")
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

// --- 3. HEADER ---

type columnLayout struct {
	name        int
	gender      int
	countries   []string
	countryCols []int
}

func parseHeader(header []string, caser cases.Caser) (columnLayout, error) {
	l := columnLayout{name: -1, gender: -1}
	seen := make(map[string]int, len(header))

	for i, raw := range header {
		col := normalizeColumn(caser, raw)
		if col == "" {
			// Unnamed columns (e.g. a trailing ";") carry no data
			continue
		}
		if prev, ok := seen[col]; ok {
			return l, fmt.Errorf("%w: columns %d and %d both normalize to %q", ErrDataLoad, prev+1, i+1, col)
		}
		seen[col] = i

		switch col {
		case ColumnName:
			l.name = i
		case columnGender:
			l.gender = i
		case ColumnIsMale, ColumnIsFemale:
			return l, fmt.Errorf("%w: column %q is reserved", ErrDataLoad, col)
		default:
			l.countries = append(l.countries, col)
			l.countryCols = append(l.countryCols, i)
		}
	}

	switch {
	case l.name < 0:
		return l, fmt.Errorf("%w: missing %q column", ErrDataLoad, ColumnName)
	case l.gender < 0:
		return l, fmt.Errorf("%w: missing %q column", ErrDataLoad, columnGender)
	case len(l.countries) == 0:
		return l, fmt.Errorf("%w: no country columns", ErrDataLoad)
	}
	return l, nil
}

// --- 4. MAIN LOADER ---

// Load reads and normalizes the semicolon-delimited name table at path.
// Every failure wraps ErrDataLoad.
func Load(path string, opts ...LoadOption) (*NameTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	defer f.Close()

	return Parse(f, opts...)
}

// Parse normalizes a name table read from r.
func Parse(r io.Reader, opts ...LoadOption) (*NameTable, error) {
	cfg := loadConfig{enc: unicode.UTF8BOM}
	for _, opt := range opts {
		opt(&cfg)
	}

	cr := csv.NewReader(cfg.enc.NewDecoder().Reader(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrDataLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrDataLoad, err)
	}

	layout, err := parseHeader(header, cases.Lower(language.Und))
	if err != nil {
		return nil, err
	}

	t := newNameTable(layout.countries, 0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
		}
		line, _ := cr.FieldPos(0)
		if err := t.appendRow(layout, rec, line); err != nil {
			return nil, err
		}
	}

	t.computeChecksum()
	return t, nil
}

func (t *NameTable) appendRow(l columnLayout, rec []string, line int) error {
	name := cell(rec, l.name)
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: line %d: empty name", ErrDataLoad, line)
	}

	// Validate every rank before touching the columns so they stay aligned
	ranks := make([]int, len(l.countryCols))
	for c, col := range l.countryCols {
		rank, err := parseRank(cell(rec, col))
		if err != nil {
			return fmt.Errorf("%w: line %d: column %q: %w", ErrDataLoad, line, t.countries[c], err)
		}
		ranks[c] = rank
	}

	male, female := parseGender(cell(rec, l.gender))
	t.names = append(t.names, name)
	t.male = append(t.male, male)
	t.female = append(t.female, female)
	for c, rank := range ranks {
		t.weights[c] = append(t.weights[c], rankWeight(rank))
	}
	return nil
}
