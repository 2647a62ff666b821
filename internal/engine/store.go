package engine

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

// Fixed leading columns of a normalized table.
const (
	ColumnName     = "name"
	ColumnIsMale   = "is_male"
	ColumnIsFemale = "is_female"
)

// NameRecord is one materialized row of a NameTable.
type NameRecord struct {
	Name     string
	IsMale   bool
	IsFemale bool
	Weights  map[string]float64
}

// NameTable holds the normalized name data in Struct-of-Arrays format.
// It is built once by the loader and never mutated afterwards, so it is safe
// for concurrent readers.
type NameTable struct {
	// Row columns (one entry per name)
	names  []string
	male   []bool
	female []bool

	// Country columns: weights[c][row] for country c
	countries []string
	weights   [][]float64

	// Dictionary (country -> column index)
	countryIdx map[string]int

	checksum uint64
}

func newNameTable(countries []string, rows int) *NameTable {
	t := &NameTable{
		names:      make([]string, 0, rows),
		male:       make([]bool, 0, rows),
		female:     make([]bool, 0, rows),
		countries:  countries,
		weights:    make([][]float64, len(countries)),
		countryIdx: make(map[string]int, len(countries)),
	}
	for i, c := range countries {
		t.weights[i] = make([]float64, 0, rows)
		t.countryIdx[c] = i
	}
	return t
}

// Len returns the number of records in the table.
func (t *NameTable) Len() int {
	return len(t.names)
}

// Record materializes row i. It panics if i is out of range.
func (t *NameTable) Record(i int) NameRecord {
	rec := NameRecord{
		Name:     t.names[i],
		IsMale:   t.male[i],
		IsFemale: t.female[i],
		Weights:  make(map[string]float64, len(t.countries)),
	}
	for c, country := range t.countries {
		rec.Weights[country] = t.weights[c][i]
	}
	return rec
}

// Columns returns the column identifiers of the normalized table.
func (t *NameTable) Columns() []string {
	cols := make([]string, 0, len(t.countries)+3)
	cols = append(cols, ColumnName, ColumnIsMale, ColumnIsFemale)
	return append(cols, t.countries...)
}

// Checksum is an xxh3 fingerprint of the normalized table contents.
func (t *NameTable) Checksum() uint64 {
	return t.checksum
}

func (t *NameTable) computeChecksum() {
	h := xxh3.New()
	var buf [8]byte
	for _, c := range t.Columns() {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0})
	}
	for i, name := range t.names {
		_, _ = h.WriteString(name)
		flags := byte(0)
		if t.male[i] {
			flags |= 1
		}
		if t.female[i] {
			flags |= 2
		}
		_, _ = h.Write([]byte{0, flags})
		for c := range t.countries {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(t.weights[c][i]))
			_, _ = h.Write(buf[:])
		}
	}
	t.checksum = h.Sum64()
}
