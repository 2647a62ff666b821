package engine

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// Gender filters the candidate pool of a sample.
type Gender int

const (
	GenderAny Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "any"
	}
}

// Countries returns the country identifiers in column order.
func (t *NameTable) Countries() []string {
	return slices.Clone(t.countries)
}

// HasCountry reports whether country is a column of the table.
func (t *NameTable) HasCountry(country string) bool {
	_, ok := t.countryIdx[country]
	return ok
}

// Eligible returns the size of the candidate pool for country and g.
func (t *NameTable) Eligible(country string, g Gender) (int, error) {
	c, ok := t.countryIdx[country]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	n := 0
	for row, w := range t.weights[c] {
		if w > 0 && t.matches(row, g) {
			n++
		}
	}
	return n, nil
}

func (t *NameTable) matches(row int, g Gender) bool {
	switch g {
	case GenderMale:
		return t.male[row]
	case GenderFemale:
		return t.female[row]
	default:
		return true
	}
}

// Sample draws count distinct names for country without replacement,
// weighted by name frequency. An empty pool yields an empty result.
// Result order carries no meaning.
func (t *NameTable) Sample(country string, count int, g Gender) ([]string, error) {
	r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return t.SampleWithRand(r, country, count, g)
}

// SampleWithRand is Sample with a caller-owned random source. r must not be
// shared between goroutines.
func (t *NameTable) SampleWithRand(r *rand.Rand, country string, count int, g Gender) ([]string, error) {
	c, ok := t.countryIdx[country]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	// 1. Candidate pool
	weights := t.weights[c]
	pool := make([]int, 0, len(weights))
	total := 0.0
	for row, w := range weights {
		if w > 0 && t.matches(row, g) {
			pool = append(pool, row)
			total += w
		}
	}
	if len(pool) == 0 {
		return []string{}, nil
	}
	if count > len(pool) {
		return nil, fmt.Errorf("%w: requested %d, %d available for %s (%s)",
			ErrInsufficientCandidates, count, len(pool), country, g)
	}

	// 2. Efraimidis-Spirakis: key = ln(u) / p, keep the count largest keys.
	// Equivalent to repeated draws with the remaining mass renormalized.
	type keyed struct {
		row int
		key float64
	}
	keys := make([]keyed, len(pool))
	for i, row := range pool {
		p := weights[row] / total
		u := 1 - r.Float64() // (0, 1]
		keys[i] = keyed{row: row, key: math.Log(u) / p}
	}
	slices.SortFunc(keys, func(a, b keyed) int {
		switch {
		case a.key > b.key:
			return -1
		case a.key < b.key:
			return 1
		default:
			return 0
		}
	})

	names := make([]string, count)
	for i := range names {
		names[i] = t.names[keys[i].row]
	}
	return names, nil
}
