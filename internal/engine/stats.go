package engine

import (
	"runtime"
	"sort"
	"sync"
)

// CountryStats summarizes the candidate pools of one country.
type CountryStats struct {
	Country string
	Names   int
	Male    int
	Female  int
	Mass    float64 // sum of raw weights
}

// Stats summarizes every country, largest pool first. Countries with equal
// pools keep column order.
func (t *NameTable) Stats() []CountryStats {
	results := make([]CountryStats, len(t.countries))
	if len(results) == 0 {
		return results
	}

	// 1. Fan out one country column per job
	numWorkers := min(runtime.NumCPU(), len(t.countries))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results[c] = t.countryStats(c)
			}
		}()
	}
	for c := range t.countries {
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	// 2. Sort
	sort.SliceStable(results, func(i, j int) bool { return results[i].Names > results[j].Names })
	return results
}

func (t *NameTable) countryStats(c int) CountryStats {
	s := CountryStats{Country: t.countries[c]}
	for row, w := range t.weights[c] {
		if w == 0 {
			continue
		}
		s.Names++
		s.Mass += w
		if t.male[row] {
			s.Male++
		}
		if t.female[row] {
			s.Female++
		}
	}
	return s
}
