// Command validate re-reads the per-year files produced by cmd/etl and
// checks their integrity: feature properties, age brackets, year
// partitioning and the daily-count series.
//
// Usage:
//
//	go run ./cmd/validate -dir data
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/couchcryptid/shootings-etl/internal/adapter/filesystem"
	"github.com/couchcryptid/shootings-etl/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// exportedProperties is the exact property set of every feature.
var exportedProperties = []string{"age", "age_group", "date", "dc_key", "fatal", "latino", "race", "sex"}

var featureFile = regexp.MustCompile(`^shootings_(\d{4})\.json$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// yearFiles holds the decoded pair of files for one year.
type yearFiles struct {
	year     int
	features *geojson.FeatureCollection
	daily    []domain.DailyCount
}

func main() {
	dir := flag.String("dir", "data", "directory containing shootings_<year>.json files")
	flag.Parse()

	os.Exit(run(*dir))
}

func run(dir string) int {
	fmt.Println("=== Shootings Export Validation ===")
	fmt.Println()

	years, err := loadYears(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	if len(years) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no shootings_<year>.json files in %s\n", dir)
		return 1
	}

	phases := []*phase{
		validateProperties(years),
		validateAgeGroups(years),
		validateYearPartition(years),
		validateDailyCounts(years),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	total := 0
	for _, y := range years {
		total += len(y.features.Features)
	}
	fmt.Println()
	fmt.Printf("Years: %d, features: %d\n", len(years), total)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Loading ──

func loadYears(dir string) ([]yearFiles, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var years []yearFiles
	for _, e := range entries {
		m := featureFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])

		data, err := os.ReadFile(filesystem.FeaturesPath(dir, year))
		if err != nil {
			return nil, err
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}

		data, err = os.ReadFile(filesystem.DailyPath(dir, year))
		if err != nil {
			return nil, err
		}
		var daily []domain.DailyCount
		if err := json.Unmarshal(data, &daily); err != nil {
			return nil, fmt.Errorf("daily file for %d: %w", year, err)
		}

		years = append(years, yearFiles{year: year, features: fc, daily: daily})
	}
	slices.SortFunc(years, func(a, b yearFiles) int { return a.year - b.year })
	return years, nil
}

// ── Phase 1: Properties ──

func validateProperties(years []yearFiles) *phase {
	p := &phase{name: "Phase 1: Feature Properties"}
	for _, y := range years {
		for i, f := range y.features.Features {
			keys := make([]string, 0, len(f.Properties))
			for k := range f.Properties {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			if !slices.Equal(keys, exportedProperties) {
				p.errorf("%d feature %d: properties %v, expected %v", y.year, i, keys, exportedProperties)
			}
			if f.Properties.MustString("race", "") == "" {
				p.errorf("%d feature %d: race is empty", y.year, i)
			}
		}
	}
	return p
}

// ── Phase 2: Age groups ──

func validateAgeGroups(years []yearFiles) *phase {
	p := &phase{name: "Phase 2: Age Groups"}
	for _, y := range years {
		for i, f := range y.features.Features {
			group := f.Properties.MustString("age_group", "")
			if !domain.ValidAgeGroup(group) {
				p.errorf("%d feature %d: invalid age_group %q", y.year, i, group)
				continue
			}

			age := math.NaN()
			if v, ok := f.Properties["age"].(float64); ok {
				age = v
			}
			if want := domain.AgeGroupFor(age); string(want) != group {
				p.errorf("%d feature %d: age %v is in %q, file says %q", y.year, i, f.Properties["age"], want, group)
			}
		}
	}
	return p
}

// ── Phase 3: Year partition ──

func validateYearPartition(years []yearFiles) *phase {
	p := &phase{name: "Phase 3: Year Partition"}
	for _, y := range years {
		var prev time.Time
		for i, f := range y.features.Features {
			ts, err := time.Parse(domain.DateLayout, f.Properties.MustString("date", ""))
			if err != nil {
				p.errorf("%d feature %d: %v", y.year, i, err)
				continue
			}
			if ts.Year() != y.year {
				p.errorf("%d feature %d: date %s belongs to %d", y.year, i, ts.Format(domain.DateLayout), ts.Year())
			}
			if i > 0 && ts.After(prev) {
				p.errorf("%d feature %d: not in descending date order", y.year, i)
			}
			prev = ts
		}
	}
	return p
}

// ── Phase 4: Daily counts ──

func validateDailyCounts(years []yearFiles) *phase {
	p := &phase{name: "Phase 4: Daily Counts"}
	for _, y := range years {
		sum := 0
		for i, d := range y.daily {
			sum += d.Count
			day, err := time.Parse(domain.DayLayout, d.Date)
			if err != nil {
				p.errorf("%d daily %d: %v", y.year, i, err)
				continue
			}
			if day.Year() != y.year {
				p.errorf("%d daily %d: %s is outside the year", y.year, i, d.Date)
			}
			if i > 0 {
				prev, err := time.Parse(domain.DayLayout, y.daily[i-1].Date)
				if err == nil && !day.Equal(prev.AddDate(0, 0, 1)) {
					p.errorf("%d daily %d: %s does not follow %s", y.year, i, d.Date, y.daily[i-1].Date)
				}
			}
		}
		if n := len(y.features.Features); sum != n {
			p.errorf("%d: daily counts sum to %d, features file has %d", y.year, sum, n)
		}
	}
	return p
}
