package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// MissingTime is the upstream sentinel for an unknown time of day.
	MissingTime = "<Null>"

	// Midnight replaces missing times.
	Midnight = "00:00:00"

	// UnknownRace replaces a null race.
	UnknownRace = "Other/Unknown"

	// DateLayout is the layout of the exported "date" property.
	DateLayout = "2006-01-02 15:04:05"

	// DayLayout is the layout of a daily-count date.
	DayLayout = "2006-01-02"
)

// timestampLayouts are tried in order when parsing "<date> <time>".
var timestampLayouts = []string{DateLayout, "2006-01-02 15:04"}

// AgeGroup is one of five fixed age brackets.
type AgeGroup string

const (
	AgeUnder18       AgeGroup = "Under 18"
	Age19To30        AgeGroup = "19 to 30"
	Age31To45        AgeGroup = "31 to 45"
	AgeGreaterThan45 AgeGroup = "Greater than 45"
	AgeUnknown       AgeGroup = "Unknown"
)

// AgeGroups lists every bracket in display order.
var AgeGroups = []AgeGroup{AgeUnder18, Age19To30, Age31To45, AgeGreaterThan45, AgeUnknown}

type ageRule struct {
	group AgeGroup
	match func(age float64) bool
}

// ageRules are mutually exclusive and evaluated in order. NaN fails every
// comparison and falls through to AgeUnknown.
var ageRules = []ageRule{
	{AgeUnder18, func(a float64) bool { return a < 18 }},
	{Age19To30, func(a float64) bool { return a >= 18 && a <= 30 }},
	{Age31To45, func(a float64) bool { return a > 30 && a <= 45 }},
	{AgeGreaterThan45, func(a float64) bool { return a > 45 }},
}

// AgeGroupFor returns the bracket of the first rule matching age.
func AgeGroupFor(age float64) AgeGroup {
	for _, r := range ageRules {
		if r.match(age) {
			return r.group
		}
	}
	return AgeUnknown
}

// ValidAgeGroup reports whether s is one of the five bracket labels.
func ValidAgeGroup(s string) bool {
	return slices.Contains(AgeGroups, AgeGroup(s))
}

// NormalizeTime maps a null, blank or "<Null>" time to midnight and returns
// any other value trimmed.
func NormalizeTime(raw *string) string {
	if raw == nil {
		return Midnight
	}
	t := strings.TrimSpace(*raw)
	if t == "" || t == MissingTime {
		return Midnight
	}
	return t
}

// DeriveTimestamp joins the first 10 characters of the raw date with the
// normalized time of day and parses the result.
func DeriveTimestamp(rawDate, timeOfDay string) (time.Time, error) {
	if len(rawDate) < 10 {
		return time.Time{}, fmt.Errorf("derive timestamp: date %q is too short", rawDate)
	}
	value := rawDate[:10] + " " + timeOfDay

	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("derive timestamp: %w", lastErr)
}

// DefaultRace returns the race unchanged, or UnknownRace when it is null.
func DefaultRace(race *string) string {
	if race == nil {
		return UnknownRace
	}
	return *race
}

// ParseAge coerces the published age text to a float. Null or blank ages
// yield NaN; any other unparseable or non-finite value is an error.
func ParseAge(raw *string) (float64, error) {
	if raw == nil {
		return math.NaN(), nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return math.NaN(), nil
	}
	age, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse age %q: %w", s, err)
	}
	if math.IsInf(age, 0) || math.IsNaN(age) {
		return 0, fmt.Errorf("parse age %q: not a finite number", s)
	}
	return age, nil
}

// EnrichIncident derives timestamp, year, race default, numeric age and age
// group from a raw row and projects it onto the exported columns.
func EnrichIncident(raw RawIncident) (Incident, error) {
	ts, err := DeriveTimestamp(raw.Date, NormalizeTime(raw.Time))
	if err != nil {
		return Incident{}, fmt.Errorf("incident %s: %w", raw.DCKey, err)
	}
	age, err := ParseAge(raw.Age)
	if err != nil {
		return Incident{}, fmt.Errorf("incident %s: %w", raw.DCKey, err)
	}

	return Incident{
		DCKey:    raw.DCKey,
		Race:     DefaultRace(raw.Race),
		Sex:      raw.Sex,
		Age:      age,
		Latino:   raw.Latino,
		Fatal:    raw.Fatal,
		Date:     ts,
		Year:     ts.Year(),
		AgeGroup: AgeGroupFor(age),
		Point:    raw.Point,
		Location: raw.Location,
	}, nil
}

// WithSequence returns a copy of the incident tagged with its upstream row
// position.
func (i Incident) WithSequence(seq int) Incident {
	i.seq = seq
	return i
}

// SortIncidents returns a copy of incidents ordered by timestamp, newest
// first. Ties are broken by dc_key and then upstream position so repeated
// runs over the same feed produce the same order.
func SortIncidents(incidents []Incident) []Incident {
	sorted := slices.Clone(incidents)
	slices.SortStableFunc(sorted, func(a, b Incident) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.DCKey, b.DCKey); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return sorted
}
