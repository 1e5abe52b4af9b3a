package domain

import (
	"slices"
	"time"
)

// PartitionByYear groups incidents by derived year, one partition per
// distinct year in ascending order. Incident order within a year is kept.
func PartitionByYear(incidents []Incident) []YearPartition {
	byYear := make(map[int][]Incident)
	for _, inc := range incidents {
		byYear[inc.Year] = append(byYear[inc.Year], inc)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)

	partitions := make([]YearPartition, 0, len(years))
	for _, y := range years {
		partitions = append(partitions, YearPartition{Year: y, Incidents: byYear[y]})
	}
	return partitions
}

// DailyCounts buckets incidents into calendar days spanning the earliest to
// the latest incident day. Days without incidents are included with a zero
// count. The result is in ascending date order; it is empty for no input.
func DailyCounts(incidents []Incident) []DailyCount {
	if len(incidents) == 0 {
		return []DailyCount{}
	}

	counts := make(map[string]int)
	first, last := day(incidents[0].Date), day(incidents[0].Date)
	for _, inc := range incidents {
		d := day(inc.Date)
		counts[d.Format(DayLayout)]++
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	var out []DailyCount
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(DayLayout)
		out = append(out, DailyCount{Date: key, Count: counts[key]})
	}
	return out
}

// day truncates t to midnight of its calendar day, keeping its location.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
