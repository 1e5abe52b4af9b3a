package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDCKey    = "202301012345"
	testRawDate  = "2023-05-04T00:00:00Z"
	testMidnight = "2023-05-04 00:00:00"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestAgeGroupFor(t *testing.T) {
	tests := []struct {
		name     string
		age      float64
		expected AgeGroup
	}{
		{"child", 9, AgeUnder18},
		{"just under 18", 17.9, AgeUnder18},
		{"negative", -1, AgeUnder18},
		{"exactly 18", 18, Age19To30},
		{"exactly 30", 30, Age19To30},
		{"fractional above 30", 30.5, Age31To45},
		{"exactly 31", 31, Age31To45},
		{"exactly 45", 45, Age31To45},
		{"exactly 46", 46, AgeGreaterThan45},
		{"elderly", 92, AgeGreaterThan45},
		{"NaN", math.NaN(), AgeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AgeGroupFor(tt.age))
		})
	}
}

func TestAgeGroupFor_Total(t *testing.T) {
	for a := -5.0; a <= 120; a += 0.25 {
		assert.True(t, ValidAgeGroup(string(AgeGroupFor(a))), "age %v", a)
	}
	assert.True(t, ValidAgeGroup(string(AgeGroupFor(math.Inf(1)))))
	assert.False(t, ValidAgeGroup("Older than 45"))
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected string
	}{
		{"null", nil, Midnight},
		{"sentinel", strPtr(MissingTime), Midnight},
		{"blank", strPtr("  "), Midnight},
		{"present", strPtr("14:32:00"), "14:32:00"},
		{"padded", strPtr(" 01:05:09 "), "01:05:09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTime(tt.raw))
		})
	}
}

func TestDeriveTimestamp(t *testing.T) {
	t.Run("seconds layout", func(t *testing.T) {
		ts, err := DeriveTimestamp(testRawDate, "14:32:10")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 5, 4, 14, 32, 10, 0, time.UTC), ts)
	})

	t.Run("minutes layout", func(t *testing.T) {
		ts, err := DeriveTimestamp("2023-05-04", "08:15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 5, 4, 8, 15, 0, 0, time.UTC), ts)
	})

	t.Run("short date", func(t *testing.T) {
		_, err := DeriveTimestamp("2023-05", Midnight)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too short")
	})

	t.Run("bad time", func(t *testing.T) {
		_, err := DeriveTimestamp(testRawDate, "noon")
		require.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := DeriveTimestamp("2023-13-45T00:00:00", Midnight)
		require.Error(t, err)
	})
}

func TestDefaultRace(t *testing.T) {
	assert.Equal(t, UnknownRace, DefaultRace(nil))
	assert.Equal(t, "B", DefaultRace(strPtr("B")))
	assert.Equal(t, "", DefaultRace(strPtr("")), "present values are unchanged")
}

func TestParseAge(t *testing.T) {
	t.Run("null", func(t *testing.T) {
		age, err := ParseAge(nil)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(age))
	})

	t.Run("blank", func(t *testing.T) {
		age, err := ParseAge(strPtr(""))
		require.NoError(t, err)
		assert.True(t, math.IsNaN(age))
	})

	t.Run("integer text", func(t *testing.T) {
		age, err := ParseAge(strPtr("27"))
		require.NoError(t, err)
		assert.Equal(t, 27.0, age)
	})

	t.Run("decimal text", func(t *testing.T) {
		age, err := ParseAge(strPtr("17.0"))
		require.NoError(t, err)
		assert.Equal(t, 17.0, age)
	})

	t.Run("non-numeric", func(t *testing.T) {
		_, err := ParseAge(strPtr("unknown"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse age")
	})

	for _, text := range []string{"inf", "-Inf", "Infinity", "NaN"} {
		t.Run("non-finite "+text, func(t *testing.T) {
			_, err := ParseAge(strPtr(text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not a finite number")
		})
	}
}

func TestEnrichIncident_InfiniteAgeFails(t *testing.T) {
	_, err := EnrichIncident(RawIncident{
		DCKey: "202319000009",
		Date:  "2023-05-04T00:00:00",
		Age:   strPtr("inf"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incident 202319000009")
}

func TestEnrichIncident(t *testing.T) {
	t.Run("null time juvenile", func(t *testing.T) {
		raw := RawIncident{
			ObjectID: 7,
			DCKey:    testDCKey,
			Date:     "2023-05-04T00:00:00",
			Time:     strPtr(MissingTime),
			Sex:      "M",
			Age:      strPtr("17"),
			Latino:   intPtr(0),
			Fatal:    intPtr(1),
			Point:    &Point{Lon: -75.16, Lat: 39.95},
		}

		inc, err := EnrichIncident(raw)
		require.NoError(t, err)
		assert.Equal(t, testMidnight, inc.Date.Format(DateLayout))
		assert.Equal(t, 2023, inc.Year)
		assert.Equal(t, AgeUnder18, inc.AgeGroup)
		assert.Equal(t, UnknownRace, inc.Race)
		assert.Equal(t, 17.0, inc.Age)
		assert.Equal(t, 1, *inc.Fatal)
		assert.Equal(t, raw.Point, inc.Point)
		assert.True(t, inc.HasAge())
	})

	t.Run("missing age", func(t *testing.T) {
		inc, err := EnrichIncident(RawIncident{DCKey: testDCKey, Date: testRawDate, Time: strPtr("23:59:59"), Race: strPtr("W")})
		require.NoError(t, err)
		assert.False(t, inc.HasAge())
		assert.Equal(t, AgeUnknown, inc.AgeGroup)
		assert.Equal(t, "W", inc.Race)
		assert.Equal(t, "2023-05-04 23:59:59", inc.Date.Format(DateLayout))
	})

	t.Run("malformed age aborts", func(t *testing.T) {
		_, err := EnrichIncident(RawIncident{DCKey: testDCKey, Date: testRawDate, Age: strPtr("n/a")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), testDCKey)
	})

	t.Run("malformed date aborts", func(t *testing.T) {
		_, err := EnrichIncident(RawIncident{DCKey: testDCKey, Date: "soon"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "derive timestamp")
	})
}

func TestSortIncidents(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2022, 3, d, h, 0, 0, 0, time.UTC) }
	in := []Incident{
		Incident{DCKey: "b", Date: day(1, 10)}.WithSequence(0),
		Incident{DCKey: "a", Date: day(3, 0)}.WithSequence(1),
		Incident{DCKey: "c", Date: day(1, 10)}.WithSequence(2),
		Incident{DCKey: "a", Date: day(1, 10)}.WithSequence(3),
		Incident{DCKey: "a", Date: day(1, 10)}.WithSequence(4),
	}

	out := SortIncidents(in)
	require.Len(t, out, len(in))

	var order []int
	for _, inc := range out {
		order = append(order, inc.seq)
	}
	assert.Equal(t, []int{1, 3, 4, 0, 2}, order)
	assert.Equal(t, "b", in[0].DCKey, "input slice is not reordered")
}
