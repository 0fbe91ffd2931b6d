package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderDate(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected time.Time
		wantErr  bool
	}{
		{"typical", "1/22/20", time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC), false},
		{"double digit month", "12/31/21", time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"surrounding spaces", " 3/1/20 ", time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"iso date", "2020-01-22", time.Time{}, true},
		{"not a date", "Population", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHeaderDate(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "M/D/YY")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCombinedKey(t *testing.T) {
	assert.Equal(t, "Ontario, Canada", CombinedKey("Ontario", "Canada"))
	assert.Equal(t, "US", CombinedKey("", "US"))
}

func TestParseWideCSV(t *testing.T) {
	header := []string{"Province/State", "Country/Region", "Lat", "Long", "1/22/20", "1/23/20"}

	t.Run("valid table", func(t *testing.T) {
		records := [][]string{
			header,
			{"", "Testland", "0", "0", "0", "5"},
			{"North", "Testland", "1", "1", "2", "3"},
		}

		table, err := ParseWideCSV(records)
		require.NoError(t, err)

		require.Len(t, table.Dates, 2)
		assert.Equal(t, time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC), table.Dates[0])
		require.Len(t, table.Rows, 2)
		assert.Equal(t, WideRow{Province: "", Country: "Testland", Values: []int{0, 5}}, table.Rows[0])
		assert.Equal(t, WideRow{Province: "North", Country: "Testland", Values: []int{2, 3}}, table.Rows[1])
	})

	t.Run("blank count is zero", func(t *testing.T) {
		records := [][]string{
			header,
			{"", "Testland", "0", "0", "", "5"},
		}
		table, err := ParseWideCSV(records)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 5}, table.Rows[0].Values)
	})

	t.Run("missing identity column", func(t *testing.T) {
		records := [][]string{
			{"Province/State", "Country/Region", "Lat", "1/22/20", "1/23/20"},
			{"", "Testland", "0", "0", "5"},
		}
		_, err := ParseWideCSV(records)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `expected "Long"`)
	})

	t.Run("unparseable date column", func(t *testing.T) {
		records := [][]string{
			{"Province/State", "Country/Region", "Lat", "Long", "not-a-date"},
			{"", "Testland", "0", "0", "5"},
		}
		_, err := ParseWideCSV(records)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not-a-date")
	})

	t.Run("non-integer count", func(t *testing.T) {
		records := [][]string{
			header,
			{"", "Testland", "0", "0", "zero", "5"},
		}
		_, err := ParseWideCSV(records)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Testland")
		assert.Contains(t, err.Error(), "not an integer")
	})

	t.Run("negative count", func(t *testing.T) {
		records := [][]string{
			header,
			{"", "Testland", "0", "0", "-1", "5"},
		}
		_, err := ParseWideCSV(records)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative")
	})

	t.Run("ragged row", func(t *testing.T) {
		records := [][]string{
			header,
			{"", "Testland", "0", "0", "1"},
		}
		_, err := ParseWideCSV(records)
		require.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseWideCSV(nil)
		require.Error(t, err)
	})

	t.Run("no date columns", func(t *testing.T) {
		records := [][]string{{"Province/State", "Country/Region", "Lat", "Long"}}
		_, err := ParseWideCSV(records)
		require.Error(t, err)
	})
}

func TestParseLookupCSV(t *testing.T) {
	header := []string{"UID", "iso2", "Province_State", "Country_Region", "Lat", "Long_", "Combined_Key", "Population"}

	t.Run("valid table", func(t *testing.T) {
		records := [][]string{
			header,
			{"1", "TL", "", "Testland", "0", "0", "Testland", "1000"},
			{"2", "TL", "North", "Testland", "1", "1", "North, Testland", "250"},
		}

		locations, err := ParseLookupCSV(records)
		require.NoError(t, err)

		require.Len(t, locations, 2)
		assert.Equal(t, "Testland", locations[0].Country)
		assert.Equal(t, 1000.0, locations[0].Population)
		assert.True(t, locations[0].HasPopulation())
		assert.Equal(t, "North", locations[1].Province)
	})

	t.Run("blank population is unknown", func(t *testing.T) {
		records := [][]string{
			header,
			{"1", "TL", "", "Shipland", "0", "0", "Shipland", ""},
		}
		locations, err := ParseLookupCSV(records)
		require.NoError(t, err)
		assert.False(t, locations[0].HasPopulation())
		assert.True(t, math.IsNaN(locations[0].Population))
	})

	t.Run("missing population column", func(t *testing.T) {
		records := [][]string{
			{"UID", "Province_State", "Country_Region"},
			{"1", "", "Testland"},
		}
		_, err := ParseLookupCSV(records)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Population")
	})

	t.Run("non-numeric population", func(t *testing.T) {
		records := [][]string{
			header,
			{"1", "TL", "", "Testland", "0", "0", "Testland", "many"},
		}
		_, err := ParseLookupCSV(records)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not numeric")
	})
}
