package dedup

import (
	"testing"

	"github.com/alexivanou/worldcities/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryIndex(t *testing.T) {
	idx := BuildCountryIndex([]model.Country{
		{ID: 1, Name: "Japan", ISO2: "JP", ISO3: "JPN"},
		{ID: 2, Name: "Côte d'Ivoire", ISO2: "CI", ISO3: "CIV"},
	})
	assert.Equal(t, 2, idx.Len())

	tests := []struct {
		name       string
		lookup     string
		expectedID int
		found      bool
	}{
		{name: "exact", lookup: "Japan", expectedID: 1, found: true},
		{name: "upper", lookup: "JAPAN", expectedID: 1, found: true},
		{name: "lower", lookup: "japan", expectedID: 1, found: true},
		{name: "non-ascii upper", lookup: "CÔTE D'IVOIRE", expectedID: 2, found: true},
		{name: "unknown", lookup: "Japan ", found: false},
		{name: "empty", lookup: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := idx.Lookup(tt.lookup)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.found, idx.Contains(tt.lookup))
			if tt.found {
				assert.Equal(t, tt.expectedID, c.ID)
			}
		})
	}
}

func TestCountryIndex_Put(t *testing.T) {
	idx := BuildCountryIndex(nil)
	assert.False(t, idx.Contains("Japan"))

	idx.Put(model.Country{Name: "Japan", ISO2: "JP"})
	c, ok := idx.Lookup("JAPAN")
	require.True(t, ok)
	assert.Zero(t, c.ID)

	idx.Put(model.Country{ID: 7, Name: "Japan", ISO2: "JP"})
	c, ok = idx.Lookup("japan")
	require.True(t, ok)
	assert.Equal(t, 7, c.ID)
	assert.Equal(t, 1, idx.Len())
}

func TestCityIndex(t *testing.T) {
	tokyo := model.City{
		Name:      "Tokyo",
		Lat:       decimal.RequireFromString("35.6897"),
		Lon:       decimal.RequireFromString("139.6922"),
		CountryID: 1,
	}
	idx := BuildCityIndex([]model.City{tokyo})
	assert.Equal(t, 1, idx.Len())

	tests := []struct {
		name  string
		city  model.City
		found bool
	}{
		{name: "same key", city: tokyo, found: true},
		{
			name: "trailing zeros compare equal",
			city: model.City{
				Name:      "Tokyo",
				Lat:       decimal.RequireFromString("35.68970"),
				Lon:       decimal.RequireFromString("139.692200"),
				CountryID: 1,
			},
			found: true,
		},
		{
			name: "one unit in the last digit differs",
			city: model.City{
				Name:      "Tokyo",
				Lat:       decimal.RequireFromString("35.6898"),
				Lon:       decimal.RequireFromString("139.6922"),
				CountryID: 1,
			},
			found: false,
		},
		{
			name: "other country",
			city: model.City{
				Name:      "Tokyo",
				Lat:       tokyo.Lat,
				Lon:       tokyo.Lon,
				CountryID: 2,
			},
			found: false,
		},
		{
			name: "name is case sensitive",
			city: model.City{
				Name:      "TOKYO",
				Lat:       tokyo.Lat,
				Lon:       tokyo.Lon,
				CountryID: 1,
			},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.found, idx.Contains(KeyOf(tt.city)))
		})
	}
}

func TestCityIndex_Add(t *testing.T) {
	idx := BuildCityIndex(nil)
	key := CityKey{Name: "Osaka", Lat: "34.6937", Lon: "135.5023", CountryID: 1}
	assert.False(t, idx.Contains(key))
	idx.Add(key)
	assert.True(t, idx.Contains(key))
	idx.Add(key)
	assert.Equal(t, 1, idx.Len())
}
