// Package dedup holds the in-memory natural-key indexes used to decide
// whether an incoming country or city is already known.
package dedup

import (
	"github.com/alexivanou/worldcities/internal/model"
	"golang.org/x/text/cases"
)

// CountryIndex maps case-folded country names to countries.
type CountryIndex struct {
	fold   cases.Caser
	byName map[string]model.Country
}

// BuildCountryIndex indexes existing countries by name, ignoring case.
// Names in existing are expected to be unique under that comparison.
func BuildCountryIndex(existing []model.Country) *CountryIndex {
	idx := &CountryIndex{
		fold:   cases.Fold(),
		byName: make(map[string]model.Country, len(existing)),
	}
	for _, c := range existing {
		idx.byName[idx.key(c.Name)] = c
	}
	return idx
}

func (idx *CountryIndex) key(name string) string {
	return idx.fold.String(name)
}

// Lookup returns the country registered under name.
func (idx *CountryIndex) Lookup(name string) (model.Country, bool) {
	c, ok := idx.byName[idx.key(name)]
	return c, ok
}

// Contains reports whether a country with this name is known.
func (idx *CountryIndex) Contains(name string) bool {
	_, ok := idx.byName[idx.key(name)]
	return ok
}

// Put registers c under its name, replacing any previous entry. It is used
// both for pending countries and to record IDs assigned on commit.
func (idx *CountryIndex) Put(c model.Country) {
	idx.byName[idx.key(c.Name)] = c
}

// Len returns the number of distinct names in the index.
func (idx *CountryIndex) Len() int {
	return len(idx.byName)
}

// CityKey is the natural key of a city. Coordinates are held in their
// fixed-scale decimal form so equality is exact.
type CityKey struct {
	Name      string
	Lat       string
	Lon       string
	CountryID int
}

// KeyOf builds the natural key of c.
func KeyOf(c model.City) CityKey {
	return CityKey{
		Name:      c.Name,
		Lat:       c.Lat.StringFixed(model.CoordinateScale),
		Lon:       c.Lon.StringFixed(model.CoordinateScale),
		CountryID: c.CountryID,
	}
}

// CityIndex is a set of city natural keys.
type CityIndex struct {
	keys map[CityKey]struct{}
}

// BuildCityIndex indexes existing cities by natural key.
func BuildCityIndex(existing []model.City) *CityIndex {
	idx := &CityIndex{keys: make(map[CityKey]struct{}, len(existing))}
	for _, c := range existing {
		idx.Add(KeyOf(c))
	}
	return idx
}

// Contains reports whether key is known.
func (idx *CityIndex) Contains(key CityKey) bool {
	_, ok := idx.keys[key]
	return ok
}

// Add registers key.
func (idx *CityIndex) Add(key CityKey) {
	idx.keys[key] = struct{}{}
}

// Len returns the number of keys in the index.
func (idx *CityIndex) Len() int {
	return len(idx.keys)
}
