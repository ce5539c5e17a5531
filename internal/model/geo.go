package model

import "github.com/shopspring/decimal"

// CoordinateScale is the number of fractional digits stored for latitude and
// longitude. It matches the NUMERIC(7,4) columns of the schema.
const CoordinateScale = 4

// Country represents a country in the database
type Country struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	ISO2 string `db:"iso2" json:"iso2"`
	ISO3 string `db:"iso3" json:"iso3"`
}

// City represents a city in the database
type City struct {
	ID        int             `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	NameASCII string          `db:"name_ascii" json:"name_ascii"`
	Lat       decimal.Decimal `db:"lat" json:"lat"`
	Lon       decimal.Decimal `db:"lon" json:"lon"`
	CountryID int             `db:"country_id" json:"country_id"`
}

// NormalizeCoordinate rounds a coordinate to the stored precision.
func NormalizeCoordinate(d decimal.Decimal) decimal.Decimal {
	return d.Round(CoordinateScale)
}
