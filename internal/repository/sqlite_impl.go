package repository

import (
	"context"

	"github.com/alexivanou/worldcities/internal/model"
	"github.com/jmoiron/sqlx"
)

// 100 rows * 5 params stays under SQLITE_MAX_VARIABLE_NUMBER of older builds.
const sqliteCityChunkSize = 100

type sqliteCountryRepository struct {
	db *sqlx.DB
}

func (r *sqliteCountryRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	if err := r.db.SelectContext(ctx, &countries,
		"SELECT id, name, iso2, iso3 FROM countries ORDER BY name COLLATE NOCASE, id"); err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *sqliteCountryRepository) InsertCountries(ctx context.Context, countries []model.Country) ([]model.Country, error) {
	return insertCountries(ctx, r.db, countries)
}

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities,
		"SELECT id, name, name_ascii, lat, lon, country_id FROM cities ORDER BY id"); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *sqliteCityRepository) InsertCities(ctx context.Context, cities []model.City) error {
	return insertCities(ctx, r.db, cities, sqliteCityChunkSize)
}

func (r *sqliteCityRepository) FindCities(ctx context.Context, q model.CityQuery) ([]model.City, error) {
	query := `
		SELECT id, name, name_ascii, lat, lon, country_id
		FROM cities
		WHERE (? = 0 OR country_id = ?)
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities, query, q.CountryID, q.CountryID, q.Limit, q.Offset); err != nil {
		return nil, err
	}
	return cities, nil
}
