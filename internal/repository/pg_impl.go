package repository

import (
	"context"

	"github.com/alexivanou/worldcities/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

// 2000 rows * 5 params is far below the 65535 parameter limit.
const pgCityChunkSize = 2000

type pgCountryRepository struct {
	db *sqlx.DB
}

func (r *pgCountryRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	if err := r.db.SelectContext(ctx, &countries,
		"SELECT id, name, TRIM(iso2) AS iso2, TRIM(iso3) AS iso3 FROM countries ORDER BY LOWER(name), id"); err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *pgCountryRepository) InsertCountries(ctx context.Context, countries []model.Country) ([]model.Country, error) {
	return insertCountries(ctx, r.db, countries)
}

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities,
		"SELECT id, name, name_ascii, lat, lon, country_id FROM cities ORDER BY id"); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *pgCityRepository) InsertCities(ctx context.Context, cities []model.City) error {
	return insertCities(ctx, r.db, cities, pgCityChunkSize)
}

func (r *pgCityRepository) FindCities(ctx context.Context, q model.CityQuery) ([]model.City, error) {
	query := `
		SELECT id, name, name_ascii, lat, lon, country_id
		FROM cities
		WHERE ($1 = 0 OR country_id = $1)
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities, query, q.CountryID, q.Limit, q.Offset); err != nil {
		return nil, err
	}
	return cities, nil
}
