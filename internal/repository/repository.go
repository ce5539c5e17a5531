package repository

import (
	"context"
	"fmt"

	"github.com/alexivanou/worldcities/internal/config"
	"github.com/alexivanou/worldcities/internal/model"
	"github.com/jmoiron/sqlx"
)

// CountryRepository defines operations for countries
type CountryRepository interface {
	// ListCountries returns every stored country ordered by name.
	ListCountries(ctx context.Context) ([]model.Country, error)
	// InsertCountries stores countries in one transaction and returns them
	// with their assigned IDs, in input order.
	InsertCountries(ctx context.Context, countries []model.Country) ([]model.Country, error)
}

// CityRepository defines operations for cities
type CityRepository interface {
	ListCities(ctx context.Context) ([]model.City, error)
	// InsertCities stores cities in one transaction; either all rows are
	// committed or none.
	InsertCities(ctx context.Context, cities []model.City) error
	FindCities(ctx context.Context, q model.CityQuery) ([]model.City, error)
}

// Container holds all repositories
type Container struct {
	City    CityRepository
	Country CountryRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			City:    &pgCityRepository{db: db},
			Country: &pgCountryRepository{db: db},
		}
	}

	return &Container{
		City:    &sqliteCityRepository{db: db},
		Country: &sqliteCountryRepository{db: db},
	}
}

// IsDatabaseEmpty reports whether no country has been imported yet.
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM countries"); err != nil {
		return false, err
	}
	return count == 0, nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertCountries works on both dialects: RETURNING is supported by
// PostgreSQL and by SQLite since 3.35.
func insertCountries(ctx context.Context, db *sqlx.DB, countries []model.Country) ([]model.Country, error) {
	if len(countries) == 0 {
		return nil, nil
	}

	inserted := make([]model.Country, len(countries))
	copy(inserted, countries)

	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(
			"INSERT INTO countries (name, iso2, iso3) VALUES (?, ?, ?) RETURNING id"))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range inserted {
			c := &inserted[i]
			if err := stmt.QueryRowxContext(ctx, c.Name, c.ISO2, c.ISO3).Scan(&c.ID); err != nil {
				return fmt.Errorf("insert country %q: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// insertCities writes cities in chunks of chunkSize rows inside a single
// transaction so the statement parameter limit of the driver is respected.
func insertCities(ctx context.Context, db *sqlx.DB, cities []model.City, chunkSize int) error {
	if len(cities) == 0 {
		return nil
	}

	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		for i := 0; i < len(cities); i += chunkSize {
			end := i + chunkSize
			if end > len(cities) {
				end = len(cities)
			}
			batch := cities[i:end]

			_, err := tx.NamedExecContext(ctx, `
			INSERT INTO cities (name, name_ascii, lat, lon, country_id)
			VALUES (:name, :name_ascii, :lat, :lon, :country_id)`,
				batch)
			if err != nil {
				return fmt.Errorf("insert cities %d-%d: %w", i, end, err)
			}
		}
		return nil
	})
}
