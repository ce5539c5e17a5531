// Package importer loads countries and cities from the world cities
// worksheet into the store.
//
// A run has two phases executed strictly in order. The country phase adds
// every country name not yet known (compared without regard to case) and
// commits them in one transaction. The city phase then resolves each row's
// country through the same index, now carrying the committed IDs, and adds
// every city whose (name, lat, lon, country) key is not yet known, again in
// one transaction. Rows are processed in worksheet order and the first
// occurrence of a key wins. Existing records are never modified, so a
// second run over the same worksheet adds nothing.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/worldcities/internal/dedup"
	"github.com/alexivanou/worldcities/internal/model"
	"github.com/alexivanou/worldcities/internal/repository"
	"github.com/alexivanou/worldcities/internal/source"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnauthorized is returned when imports are not permitted in the
	// current execution context.
	ErrUnauthorized = errors.New("import not allowed in this environment")
	// ErrInternalConsistency is returned when a city row references a
	// country the country phase did not produce.
	ErrInternalConsistency = errors.New("internal consistency violation")
)

// RowReader provides the worksheet rows in source order.
type RowReader interface {
	ReadRows(ctx context.Context) ([]source.Row, error)
}

// Importer runs the two-phase import.
type Importer struct {
	allowed   bool
	reader    RowReader
	countries repository.CountryRepository
	cities    repository.CityRepository
	logger    *zap.Logger
}

// New creates an Importer. allowed gates Run; pass the result of
// config.AppConfig.IsDevelopment.
func New(
	allowed bool,
	reader RowReader,
	countries repository.CountryRepository,
	cities repository.CityRepository,
	logger *zap.Logger,
) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		allowed:   allowed,
		reader:    reader,
		countries: countries,
		cities:    cities,
		logger:    logger,
	}
}

// Run imports the worksheet and reports how many records were added.
// On error no result is returned. A country batch committed before a
// city phase failure stays committed.
func (im *Importer) Run(ctx context.Context) (*model.ImportResult, error) {
	if !im.allowed {
		return nil, ErrUnauthorized
	}

	log := im.logger.With(zap.String("run_id", uuid.NewString()))
	log.Info("Starting import")

	rows, err := im.reader.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	log.Info("Source loaded", zap.Int("rows", len(rows)))

	countryIdx, countriesAdded, err := im.importCountries(ctx, rows, log)
	if err != nil {
		return nil, err
	}

	citiesAdded, err := im.importCities(ctx, rows, countryIdx, log)
	if err != nil {
		return nil, err
	}

	log.Info("Import completed",
		zap.Int("countries", countriesAdded),
		zap.Int("cities", citiesAdded),
	)

	return &model.ImportResult{
		Cities:    citiesAdded,
		Countries: countriesAdded,
	}, nil
}

func (im *Importer) importCountries(ctx context.Context, rows []source.Row, log *zap.Logger) (*dedup.CountryIndex, int, error) {
	existing, err := im.countries.ListCountries(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list countries: %w", err)
	}
	idx := dedup.BuildCountryIndex(existing)

	var pending []model.Country
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if idx.Contains(row.CountryName) {
			continue
		}
		c := model.Country{
			Name: row.CountryName,
			ISO2: row.ISO2,
			ISO3: row.ISO3,
		}
		pending = append(pending, c)
		idx.Put(c)
	}

	if len(pending) > 0 {
		committed, err := im.countries.InsertCountries(ctx, pending)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to commit countries: %w", err)
		}
		for _, c := range committed {
			idx.Put(c)
		}
	}

	log.Info("Country phase done",
		zap.Int("existing", len(existing)),
		zap.Int("added", len(pending)),
	)
	return idx, len(pending), nil
}

func (im *Importer) importCities(ctx context.Context, rows []source.Row, countryIdx *dedup.CountryIndex, log *zap.Logger) (int, error) {
	existing, err := im.cities.ListCities(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list cities: %w", err)
	}
	idx := dedup.BuildCityIndex(existing)

	var pending []model.City
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		country, ok := countryIdx.Lookup(row.CountryName)
		if !ok || country.ID == 0 {
			return 0, fmt.Errorf("%w: row %d: country %q has no stored record",
				ErrInternalConsistency, row.Line, row.CountryName)
		}

		city := model.City{
			Name:      row.CityName,
			NameASCII: row.CityNameASCII,
			Lat:       row.Lat,
			Lon:       row.Lon,
			CountryID: country.ID,
		}
		key := dedup.KeyOf(city)
		if idx.Contains(key) {
			continue
		}
		pending = append(pending, city)
		idx.Add(key)
	}

	if len(pending) > 0 {
		if err := im.cities.InsertCities(ctx, pending); err != nil {
			return 0, fmt.Errorf("failed to commit cities: %w", err)
		}
	}

	log.Info("City phase done",
		zap.Int("existing", len(existing)),
		zap.Int("added", len(pending)),
	)
	return len(pending), nil
}
