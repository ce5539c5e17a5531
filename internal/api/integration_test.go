package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexivanou/worldcities/internal/config"
	"github.com/alexivanou/worldcities/internal/database"
	"github.com/alexivanou/worldcities/internal/importer"
	"github.com/alexivanou/worldcities/internal/model"
	"github.com/alexivanou/worldcities/internal/repository"
	"github.com/alexivanou/worldcities/internal/service"
	"github.com/alexivanou/worldcities/internal/source"
	"github.com/alexivanou/worldcities/internal/stats"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func writeWorldCities(t *testing.T, rows ...[]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	all := append([][]interface{}{
		{"city", "city_ascii", "lat", "lng", "country", "iso2", "iso3", "admin_name", "capital", "population", "id"},
	}, rows...)
	for i, row := range all {
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}

	path := filepath.Join(t.TempDir(), "worldcities.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func setupIntegrationStack(t *testing.T, env config.Environment, sourcePath string) (http.Handler, *sqlx.DB) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("testdb_%d", rng.Int()),
	}

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	require.NoError(t, err)

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite",
		"sqlite3",
		driver,
	)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	repos := repository.NewRepositories(db, config.DBTypeMemory)
	app := config.AppConfig{Env: env}
	im := importer.New(app.IsDevelopment(), source.NewFile(sourcePath, ""), repos.Country, repos.City, zap.NewNop())
	svc := service.NewService(repos.City, repos.Country, im)

	return NewRouter(svc, stats.NewCollector(db, cfg), zap.NewNop()), db
}

func runImport(t *testing.T, handler http.Handler) (int, model.ImportResult) {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/seed/import", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var result model.ImportResult
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	}
	return rr.Code, result
}

func TestAPI_Integration_Import(t *testing.T) {
	path := writeWorldCities(t,
		[]interface{}{"Tokyo", "Tokyo", 35.6897, 139.6922, "Japan", "JP", "JPN", "Tōkyō", "primary", 37732000, 1392685764},
		[]interface{}{"Osaka", "Osaka", 34.6937, 135.5023, "Japan", "JP", "JPN", "Ōsaka", "admin", 15126000, 1392419823},
	)
	handler, _ := setupIntegrationStack(t, config.EnvDevelopment, path)

	status, result := runImport(t, handler)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.ImportResult{Countries: 1, Cities: 2}, result)

	status, result = runImport(t, handler)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.ImportResult{Countries: 0, Cities: 0}, result)

	req := httptest.NewRequest("GET", "/api/v1/countries", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var countries model.CountryListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &countries))
	require.Equal(t, 1, countries.Count)
	japanID := countries.Results[0].ID

	req = httptest.NewRequest("GET", fmt.Sprintf("/api/v1/cities?country_id=%d", japanID), nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var cities model.CityListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cities))
	require.Len(t, cities.Results, 2)
	assert.Equal(t, "Osaka", cities.Results[0].Name)
	assert.Equal(t, "34.6937", cities.Results[0].Lat.StringFixed(4))
}

func TestAPI_Integration_ImportAgainstExistingCountry(t *testing.T) {
	path := writeWorldCities(t,
		[]interface{}{"Tokyo", "Tokyo", 35.6897, 139.6922, "Japan", "JP", "JPN"},
		[]interface{}{"Osaka", "Osaka", 34.6937, 135.5023, "JAPAN", "JP", "JPN"},
	)
	handler, db := setupIntegrationStack(t, config.EnvDevelopment, path)

	_, err := db.Exec("INSERT INTO countries (name, iso2, iso3) VALUES ('japan', 'JA', 'JAP')")
	require.NoError(t, err)

	status, result := runImport(t, handler)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.ImportResult{Countries: 0, Cities: 2}, result)

	var iso2 string
	require.NoError(t, db.Get(&iso2, "SELECT iso2 FROM countries"))
	assert.Equal(t, "JA", iso2)
}

func TestAPI_Integration_ImportRefusedInProduction(t *testing.T) {
	path := writeWorldCities(t,
		[]interface{}{"Tokyo", "Tokyo", 35.6897, 139.6922, "Japan", "JP", "JPN"},
	)
	handler, db := setupIntegrationStack(t, config.EnvProduction, path)

	status, _ := runImport(t, handler)
	assert.Equal(t, http.StatusForbidden, status)

	empty, err := repository.IsDatabaseEmpty(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestAPI_Integration_ImportMissingSource(t *testing.T) {
	handler, _ := setupIntegrationStack(t, config.EnvDevelopment, filepath.Join(t.TempDir(), "missing.xlsx"))

	status, _ := runImport(t, handler)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestAPI_Integration_Stats(t *testing.T) {
	path := writeWorldCities(t,
		[]interface{}{"Tokyo", "Tokyo", 35.6897, 139.6922, "Japan", "JP", "JPN"},
	)
	handler, _ := setupIntegrationStack(t, config.EnvDevelopment, path)
	status, _ := runImport(t, handler)
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var s stats.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &s))
	assert.Equal(t, int64(2), s.Database.TotalRecords)
}
