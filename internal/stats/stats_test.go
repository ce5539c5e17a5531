package stats

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alexivanou/worldcities/internal/config"
	"github.com/alexivanou/worldcities/internal/database"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, config.DBConfig) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("stats_%d", rng.Int())}
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

	return db, cfg
}

func TestCollector_Collect(t *testing.T) {
	db, cfg := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "INSERT INTO countries (id, name, iso2, iso3) VALUES (1, 'Japan', 'JP', 'JPN'), (2, 'Iceland', 'IS', 'ISL')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO cities (name, name_ascii, lat, lon, country_id) VALUES ('Tokyo', 'Tokyo', '35.6897', '139.6922', 1)")
	require.NoError(t, err)

	collector := NewCollector(db, cfg)

	stats, err := collector.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, "memory", stats.Database.Type)
	assert.Equal(t, int64(3), stats.Database.TotalRecords)
	assert.Equal(t, int64(1), stats.Database.CountriesWithoutCities)

	counts := map[string]int64{}
	for _, ts := range stats.Database.Tables {
		counts[ts.Name] = ts.RowCount
	}
	assert.Equal(t, map[string]int64{"countries": 2, "cities": 1}, counts)

	assert.Greater(t, stats.Memory.Alloc, uint64(0))
	assert.GreaterOrEqual(t, stats.Runtime.NumGoroutines, 1)

	// Memory figures are cached between close calls.
	stats2, err := collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Memory, stats2.Memory)
}

func TestCollector_EmptyDB(t *testing.T) {
	db, cfg := setupTestDB(t)

	stats, err := NewCollector(db, cfg).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Database.TotalRecords)
	assert.Equal(t, int64(0), stats.Database.CountriesWithoutCities)
	assert.Len(t, stats.Database.Tables, 2)
}
