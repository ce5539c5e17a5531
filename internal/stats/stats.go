package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/worldcities/internal/config"
	"github.com/jmoiron/sqlx"
)

// Stats is a point-in-time snapshot of the store and the process.
type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Database  DatabaseStats `json:"database"`
	Memory    MemoryStats   `json:"memory"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	SizeBytes    int64       `json:"size_bytes"`
	TotalRecords int64       `json:"total_records"`
	Tables       []TableStat `json:"tables"`
	// CountriesWithoutCities counts countries no city references.
	CountriesWithoutCities int64 `json:"countries_without_cities"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	HeapInuse  uint64 `json:"heap_inuse"`
	NumGC      uint32 `json:"num_gc"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

var trackedTables = []string{"countries", "cities"}

// memStatsTTL bounds how often runtime.ReadMemStats, which stops the world,
// is called.
var memStatsTTL = 5 * time.Second

// Collector gathers Stats for one database.
type Collector struct {
	db      *sqlx.DB
	dbType  config.DBType
	started time.Time

	mu       sync.Mutex
	mem      MemoryStats
	memTaken time.Time
}

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:      db,
		dbType:  cfg.Type,
		started: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	dbStats, err := c.databaseStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Timestamp: time.Now(),
		Database:  *dbStats,
		Memory:    c.memoryStats(),
		Runtime: RuntimeStats{
			NumGoroutines: runtime.NumGoroutine(),
			NumCPU:        runtime.NumCPU(),
			UptimeSeconds: int64(time.Since(c.started).Seconds()),
		},
	}, nil
}

func (c *Collector) memoryStats() MemoryStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.memTaken.IsZero() && time.Since(c.memTaken) < memStatsTTL {
		return c.mem
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	c.mem = MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		HeapInuse:  m.HeapInuse,
		NumGC:      m.NumGC,
	}
	c.memTaken = time.Now()
	return c.mem
}

func (c *Collector) databaseStats(ctx context.Context) (*DatabaseStats, error) {
	out := &DatabaseStats{Type: string(c.dbType)}

	for _, table := range trackedTables {
		ts, err := c.tableStat(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to collect stats for %s: %w", table, err)
		}
		out.Tables = append(out.Tables, ts)
		out.TotalRecords += ts.RowCount
	}

	// Size queries depend on optional features (dbstat) and are best effort.
	if size, err := c.databaseSize(ctx); err == nil {
		out.SizeBytes = size
	}

	q := `
		SELECT COUNT(*) FROM countries cnt
		WHERE NOT EXISTS (SELECT 1 FROM cities c WHERE c.country_id = cnt.id)
	`
	if err := c.db.GetContext(ctx, &out.CountriesWithoutCities, q); err != nil {
		return nil, fmt.Errorf("failed to count countries without cities: %w", err)
	}

	return out, nil
}

func (c *Collector) databaseSize(ctx context.Context) (int64, error) {
	q := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
	if c.dbType == config.DBTypePostgreSQL {
		q = "SELECT pg_database_size(current_database())"
	}
	var size int64
	err := c.db.GetContext(ctx, &size, q)
	return size, err
}

func (c *Collector) tableStat(ctx context.Context, table string) (TableStat, error) {
	ts := TableStat{Name: table}

	// table comes from trackedTables, never from input.
	if err := c.db.GetContext(ctx, &ts.RowCount, "SELECT COUNT(*) FROM "+table); err != nil {
		return ts, err
	}

	var size *int64
	if c.dbType == config.DBTypePostgreSQL {
		_ = c.db.GetContext(ctx, &size, "SELECT pg_total_relation_size($1::regclass)", table)
	} else {
		_ = c.db.GetContext(ctx, &size, "SELECT SUM(pgsize) FROM dbstat WHERE name = ?", table)
	}
	if size != nil {
		ts.SizeBytes = *size
	}
	return ts, nil
}
