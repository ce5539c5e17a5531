package api

import (
	"github.com/alexivanou/worldcities/internal/service"
	"github.com/alexivanou/worldcities/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger) *mux.Router {
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Maintenance; refused outside development
	router.HandleFunc("/api/seed/import", handler.ImportWorldCities).Methods("GET")

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/countries", handler.ListCountries).Methods("GET")
	v1.HandleFunc("/cities", handler.ListCities).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
