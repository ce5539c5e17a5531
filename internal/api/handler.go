package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alexivanou/worldcities/internal/importer"
	"github.com/alexivanou/worldcities/internal/model"
	"github.com/alexivanou/worldcities/internal/service"
	"github.com/alexivanou/worldcities/internal/source"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// ImportWorldCities handles GET /api/seed/import
func (h *Handler) ImportWorldCities(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ImportWorldCities(r.Context())
	if err != nil {
		status := importErrorStatus(err)
		h.logger.Error("Import failed", zap.Int("status", status), zap.Error(err))
		http.Error(w, importErrorMessage(status), status)
		return
	}

	h.logger.Info("Import finished",
		zap.Int("countries", result.Countries),
		zap.Int("cities", result.Cities),
	)
	h.writeJSON(w, result)
}

func importErrorStatus(err error) int {
	switch {
	case errors.Is(err, importer.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, source.ErrSourceMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, source.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func importErrorMessage(status int) string {
	switch status {
	case http.StatusForbidden:
		return "not allowed"
	case http.StatusConflict:
		return "import already in progress"
	case http.StatusUnprocessableEntity:
		return "source file is malformed"
	case http.StatusServiceUnavailable:
		return "source file is unavailable"
	default:
		return "internal server error"
	}
}

// ListCountries handles GET /api/v1/countries
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.ListCountries(r.Context())
	if err != nil {
		h.logger.Error("Error listing countries", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, response)
}

// ListCities handles GET /api/v1/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	var q model.CityQuery
	var ok bool

	if q.CountryID, ok = intParam(w, r, "country_id"); !ok {
		return
	}
	if q.Limit, ok = intParam(w, r, "limit"); !ok {
		return
	}
	if q.Offset, ok = intParam(w, r, "offset"); !ok {
		return
	}

	response, err := h.service.ListCities(r.Context(), q)
	if err != nil {
		h.logger.Error("Error listing cities", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, response)
}

// intParam reads an optional non-negative integer query parameter. It
// writes a 400 response and returns false when the value is invalid.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		http.Error(w, "invalid "+name+" parameter", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}
