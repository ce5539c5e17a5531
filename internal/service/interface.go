package service

import (
	"context"

	"github.com/alexivanou/worldcities/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ImportWorldCities(ctx context.Context) (*model.ImportResult, error)
	ListCountries(ctx context.Context) (*model.CountryListResponse, error)
	ListCities(ctx context.Context, q model.CityQuery) (*model.CityListResponse, error)
}
