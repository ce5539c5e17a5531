package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/worldcities/internal/model"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// ListCountries returns all countries ordered by name
func (s *Service) ListCountries(ctx context.Context) (*model.CountryListResponse, error) {
	countries, err := s.countryRepo.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	if countries == nil {
		countries = []model.Country{}
	}
	return &model.CountryListResponse{Results: countries, Count: len(countries)}, nil
}

// ListCities returns one page of cities, optionally for a single country
func (s *Service) ListCities(ctx context.Context, q model.CityQuery) (*model.CityListResponse, error) {
	if q.CountryID < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("country_id and offset must not be negative")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	cities, err := s.cityRepo.FindCities(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to find cities: %w", err)
	}
	if cities == nil {
		cities = []model.City{}
	}

	return &model.CityListResponse{
		Results: cities,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}, nil
}
