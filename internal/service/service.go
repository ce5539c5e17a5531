package service

import (
	"context"
	"errors"
	"sync"

	"github.com/alexivanou/worldcities/internal/model"
	"github.com/alexivanou/worldcities/internal/repository"
)

// ErrImportInProgress is returned when an import is requested while another
// one is still running.
var ErrImportInProgress = errors.New("import already in progress")

// Runner runs one import.
type Runner interface {
	Run(ctx context.Context) (*model.ImportResult, error)
}

// Service provides business logic for the API
type Service struct {
	cityRepo    repository.CityRepository
	countryRepo repository.CountryRepository
	importer    Runner

	importMu sync.Mutex
}

// NewService creates a new service instance
func NewService(
	cityRepo repository.CityRepository,
	countryRepo repository.CountryRepository,
	importer Runner,
) *Service {
	return &Service{
		cityRepo:    cityRepo,
		countryRepo: countryRepo,
		importer:    importer,
	}
}

// ImportWorldCities runs the spreadsheet import. Only one import runs at a
// time; a concurrent request fails with ErrImportInProgress.
func (s *Service) ImportWorldCities(ctx context.Context) (*model.ImportResult, error) {
	if !s.importMu.TryLock() {
		return nil, ErrImportInProgress
	}
	defer s.importMu.Unlock()

	return s.importer.Run(ctx)
}
