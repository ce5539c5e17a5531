package model

// ImportResult is the outcome of one import run
type ImportResult struct {
	Cities    int `json:"Cities"`
	Countries int `json:"Countries"`
}

// CityQuery selects a page of cities
type CityQuery struct {
	// CountryID restricts results to one country when non-zero.
	CountryID int
	Limit     int
	Offset    int
}

// CityListResponse represents a page of cities
type CityListResponse struct {
	Results []City `json:"results"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

// CountryListResponse represents the full list of countries
type CountryListResponse struct {
	Results []Country `json:"results"`
	Count   int       `json:"count"`
}
