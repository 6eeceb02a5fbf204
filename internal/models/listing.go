package models

import "strings"

// DefaultCountry is assumed when a listing omits its country.
const DefaultCountry = "United States"

// Listing is a RESO residential listing as returned by the upstream
// listings provider, optionally enriched with coordinates.
type Listing struct {
	ListingKey      string           `json:"ListingKey"`
	ListingID       string           `json:"ListingId,omitempty"`
	StandardStatus  string           `json:"StandardStatus,omitempty"`
	StreetNumber    string           `json:"StreetNumber,omitempty"`
	StreetName      string           `json:"StreetName,omitempty"`
	City            string           `json:"City,omitempty"`
	StateOrProvince string           `json:"StateOrProvince,omitempty"`
	PostalCode      string           `json:"PostalCode,omitempty"`
	Country         string           `json:"Country,omitempty"`
	BedroomsTotal   int              `json:"BedroomsTotal,omitempty"`
	BathroomsTotal  float64          `json:"BathroomsTotal,omitempty"`
	ListPrice       float64          `json:"ListPrice,omitempty"`
	LivingArea      float64          `json:"LivingArea,omitempty"`
	LotSizeArea     float64          `json:"LotSizeArea,omitempty"`
	YearBuilt       int              `json:"YearBuilt,omitempty"`
	PublicRemarks   string           `json:"PublicRemarks,omitempty"`
	Media           []map[string]any `json:"Media,omitempty"`
	Coordinates     *Coordinates     `json:"coordinates,omitempty"`
}

// CanonicalAddress joins the listing's address parts into the string
// used as the geocode cache key. Empty parts are dropped; the country
// defaults to DefaultCountry when absent. Returns "" when the listing
// carries no street, city, state, or postal code at all.
func (l Listing) CanonicalAddress() string {
	street := strings.TrimSpace(l.StreetNumber + " " + l.StreetName)

	country := l.Country
	if country == "" {
		country = DefaultCountry
	}

	parts := make([]string, 0, 5)
	for _, part := range []string{street, l.City, l.StateOrProvince, l.PostalCode} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	parts = append(parts, country)

	return strings.Join(parts, ", ")
}
