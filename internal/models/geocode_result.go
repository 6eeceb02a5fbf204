package models

import "time"

// Coordinates is a latitude/longitude pair as exposed to API clients.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AddressComponents holds the structured parts of a geocoded address.
type AddressComponents struct {
	HouseNumber string `json:"house_number,omitempty"`
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	County      string `json:"county,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	Suburb      string `json:"suburb,omitempty"`
}

// GeocodeResult is the cached outcome of a geocoding attempt, keyed by
// the exact address string that was submitted. Failed attempts are
// stored too, with Success false and only RawResponse populated.
type GeocodeResult struct {
	Address          string    `gorm:"primaryKey" json:"address"`
	Success          bool      `json:"success"`
	Lat              float64   `json:"lat"`
	Lon              float64   `json:"lon"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	HouseNumber      string    `json:"house_number,omitempty"`
	Street           string    `json:"street,omitempty"`
	City             string    `json:"city,omitempty"`
	County           string    `json:"county,omitempty"`
	State            string    `json:"state,omitempty"`
	Country          string    `json:"country,omitempty"`
	Postcode         string    `json:"postcode,omitempty"`
	Suburb           string    `json:"suburb,omitempty"`
	PlaceID          string    `json:"place_id,omitempty"`
	RawResponse      []byte    `gorm:"type:blob" json:"-"`
	Timestamp        time.Time `gorm:"column:timestamp;index" json:"timestamp"`
}

// TableName keeps the historical table name.
func (GeocodeResult) TableName() string { return "geocode_results" }

// Coordinates returns the stored lat/lng pair.
func (r *GeocodeResult) Coordinates() Coordinates {
	return Coordinates{Lat: r.Lat, Lng: r.Lon}
}

// Components returns the structured address parts.
func (r *GeocodeResult) Components() AddressComponents {
	return AddressComponents{
		HouseNumber: r.HouseNumber,
		Street:      r.Street,
		City:        r.City,
		County:      r.County,
		State:       r.State,
		Country:     r.Country,
		Postcode:    r.Postcode,
		Suburb:      r.Suburb,
	}
}
