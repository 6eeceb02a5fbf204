package models

import "time"

// PlaceSearch caches one nearby-search result set, keyed by the hash of
// its query parameters. Results holds the serialized PlacesResult
// payload exactly as it was returned to the client.
type PlaceSearch struct {
	LocationKey string    `gorm:"primaryKey" json:"location_key"`
	Location    string    `json:"location"`
	Radius      int       `json:"radius"`
	PlaceType   string    `gorm:"column:place_type" json:"place_type"`
	Keyword     string    `json:"keyword,omitempty"`
	Results     []byte    `gorm:"type:blob" json:"-"`
	Timestamp   time.Time `gorm:"column:timestamp;index" json:"timestamp"`
}

// TableName keeps the historical table name.
func (PlaceSearch) TableName() string { return "nearby_place_searches" }
