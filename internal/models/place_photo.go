package models

import "time"

// PlacePhoto caches one place photo, keyed by the upstream photo
// reference string.
type PlacePhoto struct {
	PhotoReference string    `gorm:"primaryKey" json:"photo_reference"`
	Data           []byte    `gorm:"type:blob" json:"-"`
	ContentType    string    `json:"content_type"`
	Timestamp      time.Time `gorm:"column:timestamp;index" json:"timestamp"`
}

// TableName keeps the historical table name.
func (PlacePhoto) TableName() string { return "place_photos" }
