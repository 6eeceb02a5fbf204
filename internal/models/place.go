package models

// Place is a normalized entry from a nearby search. It is never stored
// standalone; PlaceSearch rows carry serialized slices of these.
type Place struct {
	PlaceID          string            `json:"place_id"`
	Name             string            `json:"name"`
	Vicinity         string            `json:"vicinity,omitempty"`
	FormattedAddress string            `json:"formatted_address,omitempty"`
	Geometry         Geometry          `json:"geometry"`
	Types            []string          `json:"types,omitempty"`
	Rating           float64           `json:"rating"`
	UserRatingsTotal int               `json:"user_ratings_total"`
	OpeningHours     *OpeningHours     `json:"opening_hours,omitempty"`
	PriceLevel       int               `json:"price_level"`
	Photos           []PhotoDescriptor `json:"photos,omitempty"`
}

// Geometry wraps the place location the way the legacy Places API did.
type Geometry struct {
	Location Coordinates `json:"location"`
}

// OpeningHours summarizes a place's schedule.
type OpeningHours struct {
	OpenNow     bool     `json:"open_now"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// PhotoDescriptor points at a cacheable photo attached to a place.
type PhotoDescriptor struct {
	PhotoReference   string   `json:"photo_reference"`
	Height           int      `json:"height"`
	Width            int      `json:"width"`
	HTMLAttributions []string `json:"html_attributions,omitempty"`
}

// PlacesResult is the normalized payload for one nearby search.
type PlacesResult struct {
	Results       []Place `json:"results"`
	Status        string  `json:"status"`
	NextPageToken string  `json:"next_page_token,omitempty"`
}
