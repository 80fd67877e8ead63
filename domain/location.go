package domain

import "time"

// GeoLocation is a reusable reference entity describing a physical site.
// Tasks point at it; it keeps no back-reference to tasks.
type GeoLocation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidCoordinates reports whether latitude and longitude are within
// [-90, 90] and [-180, 180] respectively.
func (l *GeoLocation) ValidCoordinates() bool {
	if l == nil {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}
