package models

import (
	"ecoride/internal/utils"
)

// Location is an immutable named place. Coordinates are optional; two
// locations are equal when their ids match.
type Location struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (l *Location) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

func (l *Location) Equals(other *Location) bool {
	if l == nil || other == nil {
		return false
	}
	return l.ID == other.ID
}

// DistanceTo returns the great-circle distance in kilometers. The second
// return value is false when either side lacks coordinates.
func (l *Location) DistanceTo(other *Location) (float64, bool) {
	if !l.HasCoordinates() || !other.HasCoordinates() {
		return 0, false
	}

	return utils.CalculateDistance(*l.Latitude, *l.Longitude, *other.Latitude, *other.Longitude), true
}
