package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func paris() *Location {
	return &Location{ID: 1, Name: "Paris", Latitude: ptr(48.8566), Longitude: ptr(2.3522)}
}

func lyon() *Location {
	return &Location{ID: 2, Name: "Lyon", Latitude: ptr(45.7578), Longitude: ptr(4.8320)}
}

func TestLocation_DistanceTo_ParisLyon(t *testing.T) {
	distance, ok := paris().DistanceTo(lyon())

	assert.True(t, ok)
	assert.InDelta(t, 392.0, distance, 5.0)
}

func TestLocation_DistanceTo_MissingCoordinates(t *testing.T) {
	unknown := &Location{ID: 3, Name: "Somewhere"}

	_, ok := paris().DistanceTo(unknown)
	assert.False(t, ok)

	_, ok = unknown.DistanceTo(paris())
	assert.False(t, ok)
}

func TestLocation_Equals(t *testing.T) {
	a := &Location{ID: 1, Name: "Paris"}
	b := &Location{ID: 1, Name: "Paris Gare de Lyon"}
	c := &Location{ID: 2, Name: "Lyon"}

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}

func TestLocation_HasCoordinates(t *testing.T) {
	assert.True(t, paris().HasCoordinates())
	assert.False(t, (&Location{ID: 9, Name: "No coords"}).HasCoordinates())
	assert.False(t, (&Location{ID: 9, Name: "Half", Latitude: ptr(1)}).HasCoordinates())
}
