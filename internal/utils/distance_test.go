package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	parisLat = 48.8566
	parisLon = 2.3522
	lyonLat  = 45.7578
	lyonLon  = 4.8320
)

func TestCalculateDistance_ParisLyon(t *testing.T) {
	distance := CalculateDistance(parisLat, parisLon, lyonLat, lyonLon)

	assert.InDelta(t, 392.0, distance, 5.0)
}

func TestCalculateDistance_SamePoint(t *testing.T) {
	distance := CalculateDistance(parisLat, parisLon, parisLat, parisLon)

	assert.Equal(t, 0.0, distance)
}

func TestCalculateDistance_Symmetric(t *testing.T) {
	forward := CalculateDistance(parisLat, parisLon, lyonLat, lyonLon)
	backward := CalculateDistance(lyonLat, lyonLon, parisLat, parisLon)

	assert.InDelta(t, forward, backward, 0.0001)
}

func TestIsWithinRadius(t *testing.T) {
	assert.True(t, IsWithinRadius(parisLat, parisLon, lyonLat, lyonLon, 400))
	assert.False(t, IsWithinRadius(parisLat, parisLon, lyonLat, lyonLon, 300))
}

func TestEstimateTravelMinutes(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		speed    float64
		want     int
	}{
		{"100km at 50km/h", 100, 50, 120},
		{"25km at 50km/h", 25, 50, 30},
		{"rounds up partial minutes", 1, 50, 2},
		{"zero speed falls back to default", 50, 0, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTravelMinutes(tt.distance, tt.speed))
		})
	}
}
