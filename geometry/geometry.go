// Package geometry computes Euclidean tour lengths over a fixed city table.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrTourSizeMismatch is returned when a tour does not cover the city table.
var ErrTourSizeMismatch = errors.New("geometry: tour length does not match city count")

// City is a point in the plane identified by its index in the city table.
type City struct {
	ID int     `json:"id" toml:"id"`
	X  float64 `json:"x" toml:"x"`
	Y  float64 `json:"y" toml:"y"`
}

// Distance returns the Euclidean distance between two cities.
func Distance(a, b City) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// TourDistance returns the length of the closed tour that visits the cities in
// chromosome order and returns to the start. The tour must visit every city in
// the table exactly once, so its length has to equal the table size.
func TourDistance(tour []int, cities []City) (float64, error) {
	if len(tour) != len(cities) {
		return 0, fmt.Errorf("%w: tour %d, cities %d", ErrTourSizeMismatch, len(tour), len(cities))
	}

	distance := 0.0
	for i := 0; i < len(tour); i++ {
		from := cities[tour[i]]
		to := cities[tour[(i+1)%len(tour)]]
		distance += Distance(from, to)
	}

	return distance, nil
}
