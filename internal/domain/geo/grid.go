// Package geo provides the spatial primitives of the engine: bounding-box
// validation, adaptive grid generation for heatmaps, density classification,
// and radius-based cluster detection. All functions are stateless.
package geo

import (
	"math"

	"github.com/openintel/casegraph/pkg/errors"
)

// metersPerDegreeLat approximates one degree of latitude. Longitude degrees
// shrink with cos(latitude).
const metersPerDegreeLat = 111000.0

// DefaultMaxGridCells caps the heatmap grid as a performance ceiling when
// the caller does not supply a cap; grids that would exceed it are scaled
// down uniformly, preserving aspect ratio.
const DefaultMaxGridCells = 100

// Bounds is a geographic bounding box in decimal degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Validate checks coordinate ranges and axis ordering. It returns an
// InvalidBounds-coded error describing the first violation found.
func (b Bounds) Validate() error {
	if b.MinLat < -90 || b.MinLat > 90 {
		return errors.New(errors.ErrCodeInvalidBounds, "").WithDetailf("min_lat %g must be between -90 and 90", b.MinLat)
	}
	if b.MaxLat < -90 || b.MaxLat > 90 {
		return errors.New(errors.ErrCodeInvalidBounds, "").WithDetailf("max_lat %g must be between -90 and 90", b.MaxLat)
	}
	if b.MinLng < -180 || b.MinLng > 180 {
		return errors.New(errors.ErrCodeInvalidBounds, "").WithDetailf("min_lng %g must be between -180 and 180", b.MinLng)
	}
	if b.MaxLng < -180 || b.MaxLng > 180 {
		return errors.New(errors.ErrCodeInvalidBounds, "").WithDetailf("max_lng %g must be between -180 and 180", b.MaxLng)
	}
	if b.MinLat >= b.MaxLat {
		return errors.New(errors.ErrCodeInvalidBounds, "").WithDetailf("min_lat %g must be less than max_lat %g", b.MinLat, b.MaxLat)
	}
	if b.MinLng >= b.MaxLng {
		return errors.New(errors.ErrCodeInvalidBounds, "").WithDetailf("min_lng %g must be less than max_lng %g", b.MinLng, b.MaxLng)
	}
	return nil
}

// Contains reports whether the point lies inside the box, inclusive on all
// edges.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Cell is one heatmap grid cell with its bounds and center.
type Cell struct {
	MinLat    float64
	MinLng    float64
	MaxLat    float64
	MaxLng    float64
	CenterLat float64
	CenterLng float64
}

// Contains reports whether the point lies inside the cell, inclusive on all
// edges.
func (c Cell) Contains(lat, lng float64) bool {
	return lat >= c.MinLat && lat <= c.MaxLat && lng >= c.MinLng && lng <= c.MaxLng
}

// GridDimensions converts a cell size in meters into a row/column layout
// over the box. Longitude steps widen with latitude using the average
// latitude of the box. When the naive grid would exceed maxCells (non-positive
// takes DefaultMaxGridCells), rows and columns are scaled down by the same
// factor and the steps stretched to still cover the box exactly.
func GridDimensions(b Bounds, cellSizeMeters float64, maxCells int) (rows, cols int, latStep, lngStep float64) {
	if maxCells <= 0 {
		maxCells = DefaultMaxGridCells
	}
	avgLat := (b.MinLat + b.MaxLat) / 2
	latStep = cellSizeMeters / metersPerDegreeLat
	lngStep = cellSizeMeters / (metersPerDegreeLat * math.Cos(avgLat*math.Pi/180))

	latRange := b.MaxLat - b.MinLat
	lngRange := b.MaxLng - b.MinLng

	rows = int(latRange / latStep)
	if rows < 1 {
		rows = 1
	}
	cols = int(lngRange / lngStep)
	if cols < 1 {
		cols = 1
	}

	if rows*cols > maxCells {
		scale := math.Sqrt(float64(maxCells) / float64(rows*cols))
		rows = int(float64(rows) * scale)
		if rows < 1 {
			rows = 1
		}
		cols = int(float64(cols) * scale)
		if cols < 1 {
			cols = 1
		}
		latStep = latRange / float64(rows)
		lngStep = lngRange / float64(cols)
	}

	return rows, cols, latStep, lngStep
}

// BuildCells enumerates the grid row-major. The last row and column are
// clamped to the box, so edge cells may be smaller than cellSizeMeters.
func BuildCells(b Bounds, cellSizeMeters float64, maxCells int) []Cell {
	rows, cols, latStep, lngStep := GridDimensions(b, cellSizeMeters, maxCells)

	cells := make([]Cell, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := Cell{
				MinLat: b.MinLat + float64(row)*latStep,
				MaxLat: math.Min(b.MinLat+float64(row+1)*latStep, b.MaxLat),
				MinLng: b.MinLng + float64(col)*lngStep,
				MaxLng: math.Min(b.MinLng+float64(col+1)*lngStep, b.MaxLng),
			}
			cell.CenterLat = (cell.MinLat + cell.MaxLat) / 2
			cell.CenterLng = (cell.MinLng + cell.MaxLng) / 2
			cells = append(cells, cell)
		}
	}
	return cells
}

// DensityLevel buckets a cell count relative to the densest cell.
type DensityLevel string

const (
	DensityNone   DensityLevel = "NONE"
	DensityLow    DensityLevel = "LOW"
	DensityMedium DensityLevel = "MEDIUM"
	DensityHigh   DensityLevel = "HIGH"
)

// Density classifies count against maxCount: NONE for zero, then HIGH at a
// ratio of 0.6 or more, MEDIUM at 0.3 or more, LOW below.
func Density(count, maxCount int) DensityLevel {
	if count == 0 {
		return DensityNone
	}
	if maxCount == 0 {
		return DensityLow
	}
	ratio := float64(count) / float64(maxCount)
	switch {
	case ratio >= 0.6:
		return DensityHigh
	case ratio >= 0.3:
		return DensityMedium
	default:
		return DensityLow
	}
}
