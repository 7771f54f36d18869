// Package interp provides bilinear interpolation over gridded SST
// slices, aware of absent-marker cells.
package interp

import (
	"fmt"
	"math"

	"github.com/oceanatlas/sstviz/internal/domain"
)

// GridCell represents a cell in a regular grid with four corner values.
type GridCell struct {
	// Corner coordinates (forming a rectangle).
	X0, X1 float64 // X boundaries (longitude).
	Y0, Y1 float64 // Y boundaries (latitude).

	// Values at the four corners:
	// V00: value at (X0, Y0).
	// V10: value at (X1, Y0).
	// V01: value at (X0, Y1).
	// V11: value at (X1, Y1).
	V00, V10, V01, V11 float64
}

// BilinearInterpolate performs bilinear interpolation within a grid cell
// Formula:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// where:
//
//	t = (x - x0) / (x1 - x0)
//	u = (y - y0) / (y1 - y0)
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0")
	}

	// Check if point is within cell (with small tolerance for floating point).
	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}

	t := (x - cell.X0) / (cell.X1 - cell.X0)
	u := (y - cell.Y0) / (cell.Y1 - cell.Y0)

	// Clamp to [0, 1] to handle edge cases with floating point precision.
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))

	result := (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11

	return result, nil
}

// NormalizeLon360 maps arbitrary degree longitudes into the [0, 360) range.
//
// SST grids are defined on a 0-360 degree longitude axis, so requests using
// the conventional -180..180 representation must be wrapped first.
func NormalizeLon360(lon float64) float64 {
	lon = math.Mod(lon, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon
}

// SliceAt performs bilinear interpolation of a 2-D slice at (lon, lat).
// Longitude accepts either convention. The second return value is false
// when any corner of the enclosing cell is an absent marker: no value can
// be interpolated there. An error means the point is outside the grid.
func SliceAt(s *domain.Slice, lon, lat float64) (float64, bool, error) {
	grid := s.Grid()
	x := NormalizeLon360(lon)

	xIdx, err := intervalIndex(grid.Lon, x, "longitude")
	if err != nil {
		return 0, false, err
	}
	// Latitude axes may be stored descending; search on the ascending view.
	lats, latAscending := ascending(grid.Lat)
	yPos, err := intervalIndex(lats, lat, "latitude")
	if err != nil {
		return 0, false, err
	}

	// Stored indices of the low-latitude and high-latitude corners.
	jLow, jHigh := yPos, yPos+1
	if !latAscending {
		jLow = len(grid.Lat) - 1 - yPos
		jHigh = jLow - 1
	}

	v00, ok00 := s.At(xIdx, jLow)
	v10, ok10 := s.At(xIdx+1, jLow)
	v01, ok01 := s.At(xIdx, jHigh)
	v11, ok11 := s.At(xIdx+1, jHigh)
	if !(ok00 && ok10 && ok01 && ok11) {
		return 0, false, nil
	}

	cell := GridCell{
		X0: grid.Lon[xIdx], X1: grid.Lon[xIdx+1],
		Y0: lats[yPos], Y1: lats[yPos+1],
		V00: v00, V10: v10, V01: v01, V11: v11,
	}
	v, err := BilinearInterpolate(cell, x, lat)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// intervalIndex finds i such that axis[i] <= v <= axis[i+1].
func intervalIndex(axis []float64, v float64, name string) (int, error) {
	if len(axis) < 2 {
		return 0, fmt.Errorf("%s axis must have at least 2 coordinates", name)
	}
	for i := 0; i < len(axis)-1; i++ {
		if v >= axis[i] && v <= axis[i+1] {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s %.6f is outside grid range [%.6f, %.6f]", name, v, axis[0], axis[len(axis)-1])
}

// ascending returns the axis in ascending order and whether it already
// was ascending.
func ascending(axis []float64) ([]float64, bool) {
	if len(axis) < 2 || axis[0] <= axis[len(axis)-1] {
		return axis, true
	}
	out := make([]float64, len(axis))
	for i, v := range axis {
		out[len(axis)-1-i] = v
	}
	return out, false
}
