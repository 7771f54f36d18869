package domain

import "fmt"

// Grid is the spatial grid of a dataset: ordered longitude and latitude
// values in degrees. Longitudes follow the source's 0-360 degrees east
// convention; use DisplayLon at presentation boundaries.
type Grid struct {
	Lon []float64
	Lat []float64
}

// DisplayLon converts a 0-360 east longitude to the signed convention
// used for display (lon-360 when lon > 180).
func DisplayLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// Field is a 3-D array indexed by (longitude-index, latitude-index,
// time-index). Each cell is an explicit optional: a value plus a presence
// flag. Missing measurements are absent markers, never a numeric
// sentinel, once a field has been loaded.
type Field struct {
	grid    Grid
	steps   int
	values  []float64
	present []bool
}

// NewField allocates a field with every cell absent.
func NewField(grid Grid, steps int) *Field {
	n := len(grid.Lon) * len(grid.Lat) * steps
	return &Field{
		grid:    grid,
		steps:   steps,
		values:  make([]float64, n),
		present: make([]bool, n),
	}
}

func (f *Field) index(i, j, k int) int {
	return (i*len(f.grid.Lat)+j)*f.steps + k
}

// Set stores a present value at (lon-index i, lat-index j, time-index k).
// It is only called while a loader populates the field.
func (f *Field) Set(i, j, k int, v float64) {
	idx := f.index(i, j, k)
	f.values[idx] = v
	f.present[idx] = true
}

// At returns the value at (i, j, k) and whether a measurement is present.
func (f *Field) At(i, j, k int) (float64, bool) {
	idx := f.index(i, j, k)
	return f.values[idx], f.present[idx]
}

// Grid returns the spatial grid the field is defined on.
func (f *Field) Grid() Grid {
	return f.grid
}

// Steps returns the number of time steps.
func (f *Field) Steps() int {
	return f.steps
}

// SentinelCount reports how many present cells still equal the raw
// missing-value sentinel exactly. After a correct load this is zero; the
// check exists to make the sentinel-to-absent conversion auditable.
func (f *Field) SentinelCount(sentinel float64) int {
	n := 0
	for idx, ok := range f.present {
		if ok && f.values[idx] == sentinel {
			n++
		}
	}
	return n
}

// TimeSlice copies the 2-D slice at time-index k.
func (f *Field) TimeSlice(k int) *Slice {
	s := NewSlice(f.grid)
	for i := range f.grid.Lon {
		for j := range f.grid.Lat {
			if v, ok := f.At(i, j, k); ok {
				s.Set(i, j, v)
			}
		}
	}
	return s
}

// MonthMean selects every time slice whose month string matches target
// (e.g. "05") and computes, per grid cell, the arithmetic mean of the
// present values among the matching slices. Cells that are absent in all
// matching slices stay absent. months must have one entry per time step,
// as produced by TimeAxis.Months. Zero matching slices is an error.
func (f *Field) MonthMean(months []string, target string) (*Slice, error) {
	if len(months) != f.steps {
		return nil, fmt.Errorf("month labels (%d) do not match time steps (%d)", len(months), f.steps)
	}

	var matched []int
	for k, m := range months {
		if m == target {
			matched = append(matched, k)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("month %q: %w", target, ErrNoMatchingSlices)
	}

	out := NewSlice(f.grid)
	for i := range f.grid.Lon {
		for j := range f.grid.Lat {
			var sum float64
			var n int
			for _, k := range matched {
				if v, ok := f.At(i, j, k); ok {
					sum += v
					n++
				}
			}
			if n > 0 {
				out.Set(i, j, sum/float64(n))
			}
		}
	}
	return out, nil
}

// Slice is a 2-D array indexed by (longitude-index, latitude-index) with
// the same optional-cell representation as Field. It is the shape of a
// single time step or a month aggregate.
type Slice struct {
	grid    Grid
	values  []float64
	present []bool
}

// NewSlice allocates a slice with every cell absent.
func NewSlice(grid Grid) *Slice {
	n := len(grid.Lon) * len(grid.Lat)
	return &Slice{
		grid:    grid,
		values:  make([]float64, n),
		present: make([]bool, n),
	}
}

func (s *Slice) index(i, j int) int {
	return i*len(s.grid.Lat) + j
}

// Set stores a present value at (lon-index i, lat-index j).
func (s *Slice) Set(i, j int, v float64) {
	idx := s.index(i, j)
	s.values[idx] = v
	s.present[idx] = true
}

// At returns the value at (i, j) and whether a measurement is present.
func (s *Slice) At(i, j int) (float64, bool) {
	idx := s.index(i, j)
	return s.values[idx], s.present[idx]
}

// Grid returns the spatial grid the slice is defined on.
func (s *Slice) Grid() Grid {
	return s.grid
}

// PresentValues returns a copy of all present cell values. Renderers use
// it to compute color scale ranges.
func (s *Slice) PresentValues() []float64 {
	out := make([]float64, 0, len(s.values))
	for idx, ok := range s.present {
		if ok {
			out = append(out, s.values[idx])
		}
	}
	return out
}
