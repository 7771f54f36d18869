package domain

import (
	"errors"
	"math"
	"testing"
)

func testGrid() Grid {
	return Grid{
		Lon: []float64{160, 170, 180, 190},
		Lat: []float64{50, 55},
	}
}

func TestMonthMean_MatchingSubsetOnly(t *testing.T) {
	grid := testGrid()
	f := NewField(grid, 3)
	months := []string{"05", "06", "05"}

	// Cell (0,0): present in both May slices.
	f.Set(0, 0, 0, 10)
	f.Set(0, 0, 1, 100) // June, must be excluded
	f.Set(0, 0, 2, 20)

	// Cell (1,1): present in only one of the May slices.
	f.Set(1, 1, 0, 4)
	f.Set(1, 1, 1, 100)

	// Cell (2,0): absent in all May slices, present in June.
	f.Set(2, 0, 1, 100)

	mean, err := f.MonthMean(months, "05")
	if err != nil {
		t.Fatalf("MonthMean: %v", err)
	}

	if v, ok := mean.At(0, 0); !ok || v != 15 {
		t.Errorf("cell (0,0): expected 15, got %v (present=%v)", v, ok)
	}
	if v, ok := mean.At(1, 1); !ok || v != 4 {
		t.Errorf("cell (1,1): expected 4, got %v (present=%v)", v, ok)
	}
	if _, ok := mean.At(2, 0); ok {
		t.Errorf("cell (2,0): expected absent marker")
	}
}

func TestMonthMean_SingleMatchReturnsSliceUnchanged(t *testing.T) {
	grid := testGrid()
	f := NewField(grid, 12)

	months := []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}
	// Constant value per month: month index + 1.
	for k := 0; k < 12; k++ {
		for i := range grid.Lon {
			for j := range grid.Lat {
				f.Set(i, j, k, float64(k+1))
			}
		}
	}

	mean, err := f.MonthMean(months, "05")
	if err != nil {
		t.Fatalf("MonthMean: %v", err)
	}
	for i := range grid.Lon {
		for j := range grid.Lat {
			if v, ok := mean.At(i, j); !ok || v != 5 {
				t.Fatalf("cell (%d,%d): expected May value 5, got %v (present=%v)", i, j, v, ok)
			}
		}
	}
}

func TestMonthMean_NoMatchingSlices(t *testing.T) {
	f := NewField(testGrid(), 2)
	_, err := f.MonthMean([]string{"01", "02"}, "05")
	if !errors.Is(err, ErrNoMatchingSlices) {
		t.Fatalf("expected ErrNoMatchingSlices, got %v", err)
	}
}

func TestMonthMean_LabelCountMismatch(t *testing.T) {
	f := NewField(testGrid(), 3)
	if _, err := f.MonthMean([]string{"01"}, "01"); err == nil {
		t.Fatal("expected error for mismatched label count")
	}
}

func TestSentinelCount(t *testing.T) {
	const sentinel = -9.99e33

	f := NewField(testGrid(), 1)
	f.Set(0, 0, 0, 12.5)
	f.Set(1, 0, 0, sentinel) // a sentinel that survived loading
	if got := f.SentinelCount(sentinel); got != 1 {
		t.Fatalf("expected 1 surviving sentinel, got %d", got)
	}

	// Absent cells never count, whatever their backing value.
	clean := NewField(testGrid(), 1)
	clean.Set(0, 0, 0, 12.5)
	if got := clean.SentinelCount(sentinel); got != 0 {
		t.Fatalf("expected 0 sentinels, got %d", got)
	}
}

func TestTimeSlice(t *testing.T) {
	f := NewField(testGrid(), 2)
	f.Set(0, 0, 0, 1)
	f.Set(0, 0, 1, 2)
	f.Set(3, 1, 1, 9)

	s := f.TimeSlice(1)
	if v, ok := s.At(0, 0); !ok || v != 2 {
		t.Errorf("expected 2 at (0,0), got %v (present=%v)", v, ok)
	}
	if v, ok := s.At(3, 1); !ok || v != 9 {
		t.Errorf("expected 9 at (3,1), got %v (present=%v)", v, ok)
	}
	if _, ok := s.At(1, 0); ok {
		t.Errorf("expected absent at (1,0)")
	}
}

func TestSlice_PresentValues(t *testing.T) {
	s := NewSlice(testGrid())
	s.Set(0, 0, 3)
	s.Set(2, 1, 7)
	vals := s.PresentValues()
	if len(vals) != 2 {
		t.Fatalf("expected 2 present values, got %d", len(vals))
	}
	sum := vals[0] + vals[1]
	if math.Abs(sum-10) > 1e-12 {
		t.Fatalf("expected values summing to 10, got %v", vals)
	}
}

func TestDisplayLon(t *testing.T) {
	tests := []struct {
		in, out float64
	}{
		{160, 160},
		{180, 180},
		{190, -170},
		{359, -1},
	}
	for _, tt := range tests {
		if got := DisplayLon(tt.in); got != tt.out {
			t.Errorf("DisplayLon(%v): expected %v, got %v", tt.in, tt.out, got)
		}
	}
}

func TestDataset_Validate(t *testing.T) {
	grid := testGrid()
	d := &Dataset{
		Grid: grid,
		Time: NewTimeAxis([]float64{0, 31}),
		SST:  NewField(grid, 2),
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected valid dataset, got %v", err)
	}

	d.Time = NewTimeAxis([]float64{0})
	if err := d.Validate(); err == nil {
		t.Fatal("expected time axis mismatch error")
	}
}
