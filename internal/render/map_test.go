package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/oceanatlas/sstviz/internal/domain"
)

func testSlice() *domain.Slice {
	grid := domain.Grid{
		Lon: []float64{160, 170, 180, 190},
		Lat: []float64{50, 55},
	}
	s := domain.NewSlice(grid)
	for i := range grid.Lon {
		for j := range grid.Lat {
			s.Set(i, j, float64(10*(i+1)+j))
		}
	}
	return s
}

func testBounds() Bounds {
	return Bounds{North: 60, South: 45, East: 195, West: 155}
}

func TestBounds_Validate(t *testing.T) {
	if err := testBounds().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (Bounds{North: 45, South: 60, East: 195, West: 155}).Validate(); err == nil {
		t.Error("expected error for north <= south")
	}
	if err := (Bounds{North: 60, South: 45, East: 155, West: 195}).Validate(); err == nil {
		t.Error("expected error for east <= west")
	}
}

func TestMapConfig_PixelSize(t *testing.T) {
	cfg := MapConfig{Bounds: testBounds(), Width: 80}
	w, h := cfg.PixelSize()
	if w != 80 {
		t.Errorf("expected width 80, got %d", w)
	}
	// 80 px over 40 degrees of longitude and 15 degrees of latitude
	// gives a 30 px map plus the legend.
	if h != 30+legendPx {
		t.Errorf("expected height %d, got %d", 30+legendPx, h)
	}

	w, _ = MapConfig{Bounds: testBounds()}.PixelSize()
	if w != defaultWidth {
		t.Errorf("expected default width %d, got %d", defaultWidth, w)
	}
}

func TestMap_EncodesPNGOfExpectedSize(t *testing.T) {
	cfg := MapConfig{Bounds: testBounds(), Width: 80, Label: "sst (degree_C)"}

	var buf bytes.Buffer
	if err := Map(&buf, testSlice(), cfg); err != nil {
		t.Fatalf("Map: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode PNG: %v", err)
	}
	w, h := cfg.PixelSize()
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("expected %dx%d image, got %dx%d", w, h, img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestMapWith_PixelColors(t *testing.T) {
	s := testSlice()
	cfg := MapConfig{Bounds: testBounds(), Width: 80}
	cmap := NewColorMap(s)

	var buf bytes.Buffer
	if err := MapWith(&buf, s, cfg, cmap); err != nil {
		t.Fatalf("MapWith: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode PNG: %v", err)
	}

	// Pixel (29, 19) maps to lon 169.75, lat 50.25, so the nearest
	// cell is (170, 50) with value 20.
	want := cmap.GetColor(20)
	wr, wg, wb, _ := want.RGBA()
	gr, gg, gb, _ := img.At(29, 19).RGBA()
	if wr != gr || wg != gg || wb != gb {
		t.Errorf("pixel (29,19): expected %v, got %v", want, img.At(29, 19))
	}
}

func TestMapWith_AbsentAndOutsideCells(t *testing.T) {
	grid := domain.Grid{
		Lon: []float64{160, 170, 180, 190},
		Lat: []float64{50, 55},
	}
	s := domain.NewSlice(grid)
	s.Set(0, 0, 10) // everything else stays absent

	// Wider than the grid on the west side.
	cfg := MapConfig{
		Bounds: Bounds{North: 60, South: 45, East: 195, West: 115},
		Width:  160,
	}
	var buf bytes.Buffer
	if err := Map(&buf, s, cfg); err != nil {
		t.Fatalf("Map: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode PNG: %v", err)
	}

	// Pixel (0, 0) is at lon 115.25, far west of the grid.
	br, bg, bb, _ := img.At(0, 0).RGBA()
	er, eg, eb, _ := backgroundColor.RGBA()
	if br != er || bg != eg || bb != eb {
		t.Errorf("outside pixel: expected background, got %v", img.At(0, 0))
	}

	// Pixel (120, 10) is at lon 175.25, lat 54.75, nearest cell
	// (180, 55), which is absent.
	ar, ag, ab, _ := img.At(120, 10).RGBA()
	xr, xg, xb, _ := absentColor.RGBA()
	if ar != xr || ag != xg || ab != xb {
		t.Errorf("absent pixel: expected gray, got %v", img.At(120, 10))
	}
}

func TestMapWith_InvalidBounds(t *testing.T) {
	var buf bytes.Buffer
	err := Map(&buf, testSlice(), MapConfig{Bounds: Bounds{North: 1, South: 2, East: 3, West: 0}})
	if err == nil {
		t.Fatal("expected error for invalid bounds")
	}
}

func TestScaleRange(t *testing.T) {
	a := testSlice() // values 10..31
	grid := a.Grid()
	b := domain.NewSlice(grid)
	b.Set(0, 0, -5)
	b.Set(1, 1, 40)

	min, max, ok := ScaleRange(a, b)
	if !ok {
		t.Fatal("expected ok")
	}
	if min != -5 || max != 40 {
		t.Errorf("expected range [-5, 40], got [%v, %v]", min, max)
	}

	if _, _, ok := ScaleRange(domain.NewSlice(grid)); ok {
		t.Error("expected ok=false for all-absent slice")
	}
}

func TestColorMaps_SharedVersusPerSlice(t *testing.T) {
	grid := domain.Grid{Lon: []float64{160, 170}, Lat: []float64{50, 55}}
	a := domain.NewSlice(grid)
	a.Set(0, 0, 10)
	a.Set(1, 0, 20)
	b := domain.NewSlice(grid)
	b.Set(0, 0, 10)
	b.Set(1, 0, 40)

	// A map spanning both slices colors the common value identically,
	// while per-slice maps need not.
	shared := NewColorMap(a, b)
	if shared.GetColor(10) != shared.GetColor(10) {
		t.Error("expected stable colors from one map")
	}

	// A fixed map ignores the data entirely: the color of a value
	// depends only on the configured range.
	f1 := FixedColorMap(0, 40)
	f2 := FixedColorMap(0, 40)
	if f1.GetColor(20) != f2.GetColor(20) {
		t.Error("expected identical colors from identically configured fixed maps")
	}
}

func TestNearestIndex(t *testing.T) {
	axis := []float64{160, 170, 180, 190}
	tests := []struct {
		v    float64
		want int
	}{
		{160, 0},
		{169.75, 1},
		{186, 3},
		{194, 3},  // within half a step of the edge
		{196, -1}, // beyond it
		{100, -1},
	}
	for _, tt := range tests {
		if got := nearestIndex(axis, tt.v); got != tt.want {
			t.Errorf("nearestIndex(%v): expected %d, got %d", tt.v, tt.want, got)
		}
	}

	// Descending axes work the same way.
	desc := []float64{55, 50}
	if got := nearestIndex(desc, 54); got != 0 {
		t.Errorf("descending: expected 0, got %d", got)
	}
	if got := nearestIndex(desc, 51); got != 1 {
		t.Errorf("descending: expected 1, got %d", got)
	}
}
