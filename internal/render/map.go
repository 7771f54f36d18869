package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/oceanatlas/sstviz/internal/domain"
)

// Bounds is a geographic bounding box. Longitudes use the 0-360 east
// convention of the SST grids.
type Bounds struct {
	North, South float64
	East, West   float64
}

// Validate checks that the box is well formed.
func (b Bounds) Validate() error {
	if b.North <= b.South {
		return fmt.Errorf("invalid bounds: north %.2f must be > south %.2f", b.North, b.South)
	}
	if b.East <= b.West {
		return fmt.Errorf("invalid bounds: east %.2f must be > west %.2f", b.East, b.West)
	}
	return nil
}

// MapConfig controls how a slice is rendered.
type MapConfig struct {
	Bounds Bounds

	// Width of the map in pixels. The map height follows from the
	// bounds so that degrees have the same scale on both axes.
	Width int

	// Coastline polygons to stroke on top of the raster. Optional.
	Coastline []geom.Polygon

	// Label for the color legend, e.g. "sst (degree_C)".
	Label string
}

const (
	defaultWidth = 800

	// Pixel height of the legend strip under the map.
	legendPx = 60

	// vgimg renders images at 96 DPI.
	screenDPI = 96
)

// Cells with no value and pixels outside the grid.
var (
	absentColor     = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	backgroundColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func pxLength(px int) vg.Length {
	return vg.Length(px) / screenDPI * vg.Inch
}

// PixelSize returns the width and height in pixels of the image the
// configuration produces, legend included.
func (c MapConfig) PixelSize() (int, int) {
	w := c.Width
	if w <= 0 {
		w = defaultWidth
	}
	b := c.Bounds
	h := int(float64(w) * (b.North - b.South) / (b.East - b.West))
	return w, h + legendPx
}

// NewColorMap builds a linear color scale spanning the present values
// of all the given slices. Using one map for several slices gives them
// a shared scale.
func NewColorMap(slices ...*domain.Slice) *carto.ColorMap {
	cmap := carto.NewColorMap(carto.Linear)
	var vals []float64
	for _, s := range slices {
		vals = append(vals, s.PresentValues()...)
	}
	if len(vals) == 0 {
		vals = []float64{0, 1}
	}
	cmap.AddArray(vals)
	cmap.Set()
	return cmap
}

// FixedColorMap builds a linear color scale over an explicit value
// range, for callers that want the same scale across runs.
func FixedColorMap(min, max float64) *carto.ColorMap {
	cmap := carto.NewColorMap(carto.Linear)
	cmap.AddArray([]float64{min, max})
	cmap.Set()
	return cmap
}

// ScaleRange reports the minimum and maximum present value across the
// given slices. ok is false when every cell is absent.
func ScaleRange(slices ...*domain.Slice) (min, max float64, ok bool) {
	var vals []float64
	for _, s := range slices {
		vals = append(vals, s.PresentValues()...)
	}
	if len(vals) == 0 {
		return 0, 0, false
	}
	return floats.Min(vals), floats.Max(vals), true
}

// Map renders s as a color-mapped PNG with its own color scale.
func Map(w io.Writer, s *domain.Slice, cfg MapConfig) error {
	return MapWith(w, s, cfg, NewColorMap(s))
}

// MapWith renders s as a color-mapped PNG using the given color scale.
// The image is the raster of the slice over cfg.Bounds, the clipped
// coastline stroked on top, and a legend strip underneath.
func MapWith(w io.Writer, s *domain.Slice, cfg MapConfig, cmap *carto.ColorMap) error {
	if err := cfg.Bounds.Validate(); err != nil {
		return err
	}
	wpx, hpx := cfg.PixelSize()
	mapH := hpx - legendPx
	if mapH <= 0 {
		return fmt.Errorf("bounds %+v leave no room for the map", cfg.Bounds)
	}

	img := image.NewRGBA(image.Rect(0, 0, wpx, hpx))
	c := vgimg.NewWith(vgimg.UseImage(img))
	dc := vgdraw.New(c)

	rasterize(img, s, cfg.Bounds, wpx, mapH, cmap)

	figH := dc.Max.Y - dc.Min.Y
	legendH := pxLength(legendPx)
	mapArea := vgdraw.Crop(dc, 0, 0, legendH, 0)
	b := cfg.Bounds
	m := carto.NewCanvas(b.North, b.South, b.East, b.West, mapArea)
	lineStyle := vgdraw.LineStyle{
		Width: 0.25 * vg.Millimeter,
		Color: color.Black,
	}
	noFill := color.NRGBA{}
	for _, g := range ClipCoastline(cfg.Coastline, b) {
		if err := m.DrawVector(g, noFill, lineStyle, vgdraw.GlyphStyle{}); err != nil {
			return fmt.Errorf("failed to draw coastline: %w", err)
		}
	}

	legendArea := vgdraw.Crop(dc, 0, 0, 0, legendH-figH)
	if err := cmap.Legend(&legendArea, cfg.Label); err != nil {
		return fmt.Errorf("failed to draw legend: %w", err)
	}

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// rasterize paints one pixel per (row, column) by nearest grid cell.
// Row 0 is the northern edge. Absent cells get a neutral gray and
// pixels outside the grid stay on the background.
func rasterize(img *image.RGBA, s *domain.Slice, b Bounds, wpx, mapH int, cmap *carto.ColorMap) {
	grid := s.Grid()

	lonIdx := make([]int, wpx)
	for x := 0; x < wpx; x++ {
		lon := b.West + (b.East-b.West)*(float64(x)+0.5)/float64(wpx)
		lonIdx[x] = nearestIndex(grid.Lon, lon)
	}
	latIdx := make([]int, mapH)
	for y := 0; y < mapH; y++ {
		lat := b.North - (b.North-b.South)*(float64(y)+0.5)/float64(mapH)
		latIdx[y] = nearestIndex(grid.Lat, lat)
	}

	for y := 0; y < mapH; y++ {
		j := latIdx[y]
		for x := 0; x < wpx; x++ {
			i := lonIdx[x]
			if i < 0 || j < 0 {
				img.SetRGBA(x, y, backgroundColor)
				continue
			}
			v, ok := s.At(i, j)
			if !ok {
				img.SetRGBA(x, y, absentColor)
				continue
			}
			img.Set(x, y, cmap.GetColor(v))
		}
	}
}

// nearestIndex returns the index of the axis coordinate closest to v,
// or -1 when v lies outside the axis by more than half a grid step.
// The axis may be ascending or descending.
func nearestIndex(axis []float64, v float64) int {
	if len(axis) == 0 {
		return -1
	}
	best, bestDist := 0, absDiff(axis[0], v)
	for i := 1; i < len(axis); i++ {
		if d := absDiff(axis[i], v); d < bestDist {
			best, bestDist = i, d
		}
	}
	step := 0.0
	if len(axis) > 1 {
		step = absDiff(axis[1], axis[0])
	}
	if step > 0 && bestDist > step/2*1.0001 {
		return -1
	}
	return best
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
