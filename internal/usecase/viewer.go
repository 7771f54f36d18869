// Package usecase orchestrates dataset loading, aggregation and
// rendering behind the HTTP and CLI surfaces.
package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ctessum/geom"

	"github.com/oceanatlas/sstviz/internal/adapter/interp"
	"github.com/oceanatlas/sstviz/internal/adapter/store"
	"github.com/oceanatlas/sstviz/internal/domain"
	"github.com/oceanatlas/sstviz/internal/render"
)

// Viewer serves maps, animations and point queries for one SST
// dataset. The dataset is loaded on first use and kept in memory.
type Viewer struct {
	loader store.DatasetLoader
	coast  []geom.Polygon

	mu      sync.Mutex
	dataset *domain.Dataset
	loadErr error
}

// NewViewer creates a viewer over the given dataset loader. coast may
// be nil when no coastline overlay is wanted.
func NewViewer(loader store.DatasetLoader, coast []geom.Polygon) *Viewer {
	return &Viewer{loader: loader, coast: coast}
}

// Dataset returns the loaded dataset, loading and validating it on the
// first call. A load failure is sticky; restart to retry.
func (v *Viewer) Dataset(ctx context.Context) (*domain.Dataset, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dataset != nil || v.loadErr != nil {
		return v.dataset, v.loadErr
	}
	d, err := v.loader.Load(ctx)
	if err != nil {
		v.loadErr = fmt.Errorf("failed to load dataset: %w", err)
		return nil, v.loadErr
	}
	if err := d.Validate(); err != nil {
		v.loadErr = fmt.Errorf("invalid dataset: %w", err)
		return nil, v.loadErr
	}
	v.dataset = d
	return v.dataset, nil
}

// SummaryResponse describes the loaded dataset.
type SummaryResponse struct {
	Source    string   `json:"source"`
	Units     string   `json:"units"`
	LonCells  int      `json:"lon_cells"`
	LatCells  int      `json:"lat_cells"`
	TimeSteps int      `json:"time_steps"`
	Periods   []string `json:"periods"`
	ScaleMin  float64  `json:"scale_min"`
	ScaleMax  float64  `json:"scale_max"`
	Present   int      `json:"present_cells"`
	Absent    int      `json:"absent_cells"`
	Sentinels int      `json:"sentinel_residue"`
	Sentinel  float64  `json:"sentinel"`
}

// Summary reports the dataset dimensions, its period labels, the value
// range across all time steps, and the sentinel audit. The audit
// counts raw sentinel values still present after loading; anything
// other than zero means the absent-cell translation broke.
func (v *Viewer) Summary(ctx context.Context) (*SummaryResponse, error) {
	d, err := v.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	slices := allSlices(d)
	min, max, ok := render.ScaleRange(slices...)
	if !ok {
		return nil, fmt.Errorf("dataset has no present values")
	}

	present := 0
	for _, s := range slices {
		present += len(s.PresentValues())
	}
	total := len(d.Grid.Lon) * len(d.Grid.Lat) * d.Time.Len()

	return &SummaryResponse{
		Source:    d.Source,
		Units:     d.Units,
		LonCells:  len(d.Grid.Lon),
		LatCells:  len(d.Grid.Lat),
		TimeSteps: d.Time.Len(),
		Periods:   d.Time.YearMonths(),
		ScaleMin:  min,
		ScaleMax:  max,
		Present:   present,
		Absent:    total - present,
		Sentinels: d.SST.SentinelCount(d.Sentinel),
		Sentinel:  d.Sentinel,
	}, nil
}

// MapRequest asks for a single rendered map.
type MapRequest struct {
	// Month is a two-digit calendar month label, e.g. "05". The map
	// shows the mean over every time step falling in that month.
	Month string

	Bounds render.Bounds
	Width  int
}

// Validate checks if the request is valid
func (r *MapRequest) Validate() error {
	if len(r.Month) != 2 || r.Month < "01" || r.Month > "12" {
		return fmt.Errorf("month must be a two-digit label between 01 and 12, got %q", r.Month)
	}
	return r.Bounds.Validate()
}

// MonthlyMap renders the mean over all time steps in the requested
// calendar month as a PNG.
func (v *Viewer) MonthlyMap(ctx context.Context, w io.Writer, req MapRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	d, err := v.Dataset(ctx)
	if err != nil {
		return err
	}
	mean, err := d.SST.MonthMean(d.Time.Months(), req.Month)
	if err != nil {
		return fmt.Errorf("failed to aggregate month %s: %w", req.Month, err)
	}
	return render.Map(w, mean, v.mapConfig(d, req.Bounds, req.Width))
}

// FrameRequest asks for one time step rendered on the shared scale.
type FrameRequest struct {
	Index  int
	Bounds render.Bounds
	Width  int
}

// Frame renders the time step at the given index as a PNG. The color
// scale spans the whole dataset so frames are comparable.
func (v *Viewer) Frame(ctx context.Context, w io.Writer, req FrameRequest) error {
	if err := req.Bounds.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	d, err := v.Dataset(ctx)
	if err != nil {
		return err
	}
	if req.Index < 0 || req.Index >= d.Time.Len() {
		return fmt.Errorf("frame index %d out of range [0, %d)", req.Index, d.Time.Len())
	}
	slices := allSlices(d)
	cmap := render.NewColorMap(slices...)
	return render.MapWith(w, slices[req.Index], v.mapConfig(d, req.Bounds, req.Width), cmap)
}

// AnimationRequest asks for the full time sequence as an animation.
type AnimationRequest struct {
	Bounds render.Bounds
	Width  int

	// Milliseconds between frames during playback.
	DelayMillis int
}

// Animation renders every time step, in order and on one shared color
// scale, into a self-contained HTML document.
func (v *Viewer) Animation(ctx context.Context, w io.Writer, req AnimationRequest) error {
	if err := req.Bounds.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	d, err := v.Dataset(ctx)
	if err != nil {
		return err
	}
	slices := allSlices(d)
	labels := d.Time.YearMonths()
	frames := make([]render.Frame, len(slices))
	for i, s := range slices {
		frames[i] = render.Frame{Slice: s, Title: labels[i]}
	}
	return render.Animation(w, frames, render.AnimationConfig{
		MapConfig:   v.mapConfig(d, req.Bounds, req.Width),
		DelayMillis: req.DelayMillis,
	})
}

// PointRequest asks for the SST value at a location and time step.
type PointRequest struct {
	Lat, Lon float64
	Index    int
}

// Validate checks if the request is valid
func (r *PointRequest) Validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if r.Lon < -360 || r.Lon > 360 {
		return fmt.Errorf("longitude must be between -360 and 360")
	}
	return nil
}

// PointResponse is the interpolated value at a location.
type PointResponse struct {
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Period  string   `json:"period"`
	Units   string   `json:"units"`
	Value   *float64 `json:"value"`
	Present bool     `json:"present"`
}

// Point bilinearly interpolates the SST at (lat, lon) for the time
// step at the given index. Value is null when any surrounding grid
// cell is absent, which usually means land.
func (v *Viewer) Point(ctx context.Context, req PointRequest) (*PointResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	d, err := v.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if req.Index < 0 || req.Index >= d.Time.Len() {
		return nil, fmt.Errorf("time index %d out of range [0, %d)", req.Index, d.Time.Len())
	}
	s := d.SST.TimeSlice(req.Index)
	val, ok, err := interp.SliceAt(s, req.Lon, req.Lat)
	if err != nil {
		return nil, fmt.Errorf("failed to interpolate at (%.4f, %.4f): %w", req.Lat, req.Lon, err)
	}
	resp := &PointResponse{
		Lat:     req.Lat,
		Lon:     req.Lon,
		Period:  d.Time.YearMonth(req.Index),
		Units:   d.Units,
		Present: ok,
	}
	if ok {
		resp.Value = &val
	}
	return resp, nil
}

func (v *Viewer) mapConfig(d *domain.Dataset, b render.Bounds, width int) render.MapConfig {
	return render.MapConfig{
		Bounds:    b,
		Width:     width,
		Coastline: v.coast,
		Label:     fmt.Sprintf("sst (%s)", d.Units),
	}
}

func allSlices(d *domain.Dataset) []*domain.Slice {
	slices := make([]*domain.Slice, d.Time.Len())
	for k := range slices {
		slices[k] = d.SST.TimeSlice(k)
	}
	return slices
}
