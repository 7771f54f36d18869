// Package ersst provides access to ERSST-style gridded sea-surface
// temperature NetCDF datasets, from local files or a remote archive.
package ersst

import (
	"context"
	"fmt"
	"os"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/oceanatlas/sstviz/internal/domain"
)

// FileConfig defines the expected NetCDF variable layout.
type FileConfig struct {
	LatVarName  string // E.g., "lat", "latitude".
	LonVarName  string // E.g., "lon", "longitude".
	TimeVarName string // E.g., "time".
	SSTVarName  string // E.g., "sst".
}

// DefaultConfig returns the variable names used by the ERSST archive.
func DefaultConfig() FileConfig {
	return FileConfig{
		LatVarName:  "lat",
		LonVarName:  "lon",
		TimeVarName: "time",
		SSTVarName:  "sst",
	}
}

// FileStore loads a dataset from a local NetCDF file.
type FileStore struct {
	path   string
	config FileConfig
}

// NewFileStore creates a store for a local NetCDF file using the default
// ERSST variable layout.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, config: DefaultConfig()}
}

// NewFileStoreWithConfig creates a store with a custom variable layout.
func NewFileStoreWithConfig(path string, config FileConfig) *FileStore {
	return &FileStore{path: path, config: config}
}

// Load opens the file, extracts coordinates, time axis, metadata, and the
// temperature field, and closes the handle before returning.
func (s *FileStore) Load(_ context.Context) (*domain.Dataset, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.path, err)
	}
	nc, err := netcdf.OpenFile(s.path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrSourceUnavailable, s.path, err)
	}
	defer func() { _ = nc.Close() }()

	return loadDataset(nc, s.path, s.config)
}

// loadDataset extracts a complete dataset from an open NetCDF handle.
func loadDataset(nc netcdf.Dataset, source string, config FileConfig) (*domain.Dataset, error) {
	lons, err := readCoord(nc, config.LonVarName)
	if err != nil {
		return nil, err
	}
	lats, err := readCoord(nc, config.LatVarName)
	if err != nil {
		return nil, err
	}
	offsets, err := readCoord(nc, config.TimeVarName)
	if err != nil {
		return nil, err
	}
	grid := domain.Grid{Lon: lons, Lat: lats}
	axis := domain.NewTimeAxis(offsets)

	sstVar, err := Variable(nc, config.SSTVarName)
	if err != nil {
		return nil, err
	}

	sentinel, err := FillValue(sstVar)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", config.SSTVarName, err)
	}
	// Units are reported but not required by every archive file.
	units, err := AttrString(sstVar, "units")
	if err != nil {
		units = ""
	}

	field, err := readField(sstVar, grid, axis.Len(), sentinel, config)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", config.SSTVarName, err)
	}

	d := &domain.Dataset{
		Grid:     grid,
		Time:     axis,
		SST:      field,
		Units:    units,
		Sentinel: sentinel,
		Source:   source,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Variable looks a variable up by name. A name not present in the source
// fails with domain.ErrUnknownVariable.
func Variable(nc netcdf.Dataset, name string) (netcdf.Var, error) {
	v, err := nc.Var(name)
	if err != nil {
		return netcdf.Var{}, fmt.Errorf("%w: %q", domain.ErrUnknownVariable, name)
	}
	return v, nil
}

// AttrFloat returns a numeric attribute of a variable, widening from the
// stored type. An absent attribute fails with domain.ErrMissingAttribute.
func AttrFloat(v netcdf.Var, name string) (float64, error) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrMissingAttribute, name)
	}

	buf64 := make([]float64, n)
	if err := a.ReadFloat64s(buf64); err == nil {
		return buf64[0], nil
	}
	buf32 := make([]float32, n)
	if err := a.ReadFloat32s(buf32); err == nil {
		return float64(buf32[0]), nil
	}
	bufi := make([]int32, n)
	if err := a.ReadInt32s(bufi); err == nil {
		return float64(bufi[0]), nil
	}
	bufs := make([]int16, n)
	if err := a.ReadInt16s(bufs); err == nil {
		return float64(bufs[0]), nil
	}
	return 0, fmt.Errorf("%w: %q (unreadable type)", domain.ErrMissingAttribute, name)
}

// AttrString returns a text attribute of a variable. An absent attribute
// fails with domain.ErrMissingAttribute.
func AttrString(v netcdf.Var, name string) (string, error) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", fmt.Errorf("%w: %q", domain.ErrMissingAttribute, name)
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", fmt.Errorf("%w: %q (unreadable type)", domain.ErrMissingAttribute, name)
	}
	return string(buf), nil
}

// FillValue returns the raw missing-value sentinel of a variable, trying
// missing_value first and _FillValue second.
func FillValue(v netcdf.Var) (float64, error) {
	for _, name := range []string{"missing_value", "_FillValue"} {
		if fv, err := AttrFloat(v, name); err == nil {
			return fv, nil
		}
	}
	return 0, fmt.Errorf("%w: missing_value/_FillValue", domain.ErrMissingAttribute)
}

// readCoord reads a 1-D coordinate variable as float64.
func readCoord(nc netcdf.Dataset, name string) ([]float64, error) {
	v, err := Variable(nc, name)
	if err != nil {
		return nil, err
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("variable %s: dims: %v", name, err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("variable %s: expected 1D coordinate, got %dD", name, len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, fmt.Errorf("variable %s: dim length: %v", name, err)
	}
	return readAsFloat64(v, int(length))
}

// readAsFloat64 reads total values of a variable, widening from the
// stored type.
func readAsFloat64(v netcdf.Var, total int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %v", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, total)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}

// dimension roles within the sst variable.
const (
	roleLon = iota
	roleLat
	roleTime
	roleSingleton // e.g. ERSST's zlev depth dimension of length 1
)

// readField reads the 3-D temperature variable, whatever order its
// dimensions are stored in, normalizes to (lon, lat, time), applies
// scale_factor/add_offset for packed data, and converts every
// sentinel-valued cell to an absent marker.
func readField(v netcdf.Var, grid domain.Grid, steps int, sentinel float64, config FileConfig) (*domain.Field, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("dims: %v", err)
	}
	if len(dims) < 3 {
		return nil, fmt.Errorf("expected at least 3 dimensions, got %d", len(dims))
	}

	roles := make([]int, len(dims))
	lens := make([]int, len(dims))
	for i, d := range dims {
		name, err := d.Name()
		if err != nil {
			return nil, fmt.Errorf("dim %d name: %v", i, err)
		}
		length, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("dim %s length: %v", name, err)
		}
		lens[i] = int(length)
		switch name {
		case config.LonVarName:
			roles[i] = roleLon
		case config.LatVarName:
			roles[i] = roleLat
		case config.TimeVarName:
			roles[i] = roleTime
		default:
			if length != 1 {
				return nil, fmt.Errorf("unexpected dimension %s of length %d", name, length)
			}
			roles[i] = roleSingleton
		}
	}
	for _, want := range []struct {
		role int
		n    int
		name string
	}{
		{roleLon, len(grid.Lon), "lon"},
		{roleLat, len(grid.Lat), "lat"},
		{roleTime, steps, "time"},
	} {
		found := false
		for i, r := range roles {
			if r == want.role {
				found = true
				if lens[i] != want.n {
					return nil, fmt.Errorf("%s dimension length %d does not match coordinate length %d", want.name, lens[i], want.n)
				}
			}
		}
		if !found {
			return nil, fmt.Errorf("no %s dimension on the data variable", want.name)
		}
	}

	total := 1
	for _, n := range lens {
		total *= n
	}
	flat, err := readAsFloat64(v, total)
	if err != nil {
		return nil, err
	}

	// Packed archives store int16 plus scale/offset. The sentinel is
	// compared against the raw stored value, before unpacking.
	scale, err := AttrFloat(v, "scale_factor")
	if err != nil {
		scale = 1
	}
	offset, err := AttrFloat(v, "add_offset")
	if err != nil {
		offset = 0
	}

	field := domain.NewField(grid, steps)
	idx := make([]int, len(dims))
	for flatIdx, raw := range flat {
		// Decompose the row-major flat index into per-dimension indices.
		rem := flatIdx
		for d := len(dims) - 1; d >= 0; d-- {
			idx[d] = rem % lens[d]
			rem /= lens[d]
		}
		if raw == sentinel {
			continue // absent marker
		}
		var i, j, k int
		for d, r := range roles {
			switch r {
			case roleLon:
				i = idx[d]
			case roleLat:
				j = idx[d]
			case roleTime:
				k = idx[d]
			}
		}
		field.Set(i, j, k, raw*scale+offset)
	}
	return field, nil
}
