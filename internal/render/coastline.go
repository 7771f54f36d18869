// Package render draws color-mapped maps of gridded SST slices, with
// optional coastline overlays, and assembles animation artifacts.
package render

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
)

// LoadCoastline reads all polygon features from a shapefile. Longitudes
// are kept as stored; most coastline shapefiles use the -180..180
// convention.
func LoadCoastline(filename string) ([]geom.Polygon, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open coastline shapefile: %w", err)
	}
	defer d.Close()

	var coast []geom.Polygon
	for {
		var o struct {
			geom.Geom
		}
		if !d.DecodeRow(&o) {
			break
		}
		switch g := o.Geom.(type) {
		case geom.Polygon:
			coast = append(coast, g)
		case geom.MultiPolygon:
			coast = append(coast, g...)
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("failed to decode coastline shapefile: %w", err)
	}
	return coast, nil
}

// ClipCoastline restricts coastline polygons to the given bounding box.
// Polygons stored with -180..180 longitudes are also tried shifted east
// by 360 degrees so they line up with 0-360 map bounds.
func ClipCoastline(coast []geom.Polygon, b Bounds) []geom.Polygon {
	rect := boundsRect(b)
	var out []geom.Polygon
	for _, p := range coast {
		for _, q := range []geom.Polygon{p, shiftLon(p, 360)} {
			if c, ok := q.Intersection(rect).(geom.Polygon); ok && len(c) > 0 {
				out = append(out, c)
			}
		}
	}
	return out
}

func boundsRect(b Bounds) geom.Polygon {
	return geom.Polygon{{
		{X: b.West, Y: b.South},
		{X: b.East, Y: b.South},
		{X: b.East, Y: b.North},
		{X: b.West, Y: b.North},
		{X: b.West, Y: b.South},
	}}
}

func shiftLon(p geom.Polygon, by float64) geom.Polygon {
	out := make(geom.Polygon, len(p))
	for i, ring := range p {
		r := make([]geom.Point, len(ring))
		for j, pt := range ring {
			r[j] = geom.Point{X: pt.X + by, Y: pt.Y}
		}
		out[i] = r
	}
	return out
}
