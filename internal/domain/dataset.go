package domain

import "fmt"

// Dataset ties together everything extracted from one source: the spatial
// grid, the time axis, the temperature field, and the metadata needed
// downstream. All members are read-only once extracted.
type Dataset struct {
	Grid     Grid
	Time     TimeAxis
	SST      *Field
	Units    string  // units attribute of the sst variable
	Sentinel float64 // raw missing-value sentinel from the source
	Source   string  // file path or remote URL, for display
}

// Validate checks the dimension invariants between grid, time axis, and
// field.
func (d *Dataset) Validate() error {
	if d.SST == nil {
		return fmt.Errorf("dataset has no sst field")
	}
	g := d.SST.Grid()
	if len(g.Lon) != len(d.Grid.Lon) {
		return fmt.Errorf("field lon count %d does not match grid lon count %d", len(g.Lon), len(d.Grid.Lon))
	}
	if len(g.Lat) != len(d.Grid.Lat) {
		return fmt.Errorf("field lat count %d does not match grid lat count %d", len(g.Lat), len(d.Grid.Lat))
	}
	if d.SST.Steps() != d.Time.Len() {
		return fmt.Errorf("field time count %d does not match time axis length %d", d.SST.Steps(), d.Time.Len())
	}
	return nil
}
