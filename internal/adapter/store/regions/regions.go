// Package regions provides CSV-based named map-region presets.
package regions

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Region is a named geographic bounding box for map rendering. Longitudes
// follow the 0-360 east convention of the datasets.
type Region struct {
	Name  string
	North float64
	South float64
	East  float64
	West  float64
}

// Store provides access to region presets in a data directory.
type Store struct {
	dataDir string
}

// NewStore creates a new CSV-based region store.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// regionsFile is the preset file name inside the data directory.
const regionsFile = "regions.csv"

// Load reads every region preset. The file format is a header
// "name,north,south,east,west" followed by one row per region.
func (s *Store) Load() ([]Region, error) {
	filename := filepath.Join(s.dataDir, regionsFile)

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open regions file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	expectedHeaders := []string{"name", "north", "south", "east", "west"}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid CSV header: expected %v, got %v", expectedHeaders, header)
	}
	for i, h := range header {
		if h != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid CSV header: expected column %d to be %s, got %s", i, expectedHeaders[i], h)
		}
	}

	regions := make([]Region, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) != 5 {
			return nil, fmt.Errorf("invalid CSV record: expected 5 columns, got %d", len(record))
		}

		r := Region{Name: strings.TrimSpace(record[0])}
		bounds := []struct {
			field string
			dst   *float64
		}{
			{"north", &r.North},
			{"south", &r.South},
			{"east", &r.East},
			{"west", &r.West},
		}
		for i, b := range bounds {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s for region %s: %w", b.field, r.Name, err)
			}
			*b.dst = v
		}
		if r.North <= r.South {
			return nil, fmt.Errorf("region %s: north must be > south", r.Name)
		}
		if r.East <= r.West {
			return nil, fmt.Errorf("region %s: east must be > west", r.Name)
		}

		regions = append(regions, r)
	}

	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions found in %s", filename)
	}
	return regions, nil
}

// Get returns the region with the given name (case-insensitive).
func (s *Store) Get(name string) (Region, error) {
	regions, err := s.Load()
	if err != nil {
		return Region{}, err
	}
	for _, r := range regions {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("unknown region: %s", name)
}
