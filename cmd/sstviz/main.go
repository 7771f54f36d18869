// Package main provides the sstviz command-line tool. It loads an SST
// dataset from a local NetCDF file or the NOAA archive and renders
// maps, animations, summaries and point queries to local files or
// standard output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ctessum/geom"

	"github.com/oceanatlas/sstviz/internal/adapter/store"
	"github.com/oceanatlas/sstviz/internal/adapter/store/ersst"
	"github.com/oceanatlas/sstviz/internal/adapter/store/regions"
	"github.com/oceanatlas/sstviz/internal/render"
	"github.com/oceanatlas/sstviz/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Dataset selection.
	file := flag.String("file", "", "Path to a local ERSST NetCDF file")
	year := flag.Int("year", 0, "Archive year to fetch when -file is not set")
	month := flag.Int("month", 0, "Archive month (1-12) to fetch when -file is not set")
	cacheDir := flag.String("cache", "./data/cache", "Download cache directory")
	baseURL := flag.String("base-url", ersst.DefaultBaseURL, "Archive base URL")

	// Map area.
	coastline := flag.String("coastline", "", "Path to a coastline shapefile (optional)")
	dataDir := flag.String("data-dir", "./data", "Data directory with regions.csv")
	region := flag.String("region", "", "Named region preset from regions.csv")
	north := flag.Float64("north", 88, "Northern map bound in degrees")
	south := flag.Float64("south", -88, "Southern map bound in degrees")
	east := flag.Float64("east", 358, "Eastern map bound in degrees (0-360 east)")
	west := flag.Float64("west", 0, "Western map bound in degrees (0-360 east)")
	width := flag.Int("width", 0, "Map width in pixels (0 for default)")

	// Operations.
	mean := flag.String("mean", "", "Render the mean map for a calendar month, e.g. 05")
	frame := flag.Int("frame", -1, "Render a single time step by index")
	animate := flag.Bool("animate", false, "Render all time steps as an HTML animation")
	delayMs := flag.Int("delay-ms", 500, "Milliseconds between animation frames")
	lat := flag.Float64("lat", 0, "Latitude for a point query (with -lon)")
	lon := flag.Float64("lon", 0, "Longitude for a point query (with -lat)")
	timeIdx := flag.Int("time", 0, "Time step index for a point query")
	point := flag.Bool("point", false, "Query the value at -lat/-lon")
	out := flag.String("out", "", "Output path (default sst.png or sst.html)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sstviz version %s\n", version)
		return
	}

	loader, err := makeLoader(*file, *year, *month, *baseURL, *cacheDir)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var coast []geom.Polygon
	if *coastline != "" {
		coast, err = render.LoadCoastline(*coastline)
		if err != nil {
			log.Fatalf("Failed to load coastline: %v", err)
		}
		log.Printf("Coastline loaded (%d polygons)", len(coast))
	}

	bounds := render.Bounds{North: *north, South: *south, East: *east, West: *west}
	if *region != "" {
		r, err := regions.NewStore(*dataDir).Get(*region)
		if err != nil {
			log.Fatalf("Failed to resolve region: %v", err)
		}
		bounds = render.Bounds{North: r.North, South: r.South, East: r.East, West: r.West}
		log.Printf("Region %s: N=%.1f S=%.1f E=%.1f W=%.1f",
			r.Name, r.North, r.South, r.East, r.West)
	}

	viewer := usecase.NewViewer(loader, coast)
	ctx := context.Background()

	switch {
	case *point:
		err = queryPoint(ctx, viewer, *lat, *lon, *timeIdx)
	case *animate:
		err = writeAnimation(ctx, viewer, bounds, *width, *delayMs, orDefault(*out, "sst.html"))
	case *mean != "":
		err = writeMonthlyMap(ctx, viewer, *mean, bounds, *width, orDefault(*out, "sst.png"))
	case *frame >= 0:
		err = writeFrame(ctx, viewer, *frame, bounds, *width, orDefault(*out, "sst.png"))
	default:
		err = printSummary(ctx, viewer)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// makeLoader picks the dataset source: a local file when given,
// otherwise the remote archive.
func makeLoader(file string, year, month int, baseURL, cacheDir string) (store.DatasetLoader, error) {
	if file != "" {
		log.Printf("Dataset: local file %s", file)
		return ersst.NewFileStore(file), nil
	}
	if year > 0 && month > 0 {
		log.Printf("Dataset: ERSST archive %04d-%02d (cache: %s)", year, month, cacheDir)
		return ersst.NewRemoteStore(baseURL, cacheDir, year, month), nil
	}
	return nil, fmt.Errorf("no dataset: set -file or both -year and -month")
}

func printSummary(ctx context.Context, viewer *usecase.Viewer) error {
	summary, err := viewer.Summary(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func queryPoint(ctx context.Context, viewer *usecase.Viewer, lat, lon float64, index int) error {
	resp, err := viewer.Point(ctx, usecase.PointRequest{Lat: lat, Lon: lon, Index: index})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func writeMonthlyMap(ctx context.Context, viewer *usecase.Viewer, month string,
	bounds render.Bounds, width int, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer func() { _ = f.Close() }()

	req := usecase.MapRequest{Month: month, Bounds: bounds, Width: width}
	if err := viewer.MonthlyMap(ctx, f, req); err != nil {
		return err
	}
	log.Printf("Wrote monthly mean map for %s to %s", month, out)
	return nil
}

func writeFrame(ctx context.Context, viewer *usecase.Viewer, index int,
	bounds render.Bounds, width int, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer func() { _ = f.Close() }()

	req := usecase.FrameRequest{Index: index, Bounds: bounds, Width: width}
	if err := viewer.Frame(ctx, f, req); err != nil {
		return err
	}
	log.Printf("Wrote frame %d to %s", index, out)
	return nil
}

func writeAnimation(ctx context.Context, viewer *usecase.Viewer,
	bounds render.Bounds, width, delayMs int, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer func() { _ = f.Close() }()

	req := usecase.AnimationRequest{Bounds: bounds, Width: width, DelayMillis: delayMs}
	if err := viewer.Animation(ctx, f, req); err != nil {
		return err
	}
	log.Printf("Wrote animation to %s", out)
	return nil
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
