// Package main provides the SST viewer HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ctessum/geom"

	"github.com/oceanatlas/sstviz/internal/adapter/store"
	"github.com/oceanatlas/sstviz/internal/adapter/store/ersst"
	"github.com/oceanatlas/sstviz/internal/adapter/store/regions"
	httpHandler "github.com/oceanatlas/sstviz/internal/http"
	"github.com/oceanatlas/sstviz/internal/render"
	"github.com/oceanatlas/sstviz/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("sstviz server version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	dataDir := getEnv("DATA_DIR", "./data")
	sstFile := getEnv("SST_FILE", "")
	yearStr := getEnv("SST_YEAR", "")
	monthStr := getEnv("SST_MONTH", "")
	cacheDir := getEnv("SST_CACHE_DIR", "./data/cache")
	baseURL := getEnv("SST_BASE_URL", ersst.DefaultBaseURL)
	coastlinePath := getEnv("COASTLINE_SHP", "")

	log.Printf("Starting SST viewer server...")
	log.Printf("Port: %s", port)
	log.Printf("Data directory: %s", dataDir)

	// Initialize the dataset loader.
	var loader store.DatasetLoader
	switch {
	case sstFile != "":
		log.Printf("Dataset: local file %s", sstFile)
		loader = ersst.NewFileStore(sstFile)
	case yearStr != "" && monthStr != "":
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			log.Fatalf("Invalid SST_YEAR: %v", err)
		}
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			log.Fatalf("Invalid SST_MONTH: %v", err)
		}
		log.Printf("Dataset: ERSST archive %04d-%02d (cache: %s)", year, month, cacheDir)
		loader = ersst.NewRemoteStore(baseURL, cacheDir, year, month)
	default:
		log.Fatalf("No dataset configured: set SST_FILE or SST_YEAR and SST_MONTH")
	}

	// Load the coastline overlay (optional).
	var coast []geom.Polygon
	if coastlinePath != "" {
		log.Printf("Loading coastline from %s", coastlinePath)
		var err error
		coast, err = render.LoadCoastline(coastlinePath)
		if err != nil {
			log.Fatalf("Failed to load coastline: %v", err)
		}
		log.Printf("Coastline loaded (%d polygons)", len(coast))
	} else {
		log.Printf("Coastline overlay disabled (COASTLINE_SHP not set)")
	}

	// Initialize the region preset store.
	regionStore := regions.NewStore(dataDir)
	if _, err := regionStore.Load(); err != nil {
		log.Printf("Region presets disabled: %v", err)
		regionStore = nil
	}

	defaultBounds := boundsFromEnv()
	log.Printf("Default bounds: N=%.1f S=%.1f E=%.1f W=%.1f",
		defaultBounds.North, defaultBounds.South, defaultBounds.East, defaultBounds.West)

	// Initialize use case and router.
	viewer := usecase.NewViewer(loader, coast)
	router := httpHandler.SetupRouter(httpHandler.NewHandler(viewer, regionStore, defaultBounds))

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/dataset")
	log.Printf("  - GET /v1/regions")
	log.Printf("  - GET /v1/sst")
	log.Printf("  - GET /v1/maps/monthly/:month")
	log.Printf("  - GET /v1/maps/frames/:index")
	log.Printf("  - GET /v1/animation")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// boundsFromEnv reads the default map bounds, falling back to the
// whole ERSST grid.
func boundsFromEnv() render.Bounds {
	b := render.Bounds{North: 88, South: -88, East: 358, West: 0}
	edges := []struct {
		key string
		dst *float64
	}{
		{"MAP_NORTH", &b.North},
		{"MAP_SOUTH", &b.South},
		{"MAP_EAST", &b.East},
		{"MAP_WEST", &b.West},
	}
	for _, e := range edges {
		if v := os.Getenv(e.key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				log.Fatalf("Invalid %s: %v", e.key, err)
			}
			*e.dst = f
		}
	}
	return b
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("SST Viewer Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_DIR                Data directory with regions.csv (default: ./data)")
	fmt.Println("  SST_FILE                Path to a local ERSST NetCDF file")
	fmt.Println("  SST_YEAR, SST_MONTH     Archive period to fetch when SST_FILE is not set")
	fmt.Println("  SST_CACHE_DIR           Download cache directory (default: ./data/cache)")
	fmt.Println("  SST_BASE_URL            Archive base URL (default: NOAA ERSST v5)")
	fmt.Println("  COASTLINE_SHP           Path to a coastline shapefile (optional)")
	fmt.Println("  MAP_NORTH, MAP_SOUTH    Default map bounds in degrees")
	fmt.Println("  MAP_EAST, MAP_WEST      (longitudes use 0-360 east)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Serve a local file")
	fmt.Println("  SST_FILE=./data/ersst.v5.185401.nc server")
	fmt.Println()
	fmt.Println("  # Fetch a period from the NOAA archive")
	fmt.Println("  SST_YEAR=1854 SST_MONTH=1 server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /v1/dataset                Dataset summary and sentinel audit")
	fmt.Println("  GET /v1/regions                Region presets")
	fmt.Println("  GET /v1/sst                    Interpolated value at lat/lon")
	fmt.Println("  GET /v1/maps/monthly/:month    Monthly mean map (PNG)")
	fmt.Println("  GET /v1/maps/frames/:index     Single time step (PNG)")
	fmt.Println("  GET /v1/animation              All time steps (HTML)")
	fmt.Println()
}
