package ersst

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/oceanatlas/sstviz/internal/domain"
)

// DefaultBaseURL is the public ERSST v5 monthly archive.
const DefaultBaseURL = "https://www.ncei.noaa.gov/pub/data/cmb/ersst/v5/netcdf"

const fetchTimeout = 60 * time.Second

// RemoteStore fetches one monthly ERSST file by (year, month) from an
// HTTP archive, caches it in a local directory, and loads it like a file
// store. The blocking download happens once, at Load time.
type RemoteStore struct {
	baseURL  string
	cacheDir string
	year     int
	month    int
	config   FileConfig
	client   *http.Client
}

// NewRemoteStore creates a store for the dataset of a given year and
// month. Downloads are cached under cacheDir.
func NewRemoteStore(baseURL, cacheDir string, year, month int) *RemoteStore {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RemoteStore{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		year:     year,
		month:    month,
		config:   DefaultConfig(),
		client:   &http.Client{Timeout: fetchTimeout},
	}
}

// Filename returns the archive filename for the store's period, e.g.
// "ersst.v5.185405.nc".
func (s *RemoteStore) Filename() string {
	return fmt.Sprintf("ersst.v5.%04d%02d.nc", s.year, s.month)
}

// Load downloads the file if it is not cached yet and extracts the
// dataset from it.
func (s *RemoteStore) Load(ctx context.Context) (*domain.Dataset, error) {
	if s.month < 1 || s.month > 12 {
		return nil, fmt.Errorf("month must be in 1..12, got %d", s.month)
	}

	path := filepath.Join(s.cacheDir, s.Filename())
	if _, err := os.Stat(path); err != nil {
		if err := s.download(ctx, path); err != nil {
			return nil, err
		}
	}
	return NewFileStoreWithConfig(path, s.config).Load(ctx)
}

func (s *RemoteStore) download(ctx context.Context, path string) error {
	url := s.baseURL + "/" + s.Filename()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %v", domain.ErrSourceUnavailable, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: fetch %s: status %d", domain.ErrSourceUnavailable, url, resp.StatusCode)
	}

	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Download to a temp name first so a failed transfer never leaves a
	// half-written file behind as a cache hit.
	tmp, err := os.CreateTemp(s.cacheDir, s.Filename()+".part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: fetch %s: %v", domain.ErrSourceUnavailable, url, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("move into cache: %w", err)
	}
	return nil
}
