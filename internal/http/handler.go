package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanatlas/sstviz/internal/adapter/store/regions"
	"github.com/oceanatlas/sstviz/internal/domain"
	"github.com/oceanatlas/sstviz/internal/render"
	"github.com/oceanatlas/sstviz/internal/usecase"
)

// Handler handles HTTP requests for the SST viewer.
type Handler struct {
	viewer        *usecase.Viewer
	regionStore   *regions.Store
	defaultBounds render.Bounds
}

// NewHandler creates a new HTTP handler. regionStore may be nil when no
// region presets are configured; defaultBounds is used whenever a
// request names no region and no explicit bounds.
func NewHandler(viewer *usecase.Viewer, regionStore *regions.Store, defaultBounds render.Bounds) *Handler {
	return &Handler{
		viewer:        viewer,
		regionStore:   regionStore,
		defaultBounds: defaultBounds,
	}
}

// GetDataset handles GET /v1/dataset.
func (h *Handler) GetDataset(c *gin.Context) {
	summary, err := h.viewer.Summary(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRegions handles GET /v1/regions.
func (h *Handler) GetRegions(c *gin.Context) {
	if h.regionStore == nil {
		c.JSON(http.StatusOK, gin.H{"regions": []regions.Region{}})
		return
	}
	list, err := h.regionStore.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": list})
}

// GetMonthlyMap handles GET /v1/maps/monthly/:month.
func (h *Handler) GetMonthlyMap(c *gin.Context) {
	bounds, width, ok := h.viewParams(c)
	if !ok {
		return
	}
	req := usecase.MapRequest{
		Month:  c.Param("month"),
		Bounds: bounds,
		Width:  width,
	}

	var buf bytes.Buffer
	if err := h.viewer.MonthlyMap(c.Request.Context(), &buf, req); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GetFrame handles GET /v1/maps/frames/:index.
func (h *Handler) GetFrame(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid frame index: %v", err)})
		return
	}
	bounds, width, ok := h.viewParams(c)
	if !ok {
		return
	}
	req := usecase.FrameRequest{
		Index:  index,
		Bounds: bounds,
		Width:  width,
	}

	var buf bytes.Buffer
	if err := h.viewer.Frame(c.Request.Context(), &buf, req); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GetAnimation handles GET /v1/animation.
func (h *Handler) GetAnimation(c *gin.Context) {
	bounds, width, ok := h.viewParams(c)
	if !ok {
		return
	}
	req := usecase.AnimationRequest{
		Bounds: bounds,
		Width:  width,
	}
	if delayStr := c.Query("delay_ms"); delayStr != "" {
		delay, err := strconv.Atoi(delayStr)
		if err != nil || delay <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delay_ms must be a positive integer"})
			return
		}
		req.DelayMillis = delay
	}

	var buf bytes.Buffer
	if err := h.viewer.Animation(c.Request.Context(), &buf, req); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// GetPoint handles GET /v1/sst.
func (h *Handler) GetPoint(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon parameters are required"})
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}

	req := usecase.PointRequest{Lat: lat, Lon: lon}
	if timeStr := c.Query("time"); timeStr != "" {
		index, err := strconv.Atoi(timeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid time index: %v", err)})
			return
		}
		req.Index = index
	}

	resp, err := h.viewer.Point(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// viewParams resolves the bounds and width for a map request. Bounds
// come from a named region preset, explicit north/south/east/west
// parameters, or the configured default, in that order. On failure it
// writes the error response and returns ok=false.
func (h *Handler) viewParams(c *gin.Context) (render.Bounds, int, bool) {
	bounds := h.defaultBounds

	if name := c.Query("region"); name != "" {
		if h.regionStore == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no region presets configured"})
			return bounds, 0, false
		}
		r, err := h.regionStore.Get(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return bounds, 0, false
		}
		bounds = render.Bounds{North: r.North, South: r.South, East: r.East, West: r.West}
	} else if c.Query("north") != "" || c.Query("south") != "" ||
		c.Query("east") != "" || c.Query("west") != "" {
		edges := []struct {
			name string
			dst  *float64
		}{
			{"north", &bounds.North},
			{"south", &bounds.South},
			{"east", &bounds.East},
			{"west", &bounds.West},
		}
		for _, e := range edges {
			v, err := strconv.ParseFloat(c.Query(e.name), 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", e.name, err)})
				return bounds, 0, false
			}
			*e.dst = v
		}
	}

	width := 0
	if widthStr := c.Query("width"); widthStr != "" {
		w, err := strconv.Atoi(widthStr)
		if err != nil || w <= 0 || w > 4000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width must be an integer between 1 and 4000"})
			return bounds, 0, false
		}
		width = w
	}
	return bounds, width, true
}

// statusFor maps errors to HTTP status codes. Source problems are
// reported as bad gateway so clients can tell them from bad requests.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnknownVariable),
		errors.Is(err, domain.ErrMissingAttribute):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
