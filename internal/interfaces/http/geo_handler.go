package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openintel/casegraph/internal/application/geo"
	domgeo "github.com/openintel/casegraph/internal/domain/geo"
)

// GeoHandler serves the heatmap and cluster endpoints.
type GeoHandler struct {
	service geo.Service
}

func NewGeoHandler(service geo.Service) *GeoHandler {
	return &GeoHandler{service: service}
}

func (h *GeoHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/geo/heatmap", h.Heatmap)
	api.GET("/geo/clusters", h.Clusters)
}

func (h *GeoHandler) Heatmap(c *gin.Context) {
	minLat, err := requireFloat(c, "min_lat")
	if err != nil {
		respondError(c, err)
		return
	}
	minLng, err := requireFloat(c, "min_lng")
	if err != nil {
		respondError(c, err)
		return
	}
	maxLat, err := requireFloat(c, "max_lat")
	if err != nil {
		respondError(c, err)
		return
	}
	maxLng, err := requireFloat(c, "max_lng")
	if err != nil {
		respondError(c, err)
		return
	}
	cellSize, err := queryFloat(c, "cell_size_meters")
	if err != nil {
		respondError(c, err)
		return
	}
	from, err := queryTime(c, "from_date")
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := queryTime(c, "to_date")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.BuildHeatmap(c.Request.Context(), geo.HeatmapInput{
		Bounds: domgeo.Bounds{
			MinLat: minLat,
			MinLng: minLng,
			MaxLat: maxLat,
			MaxLng: maxLng,
		},
		CellSizeMeters: cellSize,
		From:           from,
		To:             to,
		Tags:           queryTags(c, "tags"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GeoHandler) Clusters(c *gin.Context) {
	radius, err := queryFloat(c, "radius_meters")
	if err != nil {
		respondError(c, err)
		return
	}
	minPoints, err := queryInt(c, "min_points")
	if err != nil {
		respondError(c, err)
		return
	}
	from, err := queryTime(c, "from_date")
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := queryTime(c, "to_date")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.DetectClusters(c.Request.Context(), geo.ClusterInput{
		RadiusMeters: radius,
		MinPoints:    minPoints,
		From:         from,
		To:           to,
		Tags:         queryTags(c, "tags"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
