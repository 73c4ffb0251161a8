package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openintel/casegraph/internal/application/intel"
)

// IntelHandler serves the case-correlation and risk-scoring endpoints.
type IntelHandler struct {
	service intel.Service
}

func NewIntelHandler(service intel.Service) *IntelHandler {
	return &IntelHandler{service: service}
}

func (h *IntelHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/cases/:id/related", h.RelatedCases)
	api.GET("/cases/:id/behavioral-similar", h.BehavioralSimilar)
	api.GET("/offenders/repeat", h.RepeatOffenders)
	api.GET("/patterns/correlation", h.PatternCorrelation)
	api.GET("/persons/:id/risk-score", h.RiskScore)
}

func (h *IntelHandler) RelatedCases(c *gin.Context) {
	radius, err := queryFloat(c, "radius_km")
	if err != nil {
		respondError(c, err)
		return
	}
	days, err := queryInt(c, "days_range")
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.FindRelatedCases(c.Request.Context(), intel.RelatedCasesInput{
		CaseID:    c.Param("id"),
		RadiusKM:  radius,
		DaysRange: days,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *IntelHandler) RepeatOffenders(c *gin.Context) {
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
	minCases, err := queryInt(c, "min_cases")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.FindRepeatOffenders(c.Request.Context(), intel.RepeatOffendersInput{
		Tags:     queryTags(c, "tags"),
		From:     from,
		To:       to,
		MinCases: minCases,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *IntelHandler) PatternCorrelation(c *gin.Context) {
	minOccurrence, err := queryInt(c, "min_occurrence")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.AnalyzePatternCorrelation(c.Request.Context(), intel.PatternCorrelationInput{
		CaseID:        c.Query("case_id"),
		MinOccurrence: minOccurrence,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *IntelHandler) BehavioralSimilar(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.FindBehavioralSimilar(c.Request.Context(), intel.BehaviorSimilarityInput{
		CaseID: c.Param("id"),
		Limit:  limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *IntelHandler) RiskScore(c *gin.Context) {
	result, err := h.service.ScorePersonRisk(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
