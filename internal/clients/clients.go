// Package clients maintains the client directory: the roster of accounts the
// dashboard tracks, each carrying its current engagement parameters and the
// scores derived from them.
package clients

import (
	"context"
	"errors"
	"time"

	"github.com/pulsehq/clientpulse/internal/simulation"
)

var (
	// ErrClientNotFound is returned when a client ID has no entry.
	ErrClientNotFound = errors.New("client not found")
)

// Segment buckets clients by contract size.
type Segment string

const (
	SegmentEnterprise Segment = "enterprise"
	SegmentMidMarket  Segment = "midmarket"
	SegmentSMB        Segment = "smb"
)

// Client is one tracked account. Result is always derived from Params by the
// simulation engine, never set directly.
type Client struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Industry  string            `json:"industry"`
	Segment   Segment           `json:"segment"`
	ARR       float64           `json:"arr"`
	CSM       string            `json:"csm"`
	Params    simulation.Params `json:"params"`
	Result    simulation.Result `json:"result"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Query filters a directory listing.
type Query struct {
	Segment   Segment
	RiskLevel simulation.RiskLevel
	Industry  string
	Limit     int
	Offset    int
}

// PortfolioStats aggregates the directory for the dashboard overview.
type PortfolioStats struct {
	TotalClients    int                          `json:"totalClients"`
	TotalARR        float64                      `json:"totalArr"`
	AtRisk          int                          `json:"atRisk"`
	ByRiskLevel     map[simulation.RiskLevel]int `json:"byRiskLevel"`
	AvgChurnRisk    float64                      `json:"avgChurnRisk"`
	AvgHealthScore  float64                      `json:"avgHealthScore"`
	AvgRetention    float64                      `json:"avgRetention"`
	AvgSatisfaction float64                      `json:"avgSatisfaction"`
}

// Store is the client directory storage interface.
type Store interface {
	List(ctx context.Context, query Query) ([]*Client, error)
	Get(ctx context.Context, id string) (*Client, error)
	UpdateParams(ctx context.Context, id string, params simulation.Params) (*Client, error)
	Stats(ctx context.Context) (*PortfolioStats, error)
}
