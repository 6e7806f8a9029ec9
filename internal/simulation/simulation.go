// Package simulation implements the what-if client-health simulator.
//
// A session holds one vector of tunable service parameters and the derived
// health metrics computed from it. Every parameter change recomputes the full
// result synchronously, so the stored result always reflects the complete
// current parameter vector.
package simulation

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("simulation: session not found")
	ErrEmptyPatch      = errors.New("simulation: no parameters in patch")
)

// RiskLevel buckets a churn-risk score into a categorical severity.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Valid ranges for each tunable parameter. Input controls enforce these, and
// the engine clamps defensively before computing.
const (
	MinResponseTime = 1.0 // hours
	MaxResponseTime = 72.0

	MinSupportScore = 40.0 // 0-100 scale
	MaxSupportScore = 100.0

	MinEscalationRate = 0.0 // percent
	MaxEscalationRate = 50.0

	MinCommunicationFreq = 0.5 // touchpoints per week
	MaxCommunicationFreq = 5.0

	MinIssueResolution = 50.0 // percent
	MaxIssueResolution = 100.0
)

// Bounds for each derived metric. Computed values outside these are clamped.
const (
	MinChurnRisk = 5.0
	MaxChurnRisk = 95.0

	MinRetentionRate = 60.0
	MaxRetentionRate = 98.0

	MinHealthScore = 30.0
	MaxHealthScore = 100.0

	MinSatisfactionScore = 40.0
	MaxSatisfactionScore = 100.0
)

// Params is the vector of tunable service-quality inputs.
type Params struct {
	ResponseTime      float64 `json:"responseTime"`      // avg first-response time, hours
	SupportScore      float64 `json:"supportScore"`      // support quality, 0-100
	EscalationRate    float64 `json:"escalationRate"`    // tickets escalated, percent
	CommunicationFreq float64 `json:"communicationFreq"` // touchpoints per week
	IssueResolution   float64 `json:"issueResolution"`   // issues resolved, percent
}

// DefaultParams returns the parameter vector every new session starts from.
func DefaultParams() Params {
	return Params{
		ResponseTime:      24,
		SupportScore:      75,
		EscalationRate:    15,
		CommunicationFreq: 2,
		IssueResolution:   85,
	}
}

// Clamped returns a copy with every field forced into its valid range.
// In-range values, including exact boundaries, pass through unchanged.
func (p Params) Clamped() Params {
	return Params{
		ResponseTime:      clamp(p.ResponseTime, MinResponseTime, MaxResponseTime),
		SupportScore:      clamp(p.SupportScore, MinSupportScore, MaxSupportScore),
		EscalationRate:    clamp(p.EscalationRate, MinEscalationRate, MaxEscalationRate),
		CommunicationFreq: clamp(p.CommunicationFreq, MinCommunicationFreq, MaxCommunicationFreq),
		IssueResolution:   clamp(p.IssueResolution, MinIssueResolution, MaxIssueResolution),
	}
}

// Result is the vector of derived health metrics. All fields are computed by
// the engine and never set directly.
type Result struct {
	ChurnRisk         float64   `json:"churnRisk"`         // percent, 5-95
	RetentionRate     float64   `json:"retentionRate"`     // percent, 60-98
	HealthScore       float64   `json:"healthScore"`       // 0-100 scale
	SatisfactionScore float64   `json:"satisfactionScore"` // 0-100 scale
	RiskLevel         RiskLevel `json:"riskLevel"`
}

// ParamPatch carries a partial parameter update. Nil fields are left
// untouched; the whole patch is applied as one gesture with one recompute.
type ParamPatch struct {
	ResponseTime      *float64 `json:"responseTime"`
	SupportScore      *float64 `json:"supportScore"`
	EscalationRate    *float64 `json:"escalationRate"`
	CommunicationFreq *float64 `json:"communicationFreq"`
	IssueResolution   *float64 `json:"issueResolution"`
}

// IsEmpty reports whether the patch carries no fields.
func (p ParamPatch) IsEmpty() bool {
	return p.ResponseTime == nil &&
		p.SupportScore == nil &&
		p.EscalationRate == nil &&
		p.CommunicationFreq == nil &&
		p.IssueResolution == nil
}

func (p ParamPatch) apply(params *Params) {
	if p.ResponseTime != nil {
		params.ResponseTime = *p.ResponseTime
	}
	if p.SupportScore != nil {
		params.SupportScore = *p.SupportScore
	}
	if p.EscalationRate != nil {
		params.EscalationRate = *p.EscalationRate
	}
	if p.CommunicationFreq != nil {
		params.CommunicationFreq = *p.CommunicationFreq
	}
	if p.IssueResolution != nil {
		params.IssueResolution = *p.IssueResolution
	}
}

// Session is one live simulator: a parameter vector plus its derived result.
type Session struct {
	ID        string    `json:"id"`
	Params    Params    `json:"params"`
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists simulation sessions for the lifetime of the process.
type Store interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Observer is notified with the full updated parameter vector after each
// recomputation. Observers receive the inputs, not the derived result, so
// they can do their own bookkeeping independent of the engine.
type Observer func(sessionID string, params Params)

// EventEmitter receives the refreshed session snapshot after each
// recomputation, for pushing to display surfaces.
type EventEmitter interface {
	SimulationUpdated(session *Session)
}
