package simulation

import "math"

// Baseline metric values before any parameter adjustment is applied.
const (
	baseChurnRisk         = 30.0
	baseRetentionRate     = 85.0
	baseHealthScore       = 70.0
	baseSatisfactionScore = 70.0
)

// metricWeights is one parameter's additive weight on each derived metric.
type metricWeights struct {
	churn        float64
	retention    float64
	health       float64
	satisfaction float64
}

// Fixed heuristic scoring model. These are literal constants on purpose:
// the simulator must be exactly reproducible, never configured or learned.
var (
	responseTimeWeights      = metricWeights{churn: -15, retention: 10, health: 15, satisfaction: 12}
	supportScoreWeights      = metricWeights{churn: -20, retention: 12, health: 20, satisfaction: 15}
	escalationRateWeights    = metricWeights{churn: -10, retention: 8, health: 12, satisfaction: 10}
	communicationFreqWeights = metricWeights{churn: -8, retention: 6, health: 10, satisfaction: 8}
	issueResolutionWeights   = metricWeights{churn: -25, retention: 15, health: 25, satisfaction: 20}
)

// Compute derives the health metrics for a parameter vector.
//
// It is a total, pure function: identical input always yields identical
// output, with no side effects. Out-of-range inputs are clamped into range
// first; the five normalized impact terms (each roughly 0-1, higher is more
// favorable) are then applied with their fixed weights, and each output is
// clamped to its declared bound and rounded to one decimal.
func Compute(p Params) Result {
	p = p.Clamped()

	adjustments := []struct {
		impact float64
		w      metricWeights
	}{
		// Lower response time is better.
		{math.Max(0, (48-p.ResponseTime)/48), responseTimeWeights},
		{(p.SupportScore - 50) / 50, supportScoreWeights},
		// Lower escalation rate is better.
		{math.Max(0, (30-p.EscalationRate)/30), escalationRateWeights},
		{math.Min(1, p.CommunicationFreq/3), communicationFreqWeights},
		{(p.IssueResolution - 50) / 50, issueResolutionWeights},
	}

	churn := baseChurnRisk
	retention := baseRetentionRate
	health := baseHealthScore
	satisfaction := baseSatisfactionScore

	for _, a := range adjustments {
		churn += a.impact * a.w.churn
		retention += a.impact * a.w.retention
		health += a.impact * a.w.health
		satisfaction += a.impact * a.w.satisfaction
	}

	churn = round1(clamp(churn, MinChurnRisk, MaxChurnRisk))
	return Result{
		ChurnRisk:         churn,
		RetentionRate:     round1(clamp(retention, MinRetentionRate, MaxRetentionRate)),
		HealthScore:       round1(clamp(health, MinHealthScore, MaxHealthScore)),
		SatisfactionScore: round1(clamp(satisfaction, MinSatisfactionScore, MaxSatisfactionScore)),
		RiskLevel:         RiskLevelFor(churn),
	}
}

// RiskLevelFor buckets a (clamped) churn-risk score. Thresholds are evaluated
// in descending order; boundary values land in the higher bucket.
func RiskLevelFor(churnRisk float64) RiskLevel {
	switch {
	case churnRisk >= 70:
		return RiskCritical
	case churnRisk >= 50:
		return RiskHigh
	case churnRisk >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round1 rounds to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
