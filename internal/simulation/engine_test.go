package simulation

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// ---------------------------------------------------------------------------
// Compute
// ---------------------------------------------------------------------------

func TestCompute_DefaultScenario(t *testing.T) {
	// responseTime=24, supportScore=75, escalationRate=15,
	// communicationFreq=2, issueResolution=85.
	//
	// Impacts: 0.5, 0.5, 0.5, 2/3, 0.7. Derived from the weight table:
	//   churn        = 30 - 7.5 - 10 - 5 - 16/3 - 17.5 = -15.33 -> clamped to 5
	//   retention    = 85 + 5 + 6 + 4 + 4 + 10.5 = 114.5 -> clamped to 98
	//   health       = 70 + 7.5 + 10 + 6 + 20/3 + 17.5 = 117.67 -> clamped to 100
	//   satisfaction = 70 + 6 + 7.5 + 5 + 16/3 + 14 = 107.83 -> clamped to 100
	r := Compute(DefaultParams())

	approx(t, "ChurnRisk", r.ChurnRisk, 5.0)
	approx(t, "RetentionRate", r.RetentionRate, 98.0)
	approx(t, "HealthScore", r.HealthScore, 100.0)
	approx(t, "SatisfactionScore", r.SatisfactionScore, 100.0)
	if r.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %s, want %s", r.RiskLevel, RiskLow)
	}
}

func TestCompute_AllWorstBoundary(t *testing.T) {
	// Every parameter at its least favorable extreme. Response time and
	// escalation impacts floor at 0; support score goes negative (-0.2).
	//   churn        = 30 + 0 + 4 + 0 - 4/3 + 0 = 32.67
	//   retention    = 85 - 2.4 + 1 = 83.6
	//   health       = 70 - 4 + 5/3 = 67.67
	//   satisfaction = 70 - 3 + 4/3 = 68.33
	r := Compute(Params{
		ResponseTime:      72,
		SupportScore:      40,
		EscalationRate:    50,
		CommunicationFreq: 0.5,
		IssueResolution:   50,
	})

	approx(t, "ChurnRisk", r.ChurnRisk, 32.7)
	approx(t, "RetentionRate", r.RetentionRate, 83.6)
	approx(t, "HealthScore", r.HealthScore, 67.7)
	approx(t, "SatisfactionScore", r.SatisfactionScore, 68.3)

	if r.ChurnRisk > MaxChurnRisk {
		t.Errorf("ChurnRisk %v exceeds bound %v", r.ChurnRisk, MaxChurnRisk)
	}
	if r.RiskLevel != RiskMedium {
		t.Errorf("RiskLevel = %s, want %s", r.RiskLevel, RiskMedium)
	}
}

func TestCompute_AllBestBoundary(t *testing.T) {
	r := Compute(Params{
		ResponseTime:      1,
		SupportScore:      100,
		EscalationRate:    0,
		CommunicationFreq: 5,
		IssueResolution:   100,
	})

	// Raw churn is far below zero; the floor clamp holds it at 5.
	approx(t, "ChurnRisk", r.ChurnRisk, MinChurnRisk)
	approx(t, "RetentionRate", r.RetentionRate, MaxRetentionRate)
	approx(t, "HealthScore", r.HealthScore, MaxHealthScore)
	approx(t, "SatisfactionScore", r.SatisfactionScore, MaxSatisfactionScore)
	if r.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %s, want %s", r.RiskLevel, RiskLow)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	p := Params{
		ResponseTime:      36.5,
		SupportScore:      62,
		EscalationRate:    22.5,
		CommunicationFreq: 1.25,
		IssueResolution:   71,
	}

	first := Compute(p)
	for i := 0; i < 100; i++ {
		if got := Compute(p); got != first {
			t.Fatalf("Compute not deterministic: call %d gave %+v, first gave %+v", i, got, first)
		}
	}
}

func TestCompute_OutOfRangeInputsClamped(t *testing.T) {
	wild := Compute(Params{
		ResponseTime:      1000,
		SupportScore:      -50,
		EscalationRate:    999,
		CommunicationFreq: 100,
		IssueResolution:   -10,
	})
	bounded := Compute(Params{
		ResponseTime:      MaxResponseTime,
		SupportScore:      MinSupportScore,
		EscalationRate:    MaxEscalationRate,
		CommunicationFreq: MaxCommunicationFreq,
		IssueResolution:   MinIssueResolution,
	})

	if wild != bounded {
		t.Errorf("out-of-range input not clamped: got %+v, want %+v", wild, bounded)
	}
}

func TestCompute_OutputsAlwaysInBounds(t *testing.T) {
	responseTimes := []float64{1, 12, 24, 48, 72}
	supportScores := []float64{40, 55, 75, 100}
	escalationRates := []float64{0, 15, 30, 50}
	communicationFreqs := []float64{0.5, 2, 3, 5}
	issueResolutions := []float64{50, 70, 85, 100}

	for _, rt := range responseTimes {
		for _, ss := range supportScores {
			for _, er := range escalationRates {
				for _, cf := range communicationFreqs {
					for _, ir := range issueResolutions {
						r := Compute(Params{rt, ss, er, cf, ir})

						if r.ChurnRisk < MinChurnRisk || r.ChurnRisk > MaxChurnRisk {
							t.Fatalf("ChurnRisk %v out of bounds for %v/%v/%v/%v/%v", r.ChurnRisk, rt, ss, er, cf, ir)
						}
						if r.RetentionRate < MinRetentionRate || r.RetentionRate > MaxRetentionRate {
							t.Fatalf("RetentionRate %v out of bounds", r.RetentionRate)
						}
						if r.HealthScore < MinHealthScore || r.HealthScore > MaxHealthScore {
							t.Fatalf("HealthScore %v out of bounds", r.HealthScore)
						}
						if r.SatisfactionScore < MinSatisfactionScore || r.SatisfactionScore > MaxSatisfactionScore {
							t.Fatalf("SatisfactionScore %v out of bounds", r.SatisfactionScore)
						}
						if r.RiskLevel != RiskLevelFor(r.ChurnRisk) {
							t.Fatalf("RiskLevel %s inconsistent with ChurnRisk %v", r.RiskLevel, r.ChurnRisk)
						}
					}
				}
			}
		}
	}
}

// TestCompute_Monotonicity checks that improving any single parameter never
// makes any derived metric worse, holding the other four fixed.
func TestCompute_Monotonicity(t *testing.T) {
	// Middling base so not every output sits on a clamp rail.
	base := Params{
		ResponseTime:      68,
		SupportScore:      45,
		EscalationRate:    45,
		CommunicationFreq: 0.6,
		IssueResolution:   55,
	}

	// For each parameter: a sequence of values from worst to best.
	cases := []struct {
		name   string
		values []float64
		set    func(Params, float64) Params
	}{
		{
			name:   "responseTime",
			values: []float64{72, 60, 48, 36, 24, 12, 1}, // lower is better
			set:    func(p Params, v float64) Params { p.ResponseTime = v; return p },
		},
		{
			name:   "supportScore",
			values: []float64{40, 50, 60, 75, 90, 100},
			set:    func(p Params, v float64) Params { p.SupportScore = v; return p },
		},
		{
			name:   "escalationRate",
			values: []float64{50, 40, 30, 20, 10, 0}, // lower is better
			set:    func(p Params, v float64) Params { p.EscalationRate = v; return p },
		},
		{
			name:   "communicationFreq",
			values: []float64{0.5, 1, 2, 3, 4, 5},
			set:    func(p Params, v float64) Params { p.CommunicationFreq = v; return p },
		},
		{
			name:   "issueResolution",
			values: []float64{50, 60, 70, 80, 90, 100},
			set:    func(p Params, v float64) Params { p.IssueResolution = v; return p },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := Compute(tc.set(base, tc.values[0]))
			for _, v := range tc.values[1:] {
				cur := Compute(tc.set(base, v))

				if cur.ChurnRisk > prev.ChurnRisk+eps {
					t.Errorf("%s=%v: ChurnRisk rose from %v to %v", tc.name, v, prev.ChurnRisk, cur.ChurnRisk)
				}
				if cur.RetentionRate < prev.RetentionRate-eps {
					t.Errorf("%s=%v: RetentionRate fell from %v to %v", tc.name, v, prev.RetentionRate, cur.RetentionRate)
				}
				if cur.HealthScore < prev.HealthScore-eps {
					t.Errorf("%s=%v: HealthScore fell from %v to %v", tc.name, v, prev.HealthScore, cur.HealthScore)
				}
				if cur.SatisfactionScore < prev.SatisfactionScore-eps {
					t.Errorf("%s=%v: SatisfactionScore fell from %v to %v", tc.name, v, prev.SatisfactionScore, cur.SatisfactionScore)
				}
				prev = cur
			}
		})
	}
}

// ---------------------------------------------------------------------------
// RiskLevelFor
// ---------------------------------------------------------------------------

func TestRiskLevelFor_Thresholds(t *testing.T) {
	tests := []struct {
		churn float64
		want  RiskLevel
	}{
		{95, RiskCritical},
		{70.1, RiskCritical},
		{70.0, RiskCritical}, // boundary lands in the higher bucket
		{69.9, RiskHigh},
		{50.0, RiskHigh},
		{49.9, RiskMedium},
		{25.0, RiskMedium},
		{24.9, RiskLow},
		{5, RiskLow},
	}

	for _, tt := range tests {
		if got := RiskLevelFor(tt.churn); got != tt.want {
			t.Errorf("RiskLevelFor(%v) = %s, want %s", tt.churn, got, tt.want)
		}
	}
}

func TestDefaultParams_WithinRanges(t *testing.T) {
	p := DefaultParams()
	if p.Clamped() != p {
		t.Errorf("default params not within declared ranges: %+v", p)
	}
}

func TestClamped_BoundariesPassThrough(t *testing.T) {
	exact := Params{
		ResponseTime:      MinResponseTime,
		SupportScore:      MaxSupportScore,
		EscalationRate:    MinEscalationRate,
		CommunicationFreq: MaxCommunicationFreq,
		IssueResolution:   MinIssueResolution,
	}
	if exact.Clamped() != exact {
		t.Errorf("boundary values altered by Clamped: %+v", exact.Clamped())
	}
}
