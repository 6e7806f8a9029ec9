package clients

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pulsehq/clientpulse/internal/simulation"
)

// MemoryStore is an in-memory client directory.
type MemoryStore struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewMemoryStore creates an empty in-memory directory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients: make(map[string]*Client),
	}
}

// NewSeededStore creates a directory preloaded with the demo roster. Scores
// are derived from each account's parameters at seed time, so the roster is
// always consistent with the engine.
func NewSeededStore() *MemoryStore {
	s := NewMemoryStore()
	now := time.Now()

	for _, seed := range seedRoster {
		client := seed
		client.Result = simulation.Compute(client.Params)
		client.UpdatedAt = now
		s.clients[client.ID] = &client
	}
	return s
}

// seedRoster is the demo directory. Parameters span the healthy-to-troubled
// range so the dashboard shows a realistic risk mix out of the box.
var seedRoster = []Client{
	{
		ID: "cl_meridian", Name: "Meridian Analytics", Industry: "fintech",
		Segment: SegmentEnterprise, ARR: 480000, CSM: "Dana Reeves",
		Params: simulation.Params{ResponseTime: 6, SupportScore: 92, EscalationRate: 4, CommunicationFreq: 4, IssueResolution: 95},
	},
	{
		ID: "cl_northwind", Name: "Northwind Logistics", Industry: "logistics",
		Segment: SegmentEnterprise, ARR: 350000, CSM: "Dana Reeves",
		Params: simulation.Params{ResponseTime: 18, SupportScore: 80, EscalationRate: 12, CommunicationFreq: 2.5, IssueResolution: 88},
	},
	{
		ID: "cl_atlaspay", Name: "AtlasPay", Industry: "fintech",
		Segment: SegmentMidMarket, ARR: 120000, CSM: "Marcus Oduya",
		Params: simulation.Params{ResponseTime: 30, SupportScore: 68, EscalationRate: 20, CommunicationFreq: 1.5, IssueResolution: 74},
	},
	{
		ID: "cl_brightcare", Name: "BrightCare Health", Industry: "healthcare",
		Segment: SegmentEnterprise, ARR: 520000, CSM: "Priya Nair",
		Params: simulation.Params{ResponseTime: 12, SupportScore: 85, EscalationRate: 8, CommunicationFreq: 3, IssueResolution: 90},
	},
	{
		ID: "cl_ferrostak", Name: "Ferrostak Manufacturing", Industry: "manufacturing",
		Segment: SegmentMidMarket, ARR: 95000, CSM: "Marcus Oduya",
		Params: simulation.Params{ResponseTime: 54, SupportScore: 48, EscalationRate: 38, CommunicationFreq: 0.8, IssueResolution: 58},
	},
	{
		ID: "cl_lumina", Name: "Lumina Retail Group", Industry: "retail",
		Segment: SegmentMidMarket, ARR: 140000, CSM: "Priya Nair",
		Params: simulation.Params{ResponseTime: 40, SupportScore: 60, EscalationRate: 28, CommunicationFreq: 1, IssueResolution: 66},
	},
	{
		ID: "cl_quantex", Name: "Quantex Labs", Industry: "biotech",
		Segment: SegmentSMB, ARR: 42000, CSM: "Jordan Hale",
		Params: simulation.Params{ResponseTime: 24, SupportScore: 75, EscalationRate: 15, CommunicationFreq: 2, IssueResolution: 85},
	},
	{
		ID: "cl_harborpoint", Name: "Harborpoint Insurance", Industry: "insurance",
		Segment: SegmentEnterprise, ARR: 410000, CSM: "Jordan Hale",
		Params: simulation.Params{ResponseTime: 64, SupportScore: 44, EscalationRate: 45, CommunicationFreq: 0.6, IssueResolution: 52},
	},
	{
		ID: "cl_veloway", Name: "Veloway Mobility", Industry: "transportation",
		Segment: SegmentSMB, ARR: 36000, CSM: "Marcus Oduya",
		Params: simulation.Params{ResponseTime: 10, SupportScore: 88, EscalationRate: 6, CommunicationFreq: 3.5, IssueResolution: 92},
	},
	{
		ID: "cl_stonebridge", Name: "Stonebridge Media", Industry: "media",
		Segment: SegmentSMB, ARR: 28000, CSM: "Jordan Hale",
		Params: simulation.Params{ResponseTime: 48, SupportScore: 55, EscalationRate: 32, CommunicationFreq: 1.2, IssueResolution: 62},
	},
	{
		ID: "cl_polarisedu", Name: "Polaris Education", Industry: "education",
		Segment: SegmentMidMarket, ARR: 76000, CSM: "Priya Nair",
		Params: simulation.Params{ResponseTime: 20, SupportScore: 78, EscalationRate: 10, CommunicationFreq: 2.8, IssueResolution: 86},
	},
	{
		ID: "cl_cobaltgrid", Name: "CobaltGrid Energy", Industry: "energy",
		Segment: SegmentEnterprise, ARR: 610000, CSM: "Dana Reeves",
		Params: simulation.Params{ResponseTime: 36, SupportScore: 64, EscalationRate: 24, CommunicationFreq: 1.8, IssueResolution: 70},
	},
}

// List returns clients matching the query, sorted by name.
func (s *MemoryStore) List(ctx context.Context, query Query) ([]*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		if query.Segment != "" && client.Segment != query.Segment {
			continue
		}
		if query.RiskLevel != "" && client.Result.RiskLevel != query.RiskLevel {
			continue
		}
		if query.Industry != "" && client.Industry != query.Industry {
			continue
		}
		cp := *client
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*Client{}, nil
		}
		matched = matched[query.Offset:]
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Get returns a copy of one client.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	cp := *client
	return &cp, nil
}

// UpdateParams replaces a client's engagement parameters and rederives its
// scores through the engine.
func (s *MemoryStore) UpdateParams(ctx context.Context, id string, params simulation.Params) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}

	client.Params = params
	client.Result = simulation.Compute(params)
	client.UpdatedAt = time.Now()

	cp := *client
	return &cp, nil
}

// Stats aggregates the directory.
func (s *MemoryStore) Stats(ctx context.Context) (*PortfolioStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &PortfolioStats{
		ByRiskLevel: map[simulation.RiskLevel]int{
			simulation.RiskLow:      0,
			simulation.RiskMedium:   0,
			simulation.RiskHigh:     0,
			simulation.RiskCritical: 0,
		},
	}

	var churn, health, retention, satisfaction float64
	for _, client := range s.clients {
		stats.TotalClients++
		stats.TotalARR += client.ARR
		stats.ByRiskLevel[client.Result.RiskLevel]++
		if client.Result.RiskLevel == simulation.RiskHigh || client.Result.RiskLevel == simulation.RiskCritical {
			stats.AtRisk++
		}
		churn += client.Result.ChurnRisk
		health += client.Result.HealthScore
		retention += client.Result.RetentionRate
		satisfaction += client.Result.SatisfactionScore
	}

	if stats.TotalClients > 0 {
		n := float64(stats.TotalClients)
		stats.AvgChurnRisk = round1(churn / n)
		stats.AvgHealthScore = round1(health / n)
		stats.AvgRetention = round1(retention / n)
		stats.AvgSatisfaction = round1(satisfaction / n)
	}
	return stats, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
