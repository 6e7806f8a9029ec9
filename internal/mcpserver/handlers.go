package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *PulseClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *PulseClient) *Handlers {
	return &Handlers{client: client}
}

// paramKeys maps tool argument names to API parameter names.
var paramKeys = []struct {
	arg string
	api string
}{
	{"response_time", "responseTime"},
	{"support_score", "supportScore"},
	{"escalation_rate", "escalationRate"},
	{"communication_freq", "communicationFreq"},
	{"issue_resolution", "issueResolution"},
}

// HandleRunSimulation runs a one-shot what-if simulation: it creates a
// throwaway session, applies the requested parameters, and tears the session
// down after reading the result.
func (h *Handlers) HandleRunSimulation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patch := make(map[string]float64)
	args := req.GetArguments()
	for _, k := range paramKeys {
		if raw, ok := args[k.arg]; ok {
			if v, ok := raw.(float64); ok {
				patch[k.api] = v
			}
		}
	}

	raw, err := h.client.CreateSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start simulation: %v", err)), nil
	}

	session, err := parseSession(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse session: %v", err)), nil
	}
	defer func() { _ = h.client.DeleteSession(ctx, session.ID) }()

	if len(patch) > 0 {
		raw, err = h.client.UpdateParams(ctx, session.ID, patch)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to apply parameters: %v", err)), nil
		}
		session, err = parseSession(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to parse result: %v", err)), nil
		}
	}

	return mcp.NewToolResultText(formatSimulation(session)), nil
}

// HandleGetClientHealth returns one client's health profile.
func (h *Handlers) HandleGetClientHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID := req.GetString("client_id", "")
	if clientID == "" {
		return mcp.NewToolResultError("client_id is required"), nil
	}

	raw, err := h.client.GetClient(ctx, clientID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get client: %v", err)), nil
	}

	text, err := formatClient(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse client: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListClients lists tracked clients.
func (h *Handlers) HandleListClients(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	segment := req.GetString("segment", "")
	risk := req.GetString("risk", "")
	limit := req.GetInt("limit", 20)

	raw, err := h.client.ListClients(ctx, segment, risk, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list clients: %v", err)), nil
	}

	text, err := formatClientList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse clients: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetBenchmarks returns the industry benchmark table.
func (h *Handlers) HandleGetBenchmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.GetBenchmarks(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get benchmarks: %v", err)), nil
	}

	text, err := formatBenchmarks(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse benchmarks: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

type sessionInfo struct {
	ID     string     `json:"id"`
	Params paramsInfo `json:"params"`
	Result resultInfo `json:"result"`
}

type paramsInfo struct {
	ResponseTime      float64 `json:"responseTime"`
	SupportScore      float64 `json:"supportScore"`
	EscalationRate    float64 `json:"escalationRate"`
	CommunicationFreq float64 `json:"communicationFreq"`
	IssueResolution   float64 `json:"issueResolution"`
}

type resultInfo struct {
	ChurnRisk         float64 `json:"churnRisk"`
	RetentionRate     float64 `json:"retentionRate"`
	HealthScore       float64 `json:"healthScore"`
	SatisfactionScore float64 `json:"satisfactionScore"`
	RiskLevel         string  `json:"riskLevel"`
}

func parseSession(raw json.RawMessage) (sessionInfo, error) {
	var wrapper struct {
		Session sessionInfo `json:"session"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return sessionInfo{}, err
	}
	if wrapper.Session.ID == "" {
		return sessionInfo{}, fmt.Errorf("no session in response: %s", string(raw))
	}
	return wrapper.Session, nil
}

func formatSimulation(s sessionInfo) string {
	var sb strings.Builder
	sb.WriteString("Simulation result:\n\n")
	fmt.Fprintf(&sb, "Inputs:\n")
	fmt.Fprintf(&sb, "  Response time: %.1f h | Support score: %.0f | Escalation rate: %.1f%%\n",
		s.Params.ResponseTime, s.Params.SupportScore, s.Params.EscalationRate)
	fmt.Fprintf(&sb, "  Communication: %.1f touchpoints/week | Issue resolution: %.0f%%\n\n",
		s.Params.CommunicationFreq, s.Params.IssueResolution)
	fmt.Fprintf(&sb, "Projections:\n")
	fmt.Fprintf(&sb, "  Churn risk: %.1f%% (%s)\n", s.Result.ChurnRisk, strings.ToUpper(s.Result.RiskLevel))
	fmt.Fprintf(&sb, "  Retention rate: %.1f%%\n", s.Result.RetentionRate)
	fmt.Fprintf(&sb, "  Health score: %.1f\n", s.Result.HealthScore)
	fmt.Fprintf(&sb, "  Satisfaction: %.1f", s.Result.SatisfactionScore)
	return sb.String()
}

type clientInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Industry string     `json:"industry"`
	Segment  string     `json:"segment"`
	ARR      float64    `json:"arr"`
	CSM      string     `json:"csm"`
	Params   paramsInfo `json:"params"`
	Result   resultInfo `json:"result"`
}

func formatClient(raw json.RawMessage) (string, error) {
	var c clientInfo
	if err := json.Unmarshal(raw, &c); err != nil {
		return "", err
	}
	if c.ID == "" {
		return "", fmt.Errorf("no client in response: %s", string(raw))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", c.Name, c.ID)
	fmt.Fprintf(&sb, "Industry: %s | Segment: %s | ARR: $%.0f | CSM: %s\n\n", c.Industry, c.Segment, c.ARR, c.CSM)
	fmt.Fprintf(&sb, "Risk level: %s\n", strings.ToUpper(c.Result.RiskLevel))
	fmt.Fprintf(&sb, "Churn risk: %.1f%% | Retention: %.1f%% | Health: %.1f | Satisfaction: %.1f\n\n",
		c.Result.ChurnRisk, c.Result.RetentionRate, c.Result.HealthScore, c.Result.SatisfactionScore)
	fmt.Fprintf(&sb, "Engagement: response %.1fh, support %.0f, escalation %.1f%%, %.1f touchpoints/week, resolution %.0f%%",
		c.Params.ResponseTime, c.Params.SupportScore, c.Params.EscalationRate, c.Params.CommunicationFreq, c.Params.IssueResolution)
	return sb.String(), nil
}

func formatClientList(raw json.RawMessage) (string, error) {
	var wrapper struct {
		Clients []clientInfo `json:"clients"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return "", err
	}
	if len(wrapper.Clients) == 0 {
		return "No clients found matching your criteria.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d client(s):\n\n", len(wrapper.Clients))
	for i, c := range wrapper.Clients {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, c.Name, c.ID)
		fmt.Fprintf(&sb, "   %s / %s | ARR $%.0f | risk: %s | churn %.1f%% | health %.1f\n",
			c.Industry, c.Segment, c.ARR, c.Result.RiskLevel, c.Result.ChurnRisk, c.Result.HealthScore)
		if i < len(wrapper.Clients)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func formatBenchmarks(raw json.RawMessage) (string, error) {
	var wrapper struct {
		Benchmarks []struct {
			Industry       string  `json:"industry"`
			MedianChurn    float64 `json:"medianChurn"`
			MedianHealth   float64 `json:"medianHealth"`
			TopQuartileNPS float64 `json:"topQuartileNps"`
		} `json:"benchmarks"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return "", err
	}
	if len(wrapper.Benchmarks) == 0 {
		return "No benchmark data available.", nil
	}

	var sb strings.Builder
	sb.WriteString("Industry benchmarks:\n\n")
	for _, b := range wrapper.Benchmarks {
		fmt.Fprintf(&sb, "- %s: median churn %.0f%%, median health %.0f, top-quartile NPS %.0f\n",
			b.Industry, b.MedianChurn, b.MedianHealth, b.TopQuartileNPS)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
