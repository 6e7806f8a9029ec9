package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the ClientPulse MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolRunSimulation = mcp.NewTool("run_simulation",
	mcp.WithDescription(
		"Run a what-if churn simulation. Takes engagement parameters and returns "+
			"the projected churn risk, retention rate, health score, satisfaction score, "+
			"and a categorical risk level. Omitted parameters use the dashboard defaults."),
	mcp.WithNumber("response_time",
		mcp.Description("Average support response time in hours (1-72, default 24)")),
	mcp.WithNumber("support_score",
		mcp.Description("Support quality score (40-100, default 75)")),
	mcp.WithNumber("escalation_rate",
		mcp.Description("Percentage of tickets escalated (0-50, default 15)")),
	mcp.WithNumber("communication_freq",
		mcp.Description("Proactive touchpoints per week (0.5-5, default 2)")),
	mcp.WithNumber("issue_resolution",
		mcp.Description("First-contact issue resolution percentage (50-100, default 85)")),
)

var ToolGetClientHealth = mcp.NewTool("get_client_health",
	mcp.WithDescription(
		"Get the current health profile for one tracked client: engagement parameters, "+
			"derived scores, and risk level. Use list_clients first to find client IDs."),
	mcp.WithString("client_id",
		mcp.Required(),
		mcp.Description("The client's ID (e.g. 'cl_meridian')")),
)

var ToolListClients = mcp.NewTool("list_clients",
	mcp.WithDescription(
		"Browse the tracked client portfolio. Optionally filter by segment or risk "+
			"level to find accounts that need attention."),
	mcp.WithString("segment",
		mcp.Description("Filter by contract segment"),
		mcp.Enum("enterprise", "midmarket", "smb")),
	mcp.WithString("risk",
		mcp.Description("Filter by current risk level"),
		mcp.Enum("low", "medium", "high", "critical")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of clients to return (default 20)")),
)

var ToolGetBenchmarks = mcp.NewTool("get_benchmarks",
	mcp.WithDescription(
		"Get industry benchmark figures (median churn, median health score, top-quartile "+
			"NPS) to put a client's numbers in context."),
)
