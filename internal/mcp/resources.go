package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const dashboardURI = "trainingload://dashboard"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         dashboardURI,
		Name:        "Training Dashboard",
		Description: "Current load, coaching state, last 7 days and recent sessions",
		MIMEType:    "application/json",
	}, s.handleDashboardResource)
}

func (s *Server) handleDashboardResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := s.query.GetDashboard(s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	result := map[string]interface{}{
		"week": map[string]interface{}{
			"sessions":    data.WeekSessionCount,
			"tss":         data.WeekTSS,
			"distance_km": data.WeekDistanceKm,
			"duration_s":  data.WeekDuration,
		},
		"total_sessions": data.TotalSessions,
	}
	if data.HasLoad {
		result["load"] = toDailyLoad(data.Current)
	}
	if data.Coaching != nil {
		result["coaching"] = map[string]interface{}{
			"status":      data.Coaching.Status,
			"injury_risk": data.Coaching.InjuryRisk,
			"load_state":  data.Coaching.LoadState,
			"advice":      data.Coaching.Advice,
		}
	}
	recent := make([]sessionSummary, 0, len(data.RecentSessions))
	for _, session := range data.RecentSessions {
		recent = append(recent, toSessionSummary(session))
	}
	result["recent_sessions"] = recent

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      dashboardURI,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
