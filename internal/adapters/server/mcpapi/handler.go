// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/dayflow/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the journal tools.
func NewHandler(cfg Config, journal common.JournalService) (*Handler, error) {
	if journal == nil {
		return nil, fmt.Errorf("journal service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerDayTools(mcpSrv, journal)
	registerActivityTools(mcpSrv, journal)
	registerTagTools(mcpSrv, journal)
	registerInsightTools(mcpSrv, journal)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "dayflow"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// dateArg is shared by every tool addressing one day.
func dateArg() mcp.ToolOption {
	return mcp.WithString("date", mcp.Description("Day date YYYY-MM-DD; empty or \"current\" selects the current day"))
}

// registerDayTools registers day lifecycle tools.
func registerDayTools(srv *mcpserver.MCPServer, journal common.JournalService) {
	srv.AddTool(
		mcp.NewTool(
			"dayflow.list_days",
			mcp.WithDescription("List every journal day in date order."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			days, err := journal.ListDays(ctx)
			return respond("list_days", map[string]any{"days": days}, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.get_day",
			mcp.WithDescription("Return one day with its progress and next suggested start time."),
			dateArg(),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			day, err := journal.GetDay(ctx, req.GetString("date", ""))
			return respond("get_day", day, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.create_day",
			mcp.WithDescription("Create or select the day for a date. Empty date means today."),
			mcp.WithString("date", mcp.Description("Day date YYYY-MM-DD")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := journal.CreateDay(ctx, common.CreateDayRequest{Date: req.GetString("date", "")})
			return respond("create_day", result, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.complete_day",
			mcp.WithDescription("Finalize a day and record its commitment level."),
			dateArg(),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			day, err := journal.CompleteDay(ctx, req.GetString("date", ""))
			return respond("complete_day", day, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.reopen_day",
			mcp.WithDescription("Reopen a finalized day so activities can change again."),
			dateArg(),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			day, err := journal.ReopenDay(ctx, req.GetString("date", ""))
			return respond("reopen_day", day, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.stats",
			mcp.WithDescription("Return journal totals, the adaptive daily goal, and highlights."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			stats, err := journal.Stats(ctx)
			return respond("stats", stats, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.commitment_series",
			mcp.WithDescription("Return the commitment level history in ascending date order."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			series, err := journal.CommitmentSeries(ctx)
			return respond("commitment_series", map[string]any{"series": series}, err)
		},
	)
}

// registerActivityTools registers add/edit/remove tools.
func registerActivityTools(srv *mcpserver.MCPServer, journal common.JournalService) {
	srv.AddTool(
		mcp.NewTool(
			"dayflow.add_activity",
			mcp.WithDescription("Append one activity to a day. Creates the day when needed."),
			dateArg(),
			mcp.WithString("start_time", mcp.Required(), mcp.Description("Start time HH:MM")),
			mcp.WithString("end_time", mcp.Required(), mcp.Description("End time HH:MM")),
			mcp.WithString("description", mcp.Required(), mcp.Description("What was done")),
			mcp.WithArray("tags", mcp.Description("Tag names"), mcp.WithStringItems()),
			mcp.WithBoolean("is_private", mcp.Description("Exclude from insight requests")),
			mcp.WithBoolean("create_tags", mcp.Description("Create unknown tag names")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			in, errResult := activityRequest(req, false)
			if errResult != nil {
				return errResult, nil
			}
			day, err := journal.AddActivity(ctx, in)
			return respond("add_activity", day, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.edit_activity",
			mcp.WithDescription("Replace the fields of one activity."),
			dateArg(),
			mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity identifier")),
			mcp.WithString("start_time", mcp.Required(), mcp.Description("Start time HH:MM")),
			mcp.WithString("end_time", mcp.Required(), mcp.Description("End time HH:MM")),
			mcp.WithString("description", mcp.Required(), mcp.Description("What was done")),
			mcp.WithArray("tags", mcp.Description("Tag names"), mcp.WithStringItems()),
			mcp.WithBoolean("is_private", mcp.Description("Exclude from insight requests")),
			mcp.WithBoolean("create_tags", mcp.Description("Create unknown tag names")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			in, errResult := activityRequest(req, true)
			if errResult != nil {
				return errResult, nil
			}
			result, err := journal.EditActivity(ctx, in)
			return respond("edit_activity", result, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.remove_activity",
			mcp.WithDescription("Remove one activity. Removing the last activity deletes the day."),
			dateArg(),
			mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			activityID, err := req.RequireString("activity_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := journal.RemoveActivity(ctx, common.RemoveActivityRequest{
				Date:       req.GetString("date", ""),
				ActivityID: activityID,
			})
			return respond("remove_activity", result, err)
		},
	)
}

// registerTagTools registers tag listing and creation.
func registerTagTools(srv *mcpserver.MCPServer, journal common.JournalService) {
	srv.AddTool(
		mcp.NewTool(
			"dayflow.list_tags",
			mcp.WithDescription("List available tags."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tags, err := journal.ListTags(ctx)
			return respond("list_tags", map[string]any{"tags": tags}, err)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dayflow.create_tag",
			mcp.WithDescription("Create one tag with a palette color."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Tag name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			tag, err := journal.CreateTag(ctx, name)
			return respond("create_tag", tag, err)
		},
	)
}

// registerInsightTools registers the advisory insight tool.
func registerInsightTools(srv *mcpserver.MCPServer, journal common.JournalService) {
	srv.AddTool(
		mcp.NewTool(
			"dayflow.insight",
			mcp.WithDescription("Generate advisory text about one day's non-private activities."),
			dateArg(),
			mcp.WithString("instruction", mcp.Description("Optional prompt instruction")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := journal.Insight(ctx, common.InsightRequest{
				Date:        req.GetString("date", ""),
				Instruction: req.GetString("instruction", ""),
			})
			return respond("insight", result, err)
		},
	)
}

// activityRequest reads shared activity arguments.
func activityRequest(req mcp.CallToolRequest, requireID bool) (common.ActivityRequest, *mcp.CallToolResult) {
	out := common.ActivityRequest{
		Date:       req.GetString("date", ""),
		Tags:       req.GetStringSlice("tags", nil),
		IsPrivate:  req.GetBool("is_private", false),
		CreateTags: req.GetBool("create_tags", false),
	}
	if requireID {
		id, err := req.RequireString("activity_id")
		if err != nil {
			return common.ActivityRequest{}, mcp.NewToolResultError(err.Error())
		}
		out.ActivityID = id
	}
	for _, field := range []struct {
		name string
		dst  *string
	}{
		{"start_time", &out.StartTime},
		{"end_time", &out.EndTime},
		{"description", &out.Description},
	} {
		value, err := req.RequireString(field.name)
		if err != nil {
			return common.ActivityRequest{}, mcp.NewToolResultError(err.Error())
		}
		*field.dst = value
	}
	return out, nil
}

// respond converts one service result into a JSON tool result or a tool error.
func respond(tool string, payload any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return toolResultFromError(err), nil
	}
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrConflict):
		return mcp.NewToolResultError("conflict: " + err.Error())
	case errors.Is(err, common.ErrUnauthenticated):
		return mcp.NewToolResultError("unauthenticated: " + err.Error())
	case errors.Is(err, common.ErrUnavailable):
		return mcp.NewToolResultError("unavailable: " + err.Error())
	case errors.Is(err, common.ErrPersistence):
		return mcp.NewToolResultError("persistence_failed: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
