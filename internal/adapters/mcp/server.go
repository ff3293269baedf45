package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/core/usecase"
)

const serverName = "multitask-helper"

// Service is the slice of the clipboard watcher exposed as MCP tools.
type Service interface {
	SuggestFor(ctx context.Context, content string) (domain.SuggestionEvent, error)
	Targets(ctx context.Context) ([]domain.Candidate, error)
	Switch(ctx context.Context, candidate domain.Candidate) (bool, error)
	DescribeSystem(ctx context.Context) (usecase.SystemInfo, error)
}

type Handlers struct {
	service Service
}

func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// NewServer registers every tool on a fresh MCP server.
func NewServer(service Service, version string) *server.MCPServer {
	h := NewHandlers(service)
	s := server.NewMCPServer(serverName, version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("suggest_targets",
		mcp.WithDescription("Rank open windows as paste targets for a piece of copied text."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Clipboard text to route.")),
	), h.SuggestTargets)

	s.AddTool(mcp.NewTool("list_targets",
		mcp.WithDescription("List the windows the helper can switch to."),
	), h.ListTargets)

	s.AddTool(mcp.NewTool("activate_target",
		mcp.WithDescription("Bring a window to the foreground by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Window id from list_targets.")),
	), h.ActivateTarget)

	s.AddTool(mcp.NewTool("system_info",
		mcp.WithDescription("Summarize open windows by application group."),
	), h.SystemInfo)

	return s
}

func (h *Handlers) SuggestTargets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	event, err := h.service.SuggestFor(ctx, content)
	if err != nil {
		return toolError("suggest_targets", err), nil
	}
	return jsonResult(event)
}

func (h *Handlers) ListTargets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targets, err := h.service.Targets(ctx)
	if err != nil {
		return toolError("list_targets", err), nil
	}
	return jsonResult(map[string]any{"targets": targets})
}

func (h *Handlers) ActivateTarget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	targets, err := h.service.Targets(ctx)
	if err != nil {
		return toolError("activate_target", err), nil
	}
	target := domain.Candidate{ID: id}
	for _, c := range targets {
		if c.ID == id {
			target = c
			break
		}
	}

	ok, err := h.service.Switch(ctx, target)
	if err != nil {
		return toolError("activate_target", err), nil
	}
	if !ok {
		return mcp.NewToolResultError("target not found: " + id), nil
	}
	return jsonResult(map[string]any{"id": id, "activated": true})
}

func (h *Handlers) SystemInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := h.service.DescribeSystem(ctx)
	if err != nil {
		return toolError("system_info", err), nil
	}
	return jsonResult(info)
}

func toolError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, context.Canceled) {
		slog.Info("mcp_tool_canceled", "tool", tool)
	} else {
		slog.Error("mcp_tool_failed", "tool", tool, "error", err)
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
