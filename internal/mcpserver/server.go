// Package mcpserver implements the Model Context Protocol surface for
// trackline, exposing search, entity retrieval and phase transitions as
// tools over the service context.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/trackline/trackline/internal/service"
)

// Server wraps an MCPServer with the trackline service context.
type Server struct {
	mcp    *mcpserver.MCPServer
	svc    *service.Service
	logger *slog.Logger
}

// NewServer creates the MCP server over a service context.
func NewServer(svc *service.Service, logger *slog.Logger) *Server {
	s := &Server{svc: svc, logger: logger}

	mcpSrv := mcpserver.NewMCPServer(
		"trackline",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildSearchTool(), s.handleSearch)
	mcpSrv.AddTool(buildGetEntityTool(), s.handleGetEntity)
	mcpSrv.AddTool(buildTransitionsTool(), s.handleTransitions)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleSearch is the exported handler for the "search" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleSearch(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSearch(ctx, req)
}

// HandleGetEntity is the exported handler for the "get_entity" tool.
func (s *Server) HandleGetEntity(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleGetEntity(ctx, req)
}

// HandleTransitions is the exported handler for the "phase_transitions" tool.
func (s *Server) HandleTransitions(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleTransitions(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcpserver: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildSearchTool() mcpgo.Tool {
	return mcpgo.NewTool("search",
		mcpgo.WithDescription("Free-text search across work items: defects, stories, epics, features, tasks, requirements and tests."),
		mcpgo.WithString("term",
			mcpgo.Required(),
			mcpgo.Description("The text to search for"),
		),
	)
}

func buildGetEntityTool() mcpgo.Tool {
	return mcpgo.NewTool("get_entity",
		mcpgo.WithDescription("Fetch one work item by type and id with all reference fields resolved."),
		mcpgo.WithString("type",
			mcpgo.Description("Coarse entity type, e.g. work_item"),
		),
		mcpgo.WithString("subtype",
			mcpgo.Description("Concrete entity kind, e.g. defect"),
		),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("The entity id"),
		),
	)
}

func buildTransitionsTool() mcpgo.Tool {
	return mcpgo.NewTool("phase_transitions",
		mcpgo.WithDescription("List the legal workflow transitions out of a phase."),
		mcpgo.WithString("phase_id",
			mcpgo.Required(),
			mcpgo.Description("The source phase id"),
		),
	)
}

// --- tool handlers ---

func (s *Server) handleSearch(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	term := strings.TrimSpace(req.GetString("term", ""))
	if term == "" {
		return mcpgo.NewToolResultError("term is required and must not be empty"), nil
	}

	results, err := s.svc.Search(ctx, term)
	if err != nil {
		s.logger.Error("mcp search failed", "term", term, "error", err)
		return mcpgo.NewToolResultErrorf("search failed: %v", err), nil
	}
	return toolResultJSON(results)
}

func (s *Server) handleGetEntity(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcpgo.NewToolResultError("id is required and must not be empty"), nil
	}
	entityType := req.GetString("type", "")
	subtype := req.GetString("subtype", "")
	if entityType == "" && subtype == "" {
		return mcpgo.NewToolResultError("at least one of type and subtype is required"), nil
	}

	entity, err := s.svc.GetEntity(ctx, entityType, subtype, id)
	if err != nil {
		s.logger.Error("mcp get_entity failed", "id", id, "error", err)
		return mcpgo.NewToolResultErrorf("get_entity failed: %v", err), nil
	}
	return toolResultJSON(entity)
}

func (s *Server) handleTransitions(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	phaseID := strings.TrimSpace(req.GetString("phase_id", ""))
	if phaseID == "" {
		return mcpgo.NewToolResultError("phase_id is required and must not be empty"), nil
	}

	transitions := s.svc.TransitionsForPhase(phaseID)
	return toolResultJSON(transitions)
}
