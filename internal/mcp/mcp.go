// Package mcp implements the Model Context Protocol server for ModelForge.
//
// The MCP server is the sole interface: an LLM agent builds media and
// models, runs gapfilling and FBA, and inspects session state through
// the tools and resources registered here. All domain logic lives in the
// service packages; handlers only translate arguments and results.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/modelforge-bio/modelforge/internal/biochem"
	"github.com/modelforge-bio/modelforge/internal/service/fba"
	"github.com/modelforge-bio/modelforge/internal/service/gapfill"
	mediasvc "github.com/modelforge-bio/modelforge/internal/service/media"
	"github.com/modelforge-bio/modelforge/internal/service/modelbuild"
	"github.com/modelforge-bio/modelforge/internal/store"
)

// Server wraps the MCP server with ModelForge's service layer.
type Server struct {
	mcpServer *mcpserver.MCPServer

	index        *biochem.Index
	models       *store.ModelStore
	media        *store.MediaStore
	mediaBuilder *mediasvc.Builder
	modelBuilder *modelbuild.Builder
	gapfiller    *gapfill.Orchestrator
	fbaSvc       *fba.Interpreter
	logger       *slog.Logger
}

// New creates and configures the MCP server with all tools and resources.
func New(
	index *biochem.Index,
	models *store.ModelStore,
	media *store.MediaStore,
	mediaBuilder *mediasvc.Builder,
	modelBuilder *modelbuild.Builder,
	gapfiller *gapfill.Orchestrator,
	fbaSvc *fba.Interpreter,
	logger *slog.Logger,
	version string,
) *Server {
	s := &Server{
		index:        index,
		models:       models,
		media:        media,
		mediaBuilder: mediaBuilder,
		modelBuilder: modelBuilder,
		gapfiller:    gapfiller,
		fbaSvc:       fbaSvc,
		logger:       logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"modelforge",
		version,
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
	)

	s.registerResources()
	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func (s *Server) registerResources() {
	// modelforge://models — every model in the session.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"modelforge://models",
			"Session Models",
			mcplib.WithResourceDescription("All metabolic models in the current session, drafts and gapfilled"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleModelsResource,
	)

	// modelforge://media — every media definition in the session.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"modelforge://media",
			"Session Media",
			mcplib.WithResourceDescription("All growth media in the current session, predefined and user-created"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleMediaResource,
	)

	// modelforge://gapfills/recent — audit trail of gapfill interpretations.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"modelforge://gapfills/recent",
			"Recent Gapfills",
			mcplib.WithResourceDescription("Interpretations of the most recent gapfill runs in this session"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleGapfillsResource,
	)
}

func (s *Server) handleModelsResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	models := s.models.List(nil)
	out := make([]map[string]any, len(models))
	for i, m := range models {
		out[i] = compactModel(m)
	}

	data, err := json.MarshalIndent(map[string]any{"models": out, "total": len(out)}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal models: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "modelforge://models",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleMediaResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	media := s.media.List(nil)
	out := make([]map[string]any, len(media))
	for i, m := range media {
		out[i] = compactMedia(m)
	}

	data, err := json.MarshalIndent(map[string]any{"media": out, "total": len(out)}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal media: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "modelforge://media",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleGapfillsResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	results := s.gapfiller.History(maxListedGapfills)

	data, err := json.MarshalIndent(map[string]any{"gapfills": results, "total": len(results)}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal gapfills: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "modelforge://gapfills/recent",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

func jsonResult(v any) *mcplib.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal result: %v", err))
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(data)},
		},
	}
}
