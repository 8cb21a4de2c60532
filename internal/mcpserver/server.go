// Package mcpserver exposes file extraction as MCP tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/agentic-research/fextract/internal/ingest"
	"github.com/agentic-research/fextract/internal/output"
)

// Server binds a handler registry to an MCP server.
type Server struct {
	registry *ingest.Registry
	logger   *zap.Logger
	// Workers is passed to every directory walk.
	Workers int

	mcp *server.MCPServer
}

// NewServer registers the extract_directory, extract_file and list_formats
// tools.
func NewServer(reg *ingest.Registry, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{registry: reg, logger: logger}
	s.mcp = server.NewMCPServer(
		"fextract",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(
		mcp.NewTool(
			"extract_directory",
			mcp.WithDescription("Extract every file in a directory. Returns a JSON object keyed by file path."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Directory to extract")),
			mcp.WithBoolean("recursive", mcp.Description("Descend into subdirectories (default false)")),
		),
		s.handleExtractDirectory,
	)
	s.mcp.AddTool(
		mcp.NewTool(
			"extract_file",
			mcp.WithDescription("Extract a single file. Returns its JSON record."),
			mcp.WithString("path", mcp.Required(), mcp.Description("File to extract")),
		),
		s.handleExtractFile,
	)
	s.mcp.AddTool(
		mcp.NewTool(
			"list_formats",
			mcp.WithDescription("List supported file extensions and the format each one maps to."),
		),
		s.handleListFormats,
	)
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve answers JSON-RPC requests from in on out until ctx is cancelled or
// in is exhausted.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	s.logger.Info("serving MCP on stdio")
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleExtractDirectory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	w := ingest.NewWalker(s.registry, s.logger)
	w.Recursive = req.GetBool("recursive", false)
	w.Workers = s.Workers
	results, err := w.Walk(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) handleExtractFile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return mcp.NewToolResultErrorf("%s is a directory; use extract_directory", path), nil
	}
	return jsonResult(ingest.NewWalker(s.registry, s.logger).Extract(path))
}

func (s *Server) handleListFormats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formats := make(map[string]string)
	for _, ext := range s.registry.Extensions() {
		formats[ext] = string(s.registry.FormatOf(ext))
	}
	return jsonResult(formats)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := output.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
