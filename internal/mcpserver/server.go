// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the GMGBD catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/siteservice"
)

// Resource URIs.
const (
	CitationURI    = "gmgbd://citation"
	DatasetCardURI = "gmgbd://dataset-card"
)

// Server wraps the MCP server with the catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *siteservice.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *siteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"GMGBD",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("filter_dictionary",
		mcp.WithDescription("Filter the data dictionary by a case-insensitive substring of the column name. "+
			"An empty query returns every column in catalog order."),
		mcp.WithString("query", mcp.Description("Substring of the column name")),
	), s.filterDictionary)

	s.mcp.AddTool(mcp.NewTool("list_visualizations",
		mcp.WithDescription("List gallery visualizations, optionally for one category."),
		mcp.WithString("category", mcp.Description("Gallery category, e.g. \"Global Distribution\" (empty for all)")),
	), s.listVisualizations)

	s.mcp.AddTool(mcp.NewTool("get_visualization",
		mcp.WithDescription("Get one gallery visualization with its asset type and URL."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Visualization ID")),
	), s.getVisualization)

	s.mcp.AddTool(mcp.NewTool("list_benchmarks",
		mcp.WithDescription("Compare GMGBD with other biodiversity datasets."),
	), s.listBenchmarks)

	s.mcp.AddTool(mcp.NewTool("get_asset",
		mcp.WithDescription("Return the published file of a gallery visualization: "+
			"the HTML document as text, or the plot as an image."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Visualization ID")),
	), s.getAsset)

	s.mcp.AddTool(mcp.NewTool("check_assets",
		mcp.WithDescription("Report gallery entries whose plot file is missing from the asset directory."),
	), s.checkAssets)

	s.mcp.AddResource(
		mcp.NewResource(CitationURI, "Dataset Citation",
			mcp.WithResourceDescription("BibTeX entry for citing GMGBD."),
			mcp.WithMIMEType("application/x-bibtex"),
		),
		s.readCitation,
	)

	s.mcp.AddResource(
		mcp.NewResource(DatasetCardURI, "Dataset Card",
			mcp.WithResourceDescription("Columns, gallery categories and citation of GMGBD."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDatasetCard,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) filterDictionary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Dictionary(ctx, req.GetString("query", "")))
}

func (s *Server) listVisualizations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.Visualizations(ctx, req.GetString("category", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) getVisualization(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.svc.Visualization(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(item)
}

func (s *Server) listBenchmarks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Catalog().Benchmarks())
}

func (s *Server) getAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	asset, err := s.svc.Asset(ctx, id)
	if errors.Is(err, siteservice.ErrNoAssetDir) {
		return mcp.NewToolResultError("asset directory is not configured"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if asset.Item.Type == models.AssetImage {
		return mcp.NewToolResultImage(asset.Item.Title, base64.StdEncoding.EncodeToString(asset.Data), asset.MIMEType), nil
	}
	return mcp.NewToolResultText(string(asset.Data)), nil
}

func (s *Server) checkAssets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.CheckAssets(ctx)
	if errors.Is(err, siteservice.ErrNoAssetDir) {
		return mcp.NewToolResultError("asset directory is not configured"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

func (s *Server) readCitation(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CitationURI,
			MIMEType: "application/x-bibtex",
			Text:     s.svc.Catalog().Citation().BibTeX(),
		},
	}, nil
}

func (s *Server) readDatasetCard(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DatasetCardURI,
			MIMEType: "text/markdown",
			Text:     DatasetCard(s.svc.Catalog()),
		},
	}, nil
}
