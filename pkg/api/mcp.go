package api

import (
	"context"
	"strings"

	"github.com/RamsisDev/Latip-Hackaton/pkg/kit"
	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the Latip MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, store *trademark.Store) {
	registerSearchTrademarks(srv, store)
	registerListCountries(srv, store)
}

// NewMCPServer returns an MCP server carrying every Latip tool.
func NewMCPServer(store *trademark.Store, version string) *server.MCPServer {
	srv := server.NewMCPServer("latip", version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, store)
	return srv
}

func registerSearchTrademarks(srv *server.MCPServer, store *trademark.Store) {
	tool := mcp.NewTool("search_trademarks",
		mcp.WithDescription("Find registered trademarks whose names are similar to a proposed name, ranked by bigram similarity."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The proposed trademark name")),
		mcp.WithString("region", mcp.Description("ISO country code (e.g. MX) or \"global\" for every country")),
	)

	ep := kit.Chain(kit.RequestID())(searchEndpoint(store))
	kit.RegisterMCPTool(srv, tool, ep, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		query, _ := args["query"].(string)
		region, _ := args["region"].(string)
		return &kit.MCPDecodeResult{
			Request: &searchReq{Query: query, Region: strings.TrimSpace(region)},
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithTransport(ctx, "mcp")
			},
		}, nil
	})
}

func registerListCountries(srv *server.MCPServer, store *trademark.Store) {
	tool := mcp.NewTool("list_countries",
		mcp.WithDescription("List the countries with loaded trademark registers and their record counts."),
	)

	kit.RegisterMCPTool(srv, tool, countriesEndpoint(store), func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}
