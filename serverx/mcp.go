// Package serverx exposes a toolx.ToolRegistry to the outside: an MCP
// server over stdio, an HTTP API and an AWS Lambda handler. Every host
// returns tool results as envelopes and never turns a failed call into a
// transport error.
package serverx

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/toolx"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "PyWA WhatsApp Server"
	ServerVersion = "1.0.0"
)

// NewMCPServer builds an MCP server with one MCP tool per registered tool.
// An empty registry yields a server that lists no tools.
func NewMCPServer(reg *toolx.ToolRegistry) (*server.MCPServer, error) {
	s := server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false))

	for _, tool := range reg.List() {
		schema, err := json.Marshal(tool.Schema())
		if err != nil {
			return nil, err
		}
		s.AddTool(mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), schema), mcpHandler(tool))
	}

	logx.Debug("MCP server exposes %d tools", reg.Len())
	return s, nil
}

func mcpHandler(tool toolx.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			args = nil
		}
		env := tool.Call(ctx, args)
		return mcp.NewToolResultText(string(env.JSON())), nil
	}
}

// ServeStdio serves s on stdin and stdout until ctx ends or stdin closes.
// Protocol errors go to the logx output, never to stdout.
func ServeStdio(ctx context.Context, s *server.MCPServer) error {
	return serveStdio(ctx, s, os.Stdin, os.Stdout)
}

func serveStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(log.New(logx.GetLogger().Writer(logx.WarnLevel), "", 0))

	logx.Info("Starting %s on stdio", ServerName)
	err := stdio.Listen(ctx, in, out)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
