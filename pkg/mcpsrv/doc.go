// Package mcpsrv provides an extensible MCP server for promptlib.
//
// This package exposes a high-level API for creating and running an MCP server
// with the builtin promptlib tools, prompts, and resources: schema indexing,
// request interpretation, template composition, data validation, rendering,
// and rule checks. Users can extend the server with custom tools, prompts,
// resources, and rule kinds using functional options.
//
// # Basic Usage
//
// Create a server with configuration loaded from the environment:
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    Query string `json:"query"`
//	}
//
//	type MyOutput struct {
//	    Count int `json:"count"`
//	}
//
//	func myHandler(ctx context.Context, req *mcp.CallToolRequest, input MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	    return nil, MyOutput{Count: 42}, nil
//	}
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithTool(&mcp.Tool{Name: "my_tool", Description: "My tool"}, myHandler),
//	)
//
// Add a rule kind usable from promptlib_check_rules:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithRuleKind("max-lines", func(p mcpsrv.RuleParams) (mcpsrv.RuleChecker, error) {
//	        limit, _, err := p.Int("limit")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return mcpsrv.RuleFunc(func(text string) *mcpsrv.RuleFailure {
//	            if n := strings.Count(text, "\n") + 1; n > limit {
//	                return mcpsrv.Fail("%d lines, limit is %d", n, limit)
//	            }
//	            return nil
//	        }), nil
//	    }),
//	)
//
// # Configuration
//
// Configure logging and other options:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/promptlib-mcp.log"),
//	)
package mcpsrv
