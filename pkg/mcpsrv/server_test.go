package mcpsrv

import (
	"context"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/promptlib-mcp/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		SchemaCacheMaxItems:   8,
		TemplateCacheMaxItems: 8,
		CheckWorkers:          2,
		MaxCheckDocuments:     8,
		MaxInputBytes:         1 << 16,
		LogLevel:              "error",
	}
}

func maxLines(p RuleParams) (RuleChecker, error) {
	limit, ok, err := p.Int("limit")
	if err != nil {
		return nil, err
	}
	if !ok {
		limit = 1
	}
	return RuleFunc(func(text string) *RuleFailure {
		if n := strings.Count(text, "\n") + 1; n > limit {
			return Fail("%d lines, limit is %d", n, limit)
		}
		return nil
	}), nil
}

func connect(t *testing.T, s *Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestNewServer_RuleKind(t *testing.T) {
	s, err := NewServer(WithConfig(testConfig()), WithRuleKind("max_lines", maxLines))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Contains(t, s.Deps().Rules.Kinds(), "max-lines")
	set, err := s.Deps().Rules.Load(`[{"id":"short","kind":"max-lines","parameters":{"limit":2}}]`)
	require.NoError(t, err)
	assert.Empty(t, set.Check("one\ntwo"))
	require.Len(t, set.Check("one\ntwo\nthree"), 1)
}

func TestNewServer_DuplicateRuleKind(t *testing.T) {
	_, err := NewServer(WithConfig(testConfig()), WithRuleKind("regex-match", maxLines))
	assert.Error(t, err)
}

func TestServer_ToolsOverTransport(t *testing.T) {
	s, err := NewServer(WithConfig(testConfig()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	cs := connect(t, s)
	ctx := context.Background()

	listed, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "promptlib_compose_template")
	assert.Contains(t, names, "promptlib_check_rules")

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "promptlib_compose_template",
		Arguments: map[string]any{"schema": `{"products":[{"name":"string"}]}`, "text": "list of products"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	out, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "list", out["layout"])

	// Tool failures come back as error results, not protocol errors.
	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "promptlib_validate_data",
		Arguments: map[string]any{"schema_digest": "missing", "data": map[string]any{}},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_WithoutBuiltins(t *testing.T) {
	type in struct {
		Name string `json:"name"`
	}
	type out struct {
		Greeting string `json:"greeting"`
	}
	s, err := NewServer(
		WithConfig(testConfig()),
		WithoutBuiltinTools(),
		WithoutBuiltinPrompts(),
		WithTool(&sdkmcp.Tool{Name: "greet", Description: "Greet"}, func(ctx context.Context, req *sdkmcp.CallToolRequest, input in) (*sdkmcp.CallToolResult, out, error) {
			return nil, out{Greeting: "hi " + input.Name}, nil
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	cs := connect(t, s)

	listed, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 1)
	assert.Equal(t, "greet", listed.Tools[0].Name)
}
