// Package mcpserver exposes the agent-facing tool surface from spec §6.3
// (inspect, apply, export, get_markdown) as MCP tools via
// github.com/mark3labs/mcp-go/server, the server-side counterpart of the
// teacher's MCP client usage in internal/hivemind/service/mcp/server.go.
package mcpserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jlevy/markform/internal/markform/export"
	"github.com/jlevy/markform/internal/markform/inspector"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/parser"
	"github.com/jlevy/markform/internal/markform/patchapply"
	"github.com/jlevy/markform/internal/markform/serializer"
	"github.com/jlevy/markform/pkg/logger"
)

// ModuleName tags this package's log lines.
const ModuleName = "markform.mcpserver"

// Session holds the single ParsedForm an MCP connection operates on.
// spec §5 treats ParsedForm as logically immutable; Session is the mutable
// pointer-to-current-version a tool call advances, guarded by mu so a
// server can field concurrent tool calls from one agent session safely.
type Session struct {
	mu   sync.Mutex
	form *model.ParsedForm
}

// NewSession starts a session from already-parsed form state.
func NewSession(form *model.ParsedForm) *Session {
	return &Session{form: form}
}

// Form returns the session's current ParsedForm.
func (s *Session) Form() *model.ParsedForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Session) replace(f *model.ParsedForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

// Inspect runs the inspector against the session's current form.
func Inspect(sess *Session) inspector.Report {
	return inspector.Inspect(sess.Form(), inspector.Options{})
}

// Apply applies patches to the session's current form and installs the
// result as the new current form, matching spec §6.3's apply() semantics.
func Apply(sess *Session, patches []model.Patch) model.ApplyResult {
	result := patchapply.Apply(sess.Form(), patches)
	sess.replace(result.NewForm)
	return result
}

// Export returns the session's current schema + values map (spec §6.3
// export() -> { schema, values }).
func Export(sess *Session) (schema *export.JSONSchema, values map[model.Id]export.ValueEntry) {
	form := sess.Form()
	return export.Schema(form), export.ValuesMap(form)
}

// Markdown serializes the session's current form back to canonical source.
func Markdown(sess *Session) (string, error) {
	return serializer.Serialize(sess.Form())
}

// Register attaches the four tool handlers to srv, operating against sess.
func Register(srv *server.MCPServer, sess *Session) {
	srv.AddTool(inspectTool(), inspectHandler(sess))
	srv.AddTool(applyTool(), applyHandler(sess))
	srv.AddTool(exportTool(), exportHandler(sess))
	srv.AddTool(getMarkdownTool(), getMarkdownHandler(sess))
}

func inspectTool() mcp.Tool {
	return mcp.NewTool("inspect",
		mcp.WithDescription("Inspect the current form: structure, per-role progress, and a priority-ordered issue list."),
	)
}

func inspectHandler(sess *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(Inspect(sess))
	}
}

func applyTool() mcp.Tool {
	return mcp.NewTool("apply",
		mcp.WithDescription("Apply a batch of patches to the current form, best-effort, returning an ApplyResult."),
		mcp.WithString("patches", mcp.Required(), mcp.Description("JSON-encoded array of Patch objects: {op, fieldId, value?, reason?}")),
	)
}

func applyHandler(sess *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := req.Params.Arguments.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("apply: missing arguments"), nil
		}
		raw, ok := args["patches"].(string)
		if !ok {
			return mcp.NewToolResultError("apply: missing required string argument \"patches\""), nil
		}
		var patches []model.Patch
		if err := sonic.UnmarshalString(raw, &patches); err != nil {
			logger.WarnX(ModuleName, "[mcpserver] apply: rejecting malformed patches payload: %v", err)
			return mcp.NewToolResultError(fmt.Sprintf("apply: invalid patches JSON: %v", err)), nil
		}

		return jsonResult(Apply(sess, patches))
	}
}

func exportTool() mcp.Tool {
	return mcp.NewTool("export",
		mcp.WithDescription("Export the current form's JSON Schema and values map."),
	)
}

func exportHandler(sess *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema, values := Export(sess)
		return jsonResult(struct {
			Schema *export.JSONSchema             `json:"schema"`
			Values map[model.Id]export.ValueEntry `json:"values"`
		}{Schema: schema, Values: values})
	}
}

func getMarkdownTool() mcp.Tool {
	return mcp.NewTool("get_markdown",
		mcp.WithDescription("Return the current form's canonical Markdown source."),
	)
}

func getMarkdownHandler(sess *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		src, err := Markdown(sess)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get_markdown: %v", err)), nil
		}
		return mcp.NewToolResultText(src), nil
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := sonic.MarshalString(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(out), nil
}

// ParseAndReplace re-parses raw Markdown and installs it as sess's current
// form; exposed for callers that load a .form.md file
// before starting the MCP server loop.
func ParseAndReplace(sess *Session, raw string) error {
	form, err := parser.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	sess.replace(form)
	return nil
}
