// Package mcpserver exposes engine verbs as MCP tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lydakis/ahkx/internal/engine"
	"github.com/lydakis/ahkx/internal/message"
)

// Engine is the part of *engine.Engine the server exposes.
type Engine interface {
	FunctionCall(ctx context.Context, name string, args ...string) (message.Response, error)
	ListWindows(ctx context.Context, q engine.WinQuery) ([]engine.Window, error)
	WinGetTitle(ctx context.Context, q engine.WinQuery) (string, error)
	MousePosition(ctx context.Context) (message.Point, error)
	Send(ctx context.Context, keys string, opts engine.SendOptions) error
	WinActivate(ctx context.Context, q engine.WinQuery) error
	GetClipboard(ctx context.Context) (string, error)
	SetClipboard(ctx context.Context, text string) error
	AddHotkey(h engine.Hotkey) error
	StartHotkeys(ctx context.Context) error
}

// Server is an MCP server bound to one engine.
type Server struct {
	engine Engine
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New builds the server and registers its tools.
func New(e Engine, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: e,
		mcp:    server.NewMCPServer("ahkx", version, server.WithToolCapabilities(false)),
		logger: logger.With("component", "mcpserver"),
	}
	s.mcp.AddTool(functionCallTool, s.handleFunctionCall)
	s.mcp.AddTool(listWindowsTool, s.handleListWindows)
	s.mcp.AddTool(mousePositionTool, s.handleMousePosition)
	s.mcp.AddTool(sendTool, s.handleSend)
	s.mcp.AddTool(winActivateTool, s.handleWinActivate)
	s.mcp.AddTool(clipboardGetTool, s.handleClipboardGet)
	s.mcp.AddTool(clipboardSetTool, s.handleClipboardSet)
	s.mcp.AddTool(hotkeyTool, s.handleHotkey)
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve speaks MCP on in/out until ctx is done or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("serving MCP on stdio")
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func objectSchema(required []string, props map[string]any) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{Type: "object", Properties: props, Required: required}
}

var (
	stringProp = func(desc string) map[string]any { return map[string]any{"type": "string", "description": desc} }

	functionCallTool = mcp.Tool{
		Name:        "function_call",
		Description: "Calls one interpreter function by name and returns its decoded value",
		InputSchema: objectSchema([]string{"name"}, map[string]any{
			"name": stringProp("Interpreter function name, e.g. WinGetTitle"),
			"args": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Positional arguments"},
		}),
	}
	listWindowsTool = mcp.Tool{
		Name:        "list_windows",
		Description: "Lists top-level windows, optionally filtered by title",
		InputSchema: objectSchema(nil, map[string]any{
			"title":  stringProp("Window title filter (prefix match)"),
			"titles": map[string]any{"type": "boolean", "description": "Include each window's title"},
		}),
	}
	mousePositionTool = mcp.Tool{
		Name:        "mouse_position",
		Description: "Returns the mouse cursor position",
		InputSchema: objectSchema(nil, map[string]any{}),
	}
	sendTool = mcp.Tool{
		Name:        "send",
		Description: "Sends keystrokes using the interpreter's key syntax",
		InputSchema: objectSchema([]string{"keys"}, map[string]any{
			"keys": stringProp("Keys to send, e.g. ^c or {Enter}"),
		}),
	}
	winActivateTool = mcp.Tool{
		Name:        "win_activate",
		Description: "Activates the first window whose title matches",
		InputSchema: objectSchema([]string{"title"}, map[string]any{
			"title": stringProp("Window title (prefix match), or ahk_id <hwnd>"),
		}),
	}
	clipboardGetTool = mcp.Tool{
		Name:        "clipboard_get",
		Description: "Returns the clipboard text",
		InputSchema: objectSchema(nil, map[string]any{}),
	}
	clipboardSetTool = mcp.Tool{
		Name:        "clipboard_set",
		Description: "Replaces the clipboard text",
		InputSchema: objectSchema([]string{"text"}, map[string]any{
			"text": stringProp("New clipboard text"),
		}),
	}
	hotkeyTool = mcp.Tool{
		Name:        "hotkey",
		Description: "Binds a hotkey that sends keys when pressed",
		InputSchema: objectSchema([]string{"key", "send"}, map[string]any{
			"key":  stringProp("Hotkey in the interpreter's syntax, e.g. #n"),
			"send": stringProp("Keys to send when the hotkey fires"),
		}),
	}
)

func (s *Server) failure(tool string, err error) *mcp.CallToolResult {
	switch {
	case engine.IsFatal(err):
		s.logger.Error("interpreter failure", "tool", tool, "error", err)
	default:
		s.logger.Debug("tool failed", "tool", tool, "error", err)
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) handleFunctionCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args, err := stringArgs(req.GetArguments()["args"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := s.engine.FunctionCall(ctx, name, args...)
	if err != nil {
		return s.failure("function_call", err), nil
	}
	value, err := resp.Unpack()
	if err != nil {
		return s.failure("function_call", err), nil
	}
	return mcp.NewToolResultStructuredOnly(map[string]any{
		"kind":  resp.Kind.Name,
		"value": value,
	}), nil
}

func stringArgs(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("args must be an array of strings, got %T", raw)
	}
	out := make([]string, len(list))
	for i, v := range list {
		switch v := v.(type) {
		case string:
			out[i] = v
		case float64, bool:
			out[i] = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("args[%d] must be a string, got %T", i, v)
		}
	}
	return out, nil
}

func (s *Server) handleListWindows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := engine.WinQuery{Title: req.GetString("title", "")}
	windows, err := s.engine.ListWindows(ctx, q)
	if err != nil {
		return s.failure("list_windows", err), nil
	}
	withTitles := req.GetBool("titles", false)
	entries := make([]map[string]any, 0, len(windows))
	for _, w := range windows {
		entry := map[string]any{"id": w.ID}
		if withTitles {
			title, err := s.engine.WinGetTitle(ctx, w.Query())
			if err != nil && !errors.Is(err, engine.ErrWindowNotFound) {
				return s.failure("list_windows", err), nil
			}
			entry["title"] = title
		}
		entries = append(entries, entry)
	}
	return mcp.NewToolResultStructuredOnly(map[string]any{"windows": entries}), nil
}

func (s *Server) handleMousePosition(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pt, err := s.engine.MousePosition(ctx)
	if err != nil {
		return s.failure("mouse_position", err), nil
	}
	return mcp.NewToolResultStructuredOnly(map[string]any{"x": pt.X, "y": pt.Y}), nil
}

func (s *Server) handleSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, err := req.RequireString("keys")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.Send(ctx, keys, engine.SendOptions{}); err != nil {
		return s.failure("send", err), nil
	}
	return mcp.NewToolResultText("sent"), nil
}

func (s *Server) handleWinActivate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("title must not be empty"), nil
	}
	if err := s.engine.WinActivate(ctx, engine.ByTitle(title)); err != nil {
		return s.failure("win_activate", err), nil
	}
	return mcp.NewToolResultText("activated"), nil
}

func (s *Server) handleClipboardGet(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.engine.GetClipboard(ctx)
	if err != nil {
		return s.failure("clipboard_get", err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleClipboardSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.SetClipboard(ctx, text); err != nil {
		return s.failure("clipboard_set", err), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleHotkey(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	keys, err := req.RequireString("send")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	err = s.engine.AddHotkey(engine.Hotkey{
		KeyName: key,
		Callback: func() error {
			return s.engine.Send(context.Background(), keys, engine.SendOptions{})
		},
		ExceptionHandler: func(id string, err error) {
			s.logger.Warn("hotkey send failed", "key", key, "id", id, "error", err)
		},
	})
	if err != nil {
		return s.failure("hotkey", err), nil
	}
	if err := s.engine.StartHotkeys(ctx); err != nil {
		return s.failure("hotkey", err), nil
	}
	return mcp.NewToolResultText("bound " + key), nil
}
