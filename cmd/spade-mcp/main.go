// Command spade-mcp serves the file-discovery tools over the Model
// Context Protocol on stdio, so MCP-speaking clients can call glob,
// grep, and get_project_file_structure against a local checkout, a
// docker container, or the in-process simulated shell.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"spade.dev/execenv"
	"spade.dev/scribe"
	"spade.dev/spadetool"
	"spade.dev/tool"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func run() error {
	dir := flag.String("C", "", "working directory for the environment")
	envName := flag.String("env", "local", "execution environment: local, docker, or shell")
	container := flag.String("container", "", "container name or ID (docker env only)")
	flag.Parse()

	// stdout is the MCP transport; logs must stay off it.
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(scribe.AttrsWrap(handler)))

	var env execenv.Env
	switch *envName {
	case "local":
		env = &execenv.Local{Dir: *dir}
	case "docker":
		if *container == "" {
			return fmt.Errorf("-container is required with -env docker")
		}
		env = &execenv.Docker{Container: *container, Dir: *dir}
	case "shell":
		env = &execenv.Shell{Dir: *dir}
	default:
		return fmt.Errorf("unknown env %q: want local, docker, or shell", *envName)
	}

	registry, err := tool.NewRegistry(
		spadetool.NewGlobTool(env),
		spadetool.NewGrepTool(env),
		spadetool.NewStructureTool(env),
	)
	if err != nil {
		return err
	}

	srv := server.NewMCPServer("spade", "1.0.0", server.WithToolCapabilities(false))
	for _, t := range registry.Tools() {
		srv.AddTool(mcp.NewToolWithRawSchema(t.Name, t.Description, t.InputSchema), mcpHandler(t))
	}
	return server.ServeStdio(srv)
}

// mcpHandler adapts a tool to the MCP request/response shapes. Tool
// errors become tool results, not protocol errors, so the model sees
// them and can retry.
func mcpHandler(t *tool.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ctx = scribe.ContextWithAttr(ctx, slog.String("tool", t.Name))
		out, err := t.Run(ctx, input)
		if err != nil {
			slog.DebugContext(ctx, "tool call failed", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
