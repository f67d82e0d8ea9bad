// Package cmd provides CLI command implementations for the lineage
// graph traversal engine.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/lineagehq/lineage-graph/internal/api"
	"github.com/lineagehq/lineage-graph/internal/collapse"
	"github.com/lineagehq/lineage-graph/internal/fixtures"
	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/traversal"
	"github.com/lineagehq/lineage-graph/mcp"
	"github.com/lineagehq/lineage-graph/seed"
)

// Version is set at build time via ldflags.
var Version = "dev"

// TraverseCmd runs a bounded multi-axis traversal from a start node
// against a fixture directory and prints the collapsed result.
type TraverseCmd struct {
	StartNodeID         string `arg:"" help:"Node ID to traverse from"`
	Dir                 string `short:"d" default:"." help:"Fixture directory (taxonomy + graph fragments)"`
	Axes                string `default:"x" help:"Comma-separated axes to traverse (x,y,z)"`
	XDirection          string `help:"X direction: upstream or downstream" enum:",upstream,downstream" default:""`
	YDirection          string `help:"Y direction: up or down" enum:",up,down" default:""`
	MaxZHops            int    `default:"1" help:"Maximum Z hops per path"`
	MaxDepth            int    `help:"Maximum path depth (0 = unbounded)"`
	IncludeTransformers bool   `help:"Keep transformer nodes in the output node list (X hops are folded either way)"`
	JSON                bool   `help:"Print raw JSON instead of a human-readable summary"`
}

// Run executes the traverse command.
func (c *TraverseCmd) Run() error {
	ctx := context.Background()

	adapter, registry, err := fixtures.Load(c.Dir)
	if err != nil {
		return err
	}
	engine := traversal.New(adapter, registry)

	var axes []lineage.Axis
	for _, a := range strings.Split(c.Axes, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			axes = append(axes, lineage.Axis(a))
		}
	}

	req := traversal.Request{
		StartNodeID:         c.StartNodeID,
		Axes:                axes,
		XDirection:          traversal.XDirection(c.XDirection),
		YDirection:          traversal.YDirection(c.YDirection),
		MaxZHops:            c.MaxZHops,
		IncludeTransformers: c.IncludeTransformers,
	}
	if c.MaxDepth > 0 {
		req.MaxDepth = &c.MaxDepth
	}

	raw, err := engine.Traverse(ctx, req)
	if err != nil {
		return err
	}

	result, err := collapse.Collapse(raw, registry, c.IncludeTransformers)
	if err != nil {
		return fmt.Errorf("collapsing result: %w", err)
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printTraversal(result)
	return nil
}

func printTraversal(result *collapse.Result) {
	color.Green("Start: %s (%s)", result.StartNode.ID, result.StartNode.Type)
	fmt.Printf("Nodes visited: %d   Z hops taken: %d   Blocked z-of-z paths: %d\n\n",
		result.Metadata.TotalNodesVisited, result.Metadata.ZHopsTaken, result.Metadata.BlockedZOfZPaths)

	for i, path := range result.Paths {
		fmt.Printf("Path %d:\n", i+1)
		for _, step := range path {
			to := step.To
			if to == "" {
				to = "(unclosed)"
			}
			fmt.Printf("  [%s %s] %s -> %s via %s\n", step.Axis, step.Direction, step.From, to, strings.Join(step.EdgeNames, ","))
		}
	}
}

// ValidateCmd checks a fixture directory's data-dependency nodes for the
// same-dataset authoring mistake the loader does not itself reject.
type ValidateCmd struct {
	Dir    string `short:"d" default:"." help:"Fixture directory (taxonomy + graph fragments)"`
	Strict bool   `help:"Exit non-zero if any problems are found"`
}

// Run executes the validate command.
func (c *ValidateCmd) Run() error {
	ctx := context.Background()

	adapter, _, err := fixtures.Load(c.Dir)
	if err != nil {
		return err
	}

	problems, err := fixtures.CheckDataDependencies(ctx, adapter, adapter.NodeIDs())
	if err != nil {
		return fmt.Errorf("checking data dependencies: %w", err)
	}

	color.Green("Loaded %d nodes, %d edges from %s", adapter.NodeCount(), adapter.EdgeCount(), c.Dir)

	if len(problems) == 0 {
		color.Green("No problems found")
		return nil
	}

	color.Yellow("%d problem(s) found:", len(problems))
	for _, p := range problems {
		fmt.Printf("  - %s\n", p)
	}

	if c.Strict {
		return fmt.Errorf("%d data dependency problem(s) found", len(problems))
	}
	return nil
}

// ServeCmd starts the HTTP lineage API, optionally alongside the MCP
// server over stdio and a fixture file watcher.
type ServeCmd struct {
	Dir   string `short:"d" default:"." help:"Fixture directory (taxonomy + graph fragments)"`
	Addr  string `short:"a" default:":8080" help:"HTTP listen address"`
	Watch bool   `short:"w" help:"Reload fixtures on file change"`
	MCP   bool   `help:"Also run the MCP server over stdio"`
}

// reloadableHandler swaps its backing api.Handler atomically across
// fixture reloads, so in-flight requests always see a consistent pair
// of engine and registry.
type reloadableHandler struct {
	current atomic.Pointer[http.Handler]
}

func (h *reloadableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := h.current.Load()
	if handler == nil {
		http.Error(w, "lineage graph not yet loaded", http.StatusServiceUnavailable)
		return
	}
	(*handler).ServeHTTP(w, r)
}

func (h *reloadableHandler) set(routes http.Handler) {
	h.current.Store(&routes)
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-osSignalChannel()
		log.Info("shutting down")
		cancel()
	}()

	// MCP runs as a stdio loop beside the HTTP server; it does not
	// participate in hot reload, so it gets its own one-time fixture load
	// regardless of --watch.
	if c.MCP {
		adapter, registry, err := fixtures.Load(c.Dir)
		if err != nil {
			return err
		}
		engine := traversal.New(adapter, registry)
		log.Info("starting MCP server over stdio")
		go func() {
			if err := mcp.NewServer(engine, registry, adapter).Run(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
				log.Error("MCP server stopped", zap.Error(err))
			}
		}()
	}

	root := &reloadableHandler{}
	onReload := func(r fixtures.Reload) {
		engine := traversal.New(r.Adapter, r.Registry)
		root.set(api.NewHandler(engine, r.Registry, log).Routes())
	}

	if c.Watch {
		go func() {
			if err := fixtures.Watch(ctx, c.Dir, log, onReload); err != nil && err != context.Canceled {
				log.Error("fixture watcher stopped", zap.Error(err))
			}
		}()
	} else {
		adapter, registry, err := fixtures.Load(c.Dir)
		if err != nil {
			return err
		}
		onReload(fixtures.Reload{Adapter: adapter, Registry: registry})
	}

	httpServer := &http.Server{Addr: c.Addr, Handler: root}
	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Info("starting lineage HTTP API", zap.String("addr", c.Addr), zap.String("dir", c.Dir), zap.Bool("watch", c.Watch))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// MCPCmd starts the MCP server alone over stdio, loading fixtures once.
type MCPCmd struct {
	Dir string `short:"d" default:"." help:"Fixture directory (taxonomy + graph fragments)"`
}

// Run executes the mcp command.
func (c *MCPCmd) Run() error {
	adapter, registry, err := fixtures.Load(c.Dir)
	if err != nil {
		return err
	}
	engine := traversal.New(adapter, registry)
	server := mcp.NewServer(engine, registry, adapter)

	// No output to stderr: the MCP transport is stdio-only JSON-RPC.
	return server.Run(context.Background(), os.Stdin, os.Stdout)
}

// SeedCmd writes the bundled fraud-detection demo fixture set to dir.
type SeedCmd struct {
	Dir   string `arg:"" optional:"" default:"./fixtures" help:"Destination directory"`
	Force bool   `help:"Overwrite existing fixture files"`
}

// Run executes the seed command.
func (c *SeedCmd) Run() error {
	written, err := seed.WriteTo(c.Dir, c.Force)
	if err != nil {
		return err
	}
	color.Green("Wrote %d fixture file(s) to %s:", len(written), c.Dir)
	for _, w := range written {
		fmt.Printf("  %s\n", w)
	}
	return nil
}

// SetupCmd configures MCP for various AI clients.
type SetupCmd struct {
	Qwen     bool   `help:"Configure for Qwen CLI"`
	Claude   bool   `help:"Configure for Claude Code"`
	Cursor   bool   `help:"Configure for Cursor"`
	Local    bool   `help:"Create project-local configuration"`
	Global   bool   `help:"Create global configuration"`
	Format   string `help:"Output format (json|text)" enum:"json,text" default:"json"`
	FilePath string `help:"Custom file path for configuration"`
}

// Run executes the setup command.
func (c *SetupCmd) Run() error {
	if c.Format != "json" && c.Format != "text" {
		return fmt.Errorf("invalid format: %s (must be json or text)", c.Format)
	}

	if !c.Qwen && !c.Claude && !c.Cursor {
		return c.outputDefaultConfig()
	}

	if !c.Local && !c.Global {
		c.Local = true
	}

	if c.Qwen {
		if err := c.setupClient("qwen"); err != nil {
			return err
		}
	}
	if c.Claude {
		if err := c.setupClient("claude"); err != nil {
			return err
		}
	}
	if c.Cursor {
		if err := c.setupClient("cursor"); err != nil {
			return err
		}
	}

	return nil
}

func (c *SetupCmd) outputDefaultConfig() error {
	config := generateMCPConfig()

	if c.Format == "json" {
		jsonBytes, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Println("# Add this to your MCP client configuration:")
		fmt.Println()
		for key, value := range config {
			fmt.Printf("%s: %s\n", key, toJSON(value))
		}
	}

	return nil
}

func (c *SetupCmd) setupClient(client string) error {
	config := generateMCPConfig()

	if c.Global {
		globalPath := getGlobalConfigPath(client)
		if err := writeConfig(globalPath, config, c.Format); err != nil {
			return err
		}
		color.Green("✓ Created global %s MCP config at %s", client, globalPath)
	}

	if c.Local {
		var localPath string
		if c.FilePath != "" {
			localPath = filepath.Join(c.FilePath, "mcp.json")
		} else {
			localPath = getLocalConfigPath(".", client)
		}
		if err := writeConfig(localPath, config, c.Format); err != nil {
			return err
		}
		color.Green("✓ Created local %s MCP config at %s", client, localPath)
	}

	return nil
}

func generateMCPConfig() map[string]any {
	return map[string]any{
		"mcpServers": map[string]any{
			"lineage-graph": map[string]any{
				"command": "lineage-graph",
				"args":    []string{"mcp"},
			},
		},
	}
}

func getLocalConfigPath(basePath, client string) string {
	configDir := getClientConfigDir(client)
	return filepath.Join(basePath, configDir, "mcp.json")
}

func getGlobalConfigPath(client string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
	}

	configDir := getClientConfigDir(client)
	return filepath.Join(homeDir, configDir, "global", "mcp.json")
}

func getClientConfigDir(client string) string {
	switch client {
	case "qwen":
		return ".qwen"
	case "claude":
		return ".claude"
	case "cursor":
		return ".cursor"
	default:
		return ".qwen"
	}
}

func writeConfig(configPath string, config map[string]any, format string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	var content []byte
	var err error

	if format == "json" {
		content, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		content = append(content, '\n')
	} else {
		var sb strings.Builder
		sb.WriteString("# MCP Configuration for the lineage graph engine\n")
		sb.WriteString("# Generated by lineage-graph setup\n\n")
		for key, value := range config {
			sb.WriteString(fmt.Sprintf("%s: %s\n", key, toJSON(value)))
		}
		content = []byte(sb.String())
	}

	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func toJSON(v any) string {
	bytes, _ := json.Marshal(v)
	return string(bytes)
}

func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// CLI is the root Kong command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Verbose bool             `short:"v" help:"Enable verbose output"`
	Quiet   bool             `short:"q" help:"Suppress non-essential output"`

	Traverse TraverseCmd `cmd:"" help:"Run a bounded multi-axis traversal from a start node"`
	Validate ValidateCmd `cmd:"" help:"Check a fixture directory's data dependencies"`
	Serve    ServeCmd    `cmd:"" help:"Serve the lineage HTTP API, optionally with MCP and file watching"`
	MCP      MCPCmd      `cmd:"" help:"Start the MCP server (stdio transport)"`
	Seed     SeedCmd     `cmd:"" help:"Write the bundled demo fixture set to a directory"`
	Setup    SetupCmd    `cmd:"" help:"Configure MCP for Claude Code / Cursor / Qwen"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	kongCtx := kong.Parse(c,
		kong.Name("lineage-graph"),
		kong.Description("Edge-taxonomy-driven lineage graph traversal engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	return kongCtx.Run()
}
