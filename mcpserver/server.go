// Package mcpserver exposes botexec over the Model Context Protocol.
//
// The server offers five tools: run_script, vet_script, list_levels,
// search_capabilities and describe_capability. A rejected or failing script
// is a normal tool result; tool errors are reserved for bad requests.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/botexec/capability"
	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/exec"
)

// Name identifies the server to MCP clients.
const Name = "botexec"

// Version is reported in the MCP handshake.
var Version = "v0.1.0"

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
	maxExamples        = 3
)

// Server serves an exec.Exec over MCP.
type Server struct {
	exec   *exec.Exec
	logger code.Logger
	mcp    *mcp.Server
}

// New builds a Server with every tool registered. logger may be nil.
func New(e *exec.Exec, logger code.Logger) *Server {
	s := &Server{
		exec:   e,
		logger: logger,
		mcp:    mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil),
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:  "run_script",
		Title: "Run robot script",
		Description: "Run a robot control script on a level and report the actions, " +
			"the final robot state and whether the level was solved. Available functions: " +
			strings.Join(capability.Names(), ", ") + ".",
		Annotations: &mcp.ToolAnnotations{Title: "Run robot script"},
	}, s.runScript)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "vet_script",
		Title:       "Check robot script",
		Description: "Parse and check a robot control script without running it.",
		Annotations: &mcp.ToolAnnotations{Title: "Check robot script", ReadOnlyHint: true, IdempotentHint: true},
	}, s.vetScript)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_levels",
		Title:       "List levels",
		Description: "List the playable levels with their size, start, goal and hint.",
		Annotations: &mcp.ToolAnnotations{Title: "List levels", ReadOnlyHint: true, IdempotentHint: true},
	}, s.listLevels)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_capabilities",
		Title:       "Search robot functions",
		Description: "Search the functions a robot script can call.",
		Annotations: &mcp.ToolAnnotations{Title: "Search robot functions", ReadOnlyHint: true, IdempotentHint: true},
	}, s.searchCapabilities)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "describe_capability",
		Title:       "Describe robot function",
		Description: "Show the documentation and an example for one robot function.",
		Annotations: &mcp.ToolAnnotations{Title: "Describe robot function", ReadOnlyHint: true, IdempotentHint: true},
	}, s.describeCapability)

	return s
}

// MCP returns the underlying go-sdk server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves over t until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcp.Run(ctx, t)
}

// ServeStdio serves over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

// RunInput is the argument of run_script.
type RunInput struct {
	Level  string `json:"level,omitempty" jsonschema:"level name or 1-based number, defaults to the first level"`
	Script string `json:"script" jsonschema:"robot control script source"`
}

// RunOutput is the result of run_script.
type RunOutput struct {
	RunID          string   `json:"runId"`
	Level          string   `json:"level"`
	Success        bool     `json:"success"`
	Complete       bool     `json:"complete"`
	State          string   `json:"state"`
	Actions        []string `json:"actions"`
	Partial        []string `json:"partial,omitempty"`
	Error          string   `json:"error,omitempty"`
	ErrorKind      string   `json:"errorKind,omitempty"`
	Stdout         string   `json:"stdout,omitempty"`
	Position       []int    `json:"position"`
	Facing         string   `json:"facing"`
	Collected      int      `json:"collected"`
	Remaining      int      `json:"remaining"`
	Steps          int      `json:"steps"`
	ElapsedSeconds float64  `json:"elapsedSeconds"`
}

func (s *Server) runScript(ctx context.Context, _ *mcp.CallToolRequest, in RunInput) (*mcp.CallToolResult, RunOutput, error) {
	key := in.Level
	if key == "" {
		key = "1"
	}
	res, err := s.exec.Run(ctx, key, in.Script)
	if err != nil {
		return nil, RunOutput{}, err
	}
	s.info("run_script", "run_id", res.RunID, "level", res.Level, "state", res.State)

	out := RunOutput{
		RunID:          res.RunID,
		Level:          res.Level,
		Success:        res.Success,
		Complete:       res.Complete,
		State:          string(res.State),
		Actions:        res.Actions,
		Partial:        res.Partial,
		Error:          res.Error,
		ErrorKind:      string(res.ErrorKind),
		Stdout:         res.Stdout,
		Position:       []int{res.Position[0], res.Position[1]},
		Facing:         res.Facing,
		Collected:      res.Collected,
		Remaining:      res.Remaining,
		Steps:          res.Steps,
		ElapsedSeconds: res.ElapsedSeconds,
	}
	if out.Actions == nil {
		out.Actions = []string{}
	}
	return nil, out, nil
}

// VetInput is the argument of vet_script.
type VetInput struct {
	Script string `json:"script" jsonschema:"robot control script source"`
}

// VetOutput is the result of vet_script.
type VetOutput struct {
	OK     bool   `json:"ok"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (s *Server) vetScript(ctx context.Context, _ *mcp.CallToolRequest, in VetInput) (*mcp.CallToolResult, VetOutput, error) {
	err := s.exec.Vet(ctx, in.Script)
	if err == nil {
		return nil, VetOutput{OK: true}, nil
	}
	var ce *code.CodeError
	if !errors.As(err, &ce) {
		return nil, VetOutput{}, err
	}
	return nil, VetOutput{
		Kind:   string(ce.Kind),
		Error:  ce.Error(),
		Line:   ce.Line,
		Column: ce.Column,
	}, nil
}

// LevelsInput is the (empty) argument of list_levels.
type LevelsInput struct{}

// LevelOutput describes one level.
type LevelOutput struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	GridSize     int    `json:"gridSize"`
	Start        []int  `json:"start"`
	Goal         []int  `json:"goal"`
	Facing       string `json:"facing"`
	Obstacles    int    `json:"obstacles"`
	Collectibles int    `json:"collectibles"`
	Hint         string `json:"hint,omitempty"`
}

// LevelsOutput is the result of list_levels.
type LevelsOutput struct {
	Levels []LevelOutput `json:"levels"`
}

func (s *Server) listLevels(_ context.Context, _ *mcp.CallToolRequest, _ LevelsInput) (*mcp.CallToolResult, LevelsOutput, error) {
	infos := s.exec.Levels()
	out := LevelsOutput{Levels: make([]LevelOutput, 0, len(infos))}
	for _, l := range infos {
		out.Levels = append(out.Levels, LevelOutput{
			Number:       l.Number,
			Name:         l.Name,
			GridSize:     l.GridSize,
			Start:        []int{l.Start[0], l.Start[1]},
			Goal:         []int{l.Goal[0], l.Goal[1]},
			Facing:       l.Facing,
			Obstacles:    l.Obstacles,
			Collectibles: l.Collectibles,
			Hint:         l.Hint,
		})
	}
	return nil, out, nil
}

// SearchInput is the argument of search_capabilities.
type SearchInput struct {
	Query string `json:"query" jsonschema:"words describing what the robot should do or sense"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, 1 to 20"`
}

// CapabilityOutput summarizes one robot function.
type CapabilityOutput struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags,omitempty"`
}

// SearchOutput is the result of search_capabilities.
type SearchOutput struct {
	Capabilities []CapabilityOutput `json:"capabilities"`
}

func (s *Server) searchCapabilities(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	hits, err := s.exec.SearchCapabilities(ctx, in.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	out := SearchOutput{Capabilities: make([]CapabilityOutput, 0, len(hits))}
	for _, h := range hits {
		out.Capabilities = append(out.Capabilities, CapabilityOutput{
			ID:      h.ID,
			Name:    h.Name,
			Summary: h.ShortDescription,
			Tags:    h.Tags,
		})
	}
	return nil, out, nil
}

// DescribeInput is the argument of describe_capability.
type DescribeInput struct {
	Name   string `json:"name" jsonschema:"function name such as is_clear, or a robot:name ID"`
	Detail string `json:"detail,omitempty" jsonschema:"summary or full; defaults to full"`
}

// DescribeOutput is the result of describe_capability.
type DescribeOutput struct {
	Name     string   `json:"name"`
	Summary  string   `json:"summary"`
	Notes    string   `json:"notes,omitempty"`
	Examples []string `json:"examples,omitempty"`
}

func (s *Server) describeCapability(ctx context.Context, _ *mcp.CallToolRequest, in DescribeInput) (*mcp.CallToolResult, DescribeOutput, error) {
	detail, err := parseDetail(in.Detail)
	if err != nil {
		return nil, DescribeOutput{}, err
	}
	doc, err := s.exec.DescribeCapability(ctx, in.Name, detail)
	if err != nil {
		return nil, DescribeOutput{}, err
	}
	out := DescribeOutput{Name: in.Name, Summary: doc.Summary, Notes: doc.Notes}
	if doc.Tool != nil {
		out.Name = doc.Tool.Name
	}
	examples, err := s.exec.Catalog().Examples(in.Name, maxExamples)
	if err != nil {
		return nil, DescribeOutput{}, err
	}
	for _, ex := range examples {
		out.Examples = append(out.Examples, ex.Description)
	}
	return nil, out, nil
}

func parseDetail(s string) (tooldoc.DetailLevel, error) {
	switch strings.ToLower(s) {
	case "", "full":
		return tooldoc.DetailFull, nil
	case "summary":
		return tooldoc.DetailSummary, nil
	default:
		return tooldoc.DetailFull, fmt.Errorf("unknown detail level %q", s)
	}
}
