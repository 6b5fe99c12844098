package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/knights-tour/tour/engine"
	"github.com/wricardo/knights-tour/tour/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Knight's Tour",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Knight's Tour - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A knight starts on one square and moves by Warnsdorff's rule: always to the
unvisited square with the fewest onward moves. The tour completes when every
square is visited and gets stuck when the knight has no legal move left.

AVAILABLE TOOLS:
- create_tour: Start a new tour (optional config, seed or start square)
- list_tours / get_tour: Inspect tours
- tour_state: Current board with visit order
- step: One Warnsdorff move
- bulk_step: Up to n moves at once
- run_tour: Drive the tour to the end
- reset_tour: Clear the board back to the start square
- move_history: Past moves with pagination
- candidates: Onward moves with their accessibility scores
- list_configs: Available board configurations
- tour_instructions: Rules and notation
- describe_square: Details of a single square`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Tour session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Tour sessions
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_tour",
		Description: "Create a new knight's tour. The start square is random unless start_row and start_col are given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Board configuration to use (optional, defaults to the classic 8x8 board)",
				},
				"seed": map[string]any{
					"type":        "integer",
					"description": "Seed for a reproducible random start square",
				},
				"start_row": map[string]any{
					"type":        "integer",
					"description": "Start row (0-based, requires start_col)",
				},
				"start_col": map[string]any{
					"type":        "integer",
					"description": "Start column (0-based, requires start_row)",
				},
			},
		},
	}, c.handleCreateTour)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_tours",
		Description: "List all tours",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListTours)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_tour",
		Description: "Get details of a specific tour",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetTour)

	// Tour operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tour_state",
		Description: "Get the current board, knight position and status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleTourState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Move the knight once using Warnsdorff's rule",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_step",
		Description: fmt.Sprintf("Move the knight up to n times, stopping early when the tour finishes (max %d)", engine.MaxBulkSteps),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"n": map[string]any{
					"type":        "integer",
					"description": "Number of moves to attempt",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset before stepping",
				},
			},
			Required: []string{"session_id", "n"},
		},
	}, c.handleBulkStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_tour",
		Description: "Drive the tour until it completes or gets stuck",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleRunTour)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_tour",
		Description: "Clear the board back to the start square",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleResetTour)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a tour",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "candidates",
		Description: "List the squares the knight may move to next with their accessibility; the lowest score is chosen, earlier offsets win ties",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleCandidates)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tour_instructions",
		Description: "Get the rules of the tour and how to read the board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleTourInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_square",
		Description: "Get the label, algebraic name and onward moves of a single square",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"row": map[string]any{
					"type":        "integer",
					"description": "Row of the square (0-based, top row is 0)",
				},
				"col": map[string]any{
					"type":        "integer",
					"description": "Column of the square (0-based, column a is 0)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeSquare)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func tourPath(sessionID string, suffix string) string {
	return "/api/tours/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateTour(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]any{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}
	if _, ok := args["seed"]; ok {
		body["seed"] = request.GetInt("seed", 0)
	}

	_, hasRow := args["start_row"]
	_, hasCol := args["start_col"]
	if hasRow != hasCol {
		return mcp.NewToolResultError("start_row and start_col must be given together"), nil
	}
	if hasRow {
		body["start"] = engine.Position{
			Row: request.GetInt("start_row", 0),
			Col: request.GetInt("start_col", 0),
		}
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/tours", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created tour\n" + formatSessionInfo(&session)), nil
}

func (c *Client) handleListTours(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/tours", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tours (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status, visited, cells := "unknown", 0, 0
		if s.TourState != nil {
			status = string(s.TourState.Status)
			visited = s.TourState.NextLabel - 1
			cells = len(s.TourState.Labels) * rowWidth(s.TourState.Labels)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, %s, %d/%d visited, Created: %s)\n",
			s.ID, s.ConfigName, status, visited, cells, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetTour(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", tourPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleTourState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.TourState
	if err := c.apiCall(ctx, "GET", tourPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTourState(&state)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.StepResult
	if err := c.apiCall(ctx, "POST", tourPath(sessionID, "/step"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleBulkStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := request.RequireInt("n")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{
		"n":     n,
		"reset": request.GetBool("reset", false),
	}

	var result service.BulkStepResult
	if err := c.apiCall(ctx, "POST", tourPath(sessionID, "/bulk-step"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkStepResult(sessionID, &result)), nil
}

func (c *Client) handleRunTour(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.RunResult
	if err := c.apiCall(ctx, "POST", tourPath(sessionID, "/run"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleResetTour(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.TourState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", tourPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatTourState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}

	path := tourPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response service.CandidatesResponse
	if err := c.apiCall(ctx, "GET", tourPath(sessionID, "/candidates"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCandidates(&response)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Board: %dx%d, Offsets: %d\n\n",
			config.ConfigID, config.Name, config.Description, config.Rows, config.Cols, config.Offsets)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleTourInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Knight's Tour - Instructions

OBJECTIVE:
Visit every square of the board exactly once with a knight.

MOVEMENT:
The knight jumps by the offsets of its board configuration. The classic
board uses the eight chess knight jumps, checked in this order:
  (-2,-1) (2,-1) (-1,-2) (1,-2) (-2,1) (2,1) (-1,2) (1,2)

WARNSDORFF'S RULE:
From the current square, every unvisited in-bounds destination is scored by
how many unvisited squares it can reach in turn (its accessibility). The
knight moves to the destination with the lowest score. On a tie the
destination whose offset comes first in the table wins.

READING THE BOARD:
• Columns are lettered a, b, c... and rows numbered from 0 at the top
• S♞ marks the start square
• Numbers give the visit order; the first move is labelled 02
• E♞ marks the final square of a complete tour
• . is an unvisited square
On the classic 8x8 board, squares also have algebraic names: row 0 is
rank 8 and row 7 is rank 1, so (0,0) is a8 and (7,7) is h1.

OUTCOMES:
• complete: every square is visited
• stuck: the knight has no unvisited destination left
A finished tour cannot step further; use reset_tour to start over from the
same square or create_tour for a new one.

TOOLS:
• step / bulk_step / run_tour advance the tour
• candidates shows exactly what Warnsdorff's rule is choosing between
• describe_square inspects any square`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeSquare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := request.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := request.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", tourPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if session.TourState == nil || session.BoardConfig == nil {
		return mcp.NewToolResultError("tour has no state"), nil
	}

	return mcp.NewToolResultText(describeSquare(session.TourState, session.BoardConfig, row, col)), nil
}

func describeSquare(state *engine.TourState, config *engine.BoardConfig, row, col int) string {
	board := engine.BoardFromLabels(state.Labels, state.Position)
	if !board.InBounds(row, col) {
		return fmt.Sprintf("Square (%d,%d) is out of bounds. Board is %dx%d (rows 0-%d, cols 0-%d)",
			row, col, board.Rows(), board.Cols(), board.Rows()-1, board.Cols()-1)
	}

	pos := engine.Position{Row: row, Col: col}
	label := board.Label(row, col)

	var b strings.Builder
	fmt.Fprintf(&b, "Square (%d,%d)", row, col)
	if name := engine.SquareName(pos, board.Rows(), board.Cols()); name != "" {
		fmt.Fprintf(&b, " [%s]", name)
	}
	b.WriteString("\n")

	switch {
	case label == engine.StartLabel:
		b.WriteString("Start square\n")
	case label == engine.Unvisited:
		b.WriteString("Unvisited\n")
	default:
		fmt.Fprintf(&b, "Visited as move %d\n", label-1)
	}
	if pos == state.Position {
		b.WriteString("The knight is here\n")
	}

	onward := engine.Accessibility(board, config.Offsets, row, col)
	fmt.Fprintf(&b, "Unvisited squares reachable from here: %d\n", onward)

	reachable := engine.IsKnightStep(config.Offsets, state.Position, pos)
	if reachable && label == engine.Unvisited {
		b.WriteString("Legal next move for the knight\n")
	}

	return b.String()
}

// Formatting helpers

func rowWidth(labels [][]int) int {
	if len(labels) == 0 {
		return 0
	}
	return len(labels[0])
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Tour: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatTourState(session.TourState))
}

func formatTourState(state *engine.TourState) string {
	if state == nil {
		return "No tour state available"
	}

	rows, cols := len(state.Labels), rowWidth(state.Labels)

	var b strings.Builder
	fmt.Fprintf(&b, "Knight: %s | Start: %s | Visited: %d/%d | Status: %s\n",
		squareLabel(state.Position, rows, cols), squareLabel(state.Start, rows, cols),
		state.NextLabel-1, rows*cols, state.Status)
	b.WriteString(engine.Render(state))

	switch state.Status {
	case engine.Complete:
		b.WriteString("\nTour complete.")
	case engine.Stuck:
		b.WriteString("\nKnight is stuck.")
	}

	return b.String()
}

func squareLabel(pos engine.Position, rows, cols int) string {
	if name := engine.SquareName(pos, rows, cols); name != "" {
		return fmt.Sprintf("%s (%d,%d)", name, pos.Row, pos.Col)
	}
	return fmt.Sprintf("(%d,%d)", pos.Row, pos.Col)
}

func formatStepLine(entry engine.MoveHistoryEntry) string {
	square := entry.Square
	if square == "" {
		square = fmt.Sprintf("(%d,%d)", entry.To.Row, entry.To.Col)
	}
	return fmt.Sprintf("  #%d (%d,%d)→(%d,%d) %s accessibility=%d of %d candidates\n",
		entry.MoveNumber, entry.From.Row, entry.From.Col, entry.To.Row, entry.To.Col,
		square, entry.Accessibility, entry.Candidates)
}

func formatEvents(b *strings.Builder, events []service.TourEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Knight moved\n")
	} else {
		b.WriteString("✗ No move made\n")
	}
	if result.Move != nil {
		b.WriteString(formatStepLine(*result.Move))
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	formatEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatTourState(result.TourState))
	return b.String()
}

func formatBulkStepResult(sessionID string, result *service.BulkStepResult) string {
	var b strings.Builder

	configName := ""
	if result.TourState != nil {
		configName = result.TourState.ConfigName
	}
	fmt.Fprintf(&b, "Tour: %s • Config: %s\n", sessionID, configName)
	fmt.Fprintf(&b, "Executed %d/%d moves (visited %d → %d)\n",
		result.MovesExecuted, result.RequestedMoves, result.VisitedStart, result.VisitedEnd)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}
	formatEvents(&b, result.Events)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	if len(result.Candidates) > 0 {
		b.WriteString("\nNext candidates:\n")
		b.WriteString(formatCandidateLines(result.Candidates))
	}

	b.WriteString("\n")
	b.WriteString(formatTourState(result.TourState))
	return b.String()
}

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d moves, tour is %s\n", result.MovesExecuted, result.StopReasonCode)
	if r := result.Result; r != nil {
		fmt.Fprintf(&b, "Visited %d of %d squares, from (%d,%d) to (%d,%d)\n",
			r.Visited, r.Cells, r.Start.Row, r.Start.Col, r.End.Row, r.End.Col)
	}
	b.WriteString("\n")
	b.WriteString(result.Board)
	return b.String()
}

func formatCandidateLines(candidates []engine.Candidate) string {
	var b strings.Builder
	for _, cand := range candidates {
		marker := " "
		if cand.Chosen {
			marker = "→"
		}
		fmt.Fprintf(&b, "%s (%d,%d) offset (%d,%d) accessibility=%d\n",
			marker, cand.Position.Row, cand.Position.Col, cand.Offset.DRow, cand.Offset.DCol, cand.Accessibility)
	}
	return b.String()
}

func formatCandidates(response *service.CandidatesResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Knight at (%d,%d), status %s\n", response.Position.Row, response.Position.Col, response.Status)
	if len(response.Candidates) == 0 {
		b.WriteString("No legal moves\n")
		return b.String()
	}
	b.WriteString(formatCandidateLines(response.Candidates))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d moves)\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		b.WriteString(formatStepLine(move))
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d", history.Page+1)
	}

	return b.String()
}
