// Package tools exposes the memory store over the Model Context
// Protocol. Agents connect via stdio, record memories, and vote on
// each other's entries; every tool returns its result as indented
// JSON text. The layer translates between MCP requests and store
// calls and performs no logic of its own.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tidbits-ai/tidbits/internal/tidbit"
)

// ServerName identifies this server to MCP clients.
const ServerName = "tidbits"

// Server registers the tidbits tool set on an MCP server backed by a
// single Store.
type Server struct {
	store  *tidbit.Store
	logger *slog.Logger
	mcp    *server.MCPServer
}

// NewServer builds the MCP server and registers all tools. The version
// string is reported to clients during initialization.
func NewServer(store *tidbit.Store, logger *slog.Logger, version string) *Server {
	s := &Server{
		store:  store,
		logger: logger,
		mcp: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
// Stdout belongs to the protocol, so all logging goes to stderr.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio", "server", ServerName)
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("create_memory",
		mcp.WithDescription("Create a new memory/tidbit. Returns the created memory with its id. New memories start with zero votes."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Text of the memory to record."),
		),
		mcp.WithString("creator",
			mcp.Description("Optional name of the agent recording the memory."),
		),
		mcp.WithArray("tags",
			mcp.Description("Optional tags for later filtering."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("voter_id",
			mcp.Description("Optional voter id of the creator. Recorded for attribution only; no vote is cast."),
		),
	), s.handleCreateMemory)

	s.mcp.AddTool(mcp.NewTool("upvote_memory",
		mcp.WithDescription("Upvote a memory. A voter's new vote replaces any earlier vote they cast on the same memory."),
		mcp.WithString("memory_id", mcp.Required(), mcp.Description("Id of the memory to vote on.")),
		mcp.WithString("voter_id", mcp.Required(), mcp.Description("Opaque voter identity; obtain one via create_voter_id or get_memories.")),
	), s.handleUpvoteMemory)

	s.mcp.AddTool(mcp.NewTool("downvote_memory",
		mcp.WithDescription("Downvote a memory. A voter's new vote replaces any earlier vote they cast on the same memory."),
		mcp.WithString("memory_id", mcp.Required(), mcp.Description("Id of the memory to vote on.")),
		mcp.WithString("voter_id", mcp.Required(), mcp.Description("Opaque voter identity; obtain one via create_voter_id or get_memories.")),
	), s.handleDownvoteMemory)

	s.mcp.AddTool(mcp.NewTool("unvote_memory",
		mcp.WithDescription("Withdraw a voter's vote from a memory. Withdrawing when no vote exists is not an error."),
		mcp.WithString("memory_id", mcp.Required(), mcp.Description("Id of the memory.")),
		mcp.WithString("voter_id", mcp.Required(), mcp.Description("Voter whose vote to withdraw.")),
	), s.handleUnvoteMemory)

	s.mcp.AddTool(mcp.NewTool("list_memory",
		mcp.WithDescription("List memories in ranked order: by votes descending (default) or newest first. Optionally filter by tags."),
		mcp.WithString("order_by",
			mcp.Description("Sort order."),
			mcp.Enum("votes", "created_at"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Return at most this many memories; omit for all."),
		),
		mcp.WithArray("tags",
			mcp.Description("Keep only memories carrying at least one of these tags."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	), s.handleListMemory)

	s.mcp.AddTool(mcp.NewTool("get_memories",
		mcp.WithDescription("Browse memories in random order with vote counts and attribution hidden. If voter_id is not provided, a fresh one is generated and included in the response for use in subsequent votes."),
		mcp.WithString("voter_id",
			mcp.Description("Voter identity to echo back; omit to have one generated."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Return at most this many memories; omit for all."),
		),
	), s.handleGetMemories)

	s.mcp.AddTool(mcp.NewTool("remove_memory",
		mcp.WithDescription("Remove a memory by id. All votes cast on it are removed with it."),
		mcp.WithString("memory_id", mcp.Required(), mcp.Description("Id of the memory to remove.")),
	), s.handleRemoveMemory)

	s.mcp.AddTool(mcp.NewTool("create_voter_id",
		mcp.WithDescription("Generate a new unique voter_id for this agent session."),
	), s.handleCreateVoterID)
}

func (s *Server) handleCreateMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("invalid: " + err.Error()), nil
	}

	mem, err := s.store.CreateMemory(ctx, content, tidbit.CreateParams{
		Creator: req.GetString("creator", ""),
		Tags:    req.GetStringSlice("tags", nil),
		VoterID: req.GetString("voter_id", ""),
	})
	if err != nil {
		return s.errorResult("create_memory", err), nil
	}
	return jsonResult(mem)
}

func (s *Server) handleUpvoteMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleVote(ctx, req, "upvote_memory", s.store.UpvoteMemory)
}

func (s *Server) handleDownvoteMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleVote(ctx, req, "downvote_memory", s.store.DownvoteMemory)
}

func (s *Server) handleUnvoteMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleVote(ctx, req, "unvote_memory", s.store.UnvoteMemory)
}

// handleVote serves the three vote tools, which share a parameter shape.
func (s *Server) handleVote(
	ctx context.Context,
	req mcp.CallToolRequest,
	tool string,
	op func(context.Context, string, string) (tidbit.Memory, error),
) (*mcp.CallToolResult, error) {
	memoryID, err := req.RequireString("memory_id")
	if err != nil {
		return mcp.NewToolResultError("invalid: " + err.Error()), nil
	}
	voterID, err := req.RequireString("voter_id")
	if err != nil {
		return mcp.NewToolResultError("invalid: " + err.Error()), nil
	}

	mem, err := op(ctx, memoryID, voterID)
	if err != nil {
		return s.errorResult(tool, err), nil
	}
	return jsonResult(mem)
}

func (s *Server) handleListMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memories, err := s.store.ListMemories(ctx, tidbit.ListParams{
		OrderBy: tidbit.OrderBy(req.GetString("order_by", string(tidbit.OrderByVotes))),
		Limit:   req.GetInt("limit", 0),
		Tags:    req.GetStringSlice("tags", nil),
	})
	if err != nil {
		return s.errorResult("list_memory", err), nil
	}
	return jsonResult(memories)
}

func (s *Server) handleGetMemories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.store.GetMemories(ctx, req.GetString("voter_id", ""), req.GetInt("limit", 0))
	if err != nil {
		return s.errorResult("get_memories", err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleRemoveMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memoryID, err := req.RequireString("memory_id")
	if err != nil {
		return mcp.NewToolResultError("invalid: " + err.Error()), nil
	}

	if err := s.store.RemoveMemory(ctx, memoryID); err != nil {
		return s.errorResult("remove_memory", err), nil
	}
	return jsonResult(map[string]any{"removed": true, "id": memoryID})
}

func (s *Server) handleCreateVoterID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]string{"voter_id": s.store.CreateVoterID()})
}

// errorResult maps a store error onto a tool error result with a stable
// prefix that agents can branch on. Unexpected failures are logged; the
// expected domain errors are the caller's mistake and are not.
func (s *Server) errorResult(tool string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, tidbit.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, tidbit.ErrEmptyContent),
		errors.Is(err, tidbit.ErrNoVoterID),
		errors.Is(err, tidbit.ErrUnknownOrder):
		return mcp.NewToolResultError("invalid: " + err.Error())
	default:
		s.logger.Error("tool call failed", "tool", tool, "error", err)
		return mcp.NewToolResultError("storage error: " + err.Error())
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tools: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
