package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/aidbuddy"
	"github.com/aretw0/aidbuddy/pkg/bands"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/estimate"
)

const (
	bandsURI      = "aidbuddy://bands"
	awardYearsURI = "aidbuddy://award-years"
)

// Engine is the conversational core exposed as MCP tools.
type Engine interface {
	HandleTurn(ctx context.Context, sessionID, text string) (*aidbuddy.Payload, error)
	Snapshot(ctx context.Context, sessionID string) (*aidbuddy.Payload, error)
	Reset(ctx context.Context, sessionID string) (*domain.State, error)
	Estimate(ctx context.Context, in estimate.Input) (*estimate.Result, error)
	AwardYears() []string
}

// ChatResponse is the structured result of the chat and get_state tools.
type ChatResponse struct {
	Reply    string          `json:"reply,omitempty" jsonschema_description:"Assistant reply in Markdown"`
	Mode     domain.Mode     `json:"mode" jsonschema_description:"Conversation mode after the turn"`
	Progress float64         `json:"progress" jsonschema_description:"Share of estimate answers collected (0 to 1)"`
	Chapter  int             `json:"chapter" jsonschema_description:"Guided-journey chapter (1 to 6)"`
	State    domain.Snapshot `json:"state" jsonschema_description:"Flat view of the session"`
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mcpServer: server.NewMCPServer("aidbuddy-mcp", strings.TrimSpace(aidbuddy.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on Stdin/Stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("chat",
		mcp.WithDescription("Send one message to the FAFSA assistant. Sessions are created on first use; an empty message returns the opening menu."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Opaque conversation identifier")),
		mcp.WithString("message", mcp.Description("User message")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleChat))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Read a session's mode, progress and answers without sending a message."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Opaque conversation identifier")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Discard a session and start over with defaults."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Opaque conversation identifier")),
	), s.handleReset)

	s.mcpServer.AddTool(mcp.NewTool("estimate_pell",
		mcp.WithDescription("Estimate a banded Pell Grant range directly, without a conversation. Figures are rough, not official."),
		mcp.WithNumber("household_size", mcp.Required(), mcp.Description("People in the household"),
			mcp.Min(domain.MinHouseholdSize), mcp.Max(domain.MaxHouseholdSize)),
		mcp.WithString("income_range", mcp.Required(), mcp.Description("Income band key"), mcp.Enum(bands.Keys(bands.Income)...)),
		mcp.WithString("asset_range", mcp.Required(), mcp.Description("Assets band key"), mcp.Enum(bands.Keys(bands.Assets)...)),
		mcp.WithBoolean("independent", mcp.Required(), mcp.Description("Independent for FAFSA purposes")),
		mcp.WithString("award_year", mcp.Description("Award year, e.g. 2026-27")),
		mcp.WithString("enrollment", mcp.Description("Enrollment intensity"),
			mcp.Enum(string(domain.FullTime), string(domain.ThreeQuarter), string(domain.HalfTime), string(domain.LessThanHalf))),
		mcp.WithOutputSchema[estimate.Result](),
	), mcp.NewStructuredToolHandler(s.handleEstimate))
}

func (s *Server) handleChat(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ChatResponse, error) {
	sessionID, _ := args["session_id"].(string)
	message, _ := args["message"].(string)

	p, err := s.engine.HandleTurn(ctx, sessionID, message)
	if err != nil {
		s.logger.Warn("mcp chat failed", "session_id", sessionID, "err", err)
		return ChatResponse{}, fmt.Errorf("chat failed: %w", err)
	}
	return toResponse(p), nil
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ChatResponse, error) {
	sessionID, _ := args["session_id"].(string)
	p, err := s.engine.Snapshot(ctx, sessionID)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("get state failed: %w", err)
	}
	return toResponse(p), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.engine.Reset(ctx, sessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleEstimate(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (estimate.Result, error) {
	in, err := decodeInput(args)
	if err != nil {
		return estimate.Result{}, err
	}
	res, err := s.engine.Estimate(ctx, in)
	if err != nil {
		return estimate.Result{}, fmt.Errorf("estimate failed: %w", err)
	}
	return *res, nil
}

// decodeInput maps loosely typed tool arguments onto estimate.Input.
// Omitted answers yield a *domain.PreconditionError.
// JSON numbers arrive as float64; fractional household sizes are rejected.
func decodeInput(args map[string]any) (estimate.Input, error) {
	if hs, ok := args["household_size"].(float64); ok && hs != float64(int(hs)) {
		return estimate.Input{}, fmt.Errorf("%w: household_size must be a whole number", domain.ErrInvalidInput)
	}
	var req estimate.Request
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return estimate.Input{}, err
	}
	if err := dec.Decode(args); err != nil {
		return estimate.Input{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return req.Input()
}

func toResponse(p *aidbuddy.Payload) ChatResponse {
	return ChatResponse{
		Reply:    p.Reply,
		Mode:     p.Mode,
		Progress: p.Progress,
		Chapter:  p.Chapter,
		State:    p.State,
	}
}

type bandView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func bandViews(bs []bands.Band) []bandView {
	out := make([]bandView, len(bs))
	for i, b := range bs {
		out[i] = bandView{Key: b.Key, Label: b.Label}
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(bandsURI, "Income and asset bands",
		mcp.WithResourceDescription("Band keys accepted by estimate_pell"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(map[string][]bandView{
			"income": bandViews(bands.Income),
			"assets": bandViews(bands.Assets),
		})
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: bandsURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(awardYearsURI, "Configured award years",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.AwardYears())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: awardYearsURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
