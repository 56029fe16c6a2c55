package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/aretw0/turing/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefinitionsURI is the resource listing the registered definitions.
const DefinitionsURI = "turing://definitions"

// Service is the interpreter surface exposed as MCP tools. *turing.Service satisfies it.
type Service interface {
	CreateDefinition(ctx context.Context, spec schema.DefinitionSpec) (*domain.Definition, error)
	ListDefinitions(ctx context.Context) ([]domain.DefinitionRef, error)
	Open(ctx context.Context, definitionID, tapeText string) (session.Opened, error)
	Get(ctx context.Context, instanceID string) (session.View, error)
	Step(ctx context.Context, instanceID string) (domain.StepOutcome, error)
	Run(ctx context.Context, instanceID string, maxSteps int) (domain.RunOutcome, error)
	Reset(ctx context.Context, instanceID, tapeText string) (domain.Snapshot, error)
	Close(ctx context.Context, instanceID string) error
}

var _ Service = (*turing.Service)(nil)

// SessionResponse is the structured result of the session tools.
type SessionResponse struct {
	InstanceID string                    `json:"instance_id" jsonschema_description:"Identifier of the machine instance"`
	State      domain.Snapshot           `json:"state" jsonschema_description:"Current state, step count, tape window and head position"`
	Definition *domain.DefinitionSummary `json:"definition,omitempty" jsonschema_description:"The definition the instance runs (open_session only)"`
	Applied    int                       `json:"applied" jsonschema_description:"Transitions applied by this call"`
	History    []domain.StepRecord       `json:"history,omitempty" jsonschema_description:"Step records produced by this call"`
}

// DefinitionsResponse is the structured result of list_definitions.
type DefinitionsResponse struct {
	Definitions []domain.DefinitionRef `json:"definitions" jsonschema_description:"Registered definitions in creation order"`
}

// CreatedResponse is the structured result of create_definition.
type CreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Arguments of the tools.
type (
	CreateArgs struct {
		Definition string `json:"definition"`
		Format     string `json:"format"`
	}
	OpenArgs struct {
		DefinitionID string `json:"definition_id"`
		Tape         string `json:"tape"`
	}
	InstanceArgs struct {
		InstanceID string `json:"instance_id"`
	}
	RunArgs struct {
		InstanceID string `json:"instance_id"`
		MaxSteps   int    `json:"max_steps"`
	}
	ResetArgs struct {
		InstanceID string `json:"instance_id"`
		Tape       string `json:"tape"`
	}
)

// Server wraps the Service and exposes it as an MCP Server.
type Server struct {
	svc       Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(svc Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		svc:       svc,
		mcpServer: server.NewMCPServer("turing-mcp", strings.TrimSpace(turing.Version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_definitions",
		mcp.WithDescription("List the registered Turing machine definitions."),
		mcp.WithOutputSchema[DefinitionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListDefinitions))

	s.mcpServer.AddTool(mcp.NewTool("create_definition",
		mcp.WithDescription("Validate and register a machine definition. Returns its ID, or the violated rule."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The machine definition document")),
		mcp.WithString("format",
			mcp.Description("Document format (default json). The text format uses 'key: value' lines and 'q, a -> p, b, R' transitions."),
			mcp.Enum("json", "yaml", "text"),
		),
		mcp.WithOutputSchema[CreatedResponse](),
	), mcp.NewStructuredToolHandler(s.handleCreateDefinition))

	s.mcpServer.AddTool(mcp.NewTool("open_session",
		mcp.WithDescription("Start a machine instance on an initial tape (one symbol per character)."),
		mcp.WithString("definition_id", mcp.Required(), mcp.Description("Definition to run")),
		mcp.WithString("tape", mcp.Description("Initial tape text")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Read the current snapshot of an instance."),
		mcp.WithString("instance_id", mcp.Required()),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("step",
		mcp.WithDescription("Apply at most one transition. Stepping a halted instance changes nothing."),
		mcp.WithString("instance_id", mcp.Required()),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStep))

	s.mcpServer.AddTool(mcp.NewTool("run",
		mcp.WithDescription("Step until the machine halts or max_steps transitions were applied."),
		mcp.WithString("instance_id", mcp.Required()),
		mcp.WithNumber("max_steps", mcp.Required(), mcp.Description("Upper bound on transitions"), mcp.Min(1)),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleRun))

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Reinitialize an instance from a new tape."),
		mcp.WithString("instance_id", mcp.Required()),
		mcp.WithString("tape", mcp.Description("New tape text")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("close_session",
		mcp.WithDescription("Discard an instance."),
		mcp.WithString("instance_id", mcp.Required()),
	), s.handleClose)
}

// Handler methods for structured tools

func (s *Server) handleListDefinitions(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (DefinitionsResponse, error) {
	refs, err := s.svc.ListDefinitions(ctx)
	if err != nil {
		return DefinitionsResponse{}, err
	}
	if refs == nil {
		refs = []domain.DefinitionRef{}
	}
	return DefinitionsResponse{Definitions: refs}, nil
}

func (s *Server) handleCreateDefinition(ctx context.Context, _ mcp.CallToolRequest, args CreateArgs) (CreatedResponse, error) {
	format := compiler.FormatJSON
	switch args.Format {
	case "", "json":
	case "yaml":
		format = compiler.FormatYAML
	case "text":
		format = compiler.FormatText
	default:
		return CreatedResponse{}, fmt.Errorf("unknown format %q", args.Format)
	}

	spec, err := compiler.Parse(format, []byte(args.Definition))
	if err != nil {
		return CreatedResponse{}, err
	}
	def, err := s.svc.CreateDefinition(ctx, spec)
	if err != nil {
		s.logger.Warn("MCP create_definition rejected", "error", err)
		return CreatedResponse{}, err
	}
	return CreatedResponse{ID: def.ID(), Message: fmt.Sprintf("definition %q created", def.Name())}, nil
}

func (s *Server) handleOpen(ctx context.Context, _ mcp.CallToolRequest, args OpenArgs) (SessionResponse, error) {
	opened, err := s.svc.Open(ctx, args.DefinitionID, args.Tape)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{InstanceID: opened.InstanceID, State: opened.Snapshot, Definition: &opened.Definition}, nil
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args InstanceArgs) (SessionResponse, error) {
	view, err := s.svc.Get(ctx, args.InstanceID)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{InstanceID: view.InstanceID, State: view.Snapshot}, nil
}

func (s *Server) handleStep(ctx context.Context, _ mcp.CallToolRequest, args InstanceArgs) (SessionResponse, error) {
	out, err := s.svc.Step(ctx, args.InstanceID)
	if err != nil {
		return SessionResponse{}, err
	}
	resp := SessionResponse{InstanceID: args.InstanceID, State: out.Snapshot}
	if out.Applied {
		resp.Applied = 1
	}
	if out.Record != nil {
		resp.History = []domain.StepRecord{*out.Record}
	}
	return resp, nil
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, args RunArgs) (SessionResponse, error) {
	out, err := s.svc.Run(ctx, args.InstanceID, args.MaxSteps)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{InstanceID: args.InstanceID, State: out.Snapshot, Applied: out.Applied, History: out.Records}, nil
}

func (s *Server) handleReset(ctx context.Context, _ mcp.CallToolRequest, args ResetArgs) (SessionResponse, error) {
	snap, err := s.svc.Reset(ctx, args.InstanceID, args.Tape)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{InstanceID: args.InstanceID, State: snap}, nil
}

func (s *Server) handleClose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("instance_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Close(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("close failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("session %s closed", id)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DefinitionsURI, "Registered Definitions",
		mcp.WithMIMEType("application/json"),
	), s.readDefinitions)
}

func (s *Server) readDefinitions(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	refs, err := s.svc.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}
	if refs == nil {
		refs = []domain.DefinitionRef{}
	}
	jsonBytes, err := json.Marshal(refs)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DefinitionsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
