// Package mcptools exposes the questionnaire pipeline as MCP tools, so an
// assistant can hand out statements and score the answers it collected.
package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/service"
)

const instructions = `strengthscope scores a Likert self-assessment.
1. Call list_editions to choose an edition.
2. Call start_questionnaire and present every statement in order; the user rates each from 1 (disagree) to 5 (agree).
3. Call score_answers with the same edition and seed plus the collected answers.`

// NewServer registers every tool on a new MCP server.
func NewServer(cat *catalog.Catalog, svc service.AssessmentService, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"strengthscope",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	editions := NewListEditionsTool(svc)
	s.AddTool(editions.Definition(), editions.Handle)

	start := NewStartTool(cat)
	s.AddTool(start.Definition(), start.Handle)

	score := NewScoreTool(cat, svc)
	s.AddTool(score.Definition(), score.Handle)

	return s
}

// ServeStdio blocks serving s over stdin and stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
