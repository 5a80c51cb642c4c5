package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
	"github.com/alexanderramin/strengthscope/internal/render"
	"github.com/alexanderramin/strengthscope/internal/service"
)

// ListEditionsTool handles list_editions.
type ListEditionsTool struct {
	svc service.AssessmentService
}

func NewListEditionsTool(svc service.AssessmentService) *ListEditionsTool {
	return &ListEditionsTool{svc: svc}
}

func (t *ListEditionsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_editions",
		mcp.WithDescription("List the questionnaire editions with their trait and statement counts."),
	)
}

func (t *ListEditionsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString("## Editions\n\n")
	for _, e := range t.svc.Editions(ctx) {
		fmt.Fprintf(&sb, "- **%s** (`%s`): %d traits, %d statements\n", e.Name, e.ID, e.TraitCount, e.StatementCount)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// StartTool handles start_questionnaire. It is stateless: the edition and
// seed returned here reproduce the same statement order in score_answers.
type StartTool struct {
	cat *catalog.Catalog
}

func NewStartTool(cat *catalog.Catalog) *StartTool {
	return &StartTool{cat: cat}
}

func (t *StartTool) Definition() mcp.Tool {
	return mcp.NewTool("start_questionnaire",
		mcp.WithDescription(
			"Assemble a shuffled questionnaire. Returns the seed and every statement in display order. "+
				"Pass the same edition and seed to score_answers.",
		),
		mcp.WithString("edition",
			mcp.Description("Edition ID from list_editions. Defaults to the full edition."),
		),
		mcp.WithString("seed",
			mcp.Description("Decimal shuffle seed. Omit for a random order."),
		),
	)
}

func (t *StartTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seed, err := parseSeed(req.GetString("seed", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if seed == nil {
		s := questionnaire.NewSeed()
		seed = &s
	}

	sess, err := questionnaire.Assemble(t.cat, req.GetString("edition", ""), *seed)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to assemble questionnaire: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Questionnaire\n\n- **Edition**: %s\n- **Seed**: %d\n- **Statements**: %d\n\n", sess.EditionID, sess.Seed, len(sess.Items))
	fmt.Fprintf(&sb, "Rate each statement from %d (disagree) to %d (agree).\n\n", questionnaire.MinAnswer, questionnaire.MaxAnswer)
	for i, it := range sess.Items {
		fmt.Fprintf(&sb, "Q.%d `%s` %s\n", i+1, it.StatementID, it.Text)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// ScoreTool handles score_answers.
type ScoreTool struct {
	cat *catalog.Catalog
	svc service.AssessmentService
}

func NewScoreTool(cat *catalog.Catalog, svc service.AssessmentService) *ScoreTool {
	return &ScoreTool{cat: cat, svc: svc}
}

func (t *ScoreTool) Definition() mcp.Tool {
	return mcp.NewTool("score_answers",
		mcp.WithDescription(
			"Score a completed questionnaire and return the ranked report as Markdown. "+
				"The interpretation is only generated when narrate is true.",
		),
		mcp.WithString("seed",
			mcp.Required(),
			mcp.Description("Seed returned by start_questionnaire."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Name of the person who answered."),
		),
		mcp.WithString("answers",
			mcp.Required(),
			mcp.Description(`Answers as a JSON object of statement ID to value, e.g. {"a.1":4}, `+
				"or a JSON array of values in display order."),
		),
		mcp.WithString("edition",
			mcp.Description("Edition used in start_questionnaire."),
		),
		mcp.WithBoolean("narrate",
			mcp.Description("Request the narrative interpretation (slow)."),
		),
	)
}

func (t *ScoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seed, err := parseSeed(req.GetString("seed", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if seed == nil {
		return mcp.NewToolResultError("seed is required"), nil
	}

	sess, err := questionnaire.Assemble(t.cat, req.GetString("edition", ""), *seed)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to assemble questionnaire: %v", err)), nil
	}
	sess.Subject = strings.TrimSpace(req.GetString("subject", ""))

	if err := applyAnswers(sess, req.GetString("answers", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if missing := sess.Unanswered(); len(missing) > 0 {
		return mcp.NewToolResultError(fmt.Sprintf("%d statements unanswered: %s", len(missing), strings.Join(missing, ", "))), nil
	}

	rep, err := t.svc.BuildReport(ctx, sess, service.ReportOptions{SkipNarrative: !req.GetBool("narrate", false)})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to score answers: %v", err)), nil
	}

	data, err := render.Bytes(render.Markdown{}, rep)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

var errBadAnswers = errors.New(`answers must be a JSON object like {"a.1":4} or an array of values`)

func applyAnswers(sess *questionnaire.Session, raw string) error {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "{"):
		var set questionnaire.AnswerSet
		if err := json.Unmarshal([]byte(raw), &set); err != nil {
			return fmt.Errorf("%w: %v", errBadAnswers, err)
		}
		return sess.AnswerAll(set)
	case strings.HasPrefix(raw, "["):
		var values []int
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return fmt.Errorf("%w: %v", errBadAnswers, err)
		}
		return sess.AnswerPositional(values)
	}
	return errBadAnswers
}

func parseSeed(s string) (*uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seed %q: must be a non-negative integer", s)
	}
	return &v, nil
}
