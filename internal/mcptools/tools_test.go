package mcptools

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/narrative"
	"github.com/alexanderramin/strengthscope/internal/repository"
	"github.com/alexanderramin/strengthscope/internal/service"
	"github.com/alexanderramin/strengthscope/internal/testutil"
)

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

type fixture struct {
	cat *catalog.Catalog
	svc service.AssessmentService
	gen *testutil.StubGenerator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cat := testutil.ExampleCatalog(t)
	gen := &testutil.StubGenerator{Text: "### Profile\nsteady"}
	svc := service.NewAssessmentService(
		cat,
		repository.NewMemorySessionRepo(4, time.Hour),
		narrative.NewService(gen),
		nil,
	)
	return fixture{cat: cat, svc: svc, gen: gen}
}

var itemLine = regexp.MustCompile("(?m)^Q\\.(\\d+) `([^`]+)` ")

func TestListEditions(t *testing.T) {
	f := newFixture(t)
	res, err := NewListEditionsTool(f.svc).Handle(context.Background(), makeReq(nil))
	require.NoError(t, err)

	text := resultText(res)
	assert.Contains(t, text, "(`full`): 2 traits, 5 statements")
	assert.Contains(t, text, "(`only-b`): 1 traits, 2 statements")
}

func TestStartQuestionnaire(t *testing.T) {
	f := newFixture(t)
	tool := NewStartTool(f.cat)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"seed": "42"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	text := resultText(res)
	assert.Contains(t, text, "**Seed**: 42")
	assert.Len(t, itemLine.FindAllStringSubmatch(text, -1), 5)
	assert.True(t, strings.Contains(text, "Q.1 ") && strings.Contains(text, "Q.5 "))

	again, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"seed": "42"}))
	require.NoError(t, err)
	assert.Equal(t, text, resultText(again), "same seed, same order")
}

func TestStartQuestionnaire_Errors(t *testing.T) {
	tool := NewStartTool(newFixture(t).cat)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"seed": "-1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"edition": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "unknown edition")
}

func TestScoreAnswers_ObjectAnswers(t *testing.T) {
	f := newFixture(t)
	answers, _ := json.Marshal(map[string]int{"a.1": 5, "a.2": 5, "a.3": 5, "b.1": 1, "b.2": 1})

	res, err := NewScoreTool(f.cat, f.svc).Handle(context.Background(), makeReq(map[string]interface{}{
		"seed":    "9",
		"subject": "Taro",
		"answers": string(answers),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	text := resultText(res)
	assert.Contains(t, text, "**Subject:** Taro")
	assert.Contains(t, text, "| 1 | Alpha | X | 15 |")
	assert.NotContains(t, text, "Interpretation")
	assert.Zero(t, f.gen.Calls.Load(), "narrative is opt-in")
}

func TestScoreAnswers_PositionalWithNarrative(t *testing.T) {
	f := newFixture(t)
	start, err := NewStartTool(f.cat).Handle(context.Background(), makeReq(map[string]interface{}{"seed": "3"}))
	require.NoError(t, err)

	// Rate Alpha statements 5 and Beta statements 1, in display order.
	var values []int
	for _, m := range itemLine.FindAllStringSubmatch(resultText(start), -1) {
		if strings.HasPrefix(m[2], "a.") {
			values = append(values, 5)
		} else {
			values = append(values, 1)
		}
	}
	positional, _ := json.Marshal(values)

	res, err := NewScoreTool(f.cat, f.svc).Handle(context.Background(), makeReq(map[string]interface{}{
		"seed":    "3",
		"subject": "Hanako",
		"answers": string(positional),
		"narrate": true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	text := resultText(res)
	assert.Contains(t, text, "| 1 | Alpha | X | 15 |")
	assert.Contains(t, text, "## Interpretation")
	assert.Equal(t, int32(1), f.gen.Calls.Load())
}

func TestScoreAnswers_Errors(t *testing.T) {
	f := newFixture(t)
	tool := NewScoreTool(f.cat, f.svc)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing seed", map[string]interface{}{"subject": "x", "answers": "{}"}, "seed is required"},
		{"bad answers", map[string]interface{}{"seed": "1", "subject": "x", "answers": "four"}, "JSON object"},
		{"out of range", map[string]interface{}{"seed": "1", "subject": "x", "answers": `{"a.1":7}`}, "out of range"},
		{"incomplete", map[string]interface{}{"seed": "1", "subject": "x", "answers": `{"a.1":3}`}, "4 statements unanswered"},
		{"no subject", map[string]interface{}{"seed": "1", "answers": "[3,3,3,3,3]"}, "subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tool.Handle(context.Background(), makeReq(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(res), tt.want)
		})
	}
}

func TestNewServer_RegistersTools(t *testing.T) {
	f := newFixture(t)
	s := NewServer(f.cat, f.svc, "test")
	tools := s.ListTools()
	for _, name := range []string{"list_editions", "start_questionnaire", "score_answers"} {
		assert.Contains(t, tools, name)
	}
}
