package cli

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/strengthscope/internal/config"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
	"github.com/alexanderramin/strengthscope/internal/teatest"
	"github.com/alexanderramin/strengthscope/internal/testutil"
)

func TestQuestionGroups_PagesAndDefaults(t *testing.T) {
	items := make([]questionnaire.Item, 23)
	for i := range items {
		items[i] = questionnaire.Item{StatementID: "s", Text: "text"}
	}
	values := make([]int, len(items))

	groups := questionGroups(items, values)

	assert.Len(t, groups, 3)
	for _, v := range values {
		assert.Equal(t, questionnaire.DefaultAnswer, v)
	}
}

func TestLikertOptions(t *testing.T) {
	opts := likertOptions()
	require.Len(t, opts, 5)
	assert.Equal(t, 1, opts[0].Value)
	assert.Equal(t, 5, opts[4].Value)
	assert.Equal(t, "3 neutral", opts[2].Key)
}

func TestValidateSubject(t *testing.T) {
	assert.ErrorIs(t, validateSubject("  "), questionnaire.ErrMissingSubject)
	assert.NoError(t, validateSubject("Taro"))
}

func TestFormatQuestions_TwoColumns(t *testing.T) {
	sess, err := questionnaire.Assemble(testutil.ExampleCatalog(t), "", 5)
	require.NoError(t, err)

	out := formatQuestions(sess)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Header, blank line, then three rows: Q.1-Q.2 on the left, Q.3-Q.5 on the right.
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "5 statements")
	assert.Contains(t, lines[0], "edition full, seed 5")
	assert.Empty(t, strings.TrimSpace(lines[1]))
	assert.Contains(t, lines[2], "Q.1")
	assert.Contains(t, lines[2], "Q.3")
	assert.Contains(t, lines[3], "Q.2")
	assert.Contains(t, lines[3], "Q.4")
	assert.Contains(t, lines[4], "Q.5")
	assert.NotContains(t, lines[4], "Q.2")
}

func TestRunWithSpinner_NonInteractiveRunsTask(t *testing.T) {
	ran := false
	err := runWithSpinner(context.Background(), nil, false, "working", func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	err = runWithSpinner(context.Background(), nil, false, "working", func(context.Context) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSpinnerModel_QuitsWhenTaskEnds(t *testing.T) {
	d := teatest.New(t, newSpinnerModel("working"))
	d.DrainInit()
	assert.Contains(t, d.View(), "working")
	assert.False(t, d.Quitting)

	d.Send(taskDoneMsg{err: assert.AnError})

	require.True(t, d.Quitting)
	final := d.Model.(spinnerModel)
	assert.True(t, final.done)
	assert.ErrorIs(t, final.err, assert.AnError)
	assert.Empty(t, d.View())
}

func TestSpinnerModel_CtrlCCancels(t *testing.T) {
	d := teatest.New(t, newSpinnerModel("working"))
	d.DrainInit()
	d.PressCtrlC()

	require.True(t, d.Quitting)
	assert.ErrorIs(t, d.Model.(spinnerModel).err, context.Canceled)
}

type countingPruner struct {
	calls atomic.Int32
	err   error
}

func (p *countingPruner) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (p *countingPruner) Put(context.Context, string, string, string) error { return nil }
func (p *countingPruner) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

func TestPruneNarratives_RunsUntilCancelled(t *testing.T) {
	repo := &countingPruner{err: errors.New("locked")}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		pruneNarratives(ctx, repo, slog.New(slog.DiscardHandler), 5*time.Millisecond, time.Hour)
		close(done)
	}()

	assert.Eventually(t, func() bool { return repo.calls.Load() >= 2 }, time.Second, 5*time.Millisecond,
		"errors do not stop the loop")
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop after cancel")
	}
}

func TestServerConfig_FollowsNarrativeTimeout(t *testing.T) {
	isolate(t)
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	cfg.Server.Addr = ":9999"
	cfg.LLM.Enabled = true
	cfg.LLM.TimeoutMs = 300_000

	srvCfg := serverConfig(&App{Config: cfg})
	assert.Equal(t, ":9999", srvCfg.Addr)
	assert.Equal(t, 300*time.Second, srvCfg.NarrativeTimeout)
	assert.Greater(t, srvCfg.EffectiveWriteTimeout(), 300*time.Second)

	cfg.LLM.Enabled = false
	assert.Zero(t, serverConfig(&App{Config: cfg}).NarrativeTimeout)
}
