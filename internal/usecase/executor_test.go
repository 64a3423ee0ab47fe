package usecase

import (
	"browser-automator/internal/entity"
	"browser-automator/internal/humanize"
	"browser-automator/internal/metrics"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExecutor(m *metrics.Metrics) *Executor {
	return NewExecutor(ExecutorParams{
		Config:  testConfig(),
		Logger:  zap.NewNop(),
		Delayer: humanize.NopDelayer{},
		Metrics: m,
	})
}

func TestExecutor_RunsEveryKindInOrder(t *testing.T) {
	page := newFakePage()
	page.texts["li"] = []string{"one", "two", "three"}

	exec := newTestExecutor(nil)
	log := &entity.ExecutionLog{}

	data, err := exec.Run(context.Background(), page, []entity.Action{
		entity.NavigateAction{URL: "https://example.com"},
		entity.ClickAction{Selector: "#open"},
		entity.FillAction{Selector: "#q", Value: "héllo"},
		entity.ScrapeAction{Selector: "li", As: "items"},
		entity.WaitAction{Duration: 250 * time.Millisecond},
	}, log)
	require.NoError(t, err)

	lines := log.Lines()
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "🌐 Navigated to https://example.com")
	assert.Contains(t, lines[1], "🖱️ Clicked #open")
	assert.Contains(t, lines[2], "📝 Filled #q")
	assert.Equal(t, "🧹 Scraped 3 items from li", lines[3])
	assert.Equal(t, "⏱️ Waited 250ms", lines[4])

	assert.Equal(t, entity.ScrapedData{"items": {"one", "two", "three"}}, data)
	assert.Equal(t, "héllo", page.typed["#q"])
	assert.Equal(t, 5, page.called("type:#q"))
	assert.Equal(t, 1, page.called("fill:#q"))
}

func TestExecutor_FailureIsIsolated(t *testing.T) {
	page := newFakePage().fail("click:#missing", errors.New("waiting for selector \"#missing\": timeout"))
	page.texts["h1"] = []string{"Title"}

	exec := newTestExecutor(nil)
	log := &entity.ExecutionLog{}

	data, err := exec.Run(context.Background(), page, []entity.Action{
		entity.ClickAction{Selector: "#missing"},
		entity.ScrapeAction{Selector: "h1", As: "title"},
	}, log)
	require.NoError(t, err)

	entries := log.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, entity.OutcomeFailed, entries[0].Outcome)
	assert.Equal(t, `❌ Failed click: waiting for selector "#missing": timeout`, entries[0].Message)
	require.Error(t, entries[0].Err)

	assert.Equal(t, entity.OutcomeOK, entries[1].Outcome)
	assert.Equal(t, []string{"Title"}, data["title"])
}

func TestExecutor_EveryActionFailingStillCompletes(t *testing.T) {
	boom := errors.New("boom")
	page := newFakePage().
		fail("goto:https://a.example", boom).
		fail("fill:#x", boom).
		fail("texts:p", boom)

	exec := newTestExecutor(nil)
	log := &entity.ExecutionLog{}

	data, err := exec.Run(context.Background(), page, []entity.Action{
		entity.NavigateAction{URL: "https://a.example"},
		entity.FillAction{Selector: "#x", Value: "v"},
		entity.ScrapeAction{Selector: "p", As: "paras"},
	}, log)
	require.NoError(t, err)

	require.Equal(t, 3, log.Len())
	for _, e := range log.Entries() {
		assert.Equal(t, entity.OutcomeFailed, e.Outcome)
	}

	assert.Empty(t, data)
	assert.Equal(t, "❌ Failed navigation: boom", log.Lines()[0])
	assert.Equal(t, "❌ Failed fill: boom", log.Lines()[1])
	assert.Equal(t, "❌ Failed scrape: boom", log.Lines()[2])
}

func TestExecutor_ScrapeLabelLastWriteWins(t *testing.T) {
	page := newFakePage()
	page.texts["h1"] = []string{"first"}
	page.texts["h2"] = []string{"second", "third"}

	exec := newTestExecutor(nil)

	data, err := exec.Run(context.Background(), page, []entity.Action{
		entity.ScrapeAction{Selector: "h1", As: "out"},
		entity.ScrapeAction{Selector: "h2", As: "out"},
	}, &entity.ExecutionLog{})
	require.NoError(t, err)

	assert.Equal(t, entity.ScrapedData{"out": {"second", "third"}}, data)
}

func TestExecutor_UnknownKindLoggedAndSkipped(t *testing.T) {
	page := newFakePage()
	m := metrics.New()
	exec := newTestExecutor(m)
	log := &entity.ExecutionLog{}

	_, err := exec.Run(context.Background(), page, []entity.Action{
		entity.UnknownAction{Type: "hover"},
		entity.NavigateAction{URL: "https://example.com"},
	}, log)
	require.NoError(t, err)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, entity.OutcomeSkipped, entries[0].Outcome)
	assert.Equal(t, `⚠️ Skipped unknown action "hover"`, entries[0].Message)
	assert.Equal(t, 1, page.called("goto:"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Actions.WithLabelValues("unknown", "skipped")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Actions.WithLabelValues("navigation", "ok")))
}

func TestExecutor_CancelledContextStops(t *testing.T) {
	page := newFakePage()
	exec := newTestExecutor(nil)
	log := &entity.ExecutionLog{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.Run(ctx, page, []entity.Action{
		entity.NavigateAction{URL: "https://example.com"},
	}, log)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, log.Len())
}

func TestExecutor_EmptyPlan(t *testing.T) {
	exec := newTestExecutor(nil)
	log := &entity.ExecutionLog{}

	data, err := exec.Run(context.Background(), newFakePage(), nil, log)
	require.NoError(t, err)

	assert.NotNil(t, data)
	assert.Empty(t, data)
	assert.Zero(t, log.Len())
}

// recordingDelayer captures requested pauses without sleeping.
type recordingDelayer struct {
	pauses []time.Duration
}

func (d *recordingDelayer) Between(min, _ time.Duration) time.Duration { return min }

func (d *recordingDelayer) Sleep(ctx context.Context, dur time.Duration) error {
	d.pauses = append(d.pauses, dur)

	return ctx.Err()
}

func TestExecutor_PausesBeforeEveryAction(t *testing.T) {
	delay := &recordingDelayer{}
	exec := NewExecutor(ExecutorParams{
		Config:  testConfig(),
		Logger:  zap.NewNop(),
		Delayer: delay,
	})

	_, err := exec.Run(context.Background(), newFakePage(), []entity.Action{
		entity.ClickAction{Selector: "a"},
		entity.WaitAction{Duration: 40 * time.Millisecond},
	}, &entity.ExecutionLog{})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{minActionDelay, minActionDelay, 40 * time.Millisecond}, delay.pauses)
}
