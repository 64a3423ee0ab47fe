package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionPlan_AllKinds(t *testing.T) {
	plan, err := ParseActionPlan([]byte(`{
		"actions": [
			{"type": "navigation", "details": {"url": "https://example.com"}},
			{"type": "click", "details": {"selector": "#go"}},
			{"type": "fill", "details": {"selector": "input[name=q]", "value": "golang"}},
			{"type": "scrape", "details": {"selector": "h2", "as": "headings"}},
			{"type": "wait", "details": {"ms": 1500}}
		],
		"summarize": true
	}`))
	require.NoError(t, err)

	assert.True(t, plan.Summarize)
	assert.Equal(t, []Action{
		NavigateAction{URL: "https://example.com"},
		ClickAction{Selector: "#go"},
		FillAction{Selector: "input[name=q]", Value: "golang"},
		ScrapeAction{Selector: "h2", As: "headings"},
		WaitAction{Duration: 1500 * time.Millisecond},
	}, plan.Actions)
}

func TestParseActionPlan_Defaults(t *testing.T) {
	plan, err := ParseActionPlan([]byte(`{}`))
	require.NoError(t, err)

	assert.Empty(t, plan.Actions)
	assert.NotNil(t, plan.Actions)
	assert.False(t, plan.Summarize)
}

func TestParseActionPlan_TypeIsCaseInsensitive(t *testing.T) {
	plan, err := ParseActionPlan([]byte(`{"actions":[{"type":"Navigation","details":{"url":"https://a.b"}}]}`))
	require.NoError(t, err)

	assert.Equal(t, ActionKindNavigation, plan.Actions[0].Kind())
}

func TestParseActionPlan_UnknownKindKept(t *testing.T) {
	plan, err := ParseActionPlan([]byte(`{"actions":[{"type":"hover","details":{"selector":"a"}}]}`))
	require.NoError(t, err)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, UnknownAction{Type: "hover"}, plan.Actions[0])
	assert.Equal(t, ActionKind("hover"), plan.Actions[0].Kind())
}

func TestParseActionPlan_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"actions": [`},
		{"not an object", `"navigate somewhere"`},
		{"actions not a list", `{"actions": {"type": "click"}}`},
		{"summarize not bool", `{"summarize": "yes"}`},
		{"navigation without url", `{"actions":[{"type":"navigation","details":{}}]}`},
		{"navigation blank url", `{"actions":[{"type":"navigation","details":{"url":"  "}}]}`},
		{"click without selector", `{"actions":[{"type":"click"}]}`},
		{"fill without value", `{"actions":[{"type":"fill","details":{"selector":"#a"}}]}`},
		{"scrape without label", `{"actions":[{"type":"scrape","details":{"selector":"p"}}]}`},
		{"wait without ms", `{"actions":[{"type":"wait","details":{}}]}`},
		{"negative wait", `{"actions":[{"type":"wait","details":{"ms":-5}}]}`},
		{"wait beyond duration range", `{"actions":[{"type":"wait","details":{"ms":1e13}}]}`},
		{"details wrong type", `{"actions":[{"type":"click","details":"#a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseActionPlan([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestParseActionPlan_FillAllowsEmptyValue(t *testing.T) {
	plan, err := ParseActionPlan([]byte(`{"actions":[{"type":"fill","details":{"selector":"#a","value":""}}]}`))
	require.NoError(t, err)

	assert.Equal(t, FillAction{Selector: "#a", Value: ""}, plan.Actions[0])
}

func TestResolution_WantsSummary(t *testing.T) {
	assert.True(t, (&Resolution{Search: &SearchRequest{Query: "q"}}).WantsSummary())
	assert.True(t, (&Resolution{Plan: &ActionPlan{Summarize: true}}).WantsSummary())
	assert.False(t, (&Resolution{Plan: &ActionPlan{}}).WantsSummary())
}

func TestExecutionLog_KeepsOrder(t *testing.T) {
	var log ExecutionLog

	log.Append(Succeeded("navigation", "first"))
	log.Append(LogEntry{Step: "click", Outcome: OutcomeFailed, Message: "second"})
	log.Append(Succeeded("scrape", "third"))

	assert.Equal(t, []string{"first", "second", "third"}, log.Lines())
	assert.Equal(t, 3, log.Len())

	entries := log.Entries()
	entries[0].Message = "mutated"
	assert.Equal(t, "first", log.Lines()[0])
}

func TestParseActionPlan_LongestWait(t *testing.T) {
	plan, err := ParseActionPlan([]byte(`{"actions":[{"type":"wait","details":{"ms":9000000000000}}]}`))
	require.NoError(t, err)

	wait, ok := plan.Actions[0].(WaitAction)
	require.True(t, ok)
	assert.Equal(t, 9000000000000*time.Millisecond, wait.Duration)
	assert.Positive(t, wait.Duration)
}
