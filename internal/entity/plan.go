package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidPlan = errors.New("invalid action plan")

// maxWaitMs is the longest wait a time.Duration can hold.
const maxWaitMs = float64(math.MaxInt64 / int64(time.Millisecond))

type rawPlan struct {
	Actions   []rawAction `json:"actions"`
	Summarize *bool       `json:"summarize"`
}

type rawAction struct {
	Type    string          `json:"type"`
	Details json.RawMessage `json:"details"`
}

type rawDetails struct {
	URL      *string  `json:"url"`
	Selector *string  `json:"selector"`
	Value    *string  `json:"value"`
	As       *string  `json:"as"`
	Ms       *float64 `json:"ms"`
}

// ParseActionPlan decodes a model response into a typed plan. Malformed JSON and known
// action kinds missing their required details are rejected; unknown kinds become UnknownAction.
func ParseActionPlan(data []byte) (*ActionPlan, error) {
	var raw rawPlan

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	plan := &ActionPlan{
		Actions: make([]Action, 0, len(raw.Actions)),
	}

	if raw.Summarize != nil {
		plan.Summarize = *raw.Summarize
	}

	for i, ra := range raw.Actions {
		action, err := parseAction(ra)
		if err != nil {
			return nil, fmt.Errorf("%w: action %d (%s): %v", ErrInvalidPlan, i, ra.Type, err)
		}

		plan.Actions = append(plan.Actions, action)
	}

	return plan, nil
}

func parseAction(ra rawAction) (Action, error) {
	kind := ActionKind(strings.ToLower(strings.TrimSpace(ra.Type)))

	var d rawDetails

	if len(ra.Details) > 0 && string(ra.Details) != "null" {
		if err := json.Unmarshal(ra.Details, &d); err != nil {
			return nil, fmt.Errorf("details: %v", err)
		}
	}

	switch kind {
	case ActionKindNavigation:
		if err := requireField("url", d.URL); err != nil {
			return nil, err
		}

		return NavigateAction{URL: *d.URL}, nil
	case ActionKindClick:
		if err := requireField("selector", d.Selector); err != nil {
			return nil, err
		}

		return ClickAction{Selector: *d.Selector}, nil
	case ActionKindFill:
		if err := requireField("selector", d.Selector); err != nil {
			return nil, err
		}

		if d.Value == nil {
			return nil, errors.New("missing value")
		}

		return FillAction{Selector: *d.Selector, Value: *d.Value}, nil
	case ActionKindScrape:
		if err := requireField("selector", d.Selector); err != nil {
			return nil, err
		}

		if err := requireField("as", d.As); err != nil {
			return nil, err
		}

		return ScrapeAction{Selector: *d.Selector, As: *d.As}, nil
	case ActionKindWait:
		if d.Ms == nil {
			return nil, errors.New("missing ms")
		}

		if *d.Ms < 0 || math.IsNaN(*d.Ms) {
			return nil, fmt.Errorf("ms must be non-negative, got %v", *d.Ms)
		}

		if *d.Ms > maxWaitMs {
			return nil, fmt.Errorf("ms out of range, got %v", *d.Ms)
		}

		return WaitAction{Duration: time.Duration(*d.Ms * float64(time.Millisecond))}, nil
	default:
		return UnknownAction{Type: ra.Type}, nil
	}
}

func requireField(field string, v *string) error {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fmt.Errorf("missing %s", field)
	}

	return nil
}
