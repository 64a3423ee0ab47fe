package entity

import (
	"time"
)

type ActionKind string

const (
	ActionKindNavigation ActionKind = "navigation"
	ActionKindClick      ActionKind = "click"
	ActionKindFill       ActionKind = "fill"
	ActionKindScrape     ActionKind = "scrape"
	ActionKindWait       ActionKind = "wait"
)

// Action is one step of an ActionPlan. The concrete type carries the fields its kind requires.
type Action interface {
	Kind() ActionKind
	isAction()
}

type NavigateAction struct {
	URL string
}

type ClickAction struct {
	Selector string
}

type FillAction struct {
	Selector string
	Value    string
}

type ScrapeAction struct {
	Selector string
	As       string
}

type WaitAction struct {
	Duration time.Duration
}

// UnknownAction keeps a step whose type the executor does not understand.
type UnknownAction struct {
	Type string
}

func (NavigateAction) Kind() ActionKind { return ActionKindNavigation }
func (ClickAction) Kind() ActionKind    { return ActionKindClick }
func (FillAction) Kind() ActionKind     { return ActionKindFill }
func (ScrapeAction) Kind() ActionKind   { return ActionKindScrape }
func (WaitAction) Kind() ActionKind     { return ActionKindWait }
func (a UnknownAction) Kind() ActionKind {
	return ActionKind(a.Type)
}

func (NavigateAction) isAction() {}
func (ClickAction) isAction()    {}
func (FillAction) isAction()     {}
func (ScrapeAction) isAction()   {}
func (WaitAction) isAction()     {}
func (UnknownAction) isAction()  {}

type ActionPlan struct {
	Actions   []Action
	Summarize bool
}

type SearchRequest struct {
	Query string
}

// Resolution is what a prompt resolves to: exactly one of Plan or Search is set.
type Resolution struct {
	Plan   *ActionPlan
	Search *SearchRequest
}

func (r *Resolution) IsSearch() bool {
	return r.Search != nil
}

// WantsSummary reports whether the resolved request asks for a digest of the final page.
// Search requests always do.
func (r *Resolution) WantsSummary() bool {
	if r.Search != nil {
		return true
	}

	return r.Plan != nil && r.Plan.Summarize
}
