package usecase

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/internal/ports"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

func testConfig() *config.Config {
	return &config.Config{
		AppConfig: &config.AppConfig{LogLevel: "debug", Mode: config.ModeHTTP},
		AIConfig: &config.AIConfig{
			APIKey:       "test",
			PlanModel:    "plan-model",
			SummaryModel: "summary-model",
		},
		BrowserConfig: &config.BrowserConfig{
			Headless:          true,
			LaunchTimeout:     30000,
			NavigationTimeout: 15000,
			MaxContexts:       4,
		},
		SearchConfig: &config.SearchConfig{
			Trigger:     "google",
			PrimaryURL:  "https://www.google.com",
			FallbackURL: "https://duckduckgo.com/",
		},
		HTTPConfig: &config.HTTPConfig{Addr: ":0"},
	}
}

// fakePage records calls and fails any call whose key is in failOn.
type fakePage struct {
	mu      sync.Mutex
	calls   []string
	failOn  map[string]error
	texts   map[string][]string
	typed   map[string]string
	content string
	url     string
}

func newFakePage() *fakePage {
	return &fakePage{
		failOn: make(map[string]error),
		texts:  make(map[string][]string),
		typed:  make(map[string]string),
	}
}

func (p *fakePage) fail(key string, err error) *fakePage {
	p.failOn[key] = err

	return p
}

func (p *fakePage) record(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, key)

	return p.failOn[key]
}

func (p *fakePage) called(prefix string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, c := range p.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}

	return n
}

func (p *fakePage) Goto(_ context.Context, url string, _ time.Duration) error {
	if err := p.record("goto:" + url); err != nil {
		return err
	}

	p.url = url

	return nil
}

func (p *fakePage) Click(_ context.Context, selector string, _, _ time.Duration) error {
	return p.record("click:" + selector)
}

func (p *fakePage) ClickNth(_ context.Context, selector string, index int, _ time.Duration) error {
	if err := p.record(fmt.Sprintf("clicknth:%s:%d", selector, index)); err != nil {
		return err
	}

	p.url = "https://result.example/"

	return nil
}

func (p *fakePage) Fill(_ context.Context, selector, value string) error {
	if err := p.record("fill:" + selector); err != nil {
		return err
	}

	p.typed[selector] = value

	return nil
}

func (p *fakePage) Type(_ context.Context, selector, text string, _ time.Duration) error {
	if err := p.record("type:" + selector); err != nil {
		return err
	}

	p.typed[selector] += text

	return nil
}

func (p *fakePage) Press(_ context.Context, key string) error {
	return p.record("press:" + key)
}

func (p *fakePage) WaitForSelector(_ context.Context, selector string, _ time.Duration) error {
	return p.record("wait:" + selector)
}

func (p *fakePage) WaitForNetworkIdle(_ context.Context, _ time.Duration) error {
	return p.record("idle")
}

func (p *fakePage) TextContents(_ context.Context, selector string) ([]string, error) {
	if err := p.record("texts:" + selector); err != nil {
		return nil, err
	}

	return p.texts[selector], nil
}

func (p *fakePage) Content(_ context.Context) (string, error) {
	if err := p.record("content"); err != nil {
		return "", err
	}

	return p.content, nil
}

func (p *fakePage) URL() string {
	return p.url
}

type fakeSession struct {
	*fakePage
	closed int
}

func (s *fakeSession) Close(context.Context) error {
	s.closed++

	return nil
}

type fakeHandle struct {
	session  *fakeSession
	err      error
	profiles []entity.EvasionProfile
}

func (h *fakeHandle) NewRequestPage(_ context.Context, profile entity.EvasionProfile) (ports.Session, error) {
	h.profiles = append(h.profiles, profile)
	if h.err != nil {
		return nil, h.err
	}

	return h.session, nil
}

type fakeBrowser struct {
	handle *fakeHandle
	err    error
}

func (b *fakeBrowser) Acquire(context.Context) (ports.BrowserHandle, error) {
	if b.err != nil {
		return nil, b.err
	}

	return b.handle, nil
}

func (b *fakeBrowser) Close(context.Context) error { return nil }

// fakeCompletion answers by model name.
type fakeCompletion struct {
	mu       sync.Mutex
	replies  map[string]string
	errs     map[string]error
	requests []entity.CompletionRequest
}

func newFakeCompletion() *fakeCompletion {
	return &fakeCompletion{
		replies: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (c *fakeCompletion) Complete(_ context.Context, req entity.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)

	if err := c.errs[req.Model]; err != nil {
		return "", err
	}

	reply, ok := c.replies[req.Model]
	if !ok {
		return "", errors.New("unexpected model " + req.Model)
	}

	return reply, nil
}

func (c *fakeCompletion) requestsFor(model string) []entity.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []entity.CompletionRequest
	for _, r := range c.requests {
		if r.Model == model {
			out = append(out, r)
		}
	}

	return out
}

type fixedProfiles struct{}

func (fixedProfiles) Generate() entity.EvasionProfile {
	return entity.EvasionProfile{UserAgent: "test-agent", ViewportWidth: 1300, ViewportHeight: 900}
}
