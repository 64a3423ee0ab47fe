package ports

import (
	"browser-automator/internal/entity"
	"context"
	"time"
)

// BrowserManager owns the process-wide browser. Acquire launches it on first use.
type BrowserManager interface {
	Acquire(ctx context.Context) (BrowserHandle, error)
	Close(ctx context.Context) error
}

type BrowserHandle interface {
	NewRequestPage(ctx context.Context, profile entity.EvasionProfile) (Session, error)
}

// Session is a request-scoped context with its single page. Close releases both.
type Session interface {
	Page
	Close(ctx context.Context) error
}

type Page interface {
	Goto(ctx context.Context, url string, timeout time.Duration) error
	Click(ctx context.Context, selector string, delay, timeout time.Duration) error
	ClickNth(ctx context.Context, selector string, index int, delay time.Duration) error
	Fill(ctx context.Context, selector, value string) error
	Type(ctx context.Context, selector, text string, delay time.Duration) error
	Press(ctx context.Context, key string) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error
	TextContents(ctx context.Context, selector string) ([]string, error)
	Content(ctx context.Context) (string, error)
	URL() string
}

type CompletionClient interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
}

type ProfileGenerator interface {
	Generate() entity.EvasionProfile
}

// Delayer supplies humanized timing. Tests swap in a zero-delay implementation.
type Delayer interface {
	Between(min, max time.Duration) time.Duration
	Sleep(ctx context.Context, d time.Duration) error
}
