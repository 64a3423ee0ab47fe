package console

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/internal/usecase"
	"browser-automator/pkg/logg"
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const searchPrefix = "!g "

type Interface struct {
	config     *config.Config
	logger     *zap.Logger
	usecase    *usecase.Service
	shutdowner fx.Shutdowner
	in         io.Reader
	out        io.Writer
	ctx        context.Context
	cancel     context.CancelFunc
	stopping   atomic.Bool
}

type Params struct {
	fx.In

	Config     *config.Config
	Logger     *zap.Logger
	Usecase    *usecase.Service
	Shutdowner fx.Shutdowner
}

func NewInterface(params Params) *Interface {
	return newInterface(params, os.Stdin, os.Stdout)
}

func newInterface(params Params, in io.Reader, out io.Writer) *Interface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Interface{
		config:     params.Config,
		logger:     params.Logger.With(zap.String(logg.Layer, "Console")),
		usecase:    params.Usecase,
		shutdowner: params.Shutdowner,
		in:         in,
		out:        out,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start reads prompts until exit, end of input or Stop, then asks the application to shut down.
func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	lines, readErr := i.readLines()

	for !i.stopping.Load() {
		fmt.Fprint(i.out, "\n> ")

		var (
			line string
			ok   bool
		)

		select {
		case <-i.ctx.Done():
		case line, ok = <-lines:
		}

		if !ok {
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if done := i.handleCommand(input); done {
			break
		}
	}

	if i.shutdowner != nil && !i.stopping.Load() {
		return i.shutdowner.Shutdown()
	}

	select {
	case err := <-readErr:
		return err
	default:
		return nil
	}
}

// readLines feeds input lines to a channel so Start can return on Stop. A read blocked on
// a terminal cannot be interrupted; that goroutine ends with the next line or the process.
func (i *Interface) readLines() (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(i.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-i.ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	return lines, readErr
}

// Stop cancels the prompt in flight. It is safe to call more than once.
func (i *Interface) Stop() error {
	if i.stopping.Swap(true) {
		return nil
	}

	i.logger.Info("Stopping console interface")
	i.cancel()

	fmt.Fprintln(i.out, "👋 Goodbye!")

	return nil
}

func (i *Interface) handleCommand(input string) bool {
	switch {
	case input == "help" || input == "h":
		i.printHelp()
	case input == "exit" || input == "quit" || input == "q":
		fmt.Fprintln(i.out, "Shutting down...")

		return true
	case strings.HasPrefix(input, searchPrefix):
		i.automate(strings.TrimPrefix(input, searchPrefix), true)
	case strings.HasPrefix(input, "plan "):
		i.dryRun(strings.TrimPrefix(input, "plan "))
	default:
		i.automate(input, false)
	}

	return false
}

func (i *Interface) automate(prompt string, forceGoogle bool) {
	fmt.Fprintf(i.out, "\n🤖 Running: %s\n", prompt)
	fmt.Fprintln(i.out, strings.Repeat("─", 50))

	env := i.usecase.Automation.Automate(i.ctx, entity.AutomateRequest{
		Prompt:      prompt,
		ForceGoogle: forceGoogle,
	})

	for _, line := range env.Results {
		fmt.Fprintln(i.out, "  "+line)
	}

	fmt.Fprintln(i.out, strings.Repeat("─", 50))

	if !env.Success {
		fmt.Fprintf(i.out, "❌ Request failed (%s): %s\n", env.Code, env.Error)

		return
	}

	if len(env.ScrapedData) > 0 {
		data, err := json.MarshalIndent(env.ScrapedData, "", "  ")
		if err != nil {
			i.logger.Error("Failed to render scraped data", zap.Error(err))
		} else {
			fmt.Fprintf(i.out, "Scraped data:\n%s\n", data)
		}
	}

	if env.Summary != "" {
		fmt.Fprintf(i.out, "Summary:\n%s\n", env.Summary)
	}

	fmt.Fprintf(i.out, "✅ Done in %dms\n", env.ExecutionTime)
}

// dryRun resolves a prompt without touching the browser.
func (i *Interface) dryRun(prompt string) {
	res, err := i.usecase.Planner.Resolve(i.ctx, prompt, false)
	if err != nil {
		fmt.Fprintf(i.out, "❌ Could not resolve prompt: %v\n", err)

		return
	}

	if res.IsSearch() {
		fmt.Fprintf(i.out, "🔎 Search for %q (summary: %t)\n", res.Search.Query, res.WantsSummary())

		return
	}

	fmt.Fprintf(i.out, "📋 Plan with %d actions (summary: %t)\n", len(res.Plan.Actions), res.WantsSummary())

	for n, action := range res.Plan.Actions {
		fmt.Fprintf(i.out, "  %d. %s %+v\n", n+1, action.Kind(), action)
	}
}

func (i *Interface) printBanner() {
	banner := `
╔══════════════════════════════════════════════╗
║           🌐  Browser Automator  🤖          ║
║   Natural-language prompts, real browsers    ║
╚══════════════════════════════════════════════╝`
	fmt.Fprintln(i.out, banner)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  help, h        - Show this help message
  exit, quit, q  - Exit the application
  !g <query>     - Search the web for <query>
  plan <prompt>  - Show the plan for <prompt> without running it

Anything else is run as a prompt, for example:
  - Go to news.ycombinator.com and scrape the story titles
  - google best pizza in Naples`
	fmt.Fprintln(i.out, help)
}
