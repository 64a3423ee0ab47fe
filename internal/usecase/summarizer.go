package usecase

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/internal/ports"
	"browser-automator/pkg/apperr"
	"browser-automator/pkg/logg"
	"browser-automator/pkg/tracing"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	summarizerName   = "Summarizer"
	summarizerTracer = "usecase.summarizer"

	maxSummaryInput        = 15000
	summarizingInstruction = "Summarize this in 3 bullet points"
)

type Summarizer struct {
	config *config.Config
	logger *zap.Logger
	tracer trace.Tracer
	ai     ports.CompletionClient
}

type SummarizerParams struct {
	Config *config.Config
	Logger *zap.Logger
	AI     ports.CompletionClient
}

func NewSummarizer(params SummarizerParams) *Summarizer {
	return &Summarizer{
		config: params.Config,
		logger: params.Logger.With(zap.String(logg.Layer, summarizerName)),
		tracer: otel.Tracer(summarizerTracer),
		ai:     params.AI,
	}
}

// Summarize returns the model's digest of text, cut to the first 15000 characters.
func (s *Summarizer) Summarize(ctx context.Context, text string) (summary string, err error) {
	const op = "Summarize"
	logger := s.logger.With(zap.String(logg.Operation, op))

	text = truncateRunes(text, maxSummaryInput)

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.Int("input_length", len(text)))
	defer func() {
		step.End(err)
	}()

	summary, err = s.ai.Complete(ctx, entity.CompletionRequest{
		Model: s.config.AIConfig.SummaryModel,
		Messages: []entity.AIMessage{
			{Role: "system", Content: summarizingInstruction},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
			apperr.MetaReason: "summary_request_failed",
			apperr.MetaStage:  apperr.StageSummary,
		})
	}

	return summary, nil
}

// PageText extracts the visible body text of an HTML document with whitespace collapsed.
func PageText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, template, svg").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	return strings.Join(strings.Fields(root.Text()), " "), nil
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
