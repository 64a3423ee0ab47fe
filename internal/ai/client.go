package ai

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/pkg/apperr"
	"browser-automator/pkg/logg"
	"browser-automator/pkg/tracing"
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	aiClientName = "AIClient"
	aiTracer     = "ai.client"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	config *config.Config
	logger *zap.Logger
	tracer trace.Tracer
	http   *resty.Client
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewClient(params Params) *Client {
	httpClient := resty.New().
		SetBaseURL(params.Config.AIConfig.BaseURL).
		SetAuthToken(params.Config.AIConfig.APIKey).
		SetTimeout(params.Config.AIConfig.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		config: params.Config,
		logger: params.Logger.With(zap.String(logg.Layer, aiClientName)),
		tracer: otel.Tracer(aiTracer),
		http:   httpClient,
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one chat completion and returns the text of the first choice.
func (c *Client) Complete(ctx context.Context, req entity.CompletionRequest) (text string, err error) {
	const op = "Complete"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, c.tracer, logger, op,
		attribute.String("model", req.Model),
		attribute.Int("messages_count", len(req.Messages)),
		attribute.Bool("json_output", req.JSONOutput))
	defer func() {
		step.End(err)
	}()

	logger.Debug("Sending completion request", zap.String("model", req.Model), zap.Int("messages_count", len(req.Messages)))

	body := chatRequest{
		Model:    req.Model,
		Messages: make([]chatMessage, len(req.Messages)),
	}

	for i, msg := range req.Messages {
		body.Messages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}

	if req.JSONOutput {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var (
		result chatResponse
		apiErr errorResponse
	)

	step.AddEvent("sending HTTP request")

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeUnavailable, err, map[string]any{
			apperr.MetaReason: "http_request_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	if resp.StatusCode() != http.StatusOK {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}

		return "", apperr.Wrap(op, apperr.CodeAIError, fmt.Errorf("API error (status %d): %s", resp.StatusCode(), msg), map[string]any{
			apperr.MetaReason: "api_error",
			apperr.MetaStage:  apperr.StageAI,
			"status_code":     resp.StatusCode(),
		})
	}

	if len(result.Choices) == 0 {
		return "", apperr.WrapErrorWithReason(op, apperr.CodeAIError, "empty_choices")
	}

	step.AddEvent("completion received")

	return result.Choices[0].Message.Content, nil
}
