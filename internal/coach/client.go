// Package coach suggests the next workout with an OpenAI chat model.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/gymlog/internal/errors"
	"github.com/myrjola/gymlog/internal/workout"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 60 * time.Second

	maxCompletionTokens = 4096
	opChatCompletion    = "coach chat completion"
)

// Config configures the OpenAI client. Zero values select the defaults.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the OpenAI endpoint, e.g. for a compatible proxy.
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client implements [workout.Coach].
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
	modes   *Catalog
	logger  *slog.Logger
	now     func() time.Time
}

var _ workout.Coach = (*Client)(nil)

type Option func(*Client)

// WithClock overrides time.Now as the start time of suggested sessions.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a coach. modes resolves the coaching mode of each request.
func New(cfg Config, modes *Catalog, logger *slog.Logger, opts ...Option) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	c := &Client{
		client:  openai.NewClient(reqOpts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		modes:   modes,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suggest asks the model for the next session based on req. Failures are returned as
// [*workout.ExternalServiceError] carrying a message for the user.
func (c *Client) Suggest(ctx context.Context, req workout.CoachRequest) (workout.CoachSuggestion, error) {
	mode := c.modes.Mode(req.Preferences.Mode)
	p := newPayload(req)
	user, err := userMessage(p)
	if err != nil {
		return workout.CoachSuggestion{}, fmt.Errorf("build user message: %w", err)
	}

	params := openai.ChatCompletionNewParams{ //nolint:exhaustruct // optional parameters use API defaults.
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(mode)),
			openai.UserMessage(user),
		},
		MaxCompletionTokens: openai.Int(maxCompletionTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{ //nolint:exhaustruct // one of.
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{ //nolint:exhaustruct // type is a constant.
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{ //nolint:exhaustruct // no extra fields.
					Name:        schemaName,
					Description: openai.String("The next workout session planned from the training history"),
					Schema:      workoutSchema(p.Categories),
					Strict:      openai.Bool(true),
				},
			},
		},
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "requesting workout suggestion",
		slog.String("model", c.model),
		slog.String("mode", mode.Key),
		slog.Int("historySessions", len(p.History)),
		slog.Int("libraryExercises", len(p.Exercises)))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		serviceErr := classify(ctx, err)
		c.logger.LogAttrs(ctx, slog.LevelWarn, "workout suggestion failed",
			slog.Bool("retryable", serviceErr.Retryable),
			slog.Duration("elapsed", time.Since(start)),
			errors.SlogError(err))
		return workout.CoachSuggestion{}, serviceErr
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "workout suggestion received",
		slog.String("model", resp.Model),
		slog.Int64("totalTokens", resp.Usage.TotalTokens),
		slog.Duration("elapsed", time.Since(start)))

	generated, err := decode(resp)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "unreadable workout suggestion", errors.SlogError(err))
		return workout.CoachSuggestion{}, &workout.ExternalServiceError{
			Op:          opChatCompletion,
			UserMessage: "The coach returned a workout that could not be read. Please try again.",
			Retryable:   true,
			Err:         err,
		}
	}
	return generated.suggestion(c.now()), nil
}

func decode(resp *openai.ChatCompletion) (generatedWorkout, error) {
	if len(resp.Choices) == 0 {
		return generatedWorkout{}, errors.New("no choices in completion")
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return generatedWorkout{}, errors.New("model refused", slog.String("refusal", msg.Refusal))
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return generatedWorkout{}, errors.New("empty completion",
			slog.String("finishReason", resp.Choices[0].FinishReason))
	}
	var g generatedWorkout
	if err := json.Unmarshal([]byte(content), &g); err != nil {
		return generatedWorkout{}, fmt.Errorf("unmarshal workout: %w", err)
	}
	return g, nil
}

// classify maps a failed completion call to a user facing error. ctx is the call context, its deadline counts
// as a timeout even when the transport reports something else.
func classify(ctx context.Context, err error) *workout.ExternalServiceError {
	serviceErr := &workout.ExternalServiceError{
		Op:          opChatCompletion,
		UserMessage: "Could not reach the coach. Check your connection and try again.",
		Retryable:   true,
		Err:         err,
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		serviceErr.UserMessage = "The coach took too long to answer. Please try again."
		if !errors.Is(err, context.DeadlineExceeded) {
			serviceErr.Err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return serviceErr
	}
	if errors.Is(err, context.Canceled) {
		serviceErr.UserMessage = "The request to the coach was cancelled."
		serviceErr.Retryable = false
		return serviceErr
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return serviceErr
	}
	switch code := apiErr.StatusCode; {
	case code == http.StatusTooManyRequests:
		serviceErr.UserMessage = "The coach is receiving too many requests. Please wait a moment and try again."
	case code == http.StatusUnauthorized:
		serviceErr.UserMessage = "The coach rejected the API key. Check OPENAI_API_KEY."
		serviceErr.Retryable = false
	case code == http.StatusForbidden:
		serviceErr.UserMessage = "The API key is not allowed to use the coach model."
		serviceErr.Retryable = false
	case code == http.StatusNotFound:
		serviceErr.UserMessage = "The configured coach model was not found."
		serviceErr.Retryable = false
	case code >= http.StatusInternalServerError:
		serviceErr.UserMessage = "The coach service is temporarily unavailable. Please try again later."
	default:
		serviceErr.UserMessage = "The coach could not process the request."
		serviceErr.Retryable = false
	}
	return serviceErr
}
