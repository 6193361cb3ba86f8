package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/PiyushChall/CogniSynapseRank/internal/config"
	"github.com/PiyushChall/CogniSynapseRank/internal/generation"
)

// ErrEmptyPrompt is returned when a generated prompt is empty.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// Generator implements the generation.Generator interface using
// Google's Gemini API to produce report sections.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string

	// baseDelay is the starting delay for exponential backoff.
	baseDelay time.Duration

	// callModel issues one raw model call. It is a field so tests can
	// substitute the API round trip.
	callModel func(ctx context.Context, prompt string) (string, error)
}

// NewGenerator creates a new Generator with the provided dependencies.
//
// Returns generation.ErrInvalidConfig (wrapped) if the configuration is
// incomplete or the Gemini client cannot be constructed.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	g := &Generator{
		logger:    logger,
		config:    cfg,
		client:    client,
		model:     cfg.ModelName,
		baseDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
	g.callModel = g.callGemini

	return g, nil
}

// GenerateSection produces the report text for the given stage.
//
// Transient API failures are retried with exponential backoff and jitter up
// to the configured maximum; permanent failures (blocked content, malformed
// responses) are surfaced immediately.
func (g *Generator) GenerateSection(
	ctx context.Context,
	stage generation.Stage,
	input generation.SectionInput,
) (string, error) {
	prompt, err := buildPrompt(stage, input)
	if err != nil {
		return "", err
	}

	g.logger.DebugContext(ctx, "generated prompt for stage",
		"stage", stage,
		"prompt_length", len(prompt))

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", stage, err)
	}

	return text, nil
}

// callWithRetry makes a model call with exponential backoff retry logic.
//
// It attempts the call up to config.MaxRetries+1 times, backing off with
// jitter between attempts for transient errors. Permanent errors (content
// blocked by safety filters, invalid responses) are returned immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	maxRetries := g.config.MaxRetries
	baseDelay := g.baseDelay
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelay <= 0 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelay = 2 * time.Second
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1 // 1-based for logging
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, err := g.callModel(ctx, prompt)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return text, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are not retried.
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			g.logger.WarnContext(ctx, "permanent error occurred, not retrying", "error", err)
			return "", err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(baseDelay) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitterFactor)

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay_seconds", delay.Seconds())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callGemini issues a single GenerateContent request and extracts the
// response text, classifying failure modes into the generation error taxonomy.
func (g *Generator) callGemini(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		// API-level errors are assumed transient; the retry loop decides
		// whether to give up.
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	return text, nil
}
