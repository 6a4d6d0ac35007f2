package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lox/fourteeners/internal/forecast"
	"github.com/lox/fourteeners/internal/metrics"
)

// DefaultModel is the OpenAI image model used for banners.
const DefaultModel = "gpt-image-1"

// Generator handles banner generation using OpenAI's API.
type Generator struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewGenerator creates a new image generator authenticated with apiKey.
func NewGenerator(apiKey string, logger *slog.Logger, opts ...option.RequestOption) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Generator{
		client: openai.NewClient(opts...),
		model:  DefaultModel,
		logger: logger.With("component", "imagegen"),
	}, nil
}

// Generate creates a banner for the given condition category and returns it
// as PNG bytes.
func (g *Generator) Generate(ctx context.Context, c forecast.Category) ([]byte, error) {
	g.logger.Info("generating banner", "category", c)

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:        g.model,
		Prompt:       BannerPrompt(c),
		Size:         openai.ImageGenerateParamsSize1536x1024,
		Quality:      openai.ImageGenerateParamsQualityLow,
		OutputFormat: openai.ImageGenerateParamsOutputFormatPNG,
	})
	if err != nil {
		metrics.ImageGenerations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		metrics.ImageGenerations.WithLabelValues("empty").Inc()
		return nil, errors.New("no image data returned")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		metrics.ImageGenerations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	metrics.ImageGenerations.WithLabelValues("ok").Inc()
	g.logger.Info("generated banner", "category", c, "bytes", len(imageBytes))
	return imageBytes, nil
}
