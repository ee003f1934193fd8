// Package gemini implements app.InsightGenerator on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hylla/dayflow/internal/app"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.0-flash"

// DefaultSystemInstruction frames every request.
const DefaultSystemInstruction = "You are a productivity analyst. Read the user's activity log for one day and answer in short markdown."

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini returned no text (check safety filters)")

// Config holds generator settings.
type Config struct {
	APIKey string
	Model  string
	System string
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator sends insight requests to Gemini.
type Generator struct {
	models contentGenerator
	model  string
	system string
}

var _ app.InsightGenerator = (*Generator)(nil)

// New builds a Generator backed by a genai client.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGenerator(client.Models, cfg), nil
}

func newGenerator(models contentGenerator, cfg Config) *Generator {
	g := &Generator{
		models: models,
		model:  strings.TrimSpace(cfg.Model),
		system: strings.TrimSpace(cfg.System),
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.system == "" {
		g.system = DefaultSystemInstruction
	}
	return g
}

// GenerateInsight implements app.InsightGenerator.
func (g *Generator) GenerateInsight(ctx context.Context, req app.InsightRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.system, genai.RoleUser),
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(g.prompt(req)), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *Generator) prompt(req app.InsightRequest) string {
	return fmt.Sprintf("Activities for the day:\n%s\n%s", req.Render(), req.Instruction)
}
