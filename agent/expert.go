// Package agent writes the AI generated parts of the emails: the daily news
// summary and the welcome intro.
package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Model is the Gemini model used by the experts.
const Model = "gemini-2.5-flash-lite"

// Generator generates content. *genai.Models implements it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGenerator returns the Gemini generator configured from the environment
// (GEMINI_API_KEY or GOOGLE_API_KEY).
func NewGenerator(ctx context.Context) (Generator, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// Expert is a single shot writer: a model with its instructions.
type Expert struct {
	Name      string                       `json:"name"`
	ModelName string                       `json:"model_name"`
	Config    *genai.GenerateContentConfig `json:"config"`
	// Fallback replaces an empty answer.
	Fallback string `json:"fallback"`
}

// Ask sends prompt and returns the text of the first part of the first candidate.
//
// A failed generation is an error. An answer without text is replaced by Fallback.
func (e *Expert) Ask(ctx context.Context, g Generator, prompt string) (string, error) {
	resp, err := g.GenerateContent(ctx, e.ModelName, genai.Text(prompt), e.Config)
	if err != nil {
		return "", fmt.Errorf("expert %s: %w", e.Name, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return e.Fallback, nil
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0] == nil {
		return e.Fallback, nil
	}
	text := strings.TrimSpace(parts[0].Text)
	if text == "" {
		return e.Fallback, nil
	}
	return text, nil
}

func instruction(text string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: text}}},
	}
}
