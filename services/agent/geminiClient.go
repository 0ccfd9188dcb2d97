package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"radbook/config"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	model *genai.GenerativeModel
}

func NewGeminiClient(apiKey string) *GeminiClient {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel(config.AppConfig.GeminiModel)
	return &GeminiClient{model: model}
}

// GenerateContent returns the full model answer for a prompt.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

// StreamContent streams the model answer token by token through onToken and
// returns the assembled full text. Streaming stops when onToken returns an
// error, typically because the client disconnected.
func (g *GeminiClient) StreamContent(ctx context.Context, prompt string, onToken func(token string) error) (string, error) {
	iter := g.model.GenerateContentStream(ctx, genai.Text(prompt))

	var sb strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return sb.String(), fmt.Errorf("gemini stream error: %w", err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				textPart, ok := part.(genai.Text)
				if !ok {
					continue
				}
				sb.WriteString(string(textPart))
				if err := onToken(string(textPart)); err != nil {
					return sb.String(), err
				}
			}
		}
	}
	return sb.String(), nil
}
