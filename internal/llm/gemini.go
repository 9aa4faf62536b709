package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

// geminiClient is a client for the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (TextGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(geminiModel)
	return &geminiClient{client: client, model: model}, nil
}

// GenerateContent sends a prompt to the Gemini model and returns the generated text.
func (c *geminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return textFromResponse(resp)
}

// GenerateFromImages sends a prompt plus one or more images to the Gemini model.
func (c *geminiClient) GenerateFromImages(ctx context.Context, prompt string, images []Image) (string, error) {
	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.ImageData(img.Format, img.Data))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return textFromResponse(resp)
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("generated content is not text")
	}

	return string(text), nil
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}
