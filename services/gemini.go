package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrEmptyResponse = errors.New("gemini returned no content")

// GeminiGenerateText sends one prompt to Gemini and returns the raw text of
// the first candidate. One prompt in, one blob out; no retries, no streaming.
func GeminiGenerateText(prompt string) (string, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	name := os.Getenv("GEMINI_MODEL")
	if name == "" {
		name = "gemini-2.0-flash"
	}

	model := client.GenerativeModel(name)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// GenerateText is the pipeline's entry point to the model. A variable so
// handler tests can swap in a stub and count calls.
var GenerateText = GeminiGenerateText
