// File: services/intelligence/gemini.go
package intelligence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medichat/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const maxGenerateRetries = 3

// GeminiClient is a ChatModel over two Gemini models: a primary and a
// cheaper fallback tried when the primary stays overloaded through retries.
type GeminiClient struct {
	primary  *genai.GenerativeModel
	fallback *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, model, fallbackModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	gc := &GeminiClient{primary: client.GenerativeModel(model)}
	if fallbackModel != "" && fallbackModel != model {
		gc.fallback = client.GenerativeModel(fallbackModel)
	}
	return gc, nil
}

// Generate calls the primary model with capped exponential backoff on
// overload errors, then falls back to the secondary model.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	logger := utils.GetLogger()

	var lastErr error
	for attempt := 0; attempt < maxGenerateRetries; attempt++ {
		out, err := generateText(ctx, g.primary, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isOverloaded(err) {
			break
		}
		logger.Warn("Gemini model overloaded",
			zap.Int("attempt", attempt+1),
			zap.Int("maxAttempts", maxGenerateRetries),
			zap.Error(err))
		if attempt < maxGenerateRetries-1 {
			select {
			case <-time.After(time.Second << attempt):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	if g.fallback != nil {
		logger.Warn("Switching to fallback Gemini model", zap.Error(lastErr))
		return generateText(ctx, g.fallback, prompt)
	}
	return "", lastErr
}

func generateText(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

func isOverloaded(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") || strings.Contains(msg, "529")
}
