package gemini

import (
	"strings"

	"github.com/thomas-vilte/contextclue/internal/models"
	"google.golang.org/genai"
)

// extractUsage extracts usage metadata from the Gemini response
func extractUsage(resp *genai.GenerateContentResponse) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
	}
}

// GetGenerateConfig asks for a short JSON answer. Thinking is switched off on
// 2.5 flash models so it does not consume the output token budget.
func GetGenerateConfig(modelName string, maxTokens int) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:      float32Ptr(0.2),
		MaxOutputTokens:  int32(maxTokens),
		ResponseMIMEType: responseMIMEType,
	}

	if strings.HasPrefix(modelName, "gemini-2.5-flash") {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: int32Ptr(0),
		}
	}

	return config
}

// formatResponse joins the text parts of the first candidate, skipping thought parts.
func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func float32Ptr(f float32) *float32 {
	return &f
}

func int32Ptr(i int32) *int32 {
	return &i
}
