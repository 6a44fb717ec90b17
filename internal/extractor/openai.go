package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// extractPrompt pins the exact JSON shape the model must answer with. The
// model is told to emit the defaults itself (0 / null) so the pipeline can
// persist whatever parses.
const extractPrompt = `You are an invoice data extraction system. Return ONLY valid JSON. No explanations, no line breaks, no markdown fences, no extra text.

The JSON must have this exact structure:

{
  "total": number,
  "date": "YYYY-MM-DD",
  "place": "string",
  "products": [
    { "name": "string", "quantity": number, "price": number }
  ]
}

If any value is missing, use null or 0.
`

// Response-size bounds for the two passes; the repair pass only has to echo
// reshaped text, so it gets a tighter budget.
const (
	extractMaxTokens = 1000
	repairMaxTokens  = 800
)

// OpenAIClient implements CompletionClient on the OpenAI chat-completion
// API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(apiKey), model: model}
}

// ExtractFromImage pairs the schema prompt with the image URL in one user
// message and returns the model's trimmed text answer.
func (c *OpenAIClient) ExtractFromImage(ctx context.Context, imageURL string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: extractMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are an invoice extractor."},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return firstChoice(resp)
}

// RepairJSON asks the model to reformat a malformed previous answer into
// the pinned schema.
func (c *OpenAIClient) RepairJSON(ctx context.Context, malformed string) (string, error) {
	prompt := fmt.Sprintf(`Fix and convert this text into valid JSON with this structure:

{
  "total": number,
  "date": "YYYY-MM-DD",
  "place": "string",
  "products": [
    { "name": "string", "quantity": number, "price": number }
  ]
}

Original text:
%s
`, malformed)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: repairMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	return firstChoice(resp)
}

func firstChoice(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
