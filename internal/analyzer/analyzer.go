// Package analyzer wraps the optional OpenAI vision collaborator used for
// free-form image descriptions. The conversion pipeline never depends on it;
// when no API key is configured the feature is simply absent.
package analyzer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const DefaultModel = "gpt-4o"

const analysisPrompt = "Analyze this image and provide: 1) Description of main subjects, " +
	"2) Color analysis, 3) Suggested improvements, 4) Best format recommendations. " +
	"Respond in JSON format."

type Client struct {
	client openai.Client
	model  string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Describe sends a JPEG-encoded image to the vision model as a data URI and
// returns the analysis. JSON answers are decoded into a map; anything else
// comes back as the raw text.
func (c *Client) Describe(ctx context.Context, jpegData []byte) (any, error) {
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(1000),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							{OfText: &openai.ChatCompletionContentPartTextParam{
								Text: analysisPrompt,
							}},
							{OfImageURL: &openai.ChatCompletionContentPartImageParam{
								ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
									URL: imageURL,
								},
							}},
						},
					},
				},
			},
		},
	}

	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	content := response.Choices[0].Message.Content

	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed, nil
	}

	return content, nil
}
