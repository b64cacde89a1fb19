package provider

import (
	"context"
	goerrors "errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/videoscribe/analyzer/config"
	pipelineerrors "github.com/videoscribe/analyzer/errors"
)

// OpenAI implements Provider against the chat-completions API, images
// passed as data-URL ChatMessagePart entries.
type OpenAI struct {
	APIKey string
	Model  string
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) ValidateConfig() error {
	if p.APIKey == "" {
		return pipelineerrors.New(pipelineerrors.KindAuthMissing, "OPENAI_API_KEY not configured")
	}
	return nil
}

func (p *OpenAI) PrepareMessages(images []Image, userPrompt, systemPrompt string) (any, error) {
	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: userPrompt}}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/jpeg;base64," + img.Base64,
				Detail: openai.ImageURLDetail(img.Detail),
			},
		})
	}
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, MultiContent: parts},
	}, nil
}

func (p *OpenAI) Call(ctx context.Context, images []Image, userPrompt, systemPrompt string) (string, error) {
	if err := p.ValidateConfig(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	raw, err := p.PrepareMessages(images, userPrompt, systemPrompt)
	if err != nil {
		return "", err
	}
	messages := raw.([]openai.ChatCompletionMessage)

	client := openai.NewClient(p.APIKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.Model,
		Messages: messages,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", pipelineerrors.New(pipelineerrors.KindAnalysisFailed, "openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if goerrors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return pipelineerrors.Wrap(pipelineerrors.KindAuthMissing, "openai rejected the configured API key", err)
		case 400:
			if apiErr.Code == "content_policy_violation" {
				return pipelineerrors.Wrap(pipelineerrors.KindContentPolicyBlocked, "openai refused the content", err)
			}
		}
	}
	return fmt.Errorf("openai call failed: %w", err)
}
