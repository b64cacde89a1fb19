package provider

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/videoscribe/analyzer/config"
	pipelineerrors "github.com/videoscribe/analyzer/errors"
)

// Claude implements Provider against the Messages API, images passed as
// base64 image content blocks alongside a text block.
type Claude struct {
	APIKey string
	Model  string
}

const claudeMaxTokens = 4096

func (p *Claude) Name() string { return "claude" }

func (p *Claude) ValidateConfig() error {
	if p.APIKey == "" {
		return pipelineerrors.New(pipelineerrors.KindAuthMissing, "CLAUDE_API_KEY not configured")
	}
	return nil
}

func (p *Claude) PrepareMessages(images []Image, userPrompt, systemPrompt string) (any, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(images)+1)
	for _, img := range images {
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/jpeg", img.Base64))
	}
	blocks = append(blocks, anthropic.NewTextBlock(userPrompt))

	return anthropic.MessageNewParams{
		Model:     anthropic.Model(p.Model),
		MaxTokens: claudeMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}, nil
}

func (p *Claude) Call(ctx context.Context, images []Image, userPrompt, systemPrompt string) (string, error) {
	if err := p.ValidateConfig(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	raw, err := p.PrepareMessages(images, userPrompt, systemPrompt)
	if err != nil {
		return "", err
	}
	params := raw.(anthropic.MessageNewParams)

	client := anthropic.NewClient(option.WithAPIKey(p.APIKey))
	message, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyClaudeError(err)
	}
	if len(message.Content) == 0 {
		return "", pipelineerrors.New(pipelineerrors.KindAnalysisFailed, "claude returned no content blocks")
	}

	var text string
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}
	return text, nil
}

func classifyClaudeError(err error) error {
	var apiErr *anthropic.Error
	if goerrors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return pipelineerrors.Wrap(pipelineerrors.KindAuthMissing, "claude rejected the configured API key", err)
		case 400:
			return pipelineerrors.Wrap(pipelineerrors.KindContentPolicyBlocked, "claude refused the content", err)
		}
	}
	return fmt.Errorf("claude call failed: %w", err)
}
