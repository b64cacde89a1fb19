package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/videoscribe/analyzer/config"
	pipelineerrors "github.com/videoscribe/analyzer/errors"
)

// Gemini implements Provider against the GenerateContent API, images
// passed as inline-bytes parts (no file upload, frames are ephemeral).
type Gemini struct {
	APIKey string
	Model  string
}

func (p *Gemini) Name() string { return "gemini" }

func (p *Gemini) ValidateConfig() error {
	if p.APIKey == "" {
		return pipelineerrors.New(pipelineerrors.KindAuthMissing, "GEMINI_API_KEY not configured")
	}
	return nil
}

func (p *Gemini) PrepareMessages(images []Image, userPrompt, systemPrompt string) (any, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(userPrompt))
	for _, img := range images {
		raw, err := decode(img)
		if err != nil {
			return nil, fmt.Errorf("decoding image for gemini: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(raw, "image/jpeg"))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	return geminiRequest{contents: contents, config: cfg}, nil
}

type geminiRequest struct {
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (p *Gemini) Call(ctx context.Context, images []Image, userPrompt, systemPrompt string) (string, error) {
	if err := p.ValidateConfig(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	raw, err := p.PrepareMessages(images, userPrompt, systemPrompt)
	if err != nil {
		return "", err
	}
	req := raw.(geminiRequest)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, p.Model, req.contents, req.config)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 {
		return "", pipelineerrors.New(pipelineerrors.KindAnalysisFailed, "gemini returned no candidates")
	}
	if reason := resp.Candidates[0].FinishReason; reason == genai.FinishReasonSafety || reason == genai.FinishReasonProhibitedContent {
		return "", pipelineerrors.New(pipelineerrors.KindContentPolicyBlocked, "gemini refused the content")
	}

	text := resp.Text()
	if text == "" {
		return "", pipelineerrors.New(pipelineerrors.KindAnalysisFailed, "gemini returned empty text")
	}
	return text, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if ok := asGeminiAPIError(err, &apiErr); ok {
		switch apiErr.Code {
		case 401, 403:
			return pipelineerrors.Wrap(pipelineerrors.KindAuthMissing, "gemini rejected the configured API key", err)
		case 400:
			return pipelineerrors.Wrap(pipelineerrors.KindContentPolicyBlocked, "gemini refused the content", err)
		}
	}
	return fmt.Errorf("gemini call failed: %w", err)
}

func asGeminiAPIError(err error, target *genai.APIError) bool {
	apiErr, ok := err.(genai.APIError)
	if !ok {
		return false
	}
	*target = apiErr
	return true
}
