package provider

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	pipelineerrors "github.com/videoscribe/analyzer/errors"
)

type stubProvider struct {
	name string
	err  error
	text string
}

func (s *stubProvider) Name() string           { return s.name }
func (s *stubProvider) ValidateConfig() error  { return nil }
func (s *stubProvider) PrepareMessages(_ []Image, _, _ string) (any, error) {
	return nil, nil
}
func (s *stubProvider) Call(_ context.Context, _ []Image, _, _ string) (string, error) {
	return s.text, s.err
}

func TestCallWithFallbackReturnsFirstSuccess(t *testing.T) {
	providers := []Provider{
		&stubProvider{name: "openai", err: pipelineerrors.New(pipelineerrors.KindAuthMissing, "no key")},
		&stubProvider{name: "claude", text: "a claude description"},
	}

	text, used, err := CallWithFallback(context.Background(), providers, nil, "describe", "system")
	require.NoError(t, err)
	require.Equal(t, "a claude description", text)
	require.Equal(t, "claude", used)
}

func TestCallWithFallbackStopsOnNonFallbackKind(t *testing.T) {
	providers := []Provider{
		&stubProvider{name: "openai", err: pipelineerrors.New(pipelineerrors.KindAnalysisFailed, "malformed response")},
		&stubProvider{name: "claude", text: "never reached"},
	}

	_, _, err := CallWithFallback(context.Background(), providers, nil, "describe", "system")
	require.Error(t, err)
	kind, ok := pipelineerrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, pipelineerrors.KindAnalysisFailed, kind)
}

func TestCallWithFallbackExhaustsAllProviders(t *testing.T) {
	providers := []Provider{
		&stubProvider{name: "openai", err: pipelineerrors.New(pipelineerrors.KindAuthMissing, "no key")},
		&stubProvider{name: "claude", err: pipelineerrors.New(pipelineerrors.KindContentPolicyBlocked, "refused")},
	}

	_, _, err := CallWithFallback(context.Background(), providers, nil, "describe", "system")
	require.Error(t, err)
	require.Contains(t, err.Error(), "all providers exhausted")
}

func TestCallWithFallbackRejectsEmptyProviderList(t *testing.T) {
	_, _, err := CallWithFallback(context.Background(), nil, nil, "describe", "system")
	require.Error(t, err)
	kind, ok := pipelineerrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, pipelineerrors.KindAnalysisFailed, kind)
}

func TestOpenAIValidateConfigRequiresAPIKey(t *testing.T) {
	p := &OpenAI{Model: "gpt-4o"}
	err := p.ValidateConfig()
	require.Error(t, err)
	kind, ok := pipelineerrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, pipelineerrors.KindAuthMissing, kind)

	p.APIKey = "sk-test"
	require.NoError(t, p.ValidateConfig())
}

func TestClaudeValidateConfigRequiresAPIKey(t *testing.T) {
	p := &Claude{Model: "claude-sonnet-4-5"}
	err := p.ValidateConfig()
	require.Error(t, err)
	kind, ok := pipelineerrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, pipelineerrors.KindAuthMissing, kind)
}

func TestGeminiValidateConfigRequiresAPIKey(t *testing.T) {
	p := &Gemini{Model: "gemini-2.0-flash"}
	err := p.ValidateConfig()
	require.Error(t, err)
	kind, ok := pipelineerrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, pipelineerrors.KindAuthMissing, kind)
}

func TestOpenAIPrepareMessagesIncludesOneImagePartPerImage(t *testing.T) {
	p := &OpenAI{APIKey: "sk-test", Model: "gpt-4o"}
	images := []Image{{Base64: "aGVsbG8=", Detail: DetailHigh}, {Base64: "d29ybGQ=", Detail: DetailLow}}

	raw, err := p.PrepareMessages(images, "describe this video", "system prompt")
	require.NoError(t, err)

	messages := raw.([]openai.ChatCompletionMessage)
	require.Len(t, messages, 2)
	require.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	require.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	require.Len(t, messages[1].MultiContent, 3)
	require.Equal(t, openai.ChatMessagePartTypeText, messages[1].MultiContent[0].Type)
	require.Equal(t, openai.ChatMessagePartTypeImageURL, messages[1].MultiContent[1].Type)
}
