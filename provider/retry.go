package provider

import (
	"context"
	"fmt"

	pipelineerrors "github.com/videoscribe/analyzer/errors"
)

// CallWithFallback tries providers in order, advancing to the next one only
// on AUTH_MISSING or CONTENT_POLICY_BLOCKED — anything else is a terminal
// failure, the same "one strategy fails outright, fall through to the next"
// shape as the upstream pipeline's fallback_external strategy, generalized
// from two hardcoded pipelines to an arbitrary ordered provider list.
func CallWithFallback(ctx context.Context, providers []Provider, images []Image, userPrompt, systemPrompt string) (string, string, error) {
	if len(providers) == 0 {
		return "", "", pipelineerrors.New(pipelineerrors.KindAnalysisFailed, "no providers configured")
	}

	var lastErr error
	for _, p := range providers {
		text, err := p.Call(ctx, images, userPrompt, systemPrompt)
		if err == nil {
			return text, p.Name(), nil
		}
		lastErr = err

		kind, ok := pipelineerrors.KindOf(err)
		if !ok || (kind != pipelineerrors.KindAuthMissing && kind != pipelineerrors.KindContentPolicyBlocked) {
			return "", "", err
		}
	}
	return "", "", fmt.Errorf("all providers exhausted: %w", lastErr)
}
