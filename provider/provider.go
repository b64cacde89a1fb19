// Package provider implements the multimodal LLM abstraction: a single
// interface uniform across OpenAI, Claude, and Gemini, each differing
// only in payload shape. Grounded on the teacher's
// clients.TranscodeProvider (clients/transcode_provider.go), a
// one-method interface around an external service call; this
// generalizes that shape to the four-method contract the domain needs.
package provider

import (
	"context"
)

// ImageDetail is the provider-agnostic detail hint for an image part.
type ImageDetail string

const (
	DetailLow  ImageDetail = "low"
	DetailHigh ImageDetail = "high"
	DetailAuto ImageDetail = "auto"
)

// Image is one base64-encoded JPEG plus its detail hint, the unit every
// provider implementation consumes identically.
type Image struct {
	Base64 string
	Detail ImageDetail
}

// Provider is the uniform contract all three backends implement.
// Identical (images, user_prompt, system_prompt) must produce
// semantically equivalent requests across implementations.
type Provider interface {
	Name() string
	ValidateConfig() error
	Call(ctx context.Context, images []Image, userPrompt, systemPrompt string) (string, error)
	PrepareMessages(images []Image, userPrompt, systemPrompt string) (any, error)
}
