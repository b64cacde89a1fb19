// Package prompt builds the two-part request text sent to the
// multimodal provider layer: a constant system prompt and a per-video
// user prompt assembled from the Video's metadata and image count. No
// pack example does natural-language prompt templating, so this is
// stdlib-only (text/template, strings).
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/model"
)

// System is the constant system prompt: the model's role is a domain
// expert, metadata is supplementary, image content is authoritative.
const System = `You are an expert video content analyst. You classify short-form and long-form video content by genre, visual style, mood, and audience from its frames.

The images you are given are authoritative. Treat the surrounding metadata (title, uploader, description, platform tags) as supplementary context only — it may be inaccurate, missing, or misleading. Base your analysis primarily on what the images actually show.`

const maxDescriptionChars = 500
const maxPlatformTags = 10

const userPromptTemplate = `{{.Header}}

These {{.ImageCount}} images are from the video; the first is the thumbnail, the rest are representative scenes in chronological order. Use the images as your primary evidence. Metadata above is supplementary context only — if it conflicts with what the images show, trust the images.

Answer the following seven items. Do not prefix your answers with labels like "A1:" — write each answer as plain text, separated from the next by a blank line.

1. Genre: choose exactly one from this list: {{.Genres}}.
2. Reasoning: explain your genre choice in at least 200 characters, referencing specific visual evidence from the images.
3. Features: describe the visual and production features you observe (editing style, pacing, composition, color grading, on-screen text) in at least 200 characters.
4. Tags: at least 10 comma-separated tags describing the content, without a leading "#", distinct from the platform tags already listed above.
5. Expression style: choose exactly one from this list: {{.ExpressionStyles}}.
6. Mood/tone: describe the overall mood and tone in a short phrase or sentence.
7. Target audience: describe who this content is made for.
`

var userTmpl = template.Must(template.New("user_prompt").Parse(userPromptTemplate))

type userPromptData struct {
	Header           string
	ImageCount       int
	Genres           string
	ExpressionStyles string
}

// Build constructs the user prompt for one video and the number of
// images that will accompany it (thumbnail + representative scenes).
func Build(v model.Video, imageCount int) string {
	data := userPromptData{
		Header:           buildHeader(v.Metadata),
		ImageCount:       imageCount,
		Genres:           strings.Join(config.DefaultGenres, ", "),
		ExpressionStyles: strings.Join(config.DefaultExpressionStyles, ", "),
	}

	var out strings.Builder
	// template.Execute only errors on a malformed template or a write
	// error from the Writer; userTmpl is a package-level constant
	// parsed once at init and strings.Builder.Write never fails.
	_ = userTmpl.Execute(&out, data)
	return out.String()
}

func buildHeader(m model.VideoMetadata) string {
	var lines []string

	if m.Title != "" {
		lines = append(lines, fmt.Sprintf("Title: %s", m.Title))
	}
	if m.Uploader != "" {
		lines = append(lines, fmt.Sprintf("Uploader: %s", m.Uploader))
	}
	if m.DurationSeconds > 0 {
		lines = append(lines, fmt.Sprintf("Duration: %s", formatDurationKorean(m.DurationSeconds)))
	}
	if m.ViewCount > 0 {
		lines = append(lines, fmt.Sprintf("Views: %d", m.ViewCount))
	}
	if tags := truncateTags(m.Tags, maxPlatformTags); len(tags) > 0 {
		lines = append(lines, fmt.Sprintf("Platform tags: %s", strings.Join(tags, ", ")))
	}
	if m.Description != "" {
		lines = append(lines, fmt.Sprintf("Description: %s", truncateRunes(m.Description, maxDescriptionChars)))
	}

	return strings.Join(lines, "\n")
}

// formatDurationKorean renders a duration in "M분 S초" form per the
// contract's header line format.
func formatDurationKorean(seconds float64) string {
	total := int(seconds)
	minutes := total / 60
	secs := total % 60
	return fmt.Sprintf("%d분 %d초", minutes, secs)
}

func truncateTags(tags []string, max int) []string {
	if len(tags) <= max {
		return tags
	}
	return tags[:max]
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
