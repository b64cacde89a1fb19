// Package parse turns a provider's free-form response text into a
// model.ParsedAnalysis, trying increasingly lenient strategies until one
// produces an acceptable result. Grounded on the original project's
// ResponseParser (labeled → sectional → freeform → minimal cascade,
// the same multi-delimiter tag split and Korean-word-frequency keyword
// fallback); no pack example does multi-strategy natural-language
// parsing, so this is stdlib-only (regexp, strings).
package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/model"
)

const minReasoningChars = 20
const maxMinimalChars = 500
const maxTags = 20
const maxShortAnswerChars = 50

var tagDelimiters = []string{",", "/", "#", "·", "|", "\n"}

var stopwords = map[string]bool{
	"영상": true, "분석": true, "이미지": true, "내용": true, "경우": true,
}

var (
	labeledGenre    = regexp.MustCompile(`(?is)A1[.\s]*[:：]?\s*(.+?)(?:\n|$)`)
	labeledReason   = regexp.MustCompile(`(?is)A2[.\s]*[:：]?\s*(.+?)(?:A3|$)`)
	labeledFeatures = regexp.MustCompile(`(?is)A3[.\s]*[:：]?\s*(.+?)(?:A4|$)`)
	labeledTags     = regexp.MustCompile(`(?is)A4[.\s]*[:：]?\s*(.+?)(?:A5|$)`)
	labeledFormat   = regexp.MustCompile(`(?is)A5[.\s]*[:：]?\s*(.+?)(?:A6|$)`)
	labeledMood     = regexp.MustCompile(`(?is)A6[.\s]*[:：]?\s*(.+?)(?:A7|$)`)
	labeledAudience = regexp.MustCompile(`(?is)A7[.\s]*[:：]?\s*(.+)$`)

	labelStripRE    = regexp.MustCompile(`^A\d+[.\s]*[:：]?\s*`)
	edgePunctLeadRE = regexp.MustCompile(`^[-*·\s]+`)
	edgePunctTailRE = regexp.MustCompile(`[-*·\s]+$`)
	tagEdgeLeadRE   = regexp.MustCompile(`^[#\-*·\s]+`)
	tagEdgeTailRE   = regexp.MustCompile(`[#\-*·\s]+$`)
	koreanWordRE    = regexp.MustCompile(`[\x{AC00}-\x{D7A3}]{2,10}`)
)

// Parse runs the labeled → sectional → freeform → minimal cascade over
// raw provider response text and stamps the accepted result with
// modelUsed and the configured clock.
func Parse(raw string, modelUsed string) model.ParsedAnalysis {
	for _, strategy := range []func(string) model.ParsedAnalysis{parseLabeled, parseSectional, parseFreeform} {
		result := strategy(raw)
		if accepted(result) {
			return stamp(result, modelUsed)
		}
	}
	return stamp(parseMinimal(raw), modelUsed)
}

// UnionTags merges platform tags with the parsed tags, platform tags
// first, deduplicated, capped at maxTags — per the persisted-tags
// ordering the store contract expects.
func UnionTags(platformTags, parsedTags []string) []string {
	seen := make(map[string]bool, len(platformTags)+len(parsedTags))
	var out []string
	for _, t := range platformTags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, t := range parsedTags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > maxTags {
		out = out[:maxTags]
	}
	return out
}

func accepted(r model.ParsedAnalysis) bool {
	return r.Genre != "" && len([]rune(r.Reasoning)) >= minReasoningChars
}

func stamp(r model.ParsedAnalysis, modelUsed string) model.ParsedAnalysis {
	r.ModelUsed = modelUsed
	r.AnalysisDate = config.Clock.GetTime()
	return r
}

func parseLabeled(raw string) model.ParsedAnalysis {
	var r model.ParsedAnalysis
	r.Genre = cleanText(firstMatch(labeledGenre, raw))
	r.Reasoning = cleanText(firstMatch(labeledReason, raw))
	r.Features = cleanText(firstMatch(labeledFeatures, raw))
	r.Tags = parseTags(firstMatch(labeledTags, raw))
	r.ExpressionStyle = cleanText(firstMatch(labeledFormat, raw))
	r.MoodTone = cleanText(firstMatch(labeledMood, raw))
	r.TargetAudience = cleanText(firstMatch(labeledAudience, raw))
	return r
}

func firstMatch(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// parseSectional splits the response on blank lines and maps the first
// seven sections positionally onto A1-A7.
func parseSectional(raw string) model.ParsedAnalysis {
	var r model.ParsedAnalysis
	sections := splitSections(raw)
	if len(sections) < 4 {
		return r
	}

	if len(sections) >= 1 {
		r.Genre = extractFirstLine(sections[0])
	}
	if len(sections) >= 2 {
		r.Reasoning = cleanText(sections[1])
	}
	if len(sections) >= 3 {
		r.Features = cleanText(sections[2])
	}
	if len(sections) >= 4 {
		r.Tags = parseTags(sections[3])
	}
	if len(sections) >= 5 {
		r.ExpressionStyle = extractFirstLine(sections[4])
	}
	if len(sections) >= 6 {
		r.MoodTone = cleanText(sections[5])
	}
	if len(sections) >= 7 {
		r.TargetAudience = cleanText(sections[6])
	}
	return r
}

func splitSections(raw string) []string {
	var sections []string
	var current []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if strings.TrimSpace(line) != "" {
			current = append(current, line)
		} else if len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = nil
		}
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}
	return sections
}

var genreKeywords = []string{"장르", "분류", "카테고리", "타입", "유형"}
var tagKeywords = []string{"태그", "키워드", "관련어", "연관어"}

// parseFreeform looks for Korean keyword-labeled genre/tag lines, then
// classifies the two longest remaining lines as reasoning and features.
func parseFreeform(raw string) model.ParsedAnalysis {
	var r model.ParsedAnalysis

	for _, kw := range genreKeywords {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw) + `[:\s]*([^\n]+)`)
		if m := re.FindStringSubmatch(raw); len(m) == 2 {
			r.Genre = extractFirstLine(m[1])
			break
		}
	}

	for _, kw := range tagKeywords {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw) + `[:\s]*([^\n]+(?:\n[^\n]+)*)`)
		if m := re.FindStringSubmatch(raw); len(m) == 2 {
			r.Tags = parseTags(m[1])
			break
		}
	}

	var long []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) > 100 {
			long = append(long, line)
		}
	}
	sort.SliceStable(long, func(i, j int) bool {
		return len([]rune(long[i])) > len([]rune(long[j]))
	})
	switch {
	case len(long) >= 2:
		r.Reasoning = long[0]
		r.Features = long[1]
	case len(long) == 1:
		r.Reasoning = long[0]
	}

	return r
}

// parseMinimal never fails validation itself — it is the terminal
// fallback applied when every other strategy is rejected.
func parseMinimal(raw string) model.ParsedAnalysis {
	var r model.ParsedAnalysis

	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			r.Genre = extractFirstLine(trimmed)
			break
		}
	}

	runes := []rune(raw)
	if len(runes) > maxMinimalChars {
		r.Reasoning = string(runes[:maxMinimalChars]) + "..."
	} else {
		r.Reasoning = raw
	}

	r.Tags = extractPotentialTags(raw)
	return r
}

func parseTags(text string) []string {
	counts := make(map[string]int, len(tagDelimiters))
	for _, d := range tagDelimiters {
		counts[d] = strings.Count(text, d)
	}

	main := tagDelimiters[0]
	best := -1
	for _, d := range tagDelimiters {
		if counts[d] > best {
			best = counts[d]
			main = d
		}
	}

	var rawTags []string
	if best == 0 {
		rawTags = strings.Fields(text)
	} else {
		rawTags = strings.Split(text, main)
	}

	var cleaned []string
	for _, tag := range rawTags {
		tag = strings.TrimSpace(tag)
		tag = tagEdgeLeadRE.ReplaceAllString(tag, "")
		tag = tagEdgeTailRE.ReplaceAllString(tag, "")
		if n := len([]rune(tag)); n > 1 && n < 50 {
			cleaned = append(cleaned, tag)
		}
	}

	if len(cleaned) > maxTags {
		cleaned = cleaned[:maxTags]
	}
	return cleaned
}

func extractPotentialTags(text string) []string {
	words := koreanWordRE.FindAllString(text, -1)

	freq := make(map[string]int)
	var order []string
	for _, w := range words {
		if stopwords[w] {
			continue
		}
		if _, seen := freq[w]; !seen {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })

	if len(order) > 10 {
		order = order[:10]
	}
	return order
}

func cleanText(text string) string {
	text = labelStripRE.ReplaceAllString(strings.TrimSpace(text), "")
	text = edgePunctLeadRE.ReplaceAllString(text, "")
	text = edgePunctTailRE.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func extractFirstLine(text string) string {
	text = cleanText(text)
	first := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if n := len([]rune(first)); n > maxShortAnswerChars {
		return string([]rune(first)[:maxShortAnswerChars])
	}
	return first
}
