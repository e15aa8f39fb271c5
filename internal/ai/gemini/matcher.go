package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/ai"
	"github.com/kgill/job-radar/internal/jobboard"
	"github.com/kgill/job-radar/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type Matcher struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, logger *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) Evaluate(ctx context.Context, resumeText string, listing *jobboard.Listing) (*ai.MatchResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume text is required")
	}
	if listing == nil {
		return nil, fmt.Errorf("listing is required")
	}

	listingJSON, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal listing payload: %w", err)
	}

	prompt := buildPrompt(resumeText, string(listingJSON))

	m.logger.Debug("gemini generate content request",
		zap.String("listing_key", listing.Key()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("listing_key", listing.Key()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	result, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if result.Score < m.minScore {
		m.logger.Debug("set fit to false by score threshold",
			zap.String("listing_key", listing.Key()),
			zap.Float64("score", result.Score),
			zap.Float64("threshold", m.minScore),
		)
		result.Fit = false
	}

	result.Raw = raw
	return result, nil
}

func buildPrompt(resumeText, listingJSON string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME}}", resumeText)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", listingJSON)
	return prompt
}

func parseResponse(raw string) (*ai.MatchResult, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	for _, field := range []string{"score", "matching_skills", "missing_skills"} {
		if _, ok := data[field]; !ok {
			return nil, fmt.Errorf("missing %q field in gemini response", field)
		}
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, fmt.Errorf("unparsable score in gemini response")
	}

	return &ai.MatchResult{
		Fit:            true,
		Score:          score,
		MatchingSkills: coerceStrings(data["matching_skills"]),
		MissingSkills:  coerceStrings(data["missing_skills"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	// The model sometimes wraps the object in prose.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return raw
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				result = append(result, s)
			}
		}
	}
	return result
}
