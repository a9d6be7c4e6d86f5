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

	"github.com/spigell/matchmaker/internal/ai"
	"github.com/spigell/matchmaker/internal/logger"
	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Introducer asks Gemini to write an introduction for a matched pair.
type Introducer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Introducer = (*Introducer)(nil)

//go:embed prompt.md
var systemPrompt string

const defaultMaxLogLength = 200

func NewIntroducer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Introducer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Introducer{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

type pairPayload struct {
	Score        float64       `json:"compatibility"`
	A            personPayload `json:"a"`
	B            personPayload `json:"b"`
	SharedAnswer []int         `json:"shared_answer_positions"`
}

type personPayload struct {
	Name      string `json:"name"`
	GradYear  int    `json:"grad_year"`
	Responses []int  `json:"responses"`
}

func (i *Introducer) Introduce(ctx context.Context, a, b *participant.Participant, score float64) (*ai.Introduction, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("both participants are required")
	}

	payload := pairPayload{
		Score:        math.Round(score*100) / 100,
		A:            personPayload{Name: a.Name, GradYear: a.GradYear, Responses: a.Responses},
		B:            personPayload{Name: b.Name, GradYear: b.GradYear, Responses: b.Responses},
		SharedAnswer: sharedPositions(a.Responses, b.Responses),
	}

	message, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal pair payload: %w", err)
	}
	prompt := "Matched pair:\n" + string(message)

	i.logger.Debug("gemini generate content request",
		zap.String("a", a.Name),
		zap.String("b", b.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, i.maxLogLen)),
	)

	raw, err := i.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("gemini generate content response",
		zap.String("a", a.Name),
		zap.String("b", b.Name),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, i.maxLogLen)),
	)

	intro, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	intro.A = a.Name
	intro.B = b.Name
	intro.Raw = raw
	return intro, nil
}

func sharedPositions(v1, v2 []int) []int {
	shared := []int{}
	for pos := 0; pos < len(v1) && pos < len(v2); pos++ {
		if v1[pos] == v2[pos] {
			shared = append(shared, pos)
		}
	}
	return shared
}

func parseResponse(raw string) (*ai.Introduction, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	message := coerceString(data["message"])
	if message == "" {
		return nil, fmt.Errorf("parse gemini response: message is empty")
	}

	confidence := coerceFloat(data["confidence"])
	if math.IsNaN(confidence) {
		confidence = 0
	}

	return &ai.Introduction{
		Message:    message,
		Topics:     coerceStrings(data["topics"]),
		Confidence: confidence,
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
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return nil
}
