package reliosdk

import (
	"strings"
	"unicode"
)

// ──────────────────────────────────────────────
// Dialogue Analyzer — lightweight rule-based message analysis
// ──────────────────────────────────────────────

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentGreeting  Intent = "greeting"
	IntentQuestion  Intent = "question"
	IntentComplaint Intent = "complaint"
	IntentGeneral   Intent = "general"
)

// DialogueAnalysis is the per-message analysis result.
// Ephemeral: produced fresh for every message, never stored.
type DialogueAnalysis struct {
	Sentiment     float64  `json:"sentiment"` // -1.0 (negative) to 1.0 (positive)
	Intent        Intent   `json:"intent"`
	Keywords      []string `json:"keywords"`
	ContextLength int      `json:"context_length"` // prior turns supplied

	// Message-quality flags consumed by the intimacy growth pass.
	HasQuestion bool `json:"has_question"`
	HasThanks   bool `json:"has_thanks"`
	HasEmpathy  bool `json:"has_empathy"`
}

// AnalyzerConfig holds the keyword tables driving the analyzer.
// Override per instance; defaults are the built-in Chinese lexicons.
type AnalyzerConfig struct {
	PositiveWords   map[string]float64 // word -> weight in (0,1]
	NegativeWords   map[string]float64 // word -> weight in [-1,0)
	GreetingWords   []string
	QuestionMarkers []string
	ComplaintWords  []string
	ThanksWords     []string
	EmpathyWords    []string
	MaxKeywords     int // default 10
	MinKeywordRunes int // default 2
}

// DefaultAnalyzerConfig returns the built-in lexicons.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		PositiveWords: map[string]float64{
			"好": 0.5, "开心": 1.0, "喜欢": 0.8, "棒": 0.8,
			"谢谢": 0.6, "爱": 0.9, "美": 0.7, "太好": 1.0,
		},
		NegativeWords: map[string]float64{
			"坏": -0.5, "难受": -0.8, "讨厌": -0.9, "烦": -0.7,
			"生气": -0.8, "伤心": -0.9, "糟": -0.8, "差": -0.6,
		},
		GreetingWords:   []string{"你好", "早上好", "晚安", "hi", "hello", "嗨"},
		QuestionMarkers: []string{"?", "？", "怎样", "如何", "为什么", "是什么", "什么时候"},
		ComplaintWords:  []string{"投诉", "抱怨", "不满", "有问题", "出错", "坏了"},
		ThanksWords:     []string{"谢谢", "感谢", "多谢", "thanks", "thank"},
		EmpathyWords:    []string{"理解", "明白", "懂你", "同感", "也是"},
		MaxKeywords:     10,
		MinKeywordRunes: 2,
	}
}

// Analyzer performs sentiment, intent, keyword and quality-flag extraction.
// Side-effect free: safe for concurrent use, idempotent on identical input.
type Analyzer struct {
	config AnalyzerConfig
}

// NewAnalyzer creates an analyzer. Pass a config to override the lexicons.
func NewAnalyzer(config ...AnalyzerConfig) *Analyzer {
	cfg := DefaultAnalyzerConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 10
	}
	if cfg.MinKeywordRunes <= 0 {
		cfg.MinKeywordRunes = 2
	}
	return &Analyzer{config: cfg}
}

// Analyze runs the full heuristic analysis over one message.
// history is the prior conversation turns; only its length is consumed.
// Never fails: empty input degrades to neutral sentiment and general intent.
func (a *Analyzer) Analyze(text string, history []string) DialogueAnalysis {
	return DialogueAnalysis{
		Sentiment:     a.sentiment(text),
		Intent:        a.classifyIntent(text),
		Keywords:      a.extractKeywords(text),
		ContextLength: len(history),
		HasQuestion:   containsAny(text, []string{"?", "？", "吗"}),
		HasThanks:     containsAnyFold(text, a.config.ThanksWords),
		HasEmpathy:    containsAny(text, a.config.EmpathyWords),
	}
}

// sentiment is the mean of matched keyword weights, clamped to [-1,1].
// No match -> 0.
func (a *Analyzer) sentiment(text string) float64 {
	score := 0.0
	matches := 0
	for word, weight := range a.config.PositiveWords {
		if strings.Contains(text, word) {
			score += weight
			matches++
		}
	}
	for word, weight := range a.config.NegativeWords {
		if strings.Contains(text, word) {
			score += weight
			matches++
		}
	}
	if matches > 0 {
		score /= float64(matches)
	}
	return clampFloat(score, -1.0, 1.0)
}

// classifyIntent checks greeting, then question, then complaint keywords.
// First category with a hit wins; default is general.
func (a *Analyzer) classifyIntent(text string) Intent {
	if containsAnyFold(text, a.config.GreetingWords) {
		return IntentGreeting
	}
	if containsAny(text, a.config.QuestionMarkers) {
		return IntentQuestion
	}
	if containsAny(text, a.config.ComplaintWords) {
		return IntentComplaint
	}
	return IntentGeneral
}

// extractKeywords returns the first MaxKeywords tokens of at least
// MinKeywordRunes runes, split on whitespace and punctuation.
func (a *Analyzer) extractKeywords(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	keywords := make([]string, 0, a.config.MaxKeywords)
	for _, tok := range tokens {
		if len([]rune(tok)) < a.config.MinKeywordRunes {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) >= a.config.MaxKeywords {
			break
		}
	}
	return keywords
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// containsAnyFold matches case-insensitively for the latin entries.
func containsAnyFold(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
