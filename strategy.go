package reliosdk

import (
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// Strategy Selector — reply style, matching and confidence
// ──────────────────────────────────────────────

// ReplyStrategy is the chosen reply style.
type ReplyStrategy string

const (
	StrategyFormal       ReplyStrategy = "formal"
	StrategyCasual       ReplyStrategy = "casual"
	StrategyWarm         ReplyStrategy = "warm"
	StrategyProfessional ReplyStrategy = "professional"
	StrategyHumorous     ReplyStrategy = "humorous"
)

// AllStrategies lists every strategy, in ladder order.
func AllStrategies() []ReplyStrategy {
	return []ReplyStrategy{
		StrategyFormal, StrategyProfessional, StrategyWarm,
		StrategyHumorous, StrategyCasual,
	}
}

// StrategySelector chooses a reply strategy and scores the choice.
// Pure functions of the style profile, relationship state and analysis.
type StrategySelector struct{}

// NewStrategySelector creates a selector.
func NewStrategySelector() *StrategySelector {
	return &StrategySelector{}
}

// Select walks the decision ladder, first match wins:
// formality > 0.7 formal; > 0.55 professional; warmth > 0.7 warm;
// humor > 0.6 humorous; otherwise casual.
func (s *StrategySelector) Select(style StyleProfile) ReplyStrategy {
	switch {
	case style.Formality > 0.7:
		return StrategyFormal
	case style.Formality > 0.55:
		return StrategyProfessional
	case style.Warmth > 0.7:
		return StrategyWarm
	case style.Humor > 0.6:
		return StrategyHumorous
	default:
		return StrategyCasual
	}
}

// MatchingScore rates how well the current message fits the profile and
// relationship: sentiment-style alignment, frequency and trust weighting,
// normalized by the factor count and clamped to [0,1].
func (s *StrategySelector) MatchingScore(analysis DialogueAnalysis, style StyleProfile, state *RelationshipState) float64 {
	score := 0.0
	factors := 0

	if analysis.Sentiment > 0 && style.Warmth > 0.5 {
		score += 0.5
	} else if analysis.Sentiment < 0 && style.Warmth < 0.5 {
		score += 0.3
	}
	factors++

	score += state.InteractionFrequency * 0.3
	factors++

	score += state.TrustLevel * 0.2
	factors++

	return clampFloat(score/float64(factors), 0, 1)
}

// Confidence blends the matching score, the context depth and the
// relationship closeness into a [0,1] recommendation confidence.
func (s *StrategySelector) Confidence(analysis DialogueAnalysis, state *RelationshipState, matching float64) float64 {
	confidence := matching * 0.5

	contextFactor := float64(analysis.ContextLength) / 10.0
	if contextFactor > 1 {
		contextFactor = 1
	}
	confidence += contextFactor * 0.3

	confidence += state.Closeness * 0.2

	return clampFloat(confidence, 0, 1)
}

// BuildSystemPrompt assembles the generation system prompt encoding the
// contact, the relationship stage and the chosen strategy.
func (s *StrategySelector) BuildSystemPrompt(contact *Contact, state *RelationshipState, analysis DialogueAnalysis, strategy ReplyStrategy) string {
	var b strings.Builder
	b.WriteString("你是一个对话助手，根据用户的个人特征和与对方的关系提供个性化的回复建议。\n\n")

	b.WriteString("【关于对方】\n")
	fmt.Fprintf(&b, "- 姓名：%s\n", contact.Name)
	fmt.Fprintf(&b, "- 关系类型：%s\n", contact.Category.Native())
	fmt.Fprintf(&b, "- 关系阶段：%s\n", state.CurrentStage)
	fmt.Fprintf(&b, "- 亲密度：%d/100\n", contact.Intimacy)
	fmt.Fprintf(&b, "- 信任度：%.0f%%\n\n", state.TrustLevel*100)

	b.WriteString("【你的表达风格】\n")
	b.WriteString(describeStyle(contact.Style))
	b.WriteString("\n\n")

	b.WriteString("【当前对话特征】\n")
	fmt.Fprintf(&b, "- 消息意图：%s\n", analysis.Intent)
	fmt.Fprintf(&b, "- 情感倾向：%s\n", describeSentiment(analysis.Sentiment))
	if len(analysis.Keywords) > 0 {
		fmt.Fprintf(&b, "- 关键词：%s\n", strings.Join(analysis.Keywords, "、"))
	} else {
		b.WriteString("- 关键词：无\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "【回复策略】\n采用 %s 的风格进行回复。\n\n", strategy)

	b.WriteString("请根据上述信息，生成一条符合你个人风格和对方关系阶段的自然回复。")
	b.WriteString("更亲密的关系可以更随意，回复长度适当，自然流畅。只返回回复内容，不需要额外说明。")
	return b.String()
}

func describeSentiment(sentiment float64) string {
	switch {
	case sentiment > 0.3:
		return "正面"
	case sentiment < -0.3:
		return "负面"
	default:
		return "中性"
	}
}

func describeStyle(style StyleProfile) string {
	var lines []string

	switch {
	case style.Formality > 0.7:
		lines = append(lines, "你倾向于使用正式、规范的语言")
	case style.Formality < 0.3:
		lines = append(lines, "你倾向于使用随意、口语化的表达")
	default:
		lines = append(lines, "你的语言风格介于正式和随意之间")
	}

	if style.Warmth > 0.7 {
		lines = append(lines, "你热情友好，愿意表达感情")
	} else if style.Warmth < 0.3 {
		lines = append(lines, "你比较冷静理性，表情不多")
	}

	if style.Directness > 0.7 {
		lines = append(lines, "你习惯开门见山，直接表达观点")
	} else if style.Directness < 0.3 {
		lines = append(lines, "你表达比较委婉，喜欢留有余地")
	}

	if style.Humor > 0.6 {
		lines = append(lines, "你喜欢使用幽默、开玩笑")
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "- " + l
	}
	return strings.Join(out, "\n")
}
