package reliosdk

import (
	"regexp"
	"strings"
)

// ──────────────────────────────────────────────
// Style signal detection — smooths the per-contact style profile
// ──────────────────────────────────────────────
//
// Each message nudges the four style axes toward what the message itself
// exhibits: new = old*(1-alpha) + detected*alpha. The small alpha keeps a
// single message from swinging the profile.

// defaultStyleAlpha is the smoothing factor per message.
const defaultStyleAlpha = 0.15

// StyleSignals are the per-message style readings, each axis in [0,1].
type StyleSignals struct {
	Formality  float64
	Warmth     float64
	Directness float64
	Humor      float64
}

// StyleSignalDetector scores a message on the four style axes via
// weighted keyword evidence.
type StyleSignalDetector struct {
	alpha float64
}

// NewStyleSignalDetector creates a detector. Pass a smoothing factor in
// (0,1] to override the default 0.15.
func NewStyleSignalDetector(alpha ...float64) *StyleSignalDetector {
	a := defaultStyleAlpha
	if len(alpha) > 0 && alpha[0] > 0 && alpha[0] <= 1 {
		a = alpha[0]
	}
	return &StyleSignalDetector{alpha: a}
}

var (
	formalWords = []string{
		"您", "请", "敬请", "烦请", "尊敬的", "希望", "建议", "感谢",
		"打扰", "冒昧", "恳请", "鉴于", "关于", "抱歉", "对不起", "麻烦", "辛苦", "多谢",
	}
	informalWords = []string{
		"哈哈", "嗯嗯", "呀", "嘛", "呢", "吧", "哦", "噢", "emmm",
		"hhh", "666", "咋", "啥", "咱", "兄弟", "姐妹",
	}
	warmWords = []string{
		"关心", "在乎", "想念", "挂念", "担心", "心疼", "辛苦了", "加油",
		"开心", "喜欢", "爱", "照顾好", "注意身体", "早点休息", "想你",
		"好久不见", "期待", "保重", "抱抱",
	}
	coldWords = []string{
		"通知", "告知", "必须", "应当", "不得", "禁止", "按照",
		"根据", "规定", "要求", "流程", "提交", "汇报",
	}
	directWords = []string{
		"我觉得", "我认为", "我想", "我要", "必须", "一定", "肯定",
		"就是", "明确", "直接", "简单说", "总之", "反正", "不行", "可以",
	}
	indirectWords = []string{
		"可能", "也许", "或许", "大概", "似乎", "好像", "应该",
		"不知道", "不太确定", "方便的话", "有空的话",
		"能不能", "可不可以", "是否", "是不是", "会不会", "要不要", "其实",
	}
	humorWords = []string{
		"哈哈", "嘿嘿", "呵呵", "233", "笑死", "绝了", "太好笑",
		"搞笑", "有趣", "玩笑", "调侃", "段子", "梗", "hhh", "xswl",
	}
	seriousWords = []string{
		"严肃", "认真", "重要", "紧急", "问题", "麻烦", "困难", "危机",
		"严重", "担忧", "焦虑", "压力", "生病", "抱歉", "道歉",
	}

	sentenceEndRe = regexp.MustCompile(`[。！？.!?]`)
)

// Detect scores one message on all four axes.
func (d *StyleSignalDetector) Detect(message string) StyleSignals {
	return StyleSignals{
		Formality:  d.formality(message),
		Warmth:     d.warmth(message),
		Directness: d.directness(message),
		Humor:      d.humor(message),
	}
}

// Apply smooths the detected signals into the profile.
func (d *StyleSignalDetector) Apply(profile *StyleProfile, message string) StyleSignals {
	sig := d.Detect(message)
	profile.Formality = smooth(profile.Formality, sig.Formality, d.alpha)
	profile.Warmth = smooth(profile.Warmth, sig.Warmth, d.alpha)
	profile.Directness = smooth(profile.Directness, sig.Directness, d.alpha)
	profile.Humor = smooth(profile.Humor, sig.Humor, d.alpha)
	return sig
}

func smooth(old, detected, alpha float64) float64 {
	return clampFloat(old*(1-alpha)+detected*alpha, 0, 1)
}

func (d *StyleSignalDetector) formality(message string) float64 {
	score := 0.5
	lower := strings.ToLower(message)

	score += float64(countHits(message, formalWords)) * 0.08
	score -= float64(countHits(lower, informalWords)) * 0.06

	trimmed := strings.TrimSpace(message)
	if strings.HasSuffix(trimmed, "。") || strings.HasSuffix(trimmed, "！") ||
		strings.HasSuffix(trimmed, "？") || strings.HasSuffix(trimmed, ".") ||
		strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		score += 0.05
	}
	sentences := len(sentenceEndRe.FindAllString(message, -1)) + 1
	if len([]rune(message))/sentences > 20 {
		score += 0.05
	}
	return clampFloat(score, 0, 1)
}

func (d *StyleSignalDetector) warmth(message string) float64 {
	score := 0.5
	score += float64(countHits(message, warmWords)) * 0.1
	score -= float64(countHits(message, coldWords)) * 0.08

	exclaims := strings.Count(message, "！") + strings.Count(message, "!")
	boost := float64(exclaims) * 0.03
	if boost > 0.15 {
		boost = 0.15
	}
	score += boost

	if containsAnyFold(message, []string{"早", "晚安", "你好", "嗨", "hi", "hello"}) {
		score += 0.05
	}
	return clampFloat(score, 0, 1)
}

func (d *StyleSignalDetector) directness(message string) float64 {
	score := 0.5
	score += float64(countHits(message, directWords)) * 0.08
	score -= float64(countHits(message, indirectWords)) * 0.06

	// Short sentences read more direct.
	parts := regexp.MustCompile(`[。！？.!?，,、；;]`).Split(message, -1)
	total, count := 0, 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		total += len([]rune(p))
		count++
	}
	if count > 0 {
		avg := total / count
		if avg < 10 {
			score += 0.1
		} else if avg > 25 {
			score -= 0.1
		}
	}
	return clampFloat(score, 0, 1)
}

func (d *StyleSignalDetector) humor(message string) float64 {
	score := 0.5
	score += float64(countHits(strings.ToLower(message), humorWords)) * 0.12
	score -= float64(countHits(message, seriousWords)) * 0.08

	waves := strings.Count(message, "~") + strings.Count(message, "～")
	boost := float64(waves) * 0.05
	if boost > 0.1 {
		boost = 0.1
	}
	score += boost
	return clampFloat(score, 0, 1)
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
