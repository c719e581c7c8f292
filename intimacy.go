package reliosdk

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Intimacy Engine — decay, growth, penalties, stages
// ──────────────────────────────────────────────
//
// All scoring is deterministic arithmetic over the attached IntimacyConfig.
// Dates are calendar dates in YYYY-MM-DD form; malformed dates degrade to
// "no change" rather than failing.

// DateLayout is the calendar date form used throughout the engine.
const DateLayout = "2006-01-02"

// Reason is the machine-checkable tag attached to every mutating result.
type Reason string

const (
	ReasonNone             Reason = "none"
	ReasonDecay            Reason = "decay"
	ReasonGrowthAccepted   Reason = "growth-accepted"
	ReasonGrowthRejected   Reason = "growth-rejected"
	ReasonGrowthPaused     Reason = "growth-paused"
	ReasonRejectionPenalty Reason = "rejection-penalty"
	ReasonFeedbackLike     Reason = "feedback-like"
	ReasonFeedbackDislike  Reason = "feedback-dislike"
	ReasonFeedbackCleared  Reason = "feedback-cleared"
)

// IntimacyResult is the outcome of one scoring call.
type IntimacyResult struct {
	Score  int    `json:"score"`  // new score, always in [0,100]
	Delta  int    `json:"delta"`  // signed change applied
	Tag    Reason `json:"tag"`    // machine-checkable reason
	Detail string `json:"detail"` // human-readable explanation, "" when no change
}

// IntimacyEngine computes intimacy changes and owns the feedback-round
// aggregates. Scoring methods are pure functions of their inputs and the
// config; only the round bookkeeping is stateful.
type IntimacyEngine struct {
	config IntimacyConfig

	mu     sync.Mutex
	rounds map[string]*feedbackRound
}

// NewIntimacyEngine creates an engine. Pass a config to override the
// defaults; invalid configs are rejected here, never at scoring time.
func NewIntimacyEngine(config ...IntimacyConfig) (*IntimacyEngine, error) {
	cfg := DefaultIntimacyConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &IntimacyEngine{
		config: cfg,
		rounds: make(map[string]*feedbackRound),
	}, nil
}

// Config returns the engine's configuration.
func (e *IntimacyEngine) Config() IntimacyConfig {
	return e.config
}

// DaysBetween returns the whole-day difference between two YYYY-MM-DD
// dates. ok is false when either date is absent or malformed.
func DaysBetween(lastDate, today string) (int, bool) {
	if lastDate == "" || today == "" {
		return 0, false
	}
	last, err := time.Parse(DateLayout, lastDate)
	if err != nil {
		return 0, false
	}
	now, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0, false
	}
	return int(now.Sub(last).Hours() / 24), true
}

// Decay computes inactivity decay. No interaction within 7 days, an absent
// last date, or a malformed date all mean no decay. Beyond 7 days the decay
// accumulates through four bands with independent daily rates; each
// completed band contributes ceil(bandLength*rate) and the current partial
// band contributes ceil(daysIntoBand*rate). The result never drops below
// the stranger base intimacy.
func (e *IntimacyEngine) Decay(score int, lastDate, today string) IntimacyResult {
	noChange := IntimacyResult{Score: score, Tag: ReasonNone}

	days, ok := DaysBetween(lastDate, today)
	if !ok || days < 7 {
		return noChange
	}

	cfg := e.config
	var decay int
	switch {
	case days < 14:
		decay = ceilMul(days-7, cfg.Decay7to14)
	case days < 30:
		decay = ceilMul(7, cfg.Decay7to14) + ceilMul(days-14, cfg.Decay14to30)
	case days < 90:
		decay = ceilMul(7, cfg.Decay7to14) + ceilMul(16, cfg.Decay14to30) +
			ceilMul(days-30, cfg.Decay30to90)
	default:
		decay = ceilMul(7, cfg.Decay7to14) + ceilMul(16, cfg.Decay14to30) +
			ceilMul(60, cfg.Decay30to90) + ceilMul(days-90, cfg.Decay90Plus)
	}
	if decay <= 0 {
		return noChange
	}

	floor := cfg.BaseIntimacyFor(CategoryStranger)
	newScore := score - decay
	if newScore < floor {
		newScore = floor
	}
	if newScore >= score {
		// At or below the floor already: nothing to record.
		return noChange
	}
	return IntimacyResult{
		Score:  newScore,
		Delta:  newScore - score,
		Tag:    ReasonDecay,
		Detail: fmt.Sprintf("长期不联系（%d天未交互）", days),
	}
}

// Growth computes the bounded per-interaction increase.
// Returns the unchanged score when the suggestion was not accepted or when
// the counterparty has been silent for more than 30 days. The applied delta
// is always in [1,15] otherwise.
func (e *IntimacyEngine) Growth(
	score int,
	messageLength int,
	sentiment float64,
	accepted bool,
	hasQuestion, hasThanks, hasEmpathy bool,
	daysSinceLast int,
) IntimacyResult {
	if !accepted {
		return IntimacyResult{Score: score, Tag: ReasonGrowthRejected, Detail: "建议未被接受"}
	}
	if daysSinceLast > 30 {
		return IntimacyResult{Score: score, Tag: ReasonGrowthPaused, Detail: "长期不交互，暂停增长"}
	}

	base := 2.0

	var depth float64
	switch {
	case messageLength > 200:
		depth = 1.3
	case messageLength > 100:
		depth = 1.2
	case messageLength > 50:
		depth = 1.1
	default:
		depth = 1.0
	}

	var sentimentBonus float64
	switch {
	case sentiment >= 0.3:
		sentimentBonus = 2
	case sentiment >= 0.0:
		sentimentBonus = 1
	case sentiment >= -0.3:
		sentimentBonus = 0
	default:
		sentimentBonus = -2
	}

	quality := 0.0
	if hasQuestion {
		quality++
	}
	if hasThanks {
		quality++
	}
	if hasEmpathy {
		quality++
	}

	var frequency float64
	switch {
	case daysSinceLast <= 3:
		frequency = 1.0
	case daysSinceLast <= 7:
		frequency = 0.95
	case daysSinceLast <= 14:
		frequency = 0.90
	default:
		frequency = 0.80
	}

	// Banker's rounding: a .5 tie resolves to the even neighbor.
	growth := int(math.RoundToEven((base*depth + sentimentBonus + quality) * frequency))
	if growth > 15 {
		growth = 15
	}
	if growth < 1 {
		growth = 1
	}

	newScore := score + growth
	if newScore > 100 {
		newScore = 100
	}
	return IntimacyResult{
		Score:  newScore,
		Delta:  growth,
		Tag:    ReasonGrowthAccepted,
		Detail: fmt.Sprintf("正常交互 (+%d分)", growth),
	}
}

// RejectionPenalty applies the weekly rejection penalty: 2 points per
// rejection, plus 2 extra beyond three rejections. Floored at 0.
func (e *IntimacyEngine) RejectionPenalty(score, rejectionCount int) IntimacyResult {
	if rejectionCount <= 0 {
		return IntimacyResult{Score: score, Tag: ReasonNone}
	}
	penalty := rejectionCount * 2
	if rejectionCount > 3 {
		penalty += 2
	}
	newScore := score - penalty
	if newScore < 0 {
		newScore = 0
	}
	return IntimacyResult{
		Score:  newScore,
		Delta:  newScore - score,
		Tag:    ReasonRejectionPenalty,
		Detail: fmt.Sprintf("多次拒绝建议 (-%d分)", penalty),
	}
}

// StageLabel classifies a score against the configured stage bands.
// Bands are inclusive on the low end, exclusive on the high end.
func (e *IntimacyEngine) StageLabel(score int) (native, english string) {
	for _, band := range e.config.Stages {
		if score >= band.Min && score < band.Max {
			return band.Native, band.English
		}
	}
	// Validated tables cover [0,101); only out-of-range scores land here.
	last := e.config.Stages[len(e.config.Stages)-1]
	if score >= last.Max {
		return last.Native, last.English
	}
	first := e.config.Stages[0]
	return first.Native, first.English
}

// InteractionStatus formats the last-interaction recency for display.
func InteractionStatus(lastDate, today string) string {
	if lastDate == "" {
		return "未曾交互"
	}
	days, ok := DaysBetween(lastDate, today)
	if !ok {
		return "未知"
	}
	switch {
	case days <= 0:
		return "刚刚交互"
	case days == 1:
		return "昨天交互"
	case days < 7:
		return fmt.Sprintf("%d天前交互", days)
	case days < 30:
		return fmt.Sprintf("%d周前交互", days/7)
	default:
		return fmt.Sprintf("%d个月前交互", days/30)
	}
}

func ceilMul(days int, rate float64) int {
	return int(math.Ceil(float64(days) * rate))
}
