package reliosdk

import "fmt"

// ──────────────────────────────────────────────
// Intimacy configuration — explicit, swappable value object
// ──────────────────────────────────────────────
//
// Every weight the engine consumes lives here. No package-level mutable
// settings: construct a config, validate it once, hand it to the engine.

// RelationshipCategory is the declared relationship to a counterparty.
// Each category carries a distinct base intimacy value.
type RelationshipCategory string

const (
	CategoryFamily       RelationshipCategory = "family"
	CategoryRomantic     RelationshipCategory = "romantic-partner"
	CategoryPartner      RelationshipCategory = "partner"
	CategoryCloseFriend  RelationshipCategory = "close-friend"
	CategoryFriend       RelationshipCategory = "friend"
	CategoryColleague    RelationshipCategory = "colleague"
	CategoryAcquaintance RelationshipCategory = "acquaintance"
	CategoryStranger     RelationshipCategory = "stranger"
)

// RelationshipCategories lists every supported category (single source).
func RelationshipCategories() []RelationshipCategory {
	return []RelationshipCategory{
		CategoryFamily, CategoryRomantic, CategoryPartner, CategoryCloseFriend,
		CategoryFriend, CategoryColleague, CategoryAcquaintance, CategoryStranger,
	}
}

// categoryNatives maps categories to their display names.
var categoryNatives = map[RelationshipCategory]string{
	CategoryFamily:       "家人",
	CategoryRomantic:     "恋人",
	CategoryPartner:      "伴侣",
	CategoryCloseFriend:  "亲密朋友",
	CategoryFriend:       "朋友",
	CategoryColleague:    "同事",
	CategoryAcquaintance: "熟人",
	CategoryStranger:     "陌生人",
}

// Native returns the Chinese display name for the category.
func (c RelationshipCategory) Native() string {
	if n, ok := categoryNatives[c]; ok {
		return n
	}
	return string(c)
}

// StageBand is one half-open intimacy band [Min, Max).
type StageBand struct {
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Native  string `json:"native"`
	English string `json:"english"`
}

// IntimacyConfig holds every tunable weight of the intimacy engine.
type IntimacyConfig struct {
	// Daily decay rates per inactivity band.
	Decay7to14  float64 `json:"decay_7_14"`   // days [7,14)
	Decay14to30 float64 `json:"decay_14_30"`  // days [14,30)
	Decay30to90 float64 `json:"decay_30_90"`  // days [30,90)
	Decay90Plus float64 `json:"decay_90_plus"` // days [90,∞)

	// Feedback weights. LikeWeight is added, DislikeWeight subtracted.
	LikeWeight    int `json:"like_weight"`
	DislikeWeight int `json:"dislike_weight"`

	// Acceptance-rate deltas applied per feedback toggle.
	AcceptanceDelta float64 `json:"acceptance_delta"`
	RejectionDelta  float64 `json:"rejection_delta"`

	// Base intimacy per relationship category.
	BaseIntimacy map[RelationshipCategory]int `json:"base_intimacy"`

	// FallbackBase is the one documented fallback for category lookups
	// that miss the table. Only reachable for the zero value of a category.
	FallbackBase int `json:"fallback_base"`

	// Stage bands, ascending, covering [0,101).
	Stages []StageBand `json:"stages"`
}

// DefaultIntimacyConfig returns the production defaults.
func DefaultIntimacyConfig() IntimacyConfig {
	return IntimacyConfig{
		Decay7to14:      0.1,
		Decay14to30:     0.15,
		Decay30to90:     0.2,
		Decay90Plus:     0.3,
		LikeWeight:      2,
		DislikeWeight:   1,
		AcceptanceDelta: 0.05,
		RejectionDelta:  0.05,
		BaseIntimacy: map[RelationshipCategory]int{
			CategoryFamily:       35,
			CategoryRomantic:     45,
			CategoryPartner:      45,
			CategoryCloseFriend:  30,
			CategoryFriend:       25,
			CategoryColleague:    20,
			CategoryAcquaintance: 15,
			CategoryStranger:     10,
		},
		FallbackBase: 25,
		Stages: []StageBand{
			{Min: 0, Max: 20, Native: "陌生人", English: "Stranger"},
			{Min: 20, Max: 40, Native: "浅认识", English: "Acquaintance"},
			{Min: 40, Max: 60, Native: "普通朋友", English: "Friend"},
			{Min: 60, Max: 75, Native: "亲近朋友", English: "Close Friend"},
			{Min: 75, Max: 90, Native: "亲密朋友", English: "Very Close"},
			{Min: 90, Max: 101, Native: "知己", English: "Intimate"},
		},
	}
}

// Validate fails fast on malformed configuration so that bad weights are
// rejected at load time, never at scoring time.
func (c IntimacyConfig) Validate() error {
	for name, rate := range map[string]float64{
		"decay_7_14":    c.Decay7to14,
		"decay_14_30":   c.Decay14to30,
		"decay_30_90":   c.Decay30to90,
		"decay_90_plus": c.Decay90Plus,
	} {
		if rate < 0 {
			return fmt.Errorf("intimacy config: %s must be >= 0, got %v", name, rate)
		}
	}
	if c.LikeWeight < 0 || c.DislikeWeight < 0 {
		return fmt.Errorf("intimacy config: feedback weights must be >= 0, got like=%d dislike=%d",
			c.LikeWeight, c.DislikeWeight)
	}
	if c.AcceptanceDelta < 0 || c.AcceptanceDelta > 1 || c.RejectionDelta < 0 || c.RejectionDelta > 1 {
		return fmt.Errorf("intimacy config: acceptance/rejection deltas must be in [0,1], got %v/%v",
			c.AcceptanceDelta, c.RejectionDelta)
	}

	if len(c.BaseIntimacy) == 0 {
		return fmt.Errorf("intimacy config: base intimacy table is empty")
	}
	known := make(map[RelationshipCategory]bool)
	for _, cat := range RelationshipCategories() {
		known[cat] = true
	}
	for cat, base := range c.BaseIntimacy {
		if !known[cat] {
			return fmt.Errorf("intimacy config: unknown relationship category %q", cat)
		}
		if base < 0 || base > 100 {
			return fmt.Errorf("intimacy config: base intimacy for %q must be in [0,100], got %d", cat, base)
		}
	}
	if _, ok := c.BaseIntimacy[CategoryStranger]; !ok {
		return fmt.Errorf("intimacy config: base intimacy table must define %q (decay floor)", CategoryStranger)
	}

	if len(c.Stages) == 0 {
		return fmt.Errorf("intimacy config: stage table is empty")
	}
	if c.Stages[0].Min != 0 {
		return fmt.Errorf("intimacy config: stage table must start at 0, got %d", c.Stages[0].Min)
	}
	for i, band := range c.Stages {
		if band.Min >= band.Max {
			return fmt.Errorf("intimacy config: stage band %d is empty: [%d,%d)", i, band.Min, band.Max)
		}
		if i > 0 && band.Min != c.Stages[i-1].Max {
			return fmt.Errorf("intimacy config: stage bands must be contiguous, band %d starts at %d after %d",
				i, band.Min, c.Stages[i-1].Max)
		}
	}
	if top := c.Stages[len(c.Stages)-1].Max; top < 101 {
		return fmt.Errorf("intimacy config: stage table must cover score 100, top band ends at %d", top)
	}
	return nil
}

// BaseIntimacyFor returns the starting score for a category.
// Unknown categories (only reachable via the zero value) get FallbackBase.
func (c IntimacyConfig) BaseIntimacyFor(category RelationshipCategory) int {
	if base, ok := c.BaseIntimacy[category]; ok {
		return base
	}
	return c.FallbackBase
}
