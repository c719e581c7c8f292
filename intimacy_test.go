package reliosdk

import (
	"testing"
)

func newTestEngine(t *testing.T) *IntimacyEngine {
	t.Helper()
	e, err := NewIntimacyEngine()
	if err != nil {
		t.Fatalf("NewIntimacyEngine failed: %v", err)
	}
	return e
}

func TestDecay_NoLastDate(t *testing.T) {
	e := newTestEngine(t)
	r := e.Decay(25, "", "2025-06-01")
	if r.Score != 25 || r.Tag != ReasonNone {
		t.Errorf("expected (25, none), got (%d, %s)", r.Score, r.Tag)
	}
	if r.Detail != "" {
		t.Errorf("expected empty detail, got %q", r.Detail)
	}
}

func TestDecay_MalformedDate(t *testing.T) {
	e := newTestEngine(t)
	r := e.Decay(60, "not-a-date", "2025-06-01")
	if r.Score != 60 || r.Tag != ReasonNone {
		t.Errorf("expected (60, none), got (%d, %s)", r.Score, r.Tag)
	}
}

func TestDecay_WithinGrace(t *testing.T) {
	e := newTestEngine(t)
	r := e.Decay(50, "2025-05-26", "2025-06-01")
	if r.Score != 50 || r.Tag != ReasonNone {
		t.Errorf("6 days silent: expected no decay, got (%d, %s)", r.Score, r.Tag)
	}
}

func TestDecay_NineteenDays(t *testing.T) {
	// 19 days: ceil(7*0.1) + ceil(5*0.15) = 1 + 1 = 2
	e := newTestEngine(t)
	r := e.Decay(25, "2025-05-13", "2025-06-01")
	if r.Score != 23 {
		t.Errorf("expected 23, got %d", r.Score)
	}
	if r.Delta != -2 {
		t.Errorf("expected delta -2, got %d", r.Delta)
	}
	if r.Tag != ReasonDecay {
		t.Errorf("expected decay tag, got %s", r.Tag)
	}
	if r.Detail == "" {
		t.Error("expected a reason detail for applied decay")
	}
}

func TestDecay_ExactlySevenDays(t *testing.T) {
	// days-7 == 0, no points lost, so no reason either.
	e := newTestEngine(t)
	r := e.Decay(50, "2025-05-25", "2025-06-01")
	if r.Score != 50 || r.Tag != ReasonNone {
		t.Errorf("expected (50, none), got (%d, %s)", r.Score, r.Tag)
	}
}

func TestDecay_LongBand(t *testing.T) {
	// 100 days: ceil(7*0.1)+ceil(16*0.15)+ceil(60*0.2)+ceil(10*0.3) = 1+3+12+3 = 19
	e := newTestEngine(t)
	r := e.Decay(80, "2025-02-21", "2025-06-01")
	if r.Score != 61 {
		t.Errorf("expected 61, got %d", r.Score)
	}
}

func TestDecay_FloorsAtStrangerBase(t *testing.T) {
	e := newTestEngine(t)
	r := e.Decay(12, "2024-01-01", "2025-06-01")
	if r.Score != 10 {
		t.Errorf("expected floor at 10, got %d", r.Score)
	}
	if r.Tag != ReasonDecay {
		t.Errorf("expected decay tag, got %s", r.Tag)
	}
}

func TestDecay_AlreadyBelowFloor(t *testing.T) {
	// Decay never raises a score that is already under the floor, and a
	// no-op carries no reason tag.
	e := newTestEngine(t)
	r := e.Decay(4, "2024-01-01", "2025-06-01")
	if r.Score != 4 || r.Tag != ReasonNone {
		t.Errorf("expected (4, none), got (%d, %s)", r.Score, r.Tag)
	}
}

func TestDecay_AtFloorIsNoop(t *testing.T) {
	e := newTestEngine(t)
	r := e.Decay(10, "2024-01-01", "2025-06-01")
	if r.Score != 10 || r.Delta != 0 {
		t.Errorf("expected unchanged 10, got (%d, %d)", r.Score, r.Delta)
	}
	if r.Tag != ReasonNone {
		t.Errorf("no-op decay must not carry the decay tag, got %s", r.Tag)
	}
	if r.Detail != "" {
		t.Errorf("expected empty detail, got %q", r.Detail)
	}
}

func TestGrowth_SpecimenInteraction(t *testing.T) {
	// length 120, sentiment 0.5, thanks, 2 days since last:
	// round((2*1.2 + 2 + 1) * 1.0) = 5
	e := newTestEngine(t)
	r := e.Growth(50, 120, 0.5, true, false, true, false, 2)
	if r.Score != 55 {
		t.Errorf("expected 55, got %d", r.Score)
	}
	if r.Delta != 5 {
		t.Errorf("expected delta 5, got %d", r.Delta)
	}
	if r.Tag != ReasonGrowthAccepted {
		t.Errorf("expected growth-accepted, got %s", r.Tag)
	}
}

func TestGrowth_HalfPointRoundsToEven(t *testing.T) {
	// Short message, sentiment bonus +2, one quality flag, 8 days since
	// last: (2*1.0 + 2 + 1) * 0.9 = 4.5, which rounds to 4, not 5.
	e := newTestEngine(t)
	r := e.Growth(50, 10, 0.5, true, false, true, false, 8)
	if r.Delta != 4 {
		t.Errorf("expected delta 4, got %d", r.Delta)
	}
	if r.Score != 54 {
		t.Errorf("expected 54, got %d", r.Score)
	}
}

func TestGrowth_NotAccepted(t *testing.T) {
	e := newTestEngine(t)
	r := e.Growth(50, 120, 0.5, false, true, true, true, 2)
	if r.Score != 50 {
		t.Errorf("expected unchanged 50, got %d", r.Score)
	}
	if r.Tag != ReasonGrowthRejected {
		t.Errorf("expected growth-rejected, got %s", r.Tag)
	}
	if r.Detail != "建议未被接受" {
		t.Errorf("unexpected detail %q", r.Detail)
	}
}

func TestGrowth_PausedAfterThirtyDays(t *testing.T) {
	e := newTestEngine(t)
	r := e.Growth(50, 120, 0.5, true, false, false, false, 31)
	if r.Score != 50 || r.Tag != ReasonGrowthPaused {
		t.Errorf("expected paused at 50, got (%d, %s)", r.Score, r.Tag)
	}
}

func TestGrowth_DeltaBounds(t *testing.T) {
	e := newTestEngine(t)
	// Worst case: short hostile message, stale contact. Still at least +1.
	low := e.Growth(50, 10, -0.9, true, false, false, false, 20)
	if low.Delta < 1 {
		t.Errorf("expected minimum delta 1, got %d", low.Delta)
	}
	// Best case: long warm message with every quality flag. At most +15.
	high := e.Growth(50, 300, 0.9, true, true, true, true, 1)
	if high.Delta > 15 {
		t.Errorf("expected maximum delta 15, got %d", high.Delta)
	}
}

func TestGrowth_CapsAtHundred(t *testing.T) {
	e := newTestEngine(t)
	r := e.Growth(99, 300, 0.9, true, true, true, true, 1)
	if r.Score != 100 {
		t.Errorf("expected cap at 100, got %d", r.Score)
	}
}

func TestRejectionPenalty(t *testing.T) {
	e := newTestEngine(t)
	r := e.RejectionPenalty(60, 4)
	// 4*2 + 2 extra beyond three = 10
	if r.Score != 50 {
		t.Errorf("expected 50, got %d", r.Score)
	}
	if r.Tag != ReasonRejectionPenalty {
		t.Errorf("expected rejection-penalty, got %s", r.Tag)
	}
}

func TestRejectionPenalty_Zero(t *testing.T) {
	e := newTestEngine(t)
	r := e.RejectionPenalty(60, 0)
	if r.Score != 60 || r.Tag != ReasonNone {
		t.Errorf("expected (60, none), got (%d, %s)", r.Score, r.Tag)
	}
}

func TestRejectionPenalty_FloorsAtZero(t *testing.T) {
	e := newTestEngine(t)
	r := e.RejectionPenalty(3, 5)
	if r.Score != 0 {
		t.Errorf("expected floor at 0, got %d", r.Score)
	}
}

func TestStageLabel_Boundaries(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		score   int
		english string
	}{
		{0, "Stranger"},
		{19, "Stranger"},
		{20, "Acquaintance"},
		{39, "Acquaintance"},
		{40, "Friend"},
		{60, "Close Friend"},
		{75, "Very Close"},
		{89, "Very Close"},
		{90, "Intimate"},
		{100, "Intimate"},
	}
	for _, c := range cases {
		_, english := e.StageLabel(c.score)
		if english != c.english {
			t.Errorf("score %d: expected %s, got %s", c.score, c.english, english)
		}
	}
}

func TestStageLabel_Native(t *testing.T) {
	e := newTestEngine(t)
	native, _ := e.StageLabel(95)
	if native != "知己" {
		t.Errorf("expected 知己, got %s", native)
	}
}

func TestDaysBetween(t *testing.T) {
	if d, ok := DaysBetween("2025-05-13", "2025-06-01"); !ok || d != 19 {
		t.Errorf("expected (19, true), got (%d, %v)", d, ok)
	}
	if _, ok := DaysBetween("", "2025-06-01"); ok {
		t.Error("expected ok=false for empty last date")
	}
	if _, ok := DaysBetween("garbage", "2025-06-01"); ok {
		t.Error("expected ok=false for malformed date")
	}
}

func TestInteractionStatus(t *testing.T) {
	cases := []struct {
		last, today, want string
	}{
		{"", "2025-06-01", "未曾交互"},
		{"2025-06-01", "2025-06-01", "刚刚交互"},
		{"2025-05-31", "2025-06-01", "昨天交互"},
		{"2025-05-29", "2025-06-01", "3天前交互"},
		{"2025-05-18", "2025-06-01", "2周前交互"},
		{"2025-03-01", "2025-06-01", "3个月前交互"},
	}
	for _, c := range cases {
		got := InteractionStatus(c.last, c.today)
		if got != c.want {
			t.Errorf("%s -> %s: expected %q, got %q", c.last, c.today, c.want, got)
		}
	}
}

func TestIntimacyConfig_Validate(t *testing.T) {
	bad := DefaultIntimacyConfig()
	bad.Decay7to14 = -0.1
	if _, err := NewIntimacyEngine(bad); err == nil {
		t.Error("expected error for negative decay rate")
	}

	bad = DefaultIntimacyConfig()
	bad.BaseIntimacy["friend"] = 200
	if _, err := NewIntimacyEngine(bad); err == nil {
		t.Error("expected error for base intimacy out of range")
	}

	bad = DefaultIntimacyConfig()
	delete(bad.BaseIntimacy, CategoryStranger)
	if _, err := NewIntimacyEngine(bad); err == nil {
		t.Error("expected error when stranger base is missing")
	}

	bad = DefaultIntimacyConfig()
	bad.Stages = bad.Stages[1:]
	if _, err := NewIntimacyEngine(bad); err == nil {
		t.Error("expected error for stage bands not starting at 0")
	}
}

func TestBaseIntimacyFor(t *testing.T) {
	cfg := DefaultIntimacyConfig()
	if got := cfg.BaseIntimacyFor(CategoryFamily); got != 35 {
		t.Errorf("family: expected 35, got %d", got)
	}
	if got := cfg.BaseIntimacyFor(RelationshipCategory("unknown")); got != cfg.FallbackBase {
		t.Errorf("unknown category: expected fallback %d, got %d", cfg.FallbackBase, got)
	}
}
