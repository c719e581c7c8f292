package reliosdk

import (
	"math"
	"testing"
	"time"
)

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func newRoundFixture(t *testing.T) (*IntimacyEngine, *Contact, string) {
	t.Helper()
	e := newTestEngine(t)
	c := NewContact("c1", "小明", CategoryFriend, e.Config(), time.Now())
	c.Intimacy = 50
	return e, c, e.OpenRound(c)
}

func TestApplyFeedback_Like(t *testing.T) {
	e, c, round := newRoundFixture(t)
	r, err := e.ApplyFeedback(c, round, "m1", FeedbackLike)
	if err != nil {
		t.Fatalf("ApplyFeedback failed: %v", err)
	}
	if r.Score != 52 {
		t.Errorf("expected 52, got %d", r.Score)
	}
	if r.Tag != ReasonFeedbackLike {
		t.Errorf("expected feedback-like, got %s", r.Tag)
	}
	if c.Intimacy != 52 {
		t.Errorf("contact not updated: %d", c.Intimacy)
	}
}

func TestApplyFeedback_ToggleDoesNotStack(t *testing.T) {
	e, c, round := newRoundFixture(t)
	// like -> clear -> like again: still base+2, one history entry.
	if _, err := e.ApplyFeedback(c, round, "m1", FeedbackLike); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ApplyFeedback(c, round, "m1", FeedbackNone); err != nil {
		t.Fatal(err)
	}
	r, err := e.ApplyFeedback(c, round, "m1", FeedbackLike)
	if err != nil {
		t.Fatal(err)
	}
	if r.Score != 52 {
		t.Errorf("expected 52 after re-like, got %d", r.Score)
	}
	entries := 0
	for _, rec := range c.History {
		if rec.RoundID == round {
			entries++
		}
	}
	if entries != 1 {
		t.Errorf("expected a single history entry for the round, got %d", entries)
	}
}

func TestApplyFeedback_SameVoteIsNoop(t *testing.T) {
	e, c, round := newRoundFixture(t)
	if _, err := e.ApplyFeedback(c, round, "m1", FeedbackLike); err != nil {
		t.Fatal(err)
	}
	before := len(c.History)
	r, err := e.ApplyFeedback(c, round, "m1", FeedbackLike)
	if err != nil {
		t.Fatal(err)
	}
	if r.Tag != ReasonNone {
		t.Errorf("expected none tag, got %s", r.Tag)
	}
	if len(c.History) != before {
		t.Error("repeat vote changed history")
	}
}

func TestApplyFeedback_LikeAndDislikeTogether(t *testing.T) {
	e, c, round := newRoundFixture(t)
	if _, err := e.ApplyFeedback(c, round, "m1", FeedbackLike); err != nil {
		t.Fatal(err)
	}
	r, err := e.ApplyFeedback(c, round, "m2", FeedbackDislike)
	if err != nil {
		t.Fatal(err)
	}
	// base 50 + like 2 - dislike 1 = 51
	if r.Score != 51 {
		t.Errorf("expected 51, got %d", r.Score)
	}
}

func TestApplyFeedback_ClearRestoresBase(t *testing.T) {
	e, c, round := newRoundFixture(t)
	if _, err := e.ApplyFeedback(c, round, "m1", FeedbackDislike); err != nil {
		t.Fatal(err)
	}
	r, err := e.ApplyFeedback(c, round, "m1", FeedbackNone)
	if err != nil {
		t.Fatal(err)
	}
	if r.Score != 50 {
		t.Errorf("expected base 50 after clearing, got %d", r.Score)
	}
	if r.Tag != ReasonFeedbackCleared {
		t.Errorf("expected feedback-cleared, got %s", r.Tag)
	}
}

func TestApplyFeedback_UnknownRound(t *testing.T) {
	e, c, _ := newRoundFixture(t)
	if _, err := e.ApplyFeedback(c, "no-such-round", "m1", FeedbackLike); err == nil {
		t.Error("expected error for unknown round")
	}
}

func TestApplyFeedback_WrongContact(t *testing.T) {
	e, _, round := newRoundFixture(t)
	other := NewContact("c2", "小红", CategoryFriend, e.Config(), time.Now())
	if _, err := e.ApplyFeedback(other, round, "m1", FeedbackLike); err == nil {
		t.Error("expected error for contact mismatch")
	}
}

func TestApplyFeedback_ClosedRound(t *testing.T) {
	e, c, round := newRoundFixture(t)
	e.CloseRound(round)
	if _, err := e.ApplyFeedback(c, round, "m1", FeedbackLike); err == nil {
		t.Error("expected error after CloseRound")
	}
}

func TestApplyFeedback_AcceptanceBookkeeping(t *testing.T) {
	e, c, round := newRoundFixture(t)
	c.AcceptanceRate = 0.5
	c.RejectionCount = 2

	if _, err := e.ApplyFeedback(c, round, "m1", FeedbackDislike); err != nil {
		t.Fatal(err)
	}
	if !closeTo(c.AcceptanceRate, 0.45) {
		t.Errorf("expected acceptance 0.45, got %v", c.AcceptanceRate)
	}
	if c.RejectionCount != 3 {
		t.Errorf("expected rejection count 3, got %d", c.RejectionCount)
	}

	// Switching to like undoes the dislike and applies the like.
	if _, err := e.ApplyFeedback(c, round, "m1", FeedbackLike); err != nil {
		t.Fatal(err)
	}
	if !closeTo(c.AcceptanceRate, 0.55) {
		t.Errorf("expected acceptance 0.55, got %v", c.AcceptanceRate)
	}
	if c.RejectionCount != 1 {
		t.Errorf("expected rejection count 1, got %d", c.RejectionCount)
	}
}

func TestRecordIntimacy_HistoryCap(t *testing.T) {
	e := newTestEngine(t)
	c := NewContact("c1", "小明", CategoryFriend, e.Config(), time.Now())
	for i := 0; i < maxIntimacyHistory+20; i++ {
		c.RecordIntimacy(50, "x", ReasonGrowthAccepted, "", time.Now())
	}
	if len(c.History) != maxIntimacyHistory {
		t.Errorf("expected history capped at %d, got %d", maxIntimacyHistory, len(c.History))
	}
}

func TestNewContact_BaseIntimacy(t *testing.T) {
	e := newTestEngine(t)
	c := NewContact("c1", "妈妈", CategoryFamily, e.Config(), time.Now())
	if c.Intimacy != 35 {
		t.Errorf("expected family base 35, got %d", c.Intimacy)
	}
	if c.AcceptanceRate != 1.0 {
		t.Errorf("expected acceptance 1.0, got %v", c.AcceptanceRate)
	}
	if c.Style != DefaultStyleProfile() {
		t.Errorf("expected neutral style, got %+v", c.Style)
	}
}
