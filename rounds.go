package reliosdk

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────
// Feedback rounds — per-round intimacy deduplication
// ──────────────────────────────────────────────
//
// A round is the batch of reply suggestions shown together. Within one
// round, like and dislike each apply at most once to intimacy no matter
// how often the user toggles: every toggle recomputes the final score from
// the round's base intimacy (the value snapshotted when the round opened)
// and replaces the round's history entry instead of stacking deltas.

// Feedback is a user's verdict on one suggestion.
type Feedback string

const (
	FeedbackNone    Feedback = ""
	FeedbackLike    Feedback = "like"
	FeedbackDislike Feedback = "dislike"
)

type feedbackRound struct {
	contactID    string
	baseIntimacy int
	votes        map[string]Feedback // message id -> active feedback
}

// OpenRound snapshots the contact's current intimacy as the round base and
// returns the new round id. Call it right before showing a batch of
// suggestions.
func (e *IntimacyEngine) OpenRound(contact *Contact) string {
	roundID := uuid.NewString()
	e.mu.Lock()
	e.rounds[roundID] = &feedbackRound{
		contactID:    contact.ContactID,
		baseIntimacy: contact.Intimacy,
		votes:        make(map[string]Feedback),
	}
	e.mu.Unlock()
	return roundID
}

// CloseRound drops the round's bookkeeping. Applied intimacy stays.
func (e *IntimacyEngine) CloseRound(roundID string) {
	e.mu.Lock()
	delete(e.rounds, roundID)
	e.mu.Unlock()
}

// DropContactRounds drops every open round of one contact. Used when the
// contact itself is removed.
func (e *IntimacyEngine) DropContactRounds(contactID string) {
	e.mu.Lock()
	for id, round := range e.rounds {
		if round.contactID == contactID {
			delete(e.rounds, id)
		}
	}
	e.mu.Unlock()
}

// ApplyFeedback records a like/dislike toggle for one message of a round
// and recomputes the contact's intimacy from the round base:
//
//	final = clamp(base + like*LikeWeight - dislike*DislikeWeight, 0, 100)
//
// using the round's current vote membership, not a running tally. The
// contact's history entry for the round is replaced, never appended to.
//
// Acceptance-rate and rejection-count deltas are applied per toggle, not
// per round.
func (e *IntimacyEngine) ApplyFeedback(contact *Contact, roundID, messageID string, fb Feedback) (IntimacyResult, error) {
	e.mu.Lock()
	round, ok := e.rounds[roundID]
	e.mu.Unlock()
	if !ok {
		return IntimacyResult{}, fmt.Errorf("unknown feedback round %q", roundID)
	}
	if round.contactID != contact.ContactID {
		return IntimacyResult{}, fmt.Errorf("round %q belongs to contact %q, not %q",
			roundID, round.contactID, contact.ContactID)
	}

	e.mu.Lock()
	old := round.votes[messageID]
	if old == fb {
		e.mu.Unlock()
		return IntimacyResult{Score: contact.Intimacy, Tag: ReasonNone}, nil
	}
	if fb == FeedbackNone {
		delete(round.votes, messageID)
	} else {
		round.votes[messageID] = fb
	}
	hasLike, hasDislike := false, false
	for _, v := range round.votes {
		if v == FeedbackLike {
			hasLike = true
		}
		if v == FeedbackDislike {
			hasDislike = true
		}
	}
	base := round.baseIntimacy
	e.mu.Unlock()

	delta := 0
	var reasons []string
	if hasLike {
		delta += e.config.LikeWeight
		reasons = append(reasons, fmt.Sprintf("用户喜欢回复 (+%d)", e.config.LikeWeight))
	}
	if hasDislike {
		delta -= e.config.DislikeWeight
		reasons = append(reasons, fmt.Sprintf("用户不喜欢回复 (-%d)", e.config.DislikeWeight))
	}

	final := base + delta
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	tag := feedbackTag(fb, hasLike, hasDislike)
	detail := strings.Join(reasons, " & ")
	if detail == "" {
		detail = "反馈已清除"
	}
	contact.RecordIntimacy(final, detail, tag, roundID, time.Now())

	// Per-toggle acceptance/rejection bookkeeping: undo the old vote's
	// contribution, then apply the new one.
	var accDelta float64
	var rejDelta int
	switch old {
	case FeedbackLike:
		accDelta -= e.config.AcceptanceDelta
		rejDelta++
	case FeedbackDislike:
		accDelta += e.config.RejectionDelta
		rejDelta--
	}
	switch fb {
	case FeedbackLike:
		accDelta += e.config.AcceptanceDelta
		rejDelta--
	case FeedbackDislike:
		accDelta -= e.config.RejectionDelta
		rejDelta++
	}
	contact.AdjustAcceptance(accDelta, rejDelta)

	return IntimacyResult{
		Score:  final,
		Delta:  final - base,
		Tag:    tag,
		Detail: detail,
	}, nil
}

func feedbackTag(applied Feedback, hasLike, hasDislike bool) Reason {
	switch applied {
	case FeedbackLike:
		return ReasonFeedbackLike
	case FeedbackDislike:
		return ReasonFeedbackDislike
	}
	// Toggle cleared: tag by what remains active in the round.
	switch {
	case hasLike:
		return ReasonFeedbackLike
	case hasDislike:
		return ReasonFeedbackDislike
	default:
		return ReasonFeedbackCleared
	}
}
