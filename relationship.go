package reliosdk

import (
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Relationship stage tracking
// ──────────────────────────────────────────────

// RelationshipStage is a relationship-lifecycle label.
type RelationshipStage string

const (
	StageInitial  RelationshipStage = "initial"
	StageBuilding RelationshipStage = "building"
	StageStable   RelationshipStage = "stable"
	StageClose    RelationshipStage = "close"
	StageDistant  RelationshipStage = "distant"
	StageArchived RelationshipStage = "archived"
)

// Auto-evolution thresholds.
const (
	buildingThreshold = 3  // initial -> building
	stableThreshold   = 10 // building -> stable
)

// StageTransition is one entry of the append-only transition log.
type StageTransition struct {
	Timestamp string            `json:"timestamp"` // RFC3339
	Stage     RelationshipStage `json:"stage"`
}

// RelationshipState describes the stage and metrics of one relationship.
type RelationshipState struct {
	ContactID    string            `json:"contact_id"`
	CurrentStage RelationshipStage `json:"current_stage"`

	InteractionCount     int `json:"interaction_count"`
	DaysSinceInteraction int `json:"days_since_interaction"`

	StageHistory []StageTransition `json:"stage_history"`

	Closeness            float64 `json:"closeness"`             // 0-1
	TrustLevel           float64 `json:"trust_level"`           // 0-1
	InteractionFrequency float64 `json:"interaction_frequency"` // 0-1

	UpdatedAt string `json:"updated_at"`
}

// RelationshipTracker maintains the relationship state of every contact.
type RelationshipTracker struct {
	mu     sync.RWMutex
	states map[string]*RelationshipState
	clock  func() time.Time
}

// NewRelationshipTracker creates a tracker. Pass a clock for testability;
// defaults to time.Now.
func NewRelationshipTracker(clock ...func() time.Time) *RelationshipTracker {
	c := time.Now
	if len(clock) > 0 && clock[0] != nil {
		c = clock[0]
	}
	return &RelationshipTracker{
		states: make(map[string]*RelationshipState),
		clock:  c,
	}
}

// GetState returns the state for a contact, creating it on first reference.
func (t *RelationshipTracker) GetState(contactID string) *RelationshipState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.getOrCreate(contactID)
}

func (t *RelationshipTracker) getOrCreate(contactID string) *RelationshipState {
	if state, ok := t.states[contactID]; ok {
		return state
	}
	now := t.clock().Format(time.RFC3339)
	state := &RelationshipState{
		ContactID:    contactID,
		CurrentStage: StageInitial,
		TrustLevel:   0.5,
		StageHistory: []StageTransition{{Timestamp: now, Stage: StageInitial}},
		UpdatedAt:    now,
	}
	t.states[contactID] = state
	return state
}

// RecordInteraction counts one interaction, resets the inactivity counter
// and applies the auto-evolution rule. Auto-evolution only ever moves
// forward: initial -> building at 3 interactions, building -> stable at 10.
func (t *RelationshipTracker) RecordInteraction(contactID string) *RelationshipState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.getOrCreate(contactID)
	state.InteractionCount++
	state.DaysSinceInteraction = 0
	state.UpdatedAt = t.clock().Format(time.RFC3339)

	switch {
	case state.CurrentStage == StageInitial && state.InteractionCount >= buildingThreshold:
		t.transition(state, StageBuilding)
	case state.CurrentStage == StageBuilding && state.InteractionCount >= stableThreshold:
		t.transition(state, StageStable)
	}
	return state
}

// SetStage is the explicit administrative setter. It is the only path into
// close, distant and archived; it is exempt from the auto-evolution
// monotonicity rule.
func (t *RelationshipTracker) SetStage(contactID string, stage RelationshipStage) *RelationshipState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.getOrCreate(contactID)
	t.transition(state, stage)
	return state
}

// transition appends a log entry only when the stage actually changes.
func (t *RelationshipTracker) transition(state *RelationshipState, stage RelationshipStage) {
	if state.CurrentStage == stage {
		return
	}
	now := t.clock().Format(time.RFC3339)
	state.CurrentStage = stage
	state.StageHistory = append(state.StageHistory, StageTransition{Timestamp: now, Stage: stage})
	state.UpdatedAt = now
}

// SetTrust sets the trust level, clamped to [0,1].
func (t *RelationshipTracker) SetTrust(contactID string, trust float64) *RelationshipState {
	return t.setMetric(contactID, func(s *RelationshipState) {
		s.TrustLevel = clampFloat(trust, 0, 1)
	})
}

// SetFrequency sets the interaction frequency, clamped to [0,1].
func (t *RelationshipTracker) SetFrequency(contactID string, frequency float64) *RelationshipState {
	return t.setMetric(contactID, func(s *RelationshipState) {
		s.InteractionFrequency = clampFloat(frequency, 0, 1)
	})
}

// SetCloseness sets the closeness metric, clamped to [0,1].
func (t *RelationshipTracker) SetCloseness(contactID string, closeness float64) *RelationshipState {
	return t.setMetric(contactID, func(s *RelationshipState) {
		s.Closeness = clampFloat(closeness, 0, 1)
	})
}

// SetDaysSince records how long the contact has been silent.
func (t *RelationshipTracker) SetDaysSince(contactID string, days int) *RelationshipState {
	return t.setMetric(contactID, func(s *RelationshipState) {
		if days < 0 {
			days = 0
		}
		s.DaysSinceInteraction = days
	})
}

func (t *RelationshipTracker) setMetric(contactID string, apply func(*RelationshipState)) *RelationshipState {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := t.getOrCreate(contactID)
	apply(state)
	state.UpdatedAt = t.clock().Format(time.RFC3339)
	return state
}

// StageTimeline returns a copy of the contact's stage transition log.
func (t *RelationshipTracker) StageTimeline(contactID string) []StageTransition {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.states[contactID]
	if !ok {
		return nil
	}
	timeline := make([]StageTransition, len(state.StageHistory))
	copy(timeline, state.StageHistory)
	return timeline
}

// States returns the contact ids with tracked state.
func (t *RelationshipTracker) States() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.states))
	for id := range t.states {
		ids = append(ids, id)
	}
	return ids
}

// Restore installs a previously persisted state, replacing any existing
// entry for the contact.
func (t *RelationshipTracker) Restore(state *RelationshipState) {
	if state == nil || state.ContactID == "" {
		return
	}
	t.mu.Lock()
	t.states[state.ContactID] = state
	t.mu.Unlock()
}

// Remove drops the contact's state entirely.
func (t *RelationshipTracker) Remove(contactID string) {
	t.mu.Lock()
	delete(t.states, contactID)
	t.mu.Unlock()
}
