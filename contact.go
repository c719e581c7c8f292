package reliosdk

import (
	"time"
)

// ──────────────────────────────────────────────
// Contact — one tracked counterparty
// ──────────────────────────────────────────────

// maxIntimacyHistory caps the rolling score history to roughly one year.
const maxIntimacyHistory = 365

// StyleProfile holds the counterparty's conversational style, each axis
// in [0,1], smoothed over time.
type StyleProfile struct {
	Formality  float64 `json:"formality"`  // 0=casual, 1=formal
	Warmth     float64 `json:"warmth"`     // 0=cold, 1=warm
	Directness float64 `json:"directness"` // 0=indirect, 1=direct
	Humor      float64 `json:"humor"`      // 0=serious, 1=playful
}

// DefaultStyleProfile returns the neutral midpoint profile.
func DefaultStyleProfile() StyleProfile {
	return StyleProfile{Formality: 0.5, Warmth: 0.5, Directness: 0.5, Humor: 0.5}
}

// IntimacyRecord is one entry of the rolling intimacy history.
type IntimacyRecord struct {
	Timestamp string `json:"timestamp"` // RFC3339
	Score     int    `json:"score"`
	Delta     int    `json:"delta"`
	Detail    string `json:"detail"`
	Tag       Reason `json:"tag"`
	RoundID   string `json:"round_id,omitempty"`
}

// MemoryNote is a free-form long-term note attached to a contact.
// Notes are purged together with the contact on removal.
type MemoryNote struct {
	NoteID     string  `json:"note_id"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"` // 0.0-1.0
	Source     string  `json:"source"`     // manual | system
	CreatedAt  string  `json:"created_at"`
}

// Contact is the per-counterparty relationship record.
type Contact struct {
	ContactID string               `json:"contact_id"`
	Name      string               `json:"name"`
	Category  RelationshipCategory `json:"category"`

	Intimacy            int    `json:"intimacy"` // always in [0,100]
	LastInteractionDate string `json:"last_interaction_date,omitempty"` // YYYY-MM-DD

	History []IntimacyRecord `json:"intimacy_history,omitempty"` // newest last, capped

	AcceptanceRate float64 `json:"acceptance_rate"` // always in [0,1]
	RejectionCount int     `json:"rejection_count"` // weekly, >= 0

	Style StyleProfile `json:"style_profile"`
	Notes []MemoryNote `json:"memory_notes,omitempty"`

	CreatedAt string `json:"created_at"`
}

// NewContact creates a contact with the category's base intimacy.
func NewContact(id, name string, category RelationshipCategory, cfg IntimacyConfig, now time.Time) *Contact {
	return &Contact{
		ContactID:      id,
		Name:           name,
		Category:       category,
		Intimacy:       cfg.BaseIntimacyFor(category),
		AcceptanceRate: 1.0,
		Style:          DefaultStyleProfile(),
		CreatedAt:      now.Format(time.RFC3339),
	}
}

// RecordIntimacy sets the score and appends a history entry. When roundID
// is non-empty, any prior entry tagged with that round is replaced rather
// than accumulated, so a feedback round never double-counts.
func (c *Contact) RecordIntimacy(score int, detail string, tag Reason, roundID string, now time.Time) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	old := c.Intimacy
	c.Intimacy = score

	if roundID != "" {
		kept := c.History[:0]
		for _, rec := range c.History {
			if rec.RoundID != roundID {
				kept = append(kept, rec)
			}
		}
		c.History = kept
	}

	c.History = append(c.History, IntimacyRecord{
		Timestamp: now.Format(time.RFC3339),
		Score:     score,
		Delta:     score - old,
		Detail:    detail,
		Tag:       tag,
		RoundID:   roundID,
	})
	if len(c.History) > maxIntimacyHistory {
		c.History = c.History[len(c.History)-maxIntimacyHistory:]
	}
}

// AdjustAcceptance shifts the acceptance rate and rejection counter,
// clamping to their documented ranges.
func (c *Contact) AdjustAcceptance(acceptanceDelta float64, rejectionDelta int) {
	c.AcceptanceRate = clampFloat(c.AcceptanceRate+acceptanceDelta, 0, 1)
	c.RejectionCount += rejectionDelta
	if c.RejectionCount < 0 {
		c.RejectionCount = 0
	}
}

// AddNote appends a long-term memory note.
func (c *Contact) AddNote(note MemoryNote) {
	c.Notes = append(c.Notes, note)
}
