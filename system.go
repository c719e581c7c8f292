package reliosdk

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// ──────────────────────────────────────────────
// System — the per-message pipeline
// ──────────────────────────────────────────────
//
// Control flow per incoming message:
// analyze -> decay pass -> strategy selection -> external generation ->
// growth pass (only for a completed generation) -> interaction recording.
//
// Updates for one contact are serialized internally; different contacts
// are fully independent.

// SystemConfig wires the pipeline. Zero values take the documented
// defaults; the intimacy config is validated at construction.
type SystemConfig struct {
	Intimacy *IntimacyConfig // nil = DefaultIntimacyConfig
	Analyzer *AnalyzerConfig // nil = DefaultAnalyzerConfig

	Store   ContactStore // nil = in-memory
	ReplyFn ReplyFunc    // the external text-generation service

	FallbackReply    string // default DefaultFallbackReply
	MaxHistory       int    // conversation window, default 6
	AlternativeCount int    // extra suggestions per round, default 2, negative disables

	Clock func() time.Time // injectable for tests, default time.Now
}

// Suggestion is one generated reply candidate shown to the user.
type Suggestion struct {
	MessageID string        `json:"message_id"`
	Text      string        `json:"text"`
	Strategy  ReplyStrategy `json:"strategy"`
}

// ProcessResult is the outcome of one ProcessMessage call.
type ProcessResult struct {
	ContactID string           `json:"contact_id"`
	Analysis  DialogueAnalysis `json:"analysis"`

	Strategy      ReplyStrategy `json:"strategy"`
	MatchingScore float64       `json:"matching_score"`
	Confidence    float64       `json:"confidence"`

	Suggestions []Suggestion `json:"suggestions"`
	RoundID     string       `json:"round_id,omitempty"`

	Decay  IntimacyResult `json:"decay"`
	Growth IntimacyResult `json:"growth"`

	Intimacy     int               `json:"intimacy"`
	StageNative  string            `json:"stage_native"`
	StageEnglish string            `json:"stage_english"`
	Relationship RelationshipStage `json:"relationship_stage"`

	// Fallback is true when the generation call failed and the fixed
	// fallback reply was substituted. No relationship state was mutated.
	Fallback bool `json:"fallback"`

	GeneratedAt string `json:"generated_at"` // RFC3339
}

// System is the relationship dynamics engine wired end to end.
type System struct {
	analyzer *Analyzer
	engine   *IntimacyEngine
	tracker  *RelationshipTracker
	selector *StrategySelector
	styles   *StyleSignalDetector
	history  *ConversationStore
	store    ContactStore

	replyFn          ReplyFunc
	fallbackReply    string
	alternativeCount int
	clock            func() time.Time

	mu       sync.Mutex
	contacts map[string]*Contact
	locks    map[string]*sync.Mutex

	messagesProcessed atomic.Int64
	roundsOpened      atomic.Int64
}

// NewSystem builds the pipeline. Configuration errors surface here, never
// during scoring.
func NewSystem(cfg SystemConfig) (*System, error) {
	intimacyCfg := DefaultIntimacyConfig()
	if cfg.Intimacy != nil {
		intimacyCfg = *cfg.Intimacy
	}
	engine, err := NewIntimacyEngine(intimacyCfg)
	if err != nil {
		return nil, err
	}

	analyzerCfg := DefaultAnalyzerConfig()
	if cfg.Analyzer != nil {
		analyzerCfg = *cfg.Analyzer
	}

	contactStore := cfg.Store
	if contactStore == nil {
		contactStore = NewInMemoryContactStore()
	}

	fallback := cfg.FallbackReply
	if fallback == "" {
		fallback = DefaultFallbackReply
	}
	alternatives := cfg.AlternativeCount
	if alternatives < 0 {
		alternatives = 0
	} else if alternatives == 0 {
		alternatives = 2
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &System{
		analyzer:         NewAnalyzer(analyzerCfg),
		engine:           engine,
		tracker:          NewRelationshipTracker(clock),
		selector:         NewStrategySelector(),
		styles:           NewStyleSignalDetector(),
		history:          NewConversationStore(cfg.MaxHistory),
		store:            contactStore,
		replyFn:          cfg.ReplyFn,
		fallbackReply:    fallback,
		alternativeCount: alternatives,
		clock:            clock,
		contacts:         make(map[string]*Contact),
		locks:            make(map[string]*sync.Mutex),
	}, nil
}

// Engine exposes the intimacy engine (stage labels, config).
func (s *System) Engine() *IntimacyEngine { return s.engine }

// Tracker exposes the relationship tracker (administrative stage setters).
func (s *System) Tracker() *RelationshipTracker { return s.tracker }

// lockContact returns the per-contact mutex, locked.
func (s *System) lockContact(contactID string) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.locks[contactID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[contactID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l
}

// getOrCreateContact loads the contact from the working set, then the
// store, and finally creates it with the category's base intimacy.
// Caller must hold the contact lock.
func (s *System) getOrCreateContact(contactID, name string, category RelationshipCategory) (*Contact, error) {
	s.mu.Lock()
	c, ok := s.contacts[contactID]
	s.mu.Unlock()
	if ok {
		return c, nil
	}

	snap, err := s.store.Load(contactID)
	if err != nil {
		return nil, fmt.Errorf("load contact %s: %w", contactID, err)
	}
	if snap != nil && snap.Contact != nil {
		c = snap.Contact
		if snap.State != nil {
			s.tracker.Restore(snap.State)
		}
	} else {
		c = NewContact(contactID, name, category, s.engine.Config(), s.clock())
		log.Printf("[System] contact created | id=%s | category=%s | base=%d",
			contactID, category, c.Intimacy)
	}

	s.mu.Lock()
	s.contacts[contactID] = c
	s.mu.Unlock()
	return c, nil
}

// ProcessMessage runs the full pipeline for one incoming message and
// returns the suggestions plus every score that changed.
//
// A failed or cancelled generation substitutes the fallback reply and
// leaves all relationship state untouched: no decay recording, no growth,
// no interaction count, no feedback round.
func (s *System) ProcessMessage(ctx context.Context, contactID, name string, category RelationshipCategory, text string) (*ProcessResult, error) {
	if contactID == "" {
		return nil, fmt.Errorf("contact id is empty")
	}
	lock := s.lockContact(contactID)
	defer lock.Unlock()

	s.messagesProcessed.Inc()
	now := s.clock()
	today := now.Format(DateLayout)

	contact, err := s.getOrCreateContact(contactID, name, category)
	if err != nil {
		return nil, err
	}
	state := s.tracker.GetState(contactID)

	// 1. Analyze against the prior conversation window.
	prior := s.history.History(contactID)
	priorContents := make([]string, len(prior))
	for i, m := range prior {
		priorContents[i] = m.Content
	}
	analysis := s.analyzer.Analyze(text, priorContents)
	s.history.AddUserMessage(contactID, text)

	// 2. Decay pass (recorded only after a completed generation).
	decay := s.engine.Decay(contact.Intimacy, contact.LastInteractionDate, today)
	daysSince, _ := DaysBetween(contact.LastInteractionDate, today)

	// 3. Strategy selection.
	strategy := s.selector.Select(contact.Style)
	matching := s.selector.MatchingScore(analysis, contact.Style, state)
	confidence := s.selector.Confidence(analysis, state, matching)
	prompt := s.selector.BuildSystemPrompt(contact, state, analysis, strategy)

	result := &ProcessResult{
		ContactID:     contactID,
		Analysis:      analysis,
		Strategy:      strategy,
		MatchingScore: matching,
		Confidence:    confidence,
		Decay:         decay,
		Relationship:  state.CurrentStage,
		GeneratedAt:   now.Format(time.RFC3339),
	}

	// 4. External generation.
	reply, ok := generateReply(ctx, s.replyFn, prompt, s.history.History(contactID), s.fallbackReply)
	if !ok {
		// Failed turn: fallback reply only, no state mutation.
		result.Fallback = true
		result.Decay = IntimacyResult{Score: contact.Intimacy, Tag: ReasonNone}
		result.Suggestions = []Suggestion{{MessageID: uuid.NewString(), Text: reply, Strategy: strategy}}
		result.Growth = IntimacyResult{Score: contact.Intimacy, Tag: ReasonNone}
		result.Intimacy = contact.Intimacy
		result.StageNative, result.StageEnglish = s.engine.StageLabel(contact.Intimacy)
		return result, nil
	}
	s.history.AddAssistantMessage(contactID, reply)

	suggestions := []Suggestion{{MessageID: uuid.NewString(), Text: reply, Strategy: strategy}}
	suggestions = append(suggestions, s.generateAlternatives(ctx, contact, state, analysis, strategy, text, reply)...)

	// 5. Record the decay, then the growth on the decayed score.
	if decay.Tag == ReasonDecay {
		contact.RecordIntimacy(decay.Score, decay.Detail, decay.Tag, "", now)
	}
	growth := s.engine.Growth(
		contact.Intimacy,
		len([]rune(text)),
		analysis.Sentiment,
		true, // a delivered suggestion counts as accepted
		analysis.HasQuestion,
		analysis.HasThanks,
		analysis.HasEmpathy,
		daysSince,
	)
	if growth.Tag == ReasonGrowthAccepted {
		contact.RecordIntimacy(growth.Score, growth.Detail, growth.Tag, "", now)
	}
	contact.LastInteractionDate = today
	result.Growth = growth

	// 6. Style profile smoothing.
	s.styles.Apply(&contact.Style, text)

	// 7. Interaction recording and auto-evolution.
	state = s.tracker.RecordInteraction(contactID)
	s.tracker.SetCloseness(contactID, float64(contact.Intimacy)/100.0)
	result.Relationship = state.CurrentStage

	// 8. Open the feedback round covering these suggestions.
	result.RoundID = s.engine.OpenRound(contact)
	s.roundsOpened.Inc()

	result.Suggestions = suggestions
	result.Intimacy = contact.Intimacy
	result.StageNative, result.StageEnglish = s.engine.StageLabel(contact.Intimacy)

	if err := s.persist(contact); err != nil {
		return nil, err
	}
	log.Printf("[System] message processed | contact=%s | strategy=%s | intimacy=%d | stage=%s",
		contactID, strategy, contact.Intimacy, state.CurrentStage)
	return result, nil
}

// generateAlternatives produces suggestions under the other strategies.
// Alternative failures are skipped, never substituted.
func (s *System) generateAlternatives(ctx context.Context, contact *Contact, state *RelationshipState, analysis DialogueAnalysis, primary ReplyStrategy, text, primaryReply string) []Suggestion {
	if s.alternativeCount == 0 || s.replyFn == nil {
		return nil
	}
	var out []Suggestion
	for _, strategy := range AllStrategies() {
		if strategy == primary || len(out) >= s.alternativeCount {
			continue
		}
		prompt := s.selector.BuildSystemPrompt(contact, state, analysis, strategy)
		reply, err := s.replyFn(ctx, prompt, []ChatMessage{{Role: "user", Content: text}})
		if err != nil || reply == "" || reply == primaryReply {
			continue
		}
		out = append(out, Suggestion{MessageID: uuid.NewString(), Text: reply, Strategy: strategy})
	}
	return out
}

// Feedback applies a like/dislike toggle for one suggestion of a round.
func (s *System) Feedback(contactID, roundID, messageID string, fb Feedback) (IntimacyResult, error) {
	lock := s.lockContact(contactID)
	defer lock.Unlock()

	s.mu.Lock()
	contact, ok := s.contacts[contactID]
	s.mu.Unlock()
	if !ok {
		return IntimacyResult{}, fmt.Errorf("unknown contact %q", contactID)
	}

	result, err := s.engine.ApplyFeedback(contact, roundID, messageID, fb)
	if err != nil {
		return IntimacyResult{}, err
	}
	if result.Tag != ReasonNone {
		s.tracker.SetCloseness(contactID, float64(contact.Intimacy)/100.0)
		if err := s.persist(contact); err != nil {
			return IntimacyResult{}, err
		}
		log.Printf("[System] feedback applied | contact=%s | round=%s | tag=%s | intimacy=%d",
			contactID, roundID, result.Tag, contact.Intimacy)
	}
	return result, nil
}

// RejectSuggestions applies the weekly rejection penalty to a contact.
func (s *System) RejectSuggestions(contactID string, rejectionCount int) (IntimacyResult, error) {
	lock := s.lockContact(contactID)
	defer lock.Unlock()

	s.mu.Lock()
	contact, ok := s.contacts[contactID]
	s.mu.Unlock()
	if !ok {
		return IntimacyResult{}, fmt.Errorf("unknown contact %q", contactID)
	}

	result := s.engine.RejectionPenalty(contact.Intimacy, rejectionCount)
	if result.Tag == ReasonRejectionPenalty {
		contact.RecordIntimacy(result.Score, result.Detail, result.Tag, "", s.clock())
		s.tracker.SetCloseness(contactID, float64(contact.Intimacy)/100.0)
		if err := s.persist(contact); err != nil {
			return IntimacyResult{}, err
		}
	}
	return result, nil
}

// AddNote attaches a long-term memory note to a contact and persists
// the snapshot. Empty source defaults to "manual". Notes live and die
// with the contact: RemoveContact purges them.
func (s *System) AddNote(contactID, content, source string) (MemoryNote, error) {
	if content == "" {
		return MemoryNote{}, fmt.Errorf("note content is empty")
	}
	if source == "" {
		source = "manual"
	}
	lock := s.lockContact(contactID)
	defer lock.Unlock()

	s.mu.Lock()
	contact, ok := s.contacts[contactID]
	s.mu.Unlock()
	if !ok {
		snap, err := s.store.Load(contactID)
		if err != nil {
			return MemoryNote{}, fmt.Errorf("load contact %s: %w", contactID, err)
		}
		if snap == nil || snap.Contact == nil {
			return MemoryNote{}, fmt.Errorf("unknown contact %q", contactID)
		}
		contact = snap.Contact
		if snap.State != nil {
			s.tracker.Restore(snap.State)
		}
		s.mu.Lock()
		s.contacts[contactID] = contact
		s.mu.Unlock()
	}

	note := MemoryNote{
		NoteID:     uuid.NewString(),
		Content:    content,
		Confidence: 1.0,
		Source:     source,
		CreatedAt:  s.clock().Format(time.RFC3339),
	}
	contact.AddNote(note)
	if err := s.persist(contact); err != nil {
		return MemoryNote{}, err
	}
	return note, nil
}

// RemoveContact purges the contact entirely: snapshot, relationship
// state, conversation history and memory notes.
func (s *System) RemoveContact(contactID string) error {
	lock := s.lockContact(contactID)
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.contacts, contactID)
	s.mu.Unlock()

	s.tracker.Remove(contactID)
	s.history.Clear(contactID)
	s.engine.DropContactRounds(contactID)
	if err := s.store.Delete(contactID); err != nil {
		return fmt.Errorf("remove contact %s: %w", contactID, err)
	}
	log.Printf("[System] contact removed | id=%s", contactID)
	return nil
}

// Contact returns the working-set contact, loading it from the store on
// first reference. Returns nil when the contact does not exist anywhere.
func (s *System) Contact(contactID string) (*Contact, error) {
	lock := s.lockContact(contactID)
	defer lock.Unlock()

	s.mu.Lock()
	c, ok := s.contacts[contactID]
	s.mu.Unlock()
	if ok {
		return c, nil
	}
	snap, err := s.store.Load(contactID)
	if err != nil || snap == nil {
		return nil, err
	}
	if snap.State != nil {
		s.tracker.Restore(snap.State)
	}
	s.mu.Lock()
	s.contacts[contactID] = snap.Contact
	s.mu.Unlock()
	return snap.Contact, nil
}

// Contacts lists every stored contact id.
func (s *System) Contacts() ([]string, error) {
	return s.store.List()
}

// SystemStatus summarizes pipeline activity.
type SystemStatus struct {
	MessagesProcessed int64 `json:"messages_processed"`
	RoundsOpened      int64 `json:"rounds_opened"`
	TrackedContacts   int   `json:"tracked_contacts"`
}

// Status reports pipeline counters.
func (s *System) Status() SystemStatus {
	s.mu.Lock()
	tracked := len(s.contacts)
	s.mu.Unlock()
	return SystemStatus{
		MessagesProcessed: s.messagesProcessed.Load(),
		RoundsOpened:      s.roundsOpened.Load(),
		TrackedContacts:   tracked,
	}
}

func (s *System) persist(contact *Contact) error {
	snap := &ContactSnapshot{
		Contact: contact,
		State:   s.tracker.GetState(contact.ContactID),
	}
	if err := s.store.Save(snap); err != nil {
		return fmt.Errorf("persist contact %s: %w", contact.ContactID, err)
	}
	return nil
}
