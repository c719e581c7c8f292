package reliosdk

import "sync"

// ──────────────────────────────────────────────
// Conversation history — bounded per-contact window
// ──────────────────────────────────────────────

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// ConversationStore keeps a bounded message window per contact so the
// generation context never grows unbounded.
type ConversationStore struct {
	mu         sync.RWMutex
	maxHistory int
	sessions   map[string][]ChatMessage
}

// NewConversationStore creates a store. maxHistory <= 0 defaults to 6.
func NewConversationStore(maxHistory int) *ConversationStore {
	if maxHistory <= 0 {
		maxHistory = 6
	}
	return &ConversationStore{
		maxHistory: maxHistory,
		sessions:   make(map[string][]ChatMessage),
	}
}

// AddUserMessage appends a user turn.
func (s *ConversationStore) AddUserMessage(contactID, content string) {
	s.append(contactID, ChatMessage{Role: "user", Content: content})
}

// AddAssistantMessage appends an assistant turn.
func (s *ConversationStore) AddAssistantMessage(contactID, content string) {
	s.append(contactID, ChatMessage{Role: "assistant", Content: content})
}

func (s *ConversationStore) append(contactID string, msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	window := append(s.sessions[contactID], msg)
	if len(window) > s.maxHistory {
		window = window[len(window)-s.maxHistory:]
	}
	s.sessions[contactID] = window
}

// History returns a copy of the contact's window, oldest first.
func (s *ConversationStore) History(contactID string) []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	window := s.sessions[contactID]
	out := make([]ChatMessage, len(window))
	copy(out, window)
	return out
}

// Clear drops the contact's history.
func (s *ConversationStore) Clear(contactID string) {
	s.mu.Lock()
	delete(s.sessions, contactID)
	s.mu.Unlock()
}
