package chat

import "sync"

// ContextWindowSize bounds how many trailing turns are sent to a provider.
// Trades context completeness for bounded request cost and token limits.
const ContextWindowSize = 10

// ConversationStore owns all in-process conversation state. Conversations are
// created lazily on first append and grow append-only for the process
// lifetime. Appends for one user are serialized by a per-conversation mutex;
// different users never contend.
type ConversationStore struct {
	mu            sync.RWMutex // guards the map, not the conversations
	conversations map[string]*conversation
}

type conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// NewConversationStore returns an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{conversations: make(map[string]*conversation)}
}

// lookup returns the conversation for userID without creating one. Read
// paths use it so an unknown user never materializes an empty conversation.
func (s *ConversationStore) lookup(userID string) *conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversations[userID]
}

// conv returns the conversation for userID, creating it if absent.
func (s *ConversationStore) conv(userID string) *conversation {
	s.mu.RLock()
	c, ok := s.conversations[userID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.conversations[userID]; ok {
		return c
	}
	c = &conversation{}
	s.conversations[userID] = c
	return c
}

// Append adds a turn to the user's conversation. Turns are never removed or
// reordered afterwards.
func (s *ConversationStore) Append(userID string, turn Turn) {
	c := s.conv(userID)
	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.mu.Unlock()
}

// Get returns a copy of the full conversation; empty slice for unknown users.
func (s *ConversationStore) Get(userID string) []Turn {
	c := s.lookup(userID)
	if c == nil {
		return []Turn{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// ContextWindow returns a copy of the last n turns.
func (s *ConversationStore) ContextWindow(userID string, n int) []Turn {
	c := s.lookup(userID)
	if c == nil {
		return []Turn{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	start := len(c.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(c.turns)-start)
	copy(out, c.turns[start:])
	return out
}

// Len returns the number of turns in the user's conversation.
func (s *ConversationStore) Len(userID string) int {
	c := s.lookup(userID)
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Stats is the aggregate view used by the dashboard endpoint.
type Stats struct {
	Conversations int
	Messages      int
	UserMessages  int
	ProviderUsage map[string]int
}

// Snapshot walks every conversation and aggregates counters. Conversations
// are locked one at a time; the snapshot is consistent per conversation, not
// globally, which is fine for a dashboard.
func (s *ConversationStore) Snapshot() Stats {
	s.mu.RLock()
	convs := make([]*conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		convs = append(convs, c)
	}
	s.mu.RUnlock()

	st := Stats{Conversations: len(convs), ProviderUsage: make(map[string]int)}
	for _, c := range convs {
		c.mu.Lock()
		st.Messages += len(c.turns)
		for _, t := range c.turns {
			if t.Role == RoleUser {
				st.UserMessages++
			}
			if t.Role == RoleAssistant && t.Provider != "" {
				st.ProviderUsage[t.Provider]++
			}
		}
		c.mu.Unlock()
	}
	return st
}
