package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore implements Store with an in-process map. Expiry is enforced
// lazily on access against a per-entry deadline.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	clock    func() time.Time
}

type memoryEntry struct {
	state    State
	deadline time.Time
}

// Get implements Store.
func (s *memoryStore) Get(ctx context.Context, identity string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[identity]
	if !ok {
		return nil, nil
	}
	now := s.clock()
	if now.After(entry.deadline) {
		delete(s.sessions, identity)
		return nil, nil
	}

	// Refresh TTL on read, same as the Redis driver.
	entry.deadline = now.Add(s.ttl)

	state := cloneState(entry.state)
	return &state, nil
}

// Update implements Store.
func (s *memoryStore) Update(ctx context.Context, identity string, patch Patch) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	var state State
	if entry, ok := s.sessions[identity]; ok && !now.After(entry.deadline) {
		state = cloneState(entry.state)
	}

	state.apply(patch)
	state.LastActivity = now

	s.sessions[identity] = &memoryEntry{
		state:    cloneState(state),
		deadline: now.Add(s.ttl),
	}
	return &state, nil
}

// AppendTranscript implements Store.
func (s *memoryStore) AppendTranscript(ctx context.Context, identity, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	var state State
	if entry, ok := s.sessions[identity]; ok && !now.After(entry.deadline) {
		state = cloneState(entry.state)
	}

	state.appendEntry(role, text, now)
	state.LastActivity = now

	s.sessions[identity] = &memoryEntry{
		state:    state,
		deadline: now.Add(s.ttl),
	}
	return nil
}

// Delete implements Store.
func (s *memoryStore) Delete(ctx context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, identity)
	return nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}

// cloneState copies a state so callers cannot alias store internals.
func cloneState(in State) State {
	out := in
	if in.Transcript != nil {
		out.Transcript = append([]Entry(nil), in.Transcript...)
	}
	if in.Extra != nil {
		out.Extra = make(map[string]any, len(in.Extra))
		for k, v := range in.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
