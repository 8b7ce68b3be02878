package storage

import (
	"context"
	"sync"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

// MemoryStore is the in-process fallback used when no Firestore project is
// configured, and the default store in tests. Settings written here do not
// survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	settings map[string]models.GuildSettings
	links    map[string]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		settings: make(map[string]models.GuildSettings),
		links:    make(map[string]string),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetSettings(_ context.Context, guildID string) (*models.GuildSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.settings[guildID]; ok {
		copied := settings
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) SetSettings(_ context.Context, guildID string, settings models.GuildSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[guildID] = settings
	return nil
}

func (s *MemoryStore) GetLink(_ context.Context, sourceChannelID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.links[sourceChannelID], nil
}

func (s *MemoryStore) SetLink(_ context.Context, sourceChannelID, destChannelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[sourceChannelID] = destChannelID
	return nil
}

func (s *MemoryStore) ClearLink(_ context.Context, sourceChannelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, sourceChannelID)
	return nil
}

func (s *MemoryStore) ListLinks(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	links := make(map[string]string, len(s.links))
	for k, v := range s.links {
		links[k] = v
	}
	return links, nil
}
