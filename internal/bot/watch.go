package bot

import (
	"sort"
	"sync"
)

// WatchList is the set of channels the bot filters on. An empty list means
// every channel is watched. Mutated at runtime by the /watch commands.
type WatchList struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewWatchList(seed []string) *WatchList {
	ids := make(map[string]struct{}, len(seed))
	for _, id := range seed {
		ids[id] = struct{}{}
	}
	return &WatchList{ids: ids}
}

// Contains reports whether channelID should be processed.
func (w *WatchList) Contains(channelID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.ids) == 0 {
		return true
	}
	_, ok := w.ids[channelID]
	return ok
}

func (w *WatchList) Add(channelID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids[channelID] = struct{}{}
}

func (w *WatchList) Remove(channelID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.ids, channelID)
}

func (w *WatchList) List() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.ids))
	for id := range w.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
