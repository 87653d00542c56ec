package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Built-in list target keys.
const (
	TargetShoppingList = "shopping_list"
	TargetQuoteDraft   = "quote_draft"
)

// ListTarget receives accepted upload rows when the user confirms. ref
// identifies the destination within the target (a shopping list id; quote
// drafts use the client id and ignore it).
type ListTarget interface {
	Key() string
	Label() string
	AddItems(ctx context.Context, ref string, addition ListAddition) (int, error)
}

// TargetInfo describes a registered target for clients.
type TargetInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TargetRegistry holds the list targets known to a Service.
type TargetRegistry struct {
	mu      sync.RWMutex
	targets map[string]ListTarget
}

// NewTargetRegistry creates an empty registry.
func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{targets: make(map[string]ListTarget)}
}

// Register adds a target.
// Panics if a target with the same key is already registered.
func (r *TargetRegistry) Register(t ListTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[t.Key()]; exists {
		panic(fmt.Sprintf("list target already registered: %s", t.Key()))
	}
	r.targets[t.Key()] = t
}

// Get returns a target by key.
func (r *TargetRegistry) Get(key string) (ListTarget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.targets[key]
	return t, ok
}

// All returns every target, sorted by key.
func (r *TargetRegistry) All() []TargetInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TargetInfo, 0, len(r.targets))
	for _, t := range r.targets {
		infos = append(infos, TargetInfo{Key: t.Key(), Label: t.Label()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}
