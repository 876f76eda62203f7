package tryon

import "sync"

// PrependAssets returns a new slice with item first. Pure: the input is
// never mutated, so two uploads completing in either order both end up
// present.
func PrependAssets(items []Asset, item Asset) []Asset {
	merged := make([]Asset, 0, len(items)+1)
	merged = append(merged, item)
	return append(merged, items...)
}

// RemoveAssetByID returns a new slice without the asset of the given id, and
// whether it was present. Relative order of the remaining assets is
// preserved.
func RemoveAssetByID(items []Asset, id string) ([]Asset, bool) {
	filtered := make([]Asset, 0, len(items))
	removed := false
	for _, item := range items {
		if item.ID == id {
			removed = true
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered, removed
}

// WardrobeCollection holds the in-memory wardrobe, partitioned by category.
// It is only ever mutated after a confirmed success: Prepend after a
// confirmed upload, Remove after a confirmed delete, Replace after a list.
type WardrobeCollection struct {
	mu    sync.Mutex
	items map[Category][]Asset
}

func NewWardrobeCollection() *WardrobeCollection {
	return &WardrobeCollection{items: make(map[Category][]Asset)}
}

// Prepend merges a freshly confirmed item into its category.
func (w *WardrobeCollection) Prepend(item Asset) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items[item.Category] = PrependAssets(w.items[item.Category], item)
}

// Remove drops the item with the given id from whichever category holds it.
func (w *WardrobeCollection) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for category, items := range w.items {
		if filtered, removed := RemoveAssetByID(items, id); removed {
			w.items[category] = filtered
			return true
		}
	}
	return false
}

// Replace swaps in the authoritative backend listing for a category.
func (w *WardrobeCollection) Replace(category Category, items []Asset) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items[category] = append([]Asset(nil), items...)
}

// Items returns a copy of the category's assets, newest first.
func (w *WardrobeCollection) Items(category Category) []Asset {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Asset(nil), w.items[category]...)
}

// Count returns the number of assets in a category.
func (w *WardrobeCollection) Count(category Category) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items[category])
}

// MannequinState holds the singleton mannequin reference.
type MannequinState struct {
	mu      sync.Mutex
	current *Mannequin
}

func NewMannequinState() *MannequinState {
	return &MannequinState{}
}

// Set replaces the singleton after a confirmed upload or fetch.
func (m *MannequinState) Set(mannequin Mannequin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &mannequin
}

// Clear removes the singleton after a confirmed delete.
func (m *MannequinState) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// Current returns a copy of the singleton, or nil when none is set.
func (m *MannequinState) Current() *Mannequin {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}
