package render

import (
	"sort"
	"sync"

	"github.com/csheth/cardstudio/internal/cards"
)

// Fit describes how a background image is sized into the card.
type Fit int

const (
	// FitCover scales the image to cover the card and crops the overflow.
	FitCover Fit = iota
	// FitContain scales the image to fit inside the card.
	FitContain
)

// Background is the resolved background of a render target.
type Background struct {
	URL string
	Fit Fit
}

// Target is the full-resolution description of one card as the grid shows
// it: the card content plus the chosen background.
type Target struct {
	Index      int
	Card       cards.Card
	Image      int
	Background Background
}

// NewTarget builds the target for card idx with the given image choice.
// Backgrounds are always centered cover images.
func NewTarget(idx int, card cards.Card, image int) Target {
	return Target{
		Index:      idx,
		Card:       card,
		Image:      image,
		Background: Background{URL: card.Image(image), Fit: FitCover},
	}
}

// Targets maps card indexes to mounted render targets. Entries are added as
// the grid mounts cards and removed when they unmount; readers always see
// them in ascending index order.
type Targets struct {
	mu      sync.RWMutex
	entries map[int]Target
}

// NewTargets returns an empty map.
func NewTargets() *Targets {
	return &Targets{entries: map[int]Target{}}
}

// Mount registers or replaces the target for t.Index.
func (t *Targets) Mount(target Target) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = map[int]Target{}
	}
	t.entries[target.Index] = target
}

// Unmount removes the target at idx.
func (t *Targets) Unmount(idx int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, idx)
}

// Get returns the target at idx.
func (t *Targets) Get(idx int) (Target, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	target, ok := t.entries[idx]
	return target, ok
}

// Len returns the number of mounted targets.
func (t *Targets) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Ordered returns a snapshot of the mounted targets sorted by index.
func (t *Targets) Ordered() []Target {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := make([]Target, 0, len(t.entries))
	for _, target := range t.entries {
		list = append(list, target)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	return list
}

// Sync mounts one target per card using the current selection and unmounts
// indexes beyond the card count.
func (t *Targets) Sync(list []cards.Card, sel cards.Selection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = map[int]Target{}
	}
	for idx := range t.entries {
		if idx >= len(list) {
			delete(t.entries, idx)
		}
	}
	for idx, card := range list {
		t.entries[idx] = NewTarget(idx, card, sel.At(idx))
	}
}

// Reset unmounts everything.
func (t *Targets) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = map[int]Target{}
}
