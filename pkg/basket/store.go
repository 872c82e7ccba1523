package basket

import (
	"sort"
	"sync"
)

// Op names a store mutation.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpReseed  Op = "reseed"
)

// Change describes a mutation that was applied to the store.
type Change struct {
	Op      Op
	Version VersionKey
	Section SectionName
	// Index is the position that was added, removed or replaced. It is -1 for OpReseed.
	Index int
	// Product is the new placement for OpAdd and OpReplace, the removed one for OpRemove.
	Product Product
	// Previous is the replaced placement for OpReplace.
	Previous  Product
	Aggregate Aggregate
}

// Store holds the three basket versions of a session. Every mutation replaces
// the touched section and the version aggregate together.
type Store struct {
	mu       sync.RWMutex
	versions map[VersionKey]Version

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// NewStore seeds a store from a snapshot. Missing versions start empty and
// every aggregate is recomputed from the items.
func NewStore(snap Snapshot) *Store {
	s := &Store{
		versions: make(map[VersionKey]Version, len(VersionKeys)),
		subs:     make(map[int]func(Change)),
	}
	for _, k := range VersionKeys {
		v := snap[k]
		s.versions[k] = normalizeVersion(k, v.Sections, v.Error, v.Label)
	}
	return s
}

func normalizeVersion(key VersionKey, sections Sections, errMsg, label string) Version {
	out := make(Sections, len(SectionNames))
	for _, name := range SectionNames {
		items := make([]Product, len(sections[name]))
		for i, p := range sections[name] {
			items[i] = p.inCents()
		}
		out[name] = items
	}
	if label == "" {
		label = key.Label()
	}
	return Version{
		Key:       key,
		Label:     label,
		Sections:  out,
		Aggregate: Recompute(out),
		Error:     errMsg,
	}
}

// Version returns the current state of a version.
func (s *Store) Version(key VersionKey) (Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[key]
	if !ok {
		return Version{}, false
	}
	v.Sections = v.Sections.Clone()
	return v, true
}

// Snapshot returns the current state of all versions.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	out := make(Snapshot, len(s.versions))
	for k, v := range s.versions {
		v.Sections = v.Sections.Clone()
		out[k] = v
	}
	return out
}

// Subscribe registers fn to be called after every applied mutation. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// AddItem appends p to the end of a section. Duplicates are allowed.
func (s *Store) AddItem(key VersionKey, section SectionName, p Product) bool {
	p = p.inCents()
	return s.mutate(key, section, func(items []Product, c *Change) ([]Product, bool) {
		out := make([]Product, len(items), len(items)+1)
		copy(out, items)
		c.Op, c.Index, c.Product = OpAdd, len(items), p
		return append(out, p), true
	})
}

// RemoveItem removes the placement at index. Out of range indices are ignored.
func (s *Store) RemoveItem(key VersionKey, section SectionName, index int) bool {
	return s.mutate(key, section, func(items []Product, c *Change) ([]Product, bool) {
		if index < 0 || index >= len(items) {
			return nil, false
		}
		out := make([]Product, 0, len(items)-1)
		out = append(out, items[:index]...)
		out = append(out, items[index+1:]...)
		c.Op, c.Index, c.Product = OpRemove, index, items[index]
		return out, true
	})
}

// ReplaceItem substitutes the placement at index with p. Out of range indices
// are ignored.
func (s *Store) ReplaceItem(key VersionKey, section SectionName, index int, p Product) bool {
	p = p.inCents()
	return s.mutate(key, section, func(items []Product, c *Change) ([]Product, bool) {
		if index < 0 || index >= len(items) {
			return nil, false
		}
		out := make([]Product, len(items))
		copy(out, items)
		out[index] = p
		c.Op, c.Index, c.Product, c.Previous = OpReplace, index, p, items[index]
		return out, true
	})
}

func (s *Store) mutate(key VersionKey, section SectionName, edit func([]Product, *Change) ([]Product, bool)) bool {
	if _, known := sectionLabels[section]; !known {
		return false
	}
	s.mu.Lock()
	v, ok := s.versions[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	c := Change{Version: key, Section: section}
	items, applied := edit(v.Sections[section], &c)
	if !applied {
		s.mu.Unlock()
		return false
	}
	sections := v.Sections.Clone()
	sections[section] = items
	v.Sections = sections
	v.Aggregate = Recompute(sections)
	s.versions[key] = v
	c.Aggregate = v.Aggregate
	s.mu.Unlock()

	s.notify(c)
	return true
}

// ReplaceVersion installs a freshly produced version in place of key, e.g.
// after regenerating a single version with the optimizer.
func (s *Store) ReplaceVersion(key VersionKey, sections Sections, errMsg string) bool {
	s.mu.Lock()
	old, ok := s.versions[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	v := normalizeVersion(key, sections, errMsg, old.Label)
	s.versions[key] = v
	s.mu.Unlock()

	s.notify(Change{Op: OpReseed, Version: key, Index: -1, Aggregate: v.Aggregate})
	return true
}

// Candidates lists the items of the other versions' matching section that
// are not already present, by name, in the target section.
func (s *Store) Candidates(target VersionKey, section SectionName) []CandidateGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[target]
	if !ok {
		return nil
	}
	return FindCandidates(s.snapshotLocked(), target, section, ItemNames(v.Sections[section]))
}
