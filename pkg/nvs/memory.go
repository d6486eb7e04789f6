package nvs

import (
	"sort"
	"sync"
)

// MemPartition keeps entries in memory. It survives a simulated restart
// as long as the same value is reused.
type MemPartition struct {
	// MaxEntries limits the number of entries, 0 for unlimited.
	MaxEntries int
	// Version is the format version found by Init, 0 for a blank partition.
	Version uint32

	lock   sync.Mutex
	ready  bool
	spaces map[string]map[string]Entry
}

// NewMemPartition creates an empty MemPartition.
func NewMemPartition() *MemPartition {
	return &MemPartition{}
}

// Init implements Partition.
func (p *MemPartition) Init() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ready = false
	if p.Version == 0 {
		p.Version = FormatVersion
	}
	if p.Version > FormatVersion {
		return ErrNewVersionFound
	}
	if p.MaxEntries > 0 && p.countLocked() > p.MaxEntries {
		return ErrNoFreePages
	}
	p.ready = true
	return nil
}

// Erase implements Partition.
func (p *MemPartition) Erase() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.spaces = nil
	p.Version = FormatVersion
	return nil
}

// Open implements Partition.
func (p *MemPartition) Open(namespace string) (Handle, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.ready {
		return nil, ErrNotInitialized
	}
	return newHandle(namespace, p)
}

// Close implements Partition.
func (p *MemPartition) Close() error {
	p.lock.Lock()
	p.ready = false
	p.lock.Unlock()
	return nil
}

func (p *MemPartition) countLocked() (n int) {
	for _, space := range p.spaces {
		n += len(space)
	}
	return
}

func (p *MemPartition) get(ns, key string) (Entry, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	e, ok := p.spaces[ns][key]
	if !ok {
		return e, ErrNotFound
	}
	return e, nil
}

func (p *MemPartition) put(ns string, e Entry) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	space := p.spaces[ns]
	if _, exists := space[e.Key]; !exists && p.MaxEntries > 0 && p.countLocked() >= p.MaxEntries {
		return ErrNoFreePages
	}
	if space == nil {
		if p.spaces == nil {
			p.spaces = make(map[string]map[string]Entry)
		}
		space = make(map[string]Entry)
		p.spaces[ns] = space
	}
	space[e.Key] = e
	return nil
}

func (p *MemPartition) delete(ns, key string) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if _, ok := p.spaces[ns][key]; !ok {
		return ErrNotFound
	}
	delete(p.spaces[ns], key)
	return nil
}

func (p *MemPartition) list(ns string) ([]Entry, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	entries := make([]Entry, 0, len(p.spaces[ns]))
	for _, e := range p.spaces[ns] {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (p *MemPartition) sync() error {
	return nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
}
