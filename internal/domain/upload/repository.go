package upload

import "sync"

type Repository interface {
	Insert(r Record) error
	Get(id int64) (Record, error)
	Delete(id int64) error
	Recent(n int) []Record
	All() []Record
	Len() int
	Stats() Stats
	Clear()
}

// Ledger is the in-memory Repository. Records are kept in insertion order.
type Ledger struct {
	mu      sync.RWMutex
	records map[int64]Record
	order   []int64
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[int64]Record)}
}

func (l *Ledger) Insert(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.records[r.ChannelMessageID]; exists {
		return ErrDuplicateKey
	}
	l.records[r.ChannelMessageID] = r
	l.order = append(l.order, r.ChannelMessageID)
	return nil
}

func (l *Ledger) Get(id int64) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, ok := l.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (l *Ledger) Delete(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.records[id]; !ok {
		return ErrNotFound
	}
	delete(l.records, id)
	for i, key := range l.order {
		if key == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return nil
}

// Recent returns the last n inserted records, oldest first.
func (l *Ledger) Recent(n int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 {
		return []Record{}
	}
	start := len(l.order) - n
	if start < 0 {
		start = 0
	}
	return l.collect(l.order[start:])
}

func (l *Ledger) All() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.order)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	owners := make(map[int64]struct{})
	var total float64
	for _, r := range l.records {
		owners[r.OwnerID] = struct{}{}
		total += r.SizeMB
	}
	return Stats{
		TotalCount:     len(l.records),
		DistinctOwners: len(owners),
		TotalSizeMB:    total,
	}
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[int64]Record)
	l.order = nil
}

// collect must be called with the lock held.
func (l *Ledger) collect(keys []int64) []Record {
	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, l.records[key])
	}
	return out
}
