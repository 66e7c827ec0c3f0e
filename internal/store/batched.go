package store

import "sync"

// BatchedStore buffers fact inserts in memory using fake (negative) IDs, so
// per-file indexing can run without touching SQLite until commit time. It
// implements DataStore, letting the emitter stay agnostic about whether it
// writes straight through or into a buffer.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
type BatchedStore struct {
	mu sync.Mutex

	Scopes   []Scope
	Bindings []Binding
	Defs     []Def
	Refs     []Ref

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates an empty buffer.
func NewBatchedStore() *BatchedStore {
	return &BatchedStore{nextFakeID: -1}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertScope(sc *Scope) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	sc.ID = fakeID
	b.Scopes = append(b.Scopes, *sc)
	return fakeID, nil
}

func (b *BatchedStore) InsertBinding(bind *Binding) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	bind.ID = fakeID
	b.Bindings = append(b.Bindings, *bind)
	return fakeID, nil
}

func (b *BatchedStore) InsertDef(d *Def) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	d.ID = fakeID
	b.Defs = append(b.Defs, *d)
	return fakeID, nil
}

func (b *BatchedStore) InsertRef(r *Ref) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	r.ID = fakeID
	b.Refs = append(b.Refs, *r)
	return fakeID, nil
}
