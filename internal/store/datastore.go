package store

// DataStore is the interface for fact emission. Both Store (direct SQLite)
// and BatchedStore (in-memory buffering for parallel indexing) implement it.
type DataStore interface {
	// Fact inserts — each returns the assigned ID.
	InsertScope(sc *Scope) (int64, error)
	InsertBinding(b *Binding) (int64, error)
	InsertDef(d *Def) (int64, error)
	InsertRef(r *Ref) (int64, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
