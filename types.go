package pith

import "github.com/pcallahan/pith/internal/store"

// Public type aliases for internal store types used in the QueryBuilder API.
// These are Go type aliases (=), identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Store = store.Store
type File = store.File
type Scope = store.Scope
type Binding = store.Binding
type Def = store.Def
type Ref = store.Ref
type Span = store.Span
