package pith

import (
	"fmt"

	"github.com/pcallahan/pith/internal/cst"
	"github.com/pcallahan/pith/internal/resolve"
	"github.com/pcallahan/pith/internal/store"
)

// emitFacts writes one file's resolved facts through a DataStore. Scopes go
// first so bindings and parent links can refer to their IDs; with a
// BatchedStore those IDs are fake negatives remapped at commit.
func emitFacts(ds store.DataStore, fileID int64, facts *resolve.FileFacts) error {
	scopeIDs := make(map[string]int64, len(facts.Scopes))

	for _, sc := range facts.Scopes {
		var parentID *int64
		if sc.Parent != "" {
			pid, ok := scopeIDs[sc.Parent]
			if !ok {
				return fmt.Errorf("scope %s: parent %s not yet emitted", sc.FQN, sc.Parent)
			}
			parentID = &pid
		}
		id, err := ds.InsertScope(&store.Scope{
			FileID:        fileID,
			FQN:           sc.FQN,
			Kind:          string(sc.Kind),
			ParentScopeID: parentID,
			Span:          storeSpan(sc.Span),
		})
		if err != nil {
			return fmt.Errorf("insert scope %s: %w", sc.FQN, err)
		}
		scopeIDs[sc.FQN] = id
	}

	for _, b := range facts.Bindings {
		scID, ok := scopeIDs[b.ScopeFQN]
		if !ok {
			return fmt.Errorf("binding %s: unknown scope %s", b.FQN, b.ScopeFQN)
		}
		if _, err := ds.InsertBinding(&store.Binding{
			ScopeID: scID, Name: b.Name, FQN: b.FQN, Ord: b.Ord,
		}); err != nil {
			return fmt.Errorf("insert binding %s: %w", b.FQN, err)
		}
	}

	for _, d := range facts.Defs {
		if _, err := ds.InsertDef(&store.Def{
			FileID: fileID, FQN: d.FQN, Name: d.Name, Span: storeSpan(d.Span),
		}); err != nil {
			return fmt.Errorf("insert def %s: %w", d.FQN, err)
		}
	}

	for _, r := range facts.Refs {
		if _, err := ds.InsertRef(&store.Ref{
			FileID: fileID, FQN: r.FQN, Name: r.Name, Span: storeSpan(r.Span),
		}); err != nil {
			return fmt.Errorf("insert ref %s: %w", r.Name, err)
		}
	}

	return nil
}

func storeSpan(s cst.Span) store.Span {
	return store.Span{
		StartByte: int(s.StartByte),
		EndByte:   int(s.EndByte),
		StartLine: int(s.StartLine),
		StartCol:  int(s.StartCol),
		EndLine:   int(s.EndLine),
		EndCol:    int(s.EndCol),
	}
}
