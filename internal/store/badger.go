package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/lineagehq/lineage-graph/internal/lineage"
)

// Key prefixes for the BadgerDB-backed adjacency store.
const (
	prefixNode = "n:"      // node data, keyed by node id
	prefixEdge = "ed:"     // edge data, keyed by Edge.ID()
	prefixOut  = "e:out:"  // outgoing adjacency index: e:out:<nodeID>:<edgeID> -> edgeID
	prefixIn   = "e:in:"   // incoming adjacency index: e:in:<nodeID>:<edgeID>  -> edgeID
)

// BadgerAdapter is a BadgerDB-backed traversal.Adapter. Unlike
// MemoryAdapter it survives process restarts and can hold graphs larger
// than comfortably fit in memory.
type BadgerAdapter struct {
	mu sync.RWMutex
	db *badger.DB
}

// OpenBadgerAdapter opens or creates a BadgerDB database at path.
func OpenBadgerAdapter(path string, readOnly bool) (*BadgerAdapter, error) {
	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.ERROR)
	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger db: %w", err)
	}
	return &BadgerAdapter{db: db}, nil
}

// Close releases the underlying database handle.
func (b *BadgerAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *BadgerAdapter) nodeKey(id string) []byte { return []byte(prefixNode + id) }
func (b *BadgerAdapter) edgeKey(id string) []byte { return []byte(prefixEdge + id) }
func (b *BadgerAdapter) outKey(nodeID, edgeID string) []byte {
	return []byte(prefixOut + nodeID + ":" + edgeID)
}
func (b *BadgerAdapter) inKey(nodeID, edgeID string) []byte {
	return []byte(prefixIn + nodeID + ":" + edgeID)
}

// PutNode inserts or replaces a node.
func (b *BadgerAdapter) PutNode(n lineage.Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshaling node: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.nodeKey(n.ID), data)
	})
}

// PutEdge inserts or replaces an edge and its adjacency indexes.
func (b *BadgerAdapter) PutEdge(e lineage.Edge) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling edge: %w", err)
	}
	id := e.ID()
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(b.edgeKey(id), data); err != nil {
			return err
		}
		if err := txn.Set(b.outKey(e.Source, id), []byte(id)); err != nil {
			return err
		}
		return txn.Set(b.inKey(e.Destination, id), []byte(id))
	})
}

// Node implements traversal.Adapter.
func (b *BadgerAdapter) Node(_ context.Context, id string) (lineage.Node, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var node lineage.Node
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.nodeKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		})
	})
	if err != nil {
		return lineage.Node{}, false, fmt.Errorf("getting node %q: %w", id, err)
	}
	return node, found, nil
}

// Neighbors implements traversal.Adapter.
func (b *BadgerAdapter) Neighbors(_ context.Context, id string) ([]lineage.Edge, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var edges []lineage.Edge
	err := b.db.View(func(txn *badger.Txn) error {
		outIDs, err := b.collectEdgeIDs(txn, prefixOut+id+":")
		if err != nil {
			return err
		}
		for _, edgeID := range outIDs {
			e, ok, err := b.getEdge(txn, edgeID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			e.OtherNode = e.Destination
			e.OtherNodeType = e.DestinationType
			e.Direction = lineage.DirectionOutgoing
			edges = append(edges, e)
		}

		inIDs, err := b.collectEdgeIDs(txn, prefixIn+id+":")
		if err != nil {
			return err
		}
		for _, edgeID := range inIDs {
			e, ok, err := b.getEdge(txn, edgeID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			e.OtherNode = e.Source
			e.OtherNodeType = e.SourceType
			e.Direction = lineage.DirectionIncoming
			edges = append(edges, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting neighbors of %q: %w", id, err)
	}
	return edges, nil
}

func (b *BadgerAdapter) collectEdgeIDs(txn *badger.Txn, prefix string) ([]string, error) {
	var ids []string
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		if err := item.Value(func(val []byte) error {
			ids = append(ids, string(val))
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (b *BadgerAdapter) getEdge(txn *badger.Txn, edgeID string) (lineage.Edge, bool, error) {
	item, err := txn.Get(b.edgeKey(edgeID))
	if err == badger.ErrKeyNotFound {
		return lineage.Edge{}, false, nil
	}
	if err != nil {
		return lineage.Edge{}, false, err
	}
	var e lineage.Edge
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &e)
	}); err != nil {
		return lineage.Edge{}, false, err
	}
	return e, true, nil
}
