package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Documents returns every collection as raw JSON arrays keyed by collection
// name, the same shape the browser kept in local storage.
func (s *Store) Documents(ctx context.Context) (map[string][]json.RawMessage, error) {
	docs := make(map[string][]json.RawMessage, len(AllCollections))
	for _, c := range AllCollections {
		docs[c] = []json.RawMessage{}
	}
	rows, err := s.db.QueryContext(ctx, "SELECT collection, body FROM records ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("dump records: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var coll, body string
		if err := rows.Scan(&coll, &body); err != nil {
			return nil, err
		}
		docs[coll] = append(docs[coll], json.RawMessage(body))
	}
	return docs, rows.Err()
}

// ReplaceCollection drops every record of collection and inserts records in
// order, each at version 1. It must run inside InTx.
func (c *Collections) ReplaceCollection(ctx context.Context, collection string, records map[string]json.RawMessage, order []string) error {
	if _, err := c.q.ExecContext(ctx, "DELETE FROM records WHERE collection=?", collection); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	for _, id := range order {
		if _, err := c.q.ExecContext(ctx,
			"INSERT INTO records (collection, id, version, body) VALUES (?, ?, 1, ?)",
			collection, id, string(records[id])); err != nil {
			return fmt.Errorf("restore %s %s: %w", collection, id, err)
		}
	}
	return nil
}
