package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a schemaless business record. The id and tenant id live in table
// columns and are merged back into the map on read; the stored JSON never
// contains them.
type Document map[string]any

// Collection is one tenant-scoped document table.
type Collection struct {
	db    *sql.DB
	table string
}

func (c *Collection) Name() string { return c.table }

func (c *Collection) GetAll(ctx context.Context, userID string) ([]Document, error) {
	rows, err := c.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, data FROM %s WHERE user_id = ? ORDER BY rowid`, c.table),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", c.table, err)
		}
		doc, err := decodeDocument(id, data)
		if err != nil {
			return nil, fmt.Errorf("decode %s document %s: %w", c.table, id, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.table, err)
	}
	return docs, nil
}

// GetByID returns (nil, nil) when no document matches; a missing id is a normal
// outcome, not an error.
func (c *Collection) GetByID(ctx context.Context, id, userID string) (Document, error) {
	var data string
	err := c.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE id = ? AND user_id = ?`, c.table),
		id, userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", c.table, id, err)
	}
	doc, err := decodeDocument(id, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s document %s: %w", c.table, id, err)
	}
	return doc, nil
}

func (c *Collection) Create(ctx context.Context, doc Document, userID string) (Document, error) {
	id := uuid.NewString()
	payload, err := encodeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", c.table, err)
	}
	_, err = c.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, user_id, data) VALUES (?, ?, ?)`, c.table),
		id, userID, payload,
	)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", c.table, err)
	}
	created := cloneDocument(doc)
	created["id"] = id
	return created, nil
}

// Update merges the changed fields into the stored document. Returns false when
// no document matches the id for this tenant.
func (c *Collection) Update(ctx context.Context, id string, changes Document, userID string) (bool, error) {
	existing, err := c.GetByID(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	delete(existing, "id")
	for key, value := range changes {
		if key == "id" || key == "_id" {
			continue
		}
		existing[key] = value
	}
	payload, err := encodeDocument(existing)
	if err != nil {
		return false, fmt.Errorf("encode %s document: %w", c.table, err)
	}
	result, err := c.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET data = ?, updated_at = ? WHERE id = ? AND user_id = ?`, c.table),
		payload, time.Now().UTC().Format(time.RFC3339), id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("update %s %s: %w", c.table, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s rows affected: %w", c.table, err)
	}
	return affected > 0, nil
}

func (c *Collection) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := c.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, c.table),
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete %s %s: %w", c.table, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s rows affected: %w", c.table, err)
	}
	return affected > 0, nil
}

func encodeDocument(doc Document) (string, error) {
	clean := cloneDocument(doc)
	delete(clean, "id")
	delete(clean, "_id")
	raw, err := json.Marshal(clean)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeDocument(id, data string) (Document, error) {
	doc := Document{}
	if strings.TrimSpace(data) != "" {
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, err
		}
	}
	doc["id"] = id
	return doc, nil
}

func cloneDocument(doc Document) Document {
	clone := make(Document, len(doc))
	for key, value := range doc {
		clone[key] = value
	}
	return clone
}
