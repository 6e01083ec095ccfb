package docstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/arthub/internal/common"
	"github.com/dmitrijs2005/arthub/internal/dbx"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultWatchInterval is how often a PostgresStore Watch polls for
// changes when no interval is configured.
const DefaultWatchInterval = 500 * time.Millisecond

// PostgresStore keeps every collection in a single documents table with a
// JSONB payload. Watch is implemented as interval polling; per-document
// atomicity comes from the database itself.
type PostgresStore struct {
	db            *sql.DB
	watchInterval time.Duration
}

// NewPostgresStore opens the database, verifies the connection and runs
// schema migrations.
func NewPostgresStore(ctx context.Context, dsn string, watchInterval time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if watchInterval <= 0 {
		watchInterval = DefaultWatchInterval
	}
	return &PostgresStore{db: db, watchInterval: watchInterval}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Collection(name string) Collection {
	return &postgresCollection{store: s, name: name}
}

type postgresCollection struct {
	store *PostgresStore
	name  string
}

func (c *postgresCollection) Get(ctx context.Context, id string) (Document, error) {
	raw, err := c.getRaw(ctx, c.store.db, id)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document %s/%s: %w", c.name, id, err)
	}
	return doc, nil
}

func (c *postgresCollection) getRaw(ctx context.Context, db dbx.DBTX, id string) ([]byte, error) {
	query := `SELECT data FROM documents WHERE collection=$1 AND id=$2`
	var raw []byte
	err := db.QueryRowContext(ctx, query, c.name, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting document: %w", err)
	}
	return raw, nil
}

func (c *postgresCollection) Set(ctx context.Context, id string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data
	`
	if _, err := c.store.db.ExecContext(ctx, query, c.name, id, raw); err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}
	return nil
}

func (c *postgresCollection) Add(ctx context.Context, doc Document) (string, error) {
	id := uuid.NewString()
	if err := c.Set(ctx, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into the stored document inside a transaction so
// concurrent updates to the same id cannot lose each other's fields.
func (c *postgresCollection) Update(ctx context.Context, id string, fields Document) error {
	return dbx.WithTx(ctx, c.store.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `SELECT data FROM documents WHERE collection=$1 AND id=$2 FOR UPDATE`
		var raw []byte
		err := tx.QueryRowContext(ctx, query, c.name, id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		if err != nil {
			return fmt.Errorf("selecting document: %w", err)
		}

		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decoding document: %w", err)
		}
		for k, v := range fields {
			doc[k] = v
		}
		merged, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE documents SET data=$3 WHERE collection=$1 AND id=$2`,
			c.name, id, merged)
		if err != nil {
			return fmt.Errorf("updating document: %w", err)
		}
		return nil
	})
}

func (c *postgresCollection) Delete(ctx context.Context, id string) error {
	_, err := c.store.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection=$1 AND id=$2`, c.name, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

func (c *postgresCollection) Query(ctx context.Context, field string, equals any) ([]Snapshot, error) {
	path := "{" + strings.Join(strings.Split(field, "."), ",") + "}"
	query := `SELECT id, data FROM documents WHERE collection=$1 AND data #>> $2 = $3 ORDER BY id`
	rows, err := c.store.db.QueryContext(ctx, query, c.name, path, fmt.Sprint(equals))
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var result []Snapshot
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding document %s/%s: %w", c.name, id, err)
		}
		result = append(result, Snapshot{ID: id, Doc: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Watch polls the document and emits on every observed change. The first
// emission carries the current state.
func (c *postgresCollection) Watch(id string, fn func(Document, error)) (stop func()) {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(c.store.watchInterval)
		defer ticker.Stop()

		var last []byte
		first := true
		emit := func() {
			raw, err := c.getRaw(context.Background(), c.store.db, id)
			switch {
			case errors.Is(err, common.ErrorNotFound):
				// A missing document is reported once: on the initial
				// emission, or when it disappears after being seen.
				if first || last != nil {
					fn(nil, common.ErrorNotFound)
				}
				last = nil
			case err != nil:
				if first {
					fn(nil, err)
				}
			case !bytes.Equal(raw, last):
				last = raw
				var doc Document
				if derr := json.Unmarshal(raw, &doc); derr != nil {
					fn(nil, derr)
				} else {
					fn(doc, nil)
				}
			}
			first = false
		}

		emit()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				emit()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
