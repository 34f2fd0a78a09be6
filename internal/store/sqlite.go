package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// SQLiteStore implements AdviceStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS advice (
	id          TEXT PRIMARY KEY,
	question_id TEXT NOT NULL,
	category    TEXT NOT NULL,
	text        TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_advice_lookup ON advice(question_id, category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Lookup returns the earliest-inserted advice text for the pair.
func (s *SQLiteStore) Lookup(ctx context.Context, questionID string, category model.AdviceCategory) (string, bool, error) {
	if !validKey(questionID, category) {
		return "", false, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM advice WHERE question_id = ? AND category = ? ORDER BY rowid LIMIT 2`,
		questionID, string(category),
	)
	if err != nil {
		return "", false, eris.Wrapf(err, "sqlite: lookup advice %s/%s", questionID, category)
	}
	defer rows.Close() //nolint:errcheck

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return "", false, eris.Wrap(err, "sqlite: scan advice")
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return "", false, eris.Wrap(err, "sqlite: iterate advice")
	}

	switch len(texts) {
	case 0:
		return "", false, nil
	case 1:
	default:
		warnDuplicate("sqlite", questionID, category)
	}
	return texts[0], true, nil
}

// Insert writes docs in a single transaction.
func (s *SQLiteStore) Insert(ctx context.Context, docs []model.AdviceDoc) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	return s.inTx(ctx, "insert", func(tx *sql.Tx) error {
		return insertDocs(ctx, tx, docs)
	}, int64(len(docs)))
}

// Replace deletes every document and inserts docs in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, docs []model.AdviceDoc) (int64, error) {
	return s.inTx(ctx, "replace", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM advice`); err != nil {
			return eris.Wrap(err, "sqlite: clear advice")
		}
		return insertDocs(ctx, tx, docs)
	}, int64(len(docs)))
}

func (s *SQLiteStore) inTx(ctx context.Context, op string, fn func(*sql.Tx) error, n int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: begin %s", op)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrapf(err, "sqlite: commit %s", op)
	}
	return n, nil
}

func insertDocs(ctx context.Context, tx *sql.Tx, docs []model.AdviceDoc) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO advice (id, question_id, category, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, id, d.QuestionID, string(d.Category), d.Text); err != nil {
			return eris.Wrapf(err, "sqlite: insert advice %s/%s", d.QuestionID, d.Category)
		}
	}
	return nil
}

func (s *SQLiteStore) Truncate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM advice`)
	return eris.Wrap(err, "sqlite: truncate advice")
}
