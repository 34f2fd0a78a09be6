package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/assessment-advisor/internal/db"
	"github.com/sells-group/assessment-advisor/internal/model"
)

// PostgresStore implements AdviceStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS advice (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	seq         BIGSERIAL NOT NULL,
	question_id TEXT NOT NULL,
	category    TEXT NOT NULL,
	text        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_advice_lookup ON advice(question_id, category, seq);
`

var adviceColumns = []string{"id", "question_id", "category", "text"}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Lookup returns the earliest-inserted advice text for the pair.
func (s *PostgresStore) Lookup(ctx context.Context, questionID string, category model.AdviceCategory) (string, bool, error) {
	if !validKey(questionID, category) {
		return "", false, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT text FROM advice WHERE question_id = $1 AND category = $2 ORDER BY seq LIMIT 2`,
		questionID, string(category),
	)
	if err != nil {
		return "", false, eris.Wrapf(err, "postgres: lookup advice %s/%s", questionID, category)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return "", false, eris.Wrap(err, "postgres: scan advice")
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return "", false, eris.Wrap(err, "postgres: iterate advice")
	}

	switch len(texts) {
	case 0:
		return "", false, nil
	case 1:
	default:
		warnDuplicate("postgres", questionID, category)
	}
	return texts[0], true, nil
}

// Insert bulk-loads docs with COPY. Documents without an id get a new UUID.
func (s *PostgresStore) Insert(ctx context.Context, docs []model.AdviceDoc) (int64, error) {
	n, err := db.CopyFrom(ctx, s.pool, "advice", adviceColumns, adviceRows(docs))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert advice")
	}
	return n, nil
}

// Replace truncates and reloads the table in one transaction.
func (s *PostgresStore) Replace(ctx context.Context, docs []model.AdviceDoc) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE advice`); err != nil {
		return 0, eris.Wrap(err, "postgres: replace: truncate")
	}
	n, err := db.CopyFrom(ctx, tx, "advice", adviceColumns, adviceRows(docs))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace: copy")
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: replace: commit")
	}
	return n, nil
}

func adviceRows(docs []model.AdviceDoc) [][]any {
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{id, d.QuestionID, string(d.Category), d.Text})
	}
	return rows
}

func (s *PostgresStore) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE advice`)
	return eris.Wrap(err, "postgres: truncate advice")
}
