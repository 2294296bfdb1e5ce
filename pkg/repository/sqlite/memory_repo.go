package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/domain/types"
)

type memoryRepository struct {
	db *sql.DB
}

const memoryColumns = "id, title, content, ai_thoughts, telegraph_url, created_at"

func (r *memoryRepository) Create(ctx context.Context, draft *model.MemoryDraft) (*model.Memory, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO memories (title, content, ai_thoughts, telegraph_url, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		draft.Title,
		draft.Content,
		toNullString(draft.AIThoughts),
		toNullString(draft.TelegraphURL),
		formatTime(draft.CreatedAt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert memory")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read assigned memory ID")
	}

	created, err := getMemoryTx(ctx, tx, types.MemoryID(id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit memory insert")
	}

	return created, nil
}

func (r *memoryRepository) Get(ctx context.Context, id types.MemoryID) (*model.Memory, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+memoryColumns+" FROM memories WHERE id = ?", id.Int64())
	return scanMemory(row, id)
}

func (r *memoryRepository) Update(ctx context.Context, id types.MemoryID, patch *model.MemoryPatch) (*model.Memory, error) {
	// _txlock=immediate takes the write lock at BEGIN, so the read below and
	// the write cannot interleave with another transaction's write on the
	// same row.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	m, err := getMemoryTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(m)

	if _, err := tx.ExecContext(ctx,
		`UPDATE memories SET title = ?, content = ?, ai_thoughts = ?, telegraph_url = ? WHERE id = ?`,
		m.Title,
		m.Content,
		toNullString(m.AIThoughts),
		toNullString(m.TelegraphURL),
		id.Int64(),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to update memory", goerr.V("id", id))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit memory update", goerr.V("id", id))
	}

	return m, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id types.MemoryID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id.Int64())
	if err != nil {
		return goerr.Wrap(err, "failed to delete memory", goerr.V("id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to read affected rows", goerr.V("id", id))
	}
	if affected == 0 {
		return goerr.Wrap(types.ErrMemoryNotFound, "no such memory", goerr.V("id", id))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit memory delete", goerr.V("id", id))
	}

	return nil
}

func getMemoryTx(ctx context.Context, tx *sql.Tx, id types.MemoryID) (*model.Memory, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+memoryColumns+" FROM memories WHERE id = ?", id.Int64())
	return scanMemory(row, id)
}

// scanMemory maps one canonical row onto the application shape. Only the
// store assigns the ID; every other column maps one-to-one.
func scanMemory(row *sql.Row, id types.MemoryID) (*model.Memory, error) {
	var m model.Memory
	var thoughts, pageURL sql.NullString
	var createdAt string

	err := row.Scan(&m.ID, &m.Title, &m.Content, &thoughts, &pageURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrMemoryNotFound, "no such memory", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan memory row", goerr.V("id", id))
	}

	m.AIThoughts = fromNullString(thoughts)
	m.TelegraphURL = fromNullString(pageURL)

	m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse created_at", goerr.V("id", id), goerr.V("value", createdAt))
	}

	return &m, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
