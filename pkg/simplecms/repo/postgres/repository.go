package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Schema is the DDL of the files table.
const Schema = `
CREATE TABLE IF NOT EXISTS files (
	id UUID PRIMARY KEY,
	parent TEXT NOT NULL,
	filename TEXT NOT NULL,
	template TEXT NOT NULL DEFAULT '',
	content JSONB NOT NULL DEFAULT '{}'::jsonb,
	sort INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT files_parent_filename_key UNIQUE (parent, filename)
);
CREATE INDEX IF NOT EXISTS files_parent_idx ON files (parent, sort);
`

const columns = `id, parent, filename, template, content, sort, created_at, updated_at`

// Repository implements simplecms.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) simplecms.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) simplecms.Repository {
	return &Repository{db: pool}
}

// Migrate creates the files table if it does not exist.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate files table: %w", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: file already exists", simplecms.ErrInvalidFile)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: required field %s is missing", simplecms.ErrInvalidFile, pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return simplecms.ErrFileNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreateFile(ctx context.Context, file *simplecms.FileRecord) error {
	content, err := encodeContent(file.Content)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO files (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		file.ID, file.Parent, file.Filename, file.Template,
		content, file.Sort, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create file", err)
	}
	return nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplecms.FileRecord, error) {
	query := `SELECT ` + columns + ` FROM files WHERE id = $1`

	file, err := scanFile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get file", err)
	}
	return file, nil
}

func (r *Repository) UpdateFile(ctx context.Context, file *simplecms.FileRecord) error {
	content, err := encodeContent(file.Content)
	if err != nil {
		return err
	}

	query := `
		UPDATE files SET
			parent = $2, filename = $3, template = $4,
			content = $5, sort = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		file.ID, file.Parent, file.Filename, file.Template,
		content, file.Sort, file.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update file", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrFileNotFound
	}
	return nil
}

func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete file", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrFileNotFound
	}
	return nil
}

func (r *Repository) ListFiles(ctx context.Context, parent string) ([]*simplecms.FileRecord, error) {
	query := `SELECT ` + columns + ` FROM files WHERE parent = $1 ORDER BY sort, filename`

	rows, err := r.db.Query(ctx, query, parent)
	if err != nil {
		return nil, r.handlePostgresError("list files", err)
	}
	defer rows.Close()

	var files []*simplecms.FileRecord
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan file", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate file rows", err)
	}
	return files, nil
}

func scanFile(row pgx.Row) (*simplecms.FileRecord, error) {
	var file simplecms.FileRecord
	var content []byte
	if err := row.Scan(
		&file.ID, &file.Parent, &file.Filename, &file.Template,
		&content, &file.Sort, &file.CreatedAt, &file.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, &file.Content); err != nil {
		return nil, fmt.Errorf("decode content of file %s: %w", file.ID, err)
	}
	return &file, nil
}

func encodeContent(content map[string]any) ([]byte, error) {
	if content == nil {
		content = map[string]any{}
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	return data, nil
}
