package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/baechuer/docvault/internal/domain"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = `id, owner_id, title, description, file_name, original_name, mime_type, file_size, is_public, created_at, updated_at`

func scanDocument(row rowScanner) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Title,
		&d.Description,
		&d.FileName,
		&d.OriginalName,
		&d.MimeType,
		&d.FileSize,
		&d.IsPublic,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func (r *DocumentRepo) Create(ctx context.Context, d domain.Document) (domain.Document, error) {
	if d.ID == "" {
		return domain.Document{}, domain.ErrMissingField("id")
	}
	if d.OwnerID == "" {
		return domain.Document{}, domain.ErrMissingField("owner_id")
	}

	q := `
INSERT INTO documents (id, owner_id, title, description, file_name, original_name, mime_type, file_size, is_public)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + documentColumns + `;
`
	out, err := scanDocument(r.db.QueryRowContext(ctx, q,
		d.ID, d.OwnerID, d.Title, d.Description, d.FileName, d.OriginalName, d.MimeType, d.FileSize, d.IsPublic,
	))
	if err != nil {
		return domain.Document{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (domain.Document, error) {
	if !isRowID(id) {
		return domain.Document{}, domain.ErrDocumentNotFound()
	}
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 LIMIT 1;`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, domain.ErrDocumentNotFound()
		}
		return domain.Document{}, domain.ErrDBUnavailable(err)
	}
	return d, nil
}

// buildListQuery renders the WHERE clause for f with positional args.
func buildListQuery(f domain.DocumentFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OwnerID != "" {
		if f.IncludePublic {
			where = append(where, "(owner_id = "+arg(f.OwnerID)+" OR is_public)")
		} else {
			where = append(where, "owner_id = "+arg(f.OwnerID))
		}
	}
	if f.MimeType != "" {
		where = append(where, "mime_type = "+arg(f.MimeType))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		where = append(where, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	q := `SELECT ` + documentColumns + ` FROM documents`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id ASC;"
	return q, args
}

func (r *DocumentRepo) List(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, error) {
	q, args := buildListQuery(f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// Update writes the editable metadata. Owner and creation time are immutable.
func (r *DocumentRepo) Update(ctx context.Context, d domain.Document) (domain.Document, error) {
	if !isRowID(d.ID) {
		return domain.Document{}, domain.ErrDocumentNotFound()
	}
	q := `
UPDATE documents
SET title = $2,
    description = $3,
    is_public = $4,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + documentColumns + `;
`
	out, err := scanDocument(r.db.QueryRowContext(ctx, q, d.ID, d.Title, d.Description, d.IsPublic))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, domain.ErrDocumentNotFound()
		}
		return domain.Document{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	if !isRowID(id) {
		return domain.ErrDocumentNotFound()
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1;`, id)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrDocumentNotFound()
	}
	return nil
}
