package store

import (
	"context"
	"strings"

	"github.com/videoscribe/analyzer/model"
)

// SearchParams is the optional filter set for Search. Zero-valued fields
// are omitted from the WHERE clause, so an empty SearchParams returns
// everything (subject to Limit/Offset).
type SearchParams struct {
	Genre   string
	Keyword string
	Tags    []string
	Limit   int
	Offset  int
}

// Search filters rows by genre (exact), keyword (title LIKE), and tags
// (each tag ANDed as a substring match on the JSON tags column), the
// same cheap-but-effective approach the design calls for rather than a
// dedicated full-text index.
func (s *Store) Search(ctx context.Context, p SearchParams) ([]model.VideoRecord, error) {
	conn, cancel, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer conn.Close()

	var where []string
	var args []any

	if p.Genre != "" {
		where = append(where, "genre = ?")
		args = append(args, p.Genre)
	}
	if p.Keyword != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+p.Keyword+"%")
	}
	for _, tag := range p.Tags {
		where = append(where, "tags LIKE ?")
		args = append(args, "%"+tag+"%")
	}

	query := "SELECT " + selectColumns + " FROM videos"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, p.Offset)

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}
