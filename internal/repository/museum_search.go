package repository

import (
	"context"
	"strings"
)

// MuseumSearchQuery defines the free-text filter and pagination for
// searching museums.
type MuseumSearchQuery struct {
	Text     string
	Page     int
	PageSize int
}

// MuseumSearchRow is the public projection returned by search: enough
// to render a result card, nothing owner-facing.
type MuseumSearchRow struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	State       string `json:"state"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Search performs a ranked case-insensitive match over museum names,
// locations and descriptions.  Name matches rank above location and
// description matches; ties fall back to the newest museum first.  The
// caller is responsible for rejecting empty queries.
func (r *MuseumRepo) Search(ctx context.Context, q MuseumSearchQuery) ([]MuseumSearchRow, int64, error) {
	needle := "%" + strings.ToLower(strings.TrimSpace(q.Text)) + "%"
	const cond = `(LOWER(name) LIKE ? OR LOWER(city) LIKE ? OR LOWER(state) LIKE ? OR LOWER(about) LIKE ?)`

	var total int64
	countSQL := `SELECT COUNT(*) FROM museums WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, needle, needle, needle, needle).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			id,
			name,
			city,
			state,
			about,
			COALESCE(JSON_UNQUOTE(JSON_EXTRACT(images, '$[0]')), '') AS image,
			CASE WHEN LOWER(name) LIKE ? THEN 0 ELSE 1 END AS rank_bucket
		FROM museums
		WHERE ` + cond + `
		ORDER BY rank_bucket ASC, created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, dataSQL, needle, needle, needle, needle, needle, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]MuseumSearchRow, 0, limit)
	for rows.Next() {
		var d MuseumSearchRow
		var bucket int
		if err := rows.Scan(&d.ID, &d.Name, &d.City, &d.State, &d.Description, &d.Image, &bucket); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
