package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"
)

// DashboardRepo runs the fixed aggregation queries behind the owner
// dashboard.  All aggregates are scoped to a single museum and return
// zero-valued defaults instead of errors when no bookings match.
type DashboardRepo struct {
	db *sql.DB
}

// NewDashboardRepo returns a new DashboardRepo bound to the given database.
func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// PeakHour reports the hour of day with the most bookings since the
// given start time.  The `_id` naming mirrors the dashboard contract
// consumed by the frontend.  When no bookings match, Hour is "N/A" and
// TotalTickets is 0.
type PeakHour struct {
	Hour         string `json:"_id"`
	TotalTickets int64  `json:"totalTickets"`
}

// PeakHourSince computes the busiest booking hour for a museum within
// [since, now).  Ties are broken by the earliest hour so repeated runs
// over the same data always agree.
func (r *DashboardRepo) PeakHourSince(ctx context.Context, museumID uint64, since time.Time) (PeakHour, error) {
	const q = `SELECT HOUR(created_at) AS hour_of_day, COUNT(*) AS total_tickets
	           FROM bookings
	           WHERE museum_id = ? AND created_at >= ?
	           GROUP BY hour_of_day
	           ORDER BY total_tickets DESC, hour_of_day ASC
	           LIMIT 1`
	var hour int
	var total int64
	err := r.db.QueryRowContext(ctx, q, museumID, since.UTC()).Scan(&hour, &total)
	if err == sql.ErrNoRows {
		return PeakHour{Hour: "N/A", TotalTickets: 0}, nil
	}
	if err != nil {
		return PeakHour{}, err
	}
	return PeakHour{Hour: strconv.Itoa(hour), TotalTickets: total}, nil
}

// RecentBooking is the dashboard projection of a booking row.
type RecentBooking struct {
	Reference string    `json:"reference"`
	TotalCost float64   `json:"total_cost"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentBookings returns the newest bookings for a museum, capped at
// limit.  An empty slice is returned when the museum has none.
func (r *DashboardRepo) RecentBookings(ctx context.Context, museumID uint64, limit int) ([]RecentBooking, error) {
	const q = `SELECT reference, total_cost_cents, status, source, created_at
	           FROM bookings
	           WHERE museum_id = ?
	           ORDER BY created_at DESC, id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, museumID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RecentBooking, 0, limit)
	for rows.Next() {
		var b RecentBooking
		var cents uint32
		if err := rows.Scan(&b.Reference, &cents, &b.Status, &b.Source, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.TotalCost = float64(cents) / 100.0
		out = append(out, b)
	}
	return out, rows.Err()
}

// SalesSince sums booking totals for a museum from the given start
// time, returned in whole currency units.  Zero when nothing matched.
func (r *DashboardRepo) SalesSince(ctx context.Context, museumID uint64, since time.Time) (float64, error) {
	const q = `SELECT COALESCE(SUM(total_cost_cents), 0)
	           FROM bookings
	           WHERE museum_id = ? AND created_at >= ?`
	var cents int64
	if err := r.db.QueryRowContext(ctx, q, museumID, since.UTC()).Scan(&cents); err != nil {
		return 0, err
	}
	return float64(cents) / 100.0, nil
}
