package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/zeno-labs/museum-companion/internal/model"
)

// BookingRepo provides CRUD operations for bookings, their attendees
// and their section allocations.  A booking row carries its QR payload
// from the first insert: the public reference is generated before the
// write, so there is never a half-created booking without a QR code.
// All timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so the ticket issuer can run the
// whole issuance inside one transaction.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a booking together with its attendees and section
// allocations within the scope of an existing transaction.  It
// populates the generated ID and timestamps on the provided booking.
// The caller must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking, attendees []model.Attendee, allocations []model.BookingSection) error {
	const q = `INSERT INTO bookings
		(reference, museum_id, user_id, total_cost_cents, qr_payload, valid_until, status, payment_status, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.Reference, b.MuseumID, b.UserID, b.TotalCostCents, b.QRPayload,
		b.ValidUntil.UTC(), b.Status, b.PaymentStatus, b.Source,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if len(attendees) > 0 {
		query := `INSERT INTO booking_attendees (booking_id, name, age_group) VALUES `
		args := make([]interface{}, 0, len(attendees)*3)
		for i, a := range attendees {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?)"
			args = append(args, b.ID, a.Name, a.AgeGroup)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if len(allocations) > 0 {
		query := `INSERT INTO booking_sections (booking_id, section_id, quantity, cost_cents) VALUES `
		args := make([]interface{}, 0, len(allocations)*4)
		for i, s := range allocations {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, b.ID, s.SectionID, s.Quantity, s.CostCents)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	// Query back the row to populate timestamps and defaults.
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// BookingDetail is a booking joined with its museum name, attendees
// and section allocations, shaped for API responses.
type BookingDetail struct {
	ID         uint64    `json:"id"`
	Reference  string    `json:"reference"`
	MuseumID   uint64    `json:"museum_id"`
	MuseumName string    `json:"museum_name"`
	UserID     *uint64   `json:"user_id,omitempty"`
	TotalCost  float64   `json:"total_cost"`
	QRPayload  string    `json:"qr_code"`
	ValidUntil time.Time `json:"validity"`
	Status     string    `json:"status"`
	Payment    string    `json:"payment_status"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	Attendees  []struct {
		Name     string `json:"name"`
		AgeGroup string `json:"age_group"`
	} `json:"attendees"`
	Sections []struct {
		SectionID *uint64 `json:"section_id,omitempty"`
		Name      string  `json:"name"`
		Quantity  uint32  `json:"quantity"`
		Cost      float64 `json:"cost"`
	} `json:"sections"`
}

const bookingDetailQuery = `SELECT b.id, b.reference, b.museum_id, m.name, b.user_id,
	       b.total_cost_cents, b.qr_payload, b.valid_until, b.status, b.payment_status,
	       b.source, b.created_at
	FROM bookings b
	JOIN museums m ON m.id = b.museum_id`

func (r *BookingRepo) scanDetail(row *sql.Row) (*BookingDetail, error) {
	var d BookingDetail
	var cents uint32
	var userID sql.NullInt64
	err := row.Scan(&d.ID, &d.Reference, &d.MuseumID, &d.MuseumName, &userID,
		&cents, &d.QRPayload, &d.ValidUntil, &d.Status, &d.Payment, &d.Source, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		d.UserID = &uid
	}
	d.TotalCost = float64(cents) / 100.0
	return &d, nil
}

// populateChildren loads attendees and section allocations for the
// given details, keyed by booking ID, in two bulk queries.
func (r *BookingRepo) populateChildren(ctx context.Context, details []*BookingDetail) error {
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]*BookingDetail, len(details))
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		d.Attendees = []struct {
			Name     string `json:"name"`
			AgeGroup string `json:"age_group"`
		}{}
		d.Sections = []struct {
			SectionID *uint64 `json:"section_id,omitempty"`
			Name      string  `json:"name"`
			Quantity  uint32  `json:"quantity"`
			Cost      float64 `json:"cost"`
		}{}
		index[d.ID] = d
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	in := strings.Join(placeholders, ",")

	attQ := `SELECT booking_id, name, age_group FROM booking_attendees
	         WHERE booking_id IN (` + in + `) ORDER BY booking_id, id`
	rows, err := r.db.QueryContext(ctx, attQ, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bid uint64
		var name, ageGroup string
		if err := rows.Scan(&bid, &name, &ageGroup); err != nil {
			return err
		}
		if d, ok := index[bid]; ok {
			d.Attendees = append(d.Attendees, struct {
				Name     string `json:"name"`
				AgeGroup string `json:"age_group"`
			}{Name: name, AgeGroup: ageGroup})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// COALESCE gives flat-entry allocations a readable label.
	secQ := `SELECT bs.booking_id, bs.section_id, COALESCE(s.name, 'General entry'), bs.quantity, bs.cost_cents
	         FROM booking_sections bs
	         LEFT JOIN sections s ON s.id = bs.section_id
	         WHERE bs.booking_id IN (` + in + `) ORDER BY bs.booking_id, bs.id`
	srows, err := r.db.QueryContext(ctx, secQ, ids...)
	if err != nil {
		return err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var sectionID sql.NullInt64
		var name string
		var quantity uint32
		var cents uint32
		if err := srows.Scan(&bid, &sectionID, &name, &quantity, &cents); err != nil {
			return err
		}
		d, ok := index[bid]
		if !ok {
			continue
		}
		var sid *uint64
		if sectionID.Valid {
			v := uint64(sectionID.Int64)
			sid = &v
		}
		d.Sections = append(d.Sections, struct {
			SectionID *uint64 `json:"section_id,omitempty"`
			Name      string  `json:"name"`
			Quantity  uint32  `json:"quantity"`
			Cost      float64 `json:"cost"`
		}{SectionID: sid, Name: name, Quantity: quantity, Cost: float64(cents) / 100.0})
	}
	return srows.Err()
}

// GetByReference returns a booking detail by its public reference.
// ErrBookingNotFound is returned when no row matches.
func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (*BookingDetail, error) {
	q := bookingDetailQuery + ` WHERE b.reference = ?`
	d, err := r.scanDetail(r.db.QueryRowContext(ctx, q, reference))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.populateChildren(ctx, []*BookingDetail{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// MarkExpired flips a booking from booked to expired.  The status
// guard in the WHERE clause makes the transition happen at most once
// no matter how many times an expired ticket is re-verified.
func (r *BookingRepo) MarkExpired(ctx context.Context, reference string) error {
	const q = `UPDATE bookings SET status = ? WHERE reference = ? AND status = ?`
	_, err := r.db.ExecContext(ctx, q, model.StatusExpired, reference, model.StatusBooked)
	return err
}

// CancelForOwner flips a booking from booked to cancelled after
// verifying that the caller owns the museum the booking belongs to.
// ErrBookingNotFound is returned for unknown references, ErrForbidden
// when the museum belongs to a different owner, and sql.ErrNoRows when
// the booking exists but is not in the booked state.
func (r *BookingRepo) CancelForOwner(ctx context.Context, reference string, ownerID uint64) error {
	const checkQ = `SELECT m.owner_id FROM bookings b JOIN museums m ON m.id = b.museum_id WHERE b.reference = ?`
	var actualOwnerID uint64
	err := r.db.QueryRowContext(ctx, checkQ, reference).Scan(&actualOwnerID)
	if err == sql.ErrNoRows {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}
	if actualOwnerID != ownerID {
		return ErrForbidden
	}
	const q = `UPDATE bookings SET status = ? WHERE reference = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, model.StatusCancelled, reference, model.StatusBooked)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByUser returns all bookings created by the given user, newest
// first, with attendees and allocations populated.  When no bookings
// exist an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*BookingDetail, error) {
	q := bookingDetailQuery + ` WHERE b.user_id = ? ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]*BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var cents uint32
		var uid sql.NullInt64
		if err := rows.Scan(&d.ID, &d.Reference, &d.MuseumID, &d.MuseumName, &uid,
			&cents, &d.QRPayload, &d.ValidUntil, &d.Status, &d.Payment, &d.Source, &d.CreatedAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			v := uint64(uid.Int64)
			d.UserID = &v
		}
		d.TotalCost = float64(cents) / 100.0
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.populateChildren(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}
