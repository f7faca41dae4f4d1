package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/zeno-labs/museum-companion/internal/model"
)

// MuseumRepo provides CRUD operations for museums and their ticketing
// sections.  Images are stored as a JSON array in a single column;
// sections live in their own table and are replaced wholesale on
// update, mirroring how the onboarding form submits them.
type MuseumRepo struct {
	db *sql.DB
}

// NewMuseumRepo returns a new MuseumRepo bound to the given database.
func NewMuseumRepo(db *sql.DB) *MuseumRepo { return &MuseumRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span repositories.
func (r *MuseumRepo) DB() *sql.DB { return r.db }

const museumColumns = `id, owner_id, name, address, city, state, phone_number, email,
	timings, google_maps_link, instagram, facebook, website, about, images,
	is_sub_ticketing, entry_price_cents, created_at, updated_at`

func scanMuseum(row interface{ Scan(...any) error }) (*model.Museum, error) {
	var m model.Museum
	var images []byte
	err := row.Scan(
		&m.ID, &m.OwnerID, &m.Name, &m.Address, &m.City, &m.State, &m.PhoneNumber, &m.Email,
		&m.Timings, &m.GoogleMapsLink, &m.Instagram, &m.Facebook, &m.Website, &m.About, &images,
		&m.IsSubTicketing, &m.EntryPriceCents, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &m.Images); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// GetByID returns a museum by its primary key.  ErrMuseumNotFound is
// returned when no row matches.
func (r *MuseumRepo) GetByID(ctx context.Context, id uint64) (*model.Museum, error) {
	const q = `SELECT ` + museumColumns + ` FROM museums WHERE id = ?`
	m, err := scanMuseum(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrMuseumNotFound
	}
	return m, err
}

// GetByOwner returns the museum onboarded by the given owner, or
// ErrMuseumNotFound when the owner has not completed onboarding yet.
// Owners hold at most one museum.
func (r *MuseumRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Museum, error) {
	const q = `SELECT ` + museumColumns + ` FROM museums WHERE owner_id = ? ORDER BY id LIMIT 1`
	m, err := scanMuseum(r.db.QueryRowContext(ctx, q, ownerID))
	if err == sql.ErrNoRows {
		return nil, ErrMuseumNotFound
	}
	return m, err
}

// Create inserts a museum and its sections in a single transaction and
// populates the generated IDs on the provided structs.
func (r *MuseumRepo) Create(ctx context.Context, m *model.Museum, sections []model.Section) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	images, err := json.Marshal(m.Images)
	if err != nil {
		return err
	}
	const q = `INSERT INTO museums
		(owner_id, name, address, city, state, phone_number, email, timings,
		 google_maps_link, instagram, facebook, website, about, images,
		 is_sub_ticketing, entry_price_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		m.OwnerID, m.Name, m.Address, m.City, m.State, m.PhoneNumber, m.Email, m.Timings,
		m.GoogleMapsLink, m.Instagram, m.Facebook, m.Website, m.About, images,
		m.IsSubTicketing, m.EntryPriceCents,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	if err := replaceSectionsTx(ctx, tx, m.ID, sections); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update rewrites a museum's descriptive fields and replaces its
// sections.  The owner is part of the WHERE clause so an owner can
// never update another owner's museum through this path.
func (r *MuseumRepo) Update(ctx context.Context, m *model.Museum, sections []model.Section) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	images, err := json.Marshal(m.Images)
	if err != nil {
		return err
	}
	const q = `UPDATE museums SET
		name = ?, address = ?, city = ?, state = ?, phone_number = ?, email = ?,
		timings = ?, google_maps_link = ?, instagram = ?, facebook = ?, website = ?,
		about = ?, images = ?, is_sub_ticketing = ?, entry_price_cents = ?
		WHERE id = ? AND owner_id = ?`
	result, err := tx.ExecContext(ctx, q,
		m.Name, m.Address, m.City, m.State, m.PhoneNumber, m.Email,
		m.Timings, m.GoogleMapsLink, m.Instagram, m.Facebook, m.Website,
		m.About, images, m.IsSubTicketing, m.EntryPriceCents,
		m.ID, m.OwnerID,
	)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrMuseumNotFound
	}
	if err := replaceSectionsTx(ctx, tx, m.ID, sections); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// replaceSectionsTx deletes a museum's existing sections and inserts
// the supplied set, populating generated IDs.
func replaceSectionsTx(ctx context.Context, tx *sql.Tx, museumID uint64, sections []model.Section) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE museum_id = ?`, museumID); err != nil {
		return err
	}
	if len(sections) == 0 {
		return nil
	}
	query := `INSERT INTO sections (museum_id, name, price_cents) VALUES `
	args := make([]interface{}, 0, len(sections)*3)
	for i := range sections {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, museumID, sections[i].Name, sections[i].PriceCents)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	// MySQL returns the first ID of a multi-row insert; IDs are assigned
	// consecutively within one statement.
	first, err := result.LastInsertId()
	if err != nil {
		return err
	}
	for i := range sections {
		sections[i].MuseumID = museumID
		sections[i].ID = uint64(first) + uint64(i)
	}
	return nil
}

// SectionsByMuseum returns a museum's sections ordered by name.
func (r *MuseumRepo) SectionsByMuseum(ctx context.Context, museumID uint64) ([]model.Section, error) {
	const q = `SELECT id, museum_id, name, price_cents FROM sections WHERE museum_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, museumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Section, 0)
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.MuseumID, &s.Name, &s.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SectionPrices returns a map of section ID to stored price for the
// requested sections, restricted to the given museum.  A request that
// names a section outside the museum yields ErrSectionMismatch, which
// is also how unknown section IDs surface.
func (r *MuseumRepo) SectionPrices(ctx context.Context, museumID uint64, sectionIDs []uint64) (map[uint64]uint32, error) {
	if len(sectionIDs) == 0 {
		return map[uint64]uint32{}, nil
	}
	placeholders := make([]string, 0, len(sectionIDs))
	args := make([]interface{}, 0, len(sectionIDs)+1)
	args = append(args, museumID)
	for _, id := range sectionIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT id, price_cents FROM sections WHERE museum_id = ? AND id IN (` +
		strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	prices := make(map[uint64]uint32, len(sectionIDs))
	for rows.Next() {
		var id uint64
		var price uint32
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range sectionIDs {
		if _, ok := prices[id]; !ok {
			return nil, ErrSectionMismatch
		}
	}
	return prices, nil
}
