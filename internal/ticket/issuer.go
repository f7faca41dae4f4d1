// Package ticket issues museum tickets: it derives prices from the
// museum's own stored configuration, writes the booking (QR payload
// included) in one transaction, and renders the PDF receipt artifact.
// Both the direct booking endpoint and the chat assistant's book_ticket
// tool go through the issuer so the two flows cannot drift apart.
package ticket

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/repository"
)

// Validity is how long a ticket is honoured after purchase.  The same
// window applies to every flow.
const Validity = 24 * time.Hour

// ErrNoAttendees is returned when a booking request names nobody.
var ErrNoAttendees = errors.New("at least one attendee is required")

// ErrNoSections is returned when a section-priced booking request
// carries no allocations.
var ErrNoSections = errors.New("at least one section allocation is required")

// ErrBadQuantity is returned when an allocation requests zero tickets
// or more than MaxQuantity.
var ErrBadQuantity = errors.New("quantity must be between 1 and 1000")

// ErrTotalTooLarge is returned when a booking's derived total exceeds
// MaxTotalCents.
var ErrTotalTooLarge = errors.New("booking total exceeds the supported maximum")

// MaxQuantity bounds a single allocation. Nobody books more tickets
// than this in one request; anything above it is a caller bug.
const MaxQuantity = 1000

// MaxTotalCents caps a booking's grand total at one million in the
// major currency unit. Totals are computed in 64-bit arithmetic and
// checked against this bound before being stored, so a huge quantity
// times a huge price can never wrap into a small charge.
const MaxTotalCents uint64 = 100_000_000

// SectionRequest is a caller's allocation: which section and how many
// tickets.  Prices are never taken from the caller.
type SectionRequest struct {
	SectionID uint64 `json:"sectionId"`
	Quantity  uint32 `json:"quantity"`
}

// Result describes a successfully issued ticket.
type Result struct {
	Booking *model.Booking
	PDFURL  string
}

// Issuer creates bookings and their receipt artifacts.
type Issuer struct {
	Museums  *repository.MuseumRepo
	Bookings *repository.BookingRepo
	// BaseURL is the public origin used for verification links and PDF
	// download URLs.
	BaseURL string
	// OutputDir is the shared directory receipt PDFs are written to.
	// File names embed the booking reference, which is unique, so
	// concurrent issuance never collides.
	OutputDir string
}

// NewIssuer constructs an Issuer. All dependencies must be non-nil.
func NewIssuer(museums *repository.MuseumRepo, bookings *repository.BookingRepo, baseURL, outputDir string) *Issuer {
	if museums == nil || bookings == nil {
		panic("nil repository passed to NewIssuer")
	}
	return &Issuer{Museums: museums, Bookings: bookings, BaseURL: baseURL, OutputDir: outputDir}
}

// SubTotal returns quantity × price with the arithmetic in one place,
// widened to 64 bits so large inputs cannot overflow.
func SubTotal(quantity uint32, priceCents uint32) uint64 {
	return uint64(quantity) * uint64(priceCents)
}

// TotalCost sums allocation subtotals in 64-bit arithmetic.
func TotalCost(allocations []model.BookingSection) uint64 {
	var total uint64
	for _, a := range allocations {
		total += uint64(a.CostCents)
	}
	return total
}

// IssueSections books per-section tickets.  Prices are re-derived from
// the museum's stored section prices; the caller only chooses sections
// and quantities.  purchaser is the display name rendered on the
// receipt and may be empty.
func (i *Issuer) IssueSections(ctx context.Context, museumID uint64, userID *uint64, purchaser string, attendees []model.Attendee, requests []SectionRequest, source string) (*Result, error) {
	if len(attendees) == 0 {
		return nil, ErrNoAttendees
	}
	if len(requests) == 0 {
		return nil, ErrNoSections
	}
	museum, err := i.Museums.GetByID(ctx, museumID)
	if err != nil {
		return nil, err
	}
	sectionIDs := make([]uint64, 0, len(requests))
	for _, req := range requests {
		if req.Quantity == 0 || req.Quantity > MaxQuantity {
			return nil, ErrBadQuantity
		}
		sectionIDs = append(sectionIDs, req.SectionID)
	}
	prices, err := i.Museums.SectionPrices(ctx, museumID, sectionIDs)
	if err != nil {
		return nil, err
	}
	allocations := make([]model.BookingSection, 0, len(requests))
	for _, req := range requests {
		sid := req.SectionID
		sub := SubTotal(req.Quantity, prices[req.SectionID])
		if sub > MaxTotalCents {
			return nil, ErrTotalTooLarge
		}
		allocations = append(allocations, model.BookingSection{
			SectionID: &sid,
			Quantity:  req.Quantity,
			CostCents: uint32(sub),
		})
	}
	return i.issue(ctx, museum, userID, purchaser, attendees, allocations, source)
}

// IssueFlat books flat-entry tickets priced per attendee from the
// museum's stored entry price.  This is the path the chat assistant's
// book_ticket tool takes, where attendees are named but no section is
// selected.
func (i *Issuer) IssueFlat(ctx context.Context, museumID uint64, userID *uint64, purchaser string, attendees []model.Attendee, source string) (*Result, error) {
	if len(attendees) == 0 {
		return nil, ErrNoAttendees
	}
	if len(attendees) > MaxQuantity {
		return nil, ErrBadQuantity
	}
	museum, err := i.Museums.GetByID(ctx, museumID)
	if err != nil {
		return nil, err
	}
	quantity := uint32(len(attendees))
	sub := SubTotal(quantity, museum.EntryPriceCents)
	if sub > MaxTotalCents {
		return nil, ErrTotalTooLarge
	}
	allocations := []model.BookingSection{{
		SectionID: nil,
		Quantity:  quantity,
		CostCents: uint32(sub),
	}}
	return i.issue(ctx, museum, userID, purchaser, attendees, allocations, source)
}

// issue writes the booking and renders its receipt.  The reference and
// QR payload are computed before the insert so the booking row is
// complete from its first write; the row plus attendees plus
// allocations commit together.
func (i *Issuer) issue(ctx context.Context, museum *model.Museum, userID *uint64, purchaser string, attendees []model.Attendee, allocations []model.BookingSection, source string) (*Result, error) {
	reference := uuid.NewString()
	qrPNG, qrDataURL, err := GenerateQR(VerifyURL(i.BaseURL, reference))
	if err != nil {
		return nil, err
	}

	total := TotalCost(allocations)
	if total > MaxTotalCents {
		return nil, ErrTotalTooLarge
	}

	booking := &model.Booking{
		Reference:      reference,
		MuseumID:       museum.ID,
		UserID:         userID,
		TotalCostCents: uint32(total),
		QRPayload:      qrDataURL,
		ValidUntil:     time.Now().UTC().Add(Validity),
		Status:         model.StatusBooked,
		PaymentStatus:  model.PaymentCompleted,
		Source:         source,
	}

	tx, err := i.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := i.Bookings.CreateTx(ctx, tx, booking, attendees, allocations); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	names := make([]string, 0, len(attendees))
	for _, a := range attendees {
		names = append(names, a.Name)
	}
	pdfBytes, err := RenderPDF(Receipt{
		MuseumName: museum.Name,
		Purchaser:  purchaser,
		Reference:  reference,
		TotalCost:  float64(booking.TotalCostCents) / 100.0,
		ValidUntil: booking.ValidUntil,
		Attendees:  names,
	}, qrPNG)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(i.OutputDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(i.OutputDir, PDFName(reference)), pdfBytes, 0o644); err != nil {
		return nil, err
	}

	return &Result{Booking: booking, PDFURL: i.PDFURL(reference)}, nil
}

// PDFName returns the receipt file name for a booking reference.
func PDFName(reference string) string {
	return "ticket-" + reference + ".pdf"
}

// PDFURL returns the public download link for a booking's receipt.
func (i *Issuer) PDFURL(reference string) string {
	return strings.TrimRight(i.BaseURL, "/") + "/public/" + PDFName(reference)
}
